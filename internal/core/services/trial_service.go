package services

import (
	"context"
	"errors"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/models"
	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/repositories"
	"github.com/Goldwhyit/almere-pickleball/internal/core/domain"
	"github.com/Goldwhyit/almere-pickleball/internal/pkg/password"

	"gorm.io/gorm"
)

// TrialService handles the trial lesson lifecycle: signup, date
// booking, rescheduling and the conversion or decline at the end of
// the trial period.
type TrialService struct {
	userRepo    repositories.UserRepository
	memberRepo  repositories.MemberRepository
	trialRepo   repositories.TrialRepository
	authService *AuthService
	now         func() time.Time
}

// NewTrialService creates a new trial service
func NewTrialService(
	userRepo repositories.UserRepository,
	memberRepo repositories.MemberRepository,
	trialRepo repositories.TrialRepository,
	authService *AuthService,
) *TrialService {
	return &TrialService{
		userRepo:    userRepo,
		memberRepo:  memberRepo,
		trialRepo:   trialRepo,
		authService: authService,
		now:         time.Now,
	}
}

// SignupInput represents trial signup input
type SignupInput struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	Phone       string `json:"phone" validate:"omitempty,max=30"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
}

// BookDatesInput represents the three trial lesson dates
type BookDatesInput struct {
	Date1 string `json:"date1" validate:"required,datetime=2006-01-02"`
	Date2 string `json:"date2" validate:"required,datetime=2006-01-02"`
	Date3 string `json:"date3" validate:"required,datetime=2006-01-02"`
}

// RescheduleInput represents a lesson reschedule request
type RescheduleInput struct {
	NewDate string `json:"new_date" validate:"required,datetime=2006-01-02"`
	NewTime string `json:"new_time" validate:"required"`
}

// DeclineInput captures why a trial member stops
type DeclineInput struct {
	Reason   string `json:"reason" validate:"required,max=100"`
	Feedback string `json:"feedback" validate:"omitempty"`
}

// TrialStatus summarizes a member's trial progress
type TrialStatus struct {
	ID                    uint       `json:"id"`
	FirstName             string     `json:"first_name"`
	LastName              string     `json:"last_name"`
	AccountType           string     `json:"account_type"`
	TrialStartDate        *time.Time `json:"trial_start_date"`
	TrialEndDate          *time.Time `json:"trial_end_date"`
	TrialLessonsBooked    int        `json:"trial_lessons_booked"`
	TrialLessonsCompleted int        `json:"trial_lessons_completed"`
	DaysRemaining         int        `json:"days_remaining"`
	IsTrialExpired        bool       `json:"is_trial_expired"`
	CompletionPercentage  int        `json:"completion_percentage"`
}

// Signup creates a trial account with a 30-day window and logs the
// user straight in. Accounts whose previous trial expired less than a
// year ago are blocked from re-signup.
func (s *TrialService) Signup(ctx context.Context, input *SignupInput) (*AuthResponse, error) {
	// 1. Check for an existing account
	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.AccountType != models.AccountTrialExpired {
			return nil, domain.ErrEmailExists
		}
		member, err := s.memberRepo.GetByUserID(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		if member.TrialEndDate != nil {
			daysSince := daysBetween(*member.TrialEndDate, s.now())
			if daysSince < domain.TrialCooldownDays {
				return nil, &domain.TrialCooldownError{DaysSinceExpiry: daysSince}
			}
		}
		// Cooldown passed: reset the old account for a fresh trial
		return s.restartTrial(ctx, existing, member, input)
	}

	// 2. Validate password strength
	if !password.Validate(input.Password) {
		return nil, domain.ErrWeakPassword
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	dob, err := parseDate(input.DateOfBirth)
	if err != nil {
		return nil, err
	}

	// 3. Create user and member with the trial window
	trialStart := s.now()
	trialEnd := trialStart.AddDate(0, 0, domain.TrialPeriodDays)

	user := &models.User{
		Email:       input.Email,
		Password:    hashed,
		AccountType: models.AccountTrial,
		IsActive:    true,
	}
	member := &models.Member{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Phone:          optional(input.Phone),
		DateOfBirth:    &dob,
		TrialStartDate: &trialStart,
		TrialEndDate:   &trialEnd,
	}

	if err := s.memberRepo.CreateWithUser(ctx, member, user); err != nil {
		return nil, err
	}

	// 4. Issue tokens for immediate login
	tokens, err := s.authService.IssueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	user.Member = member
	log.Printf("✅ Trial signup: %s (trial ends %s)", user.Email, trialEnd.Format("2006-01-02"))

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// restartTrial resets an expired account for a fresh trial period
func (s *TrialService) restartTrial(ctx context.Context, user *models.User, member *models.Member, input *SignupInput) (*AuthResponse, error) {
	if !password.Validate(input.Password) {
		return nil, domain.ErrWeakPassword
	}
	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	trialStart := s.now()
	trialEnd := trialStart.AddDate(0, 0, domain.TrialPeriodDays)

	user.Password = hashed
	user.AccountType = models.AccountTrial
	member.FirstName = input.FirstName
	member.LastName = input.LastName
	member.Phone = optional(input.Phone)
	member.TrialStartDate = &trialStart
	member.TrialEndDate = &trialEnd
	member.TrialLessonsUsed = 0
	member.IsTrialExpired = false
	member.StopReason = nil
	member.StopFeedback = nil

	if err := s.memberRepo.UpdateWithUser(ctx, member, user); err != nil {
		return nil, err
	}

	tokens, err := s.authService.IssueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	user.Member = member
	log.Printf("✅ Trial restarted: %s", user.Email)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// MyStatus returns the member's trial progress, auto-expiring the
// account when the trial window has passed.
func (s *TrialService) MyStatus(ctx context.Context, userID uint) (*TrialStatus, error) {
	member, err := s.getMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	daysRemaining := 0
	if member.TrialEndDate != nil {
		daysRemaining = daysBetween(s.now(), *member.TrialEndDate)
	}
	isExpired := daysRemaining <= 0

	accountType := models.AccountTrial
	if member.User != nil {
		accountType = member.User.AccountType
	}

	// Auto-expire when the window has passed
	if isExpired && accountType == models.AccountTrial {
		member.IsTrialExpired = true
		member.User.AccountType = models.AccountTrialExpired
		if err := s.memberRepo.UpdateWithUser(ctx, member, member.User); err != nil {
			return nil, err
		}
		accountType = models.AccountTrialExpired
	}

	lessons, err := s.trialRepo.ListByMember(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	completed := 0
	for _, lesson := range lessons {
		if lesson.Status == models.LessonStatusCompleted {
			completed++
		}
	}

	percentage := 0
	if member.TrialLessonsUsed > 0 {
		percentage = int(math.Round(float64(member.TrialLessonsUsed) / domain.TrialLessonCount * 100))
	}

	if daysRemaining < 0 {
		daysRemaining = 0
	}

	return &TrialStatus{
		ID:                    member.ID,
		FirstName:             member.FirstName,
		LastName:              member.LastName,
		AccountType:           accountType,
		TrialStartDate:        member.TrialStartDate,
		TrialEndDate:          member.TrialEndDate,
		TrialLessonsBooked:    member.TrialLessonsUsed,
		TrialLessonsCompleted: completed,
		DaysRemaining:         daysRemaining,
		IsTrialExpired:        isExpired,
		CompletionPercentage:  percentage,
	}, nil
}

// MyLessons lists the member's trial lessons, earliest first
func (s *TrialService) MyLessons(ctx context.Context, userID uint) ([]*models.LessonResponse, error) {
	member, err := s.getMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	lessons, err := s.trialRepo.ListByMember(ctx, member.ID)
	if err != nil {
		return nil, err
	}

	out := make([]*models.LessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		out = append(out, lesson.ToResponse())
	}
	return out, nil
}

// BookDates books the three trial lesson dates in one go. All dates
// must be distinct, in the future and within two weeks.
func (s *TrialService) BookDates(ctx context.Context, userID uint, input *BookDatesInput) ([]*models.LessonResponse, error) {
	member, err := s.getMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 1. Trial must be active and dates not yet booked
	if member.User == nil || member.User.AccountType != models.AccountTrial {
		return nil, domain.ErrTrialNotActive
	}
	existing, err := s.trialRepo.ListByMember(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, domain.ErrDatesAlreadyBooked
	}

	// 2. Validate the dates
	raw := []string{input.Date1, input.Date2, input.Date3}
	dates := make([]time.Time, 0, domain.TrialLessonCount)
	seen := make(map[string]bool, domain.TrialLessonCount)
	now := s.now()
	windowEnd := now.AddDate(0, 0, domain.TrialBookingDays)

	for _, value := range raw {
		date, err := parseDate(value)
		if err != nil {
			return nil, err
		}
		if date.Before(now.Truncate(24 * time.Hour)) {
			return nil, domain.ErrDateInPast
		}
		if date.After(windowEnd) {
			return nil, domain.ErrDateOutsideWindow
		}
		if seen[value] {
			return nil, domain.ErrDuplicateDates
		}
		seen[value] = true
		dates = append(dates, date)
	}

	// 3. Create the lessons
	lessons := make([]*models.TrialLesson, 0, len(dates))
	for _, date := range dates {
		lessons = append(lessons, &models.TrialLesson{
			MemberID:      member.ID,
			ScheduledDate: date,
			ScheduledTime: domain.TrialLessonTime,
			Location:      domain.LocationTrial,
			Status:        models.LessonStatusScheduled,
		})
	}
	if err := s.trialRepo.CreateBatch(ctx, lessons); err != nil {
		return nil, err
	}

	member.TrialLessonsUsed = domain.TrialLessonCount
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}

	log.Printf("✅ Trial dates booked: member %d", member.ID)

	out := make([]*models.LessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		out = append(out, lesson.ToResponse())
	}
	return out, nil
}

// Reschedule moves a lesson to a new date and time. Not allowed within
// 24 hours of the lesson.
func (s *TrialService) Reschedule(ctx context.Context, userID, lessonID uint, input *RescheduleInput) (*models.LessonResponse, error) {
	member, err := s.getMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	lesson, err := s.trialRepo.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTrialNotFound
		}
		return nil, err
	}
	if lesson.MemberID != member.ID {
		return nil, domain.ErrNotOwner
	}

	start := combineDateTime(lesson.ScheduledDate, lesson.ScheduledTime)
	if start.Sub(s.now()) < domain.RescheduleCutoffHours*time.Hour {
		return nil, domain.ErrRescheduleTooLate
	}

	newDate, err := parseDate(input.NewDate)
	if err != nil {
		return nil, err
	}
	lesson.ScheduledDate = newDate
	lesson.ScheduledTime = input.NewTime
	if err := s.trialRepo.Update(ctx, lesson); err != nil {
		return nil, err
	}

	log.Printf("✅ Lesson rescheduled: member %d lesson %d", member.ID, lessonID)
	return lesson.ToResponse(), nil
}

// ConvertToMember upgrades a trial account to a full membership
func (s *TrialService) ConvertToMember(ctx context.Context, userID uint) (*models.MemberResponse, error) {
	member, err := s.getMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	member.ConversionDate = &now
	member.User.AccountType = models.AccountMember
	if err := s.memberRepo.UpdateWithUser(ctx, member, member.User); err != nil {
		return nil, err
	}

	log.Printf("✅ Trial converted to member: %s", member.User.Email)
	return member.ToResponse(), nil
}

// Decline ends the trial and records why the member stops
func (s *TrialService) Decline(ctx context.Context, userID uint, input *DeclineInput) error {
	member, err := s.getMember(ctx, userID)
	if err != nil {
		return err
	}

	member.IsTrialExpired = true
	member.StopReason = &input.Reason
	member.StopFeedback = optional(input.Feedback)
	member.User.AccountType = models.AccountTrialExpired

	if err := s.memberRepo.UpdateWithUser(ctx, member, member.User); err != nil {
		return err
	}

	log.Printf("✅ Trial declined: member %d (%s)", member.ID, input.Reason)
	return nil
}

// ============================================================
// Admin operations
// ============================================================

// TrialStats aggregates trial funnel numbers for the back office
type TrialStats struct {
	TotalTrialMembers       int      `json:"total_trial_members"`
	ConvertedToMember       int      `json:"converted_to_member"`
	TrialExpired            int      `json:"trial_expired"`
	ConversionRate          string   `json:"conversion_rate"`
	TotalLessonsCompleted   int      `json:"total_lessons_completed"`
	AverageLessonsPerMember string   `json:"average_lessons_per_member"`
	StopReasons             []string `json:"stop_reasons"`
}

// ListTrialMembers lists trial members for the back office, newest
// first. An empty status lists both active and expired trials.
func (s *TrialService) ListTrialMembers(ctx context.Context, status string, offset, limit int) ([]*models.MemberResponse, int64, error) {
	types := []string{models.AccountTrial, models.AccountTrialExpired}
	if status != "" {
		types = []string{status}
	}

	members, total, err := s.memberRepo.ListByAccountTypes(ctx, types, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*models.MemberResponse, 0, len(members))
	for _, member := range members {
		out = append(out, member.ToResponse())
	}
	return out, total, nil
}

// TrialMemberDetails returns one trial member with their lessons
func (s *TrialService) TrialMemberDetails(ctx context.Context, memberID uint) (*models.MemberResponse, []*models.LessonResponse, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrMemberNotFound
		}
		return nil, nil, err
	}

	lessons, err := s.trialRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, nil, err
	}

	out := make([]*models.LessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		out = append(out, lesson.ToResponse())
	}
	return member.ToResponse(), out, nil
}

// MarkLessonCompleted marks a lesson attended, with optional coach notes
func (s *TrialService) MarkLessonCompleted(ctx context.Context, lessonID uint, notes string) (*models.LessonResponse, error) {
	lesson, err := s.trialRepo.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTrialNotFound
		}
		return nil, err
	}

	now := s.now()
	lesson.Status = models.LessonStatusCompleted
	lesson.CompletedAt = &now
	lesson.CheckInTime = &now
	lesson.Notes = optional(notes)

	if err := s.trialRepo.Update(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson.ToResponse(), nil
}

// Stats computes trial funnel statistics for the back office
func (s *TrialService) Stats(ctx context.Context) (*TrialStats, error) {
	members, _, err := s.memberRepo.ListByAccountTypes(ctx,
		[]string{models.AccountTrial, models.AccountTrialExpired}, 0, 0)
	if err != nil {
		return nil, err
	}

	stats := &TrialStats{
		TotalTrialMembers: len(members),
		StopReasons:       []string{},
	}

	completed := 0
	for _, member := range members {
		if member.User != nil && member.User.AccountType == models.AccountTrialExpired {
			stats.TrialExpired++
		}
		for _, lesson := range member.TrialLessons {
			if lesson.Status == models.LessonStatusCompleted {
				completed++
			}
		}
		if member.StopReason != nil {
			stats.StopReasons = append(stats.StopReasons, *member.StopReason)
		}
		if member.ConversionDate != nil {
			stats.ConvertedToMember++
		}
	}
	stats.TotalLessonsCompleted = completed

	if stats.TotalTrialMembers > 0 {
		rate := float64(stats.ConvertedToMember) / float64(stats.TotalTrialMembers) * 100
		stats.ConversionRate = formatFixed(rate) + "%"
		stats.AverageLessonsPerMember = formatFixed(float64(completed) / float64(stats.TotalTrialMembers))
	} else {
		stats.ConversionRate = "0.0%"
		stats.AverageLessonsPerMember = "0.0"
	}

	return stats, nil
}

// getMember resolves the member profile for a user
func (s *TrialService) getMember(ctx context.Context, userID uint) (*models.Member, error) {
	member, err := s.memberRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// daysBetween returns the number of days from a to b, rounded up
func daysBetween(a, b time.Time) int {
	return int(math.Ceil(b.Sub(a).Hours() / 24))
}

// optional maps an empty string to nil
func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// formatFixed formats a number with one decimal place
func formatFixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
