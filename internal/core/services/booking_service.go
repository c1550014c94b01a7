package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/models"
	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/repositories"
	"github.com/Goldwhyit/almere-pickleball/internal/core/domain"
	"github.com/Goldwhyit/almere-pickleball/internal/pkg/pricing"

	"gorm.io/gorm"
)

// BookingService handles training slot projection and bookings
type BookingService struct {
	regRepo    repositories.RegistrationRepository
	trialRepo  repositories.TrialRepository
	memberRepo repositories.MemberRepository
	now        func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(
	regRepo repositories.RegistrationRepository,
	trialRepo repositories.TrialRepository,
	memberRepo repositories.MemberRepository,
) *BookingService {
	return &BookingService{
		regRepo:    regRepo,
		trialRepo:  trialRepo,
		memberRepo: memberRepo,
		now:        time.Now,
	}
}

// BookTrainingInput represents a session booking request
type BookTrainingInput struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string `json:"time" validate:"required"`
	Location string `json:"location" validate:"required"`
}

// PunchBookingResult is returned after a punch card booking mutation
type PunchBookingResult struct {
	Lesson         *models.LessonResponse `json:"lesson"`
	PunchCardCount int                    `json:"punchCardCount"`
}

// RegistrationResult is returned after a registration mutation
type RegistrationResult struct {
	Registration *models.RegistrationResponse `json:"registration,omitempty"`
	Credit       *float64                     `json:"credit,omitempty"`
}

// AvailableSlots projects the weekly training schedules over the
// coming eight weeks, subtracts held spots from both booking tables,
// hides full sessions and returns the first four dates per location
// in chronological order.
func (s *BookingService) AvailableSlots(ctx context.Context) ([]domain.Slot, error) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, domain.SlotProjectionDays)

	regCounts, err := s.regRepo.CountBySessions(ctx, from, to)
	if err != nil {
		return nil, err
	}
	lessonCounts, err := s.trialRepo.CountBySessions(ctx, from, to)
	if err != nil {
		return nil, err
	}

	counts := make(map[repositories.SessionKey]int64, len(regCounts)+len(lessonCounts))
	for key, n := range regCounts {
		counts[key] += n
	}
	for key, n := range lessonCounts {
		counts[key] += n
	}

	perLocation := make(map[string]int, len(domain.TrainingSchedules))
	slots := make([]domain.Slot, 0, len(domain.TrainingSchedules)*domain.SlotsPerLocation)

	for i := 0; i < domain.SlotProjectionDays; i++ {
		date := from.AddDate(0, 0, i)
		for _, schedule := range domain.TrainingSchedules {
			if date.Weekday() != schedule.Weekday {
				continue
			}
			if perLocation[schedule.Location] >= domain.SlotsPerLocation {
				continue
			}

			key := repositories.SessionKey{
				Date:     date.Format("2006-01-02"),
				Location: schedule.Location,
			}
			booked := counts[key]
			if booked >= int64(schedule.Capacity) {
				continue
			}

			slots = append(slots, domain.Slot{
				Date:     key.Date,
				Time:     schedule.StartTime,
				EndTime:  schedule.EndTime,
				Location: schedule.Location,
				Address:  schedule.Address,
				DayName:  domain.DayName(date.Weekday()),
				Booked:   booked,
				Capacity: schedule.Capacity,
			})
			perLocation[schedule.Location]++
		}
	}

	return slots, nil
}

// BookPunchSession books a training for a punch card member, deducting
// one punch atomically with the booking.
func (s *BookingService) BookPunchSession(ctx context.Context, userID uint, input *BookTrainingInput) (*PunchBookingResult, error) {
	member, err := s.getMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 1. Only MEMBER accounts on a punch card can use this flow
	if member.User == nil || member.User.AccountType != models.AccountMember ||
		member.MembershipType == nil || *member.MembershipType != models.MembershipPunchCard {
		return nil, domain.ErrPunchCardOnly
	}

	// 2. Punch card must have sessions left
	if member.PunchCardCount <= 0 {
		return nil, domain.ErrNoPunchesLeft
	}

	date, err := parseDate(input.Date)
	if err != nil {
		return nil, err
	}

	lesson := &models.TrialLesson{
		MemberID:      member.ID,
		ScheduledDate: date,
		ScheduledTime: input.Time,
		Location:      input.Location,
		Status:        models.LessonStatusScheduled,
	}

	// 3. Book inside a transaction: deduct punch, check capacity, insert
	remaining := member.PunchCardCount
	err = s.trialRepo.BookSession(ctx, lesson, domain.CapacityFor(input.Location), func(m *models.Member) error {
		if m.PunchCardCount <= 0 {
			return domain.ErrNoPunchesLeft
		}
		m.PunchCardCount--
		remaining = m.PunchCardCount
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Punch booking: member %d on %s at %s (%d punches left)",
		member.ID, input.Date, input.Location, remaining)

	return &PunchBookingResult{
		Lesson:         lesson.ToResponse(),
		PunchCardCount: remaining,
	}, nil
}

// CancelPunchSession cancels a punch card booking and restores the
// punch. Cancellation is only allowed up to four hours before start.
func (s *BookingService) CancelPunchSession(ctx context.Context, userID, lessonID uint) (*PunchBookingResult, error) {
	member, err := s.getMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	remaining := member.PunchCardCount
	err = s.trialRepo.CancelSession(ctx, lessonID, member.ID, func(m *models.Member, l *models.TrialLesson) error {
		if l.MemberID != m.ID {
			return domain.ErrNotOwner
		}
		if l.Status != models.LessonStatusScheduled {
			return domain.ErrNotScheduled
		}
		if !s.withinCutoff(l.ScheduledDate, l.ScheduledTime, domain.CancelCutoffHours) {
			return domain.ErrCancelTooLate
		}

		// Restore punch, capped at card size
		if m.PunchCardCount < domain.PunchCardSize {
			m.PunchCardCount++
		}
		remaining = m.PunchCardCount
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Punch booking cancelled: member %d lesson %d", member.ID, lessonID)

	return &PunchBookingResult{PunchCardCount: remaining}, nil
}

// RegisterForTraining registers a non punch card member for a session.
// Per-session members pay from their credit balance when it covers the
// session price.
func (s *BookingService) RegisterForTraining(ctx context.Context, userID uint, input *BookTrainingInput) (*RegistrationResult, error) {
	member, err := s.getMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Punch card members book through the punch card flow
	if member.MembershipType != nil && *member.MembershipType == models.MembershipPunchCard {
		return nil, domain.ErrPunchCardExcluded
	}

	date, err := parseDate(input.Date)
	if err != nil {
		return nil, err
	}

	reg := &models.TrainingRegistration{
		MemberID:     member.ID,
		TrainingDate: date,
		TrainingTime: input.Time,
		Location:     input.Location,
	}

	perSession := member.MembershipType != nil && *member.MembershipType == models.MembershipPerSession
	var credit *float64

	err = s.regRepo.Register(ctx, reg, domain.CapacityFor(input.Location), func(m *models.Member) error {
		if perSession && m.Credit >= pricing.PricePerSession {
			m.Credit -= pricing.PricePerSession
		}
		if perSession {
			c := m.Credit
			credit = &c
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Training registration: member %d on %s at %s", member.ID, input.Date, input.Location)

	return &RegistrationResult{
		Registration: reg.ToResponse(),
		Credit:       credit,
	}, nil
}

// CancelRegistration removes a registration, refunding the session
// price to per-session members. Only allowed up to four hours before
// start.
func (s *BookingService) CancelRegistration(ctx context.Context, userID, registrationID uint) (*RegistrationResult, error) {
	member, err := s.getMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	perSession := member.MembershipType != nil && *member.MembershipType == models.MembershipPerSession
	var credit *float64

	err = s.regRepo.Unregister(ctx, registrationID, member.ID,
		func(reg *models.TrainingRegistration) error {
			if reg.MemberID != member.ID {
				return domain.ErrNotOwner
			}
			if !s.withinCutoff(reg.TrainingDate, reg.TrainingTime, domain.CancelCutoffHours) {
				return domain.ErrCancelTooLate
			}
			return nil
		},
		func(m *models.Member) error {
			if perSession {
				m.Credit += pricing.PricePerSession
				c := m.Credit
				credit = &c
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Registration cancelled: member %d registration %d", member.ID, registrationID)

	return &RegistrationResult{Credit: credit}, nil
}

// MyRegistrations lists a member's upcoming training registrations
func (s *BookingService) MyRegistrations(ctx context.Context, userID uint) ([]*models.RegistrationResponse, error) {
	member, err := s.getMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	regs, err := s.regRepo.ListByMember(ctx, member.ID, s.now())
	if err != nil {
		return nil, err
	}

	out := make([]*models.RegistrationResponse, 0, len(regs))
	for _, reg := range regs {
		out = append(out, reg.ToResponse())
	}
	return out, nil
}

// MyBookings lists a member's scheduled punch card bookings
func (s *BookingService) MyBookings(ctx context.Context, userID uint) ([]*models.LessonResponse, error) {
	member, err := s.getMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	lessons, err := s.trialRepo.ListScheduledByMember(ctx, member.ID)
	if err != nil {
		return nil, err
	}

	out := make([]*models.LessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		out = append(out, lesson.ToResponse())
	}
	return out, nil
}

// getMember resolves the member profile for a user
func (s *BookingService) getMember(ctx context.Context, userID uint) (*models.Member, error) {
	member, err := s.memberRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// withinCutoff reports whether the session start is still at least
// cutoffHours away.
func (s *BookingService) withinCutoff(date time.Time, startTime string, cutoffHours int) bool {
	start := combineDateTime(date, startTime)
	return start.Sub(s.now()) >= time.Duration(cutoffHours)*time.Hour
}

// parseDate parses a YYYY-MM-DD date in the server's timezone
func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, time.Local)
}

// combineDateTime merges a date with an HH:MM clock time
func combineDateTime(date time.Time, clock string) time.Time {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}
