package services

import (
	"context"
	"errors"
	"time"

	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/models"
	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/repositories"
	"github.com/Goldwhyit/almere-pickleball/internal/core/domain"

	"gorm.io/gorm"
)

// AdminService handles back office operations on members, payments and
// the training planning.
type AdminService struct {
	userRepo    repositories.UserRepository
	memberRepo  repositories.MemberRepository
	regRepo     repositories.RegistrationRepository
	trialRepo   repositories.TrialRepository
	paymentRepo repositories.PaymentRepository
	now         func() time.Time
}

// NewAdminService creates a new admin service
func NewAdminService(
	userRepo repositories.UserRepository,
	memberRepo repositories.MemberRepository,
	regRepo repositories.RegistrationRepository,
	trialRepo repositories.TrialRepository,
	paymentRepo repositories.PaymentRepository,
) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		memberRepo:  memberRepo,
		regRepo:     regRepo,
		trialRepo:   trialRepo,
		paymentRepo: paymentRepo,
		now:         time.Now,
	}
}

// AdminMemberView is the member row shown in the back office
type AdminMemberView struct {
	ID               uint    `json:"id"`
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	Email            string  `json:"email"`
	Phone            *string `json:"phone"`
	Street           *string `json:"street"`
	HouseNumber      *string `json:"house_number"`
	PostalCode       *string `json:"postal_code"`
	City             *string `json:"city"`
	MembershipType   *string `json:"membership_type"`
	MembershipStatus string  `json:"membership_status"`
	PaymentStatus    string  `json:"payment_status"`
	Role             string  `json:"role"`
}

// UpdateMemberInput carries partial member updates from the back office
type UpdateMemberInput struct {
	Email          *string    `json:"email" validate:"omitempty,email"`
	FirstName      *string    `json:"first_name" validate:"omitempty,max=100"`
	LastName       *string    `json:"last_name" validate:"omitempty,max=100"`
	Phone          *string    `json:"phone" validate:"omitempty,max=30"`
	Street         *string    `json:"street" validate:"omitempty,max=100"`
	HouseNumber    *string    `json:"house_number" validate:"omitempty,max=10"`
	PostalCode     *string    `json:"postal_code" validate:"omitempty,max=10"`
	City           *string    `json:"city" validate:"omitempty,max=100"`
	MembershipType *string    `json:"membership_type" validate:"omitempty,oneof=YEARLY_UPFRONT YEARLY MONTHLY PUNCH_CARD PER_SESSION"`
	PaymentStatus  *string    `json:"payment_status" validate:"omitempty,oneof=PENDING PAID UNPAID"`
	Credit         *float64   `json:"credit" validate:"omitempty,gte=0"`
	PunchCardCount *int       `json:"punch_card_count" validate:"omitempty,gte=0,lte=10"`
	StartDate      *time.Time `json:"membership_start_date"`
	ExpiryDate     *time.Time `json:"membership_expiry_date"`
}

// mapMember builds the back office view of a member
func mapMember(member *models.Member) *AdminMemberView {
	accountType := ""
	email := ""
	if member.User != nil {
		accountType = member.User.AccountType
		email = member.User.Email
	}

	status := "PENDING"
	if accountType == models.AccountMember || accountType == models.AccountAdmin {
		status = "APPROVED"
	}
	paymentStatus := models.PaymentStatusUnpaid
	if member.PaymentStatus == models.PaymentStatusPaid {
		paymentStatus = models.PaymentStatusPaid
	}
	role := "MEMBER"
	if accountType == models.AccountAdmin {
		role = "ADMIN"
	}

	return &AdminMemberView{
		ID:               member.ID,
		FirstName:        member.FirstName,
		LastName:         member.LastName,
		Email:            email,
		Phone:            member.Phone,
		Street:           member.Street,
		HouseNumber:      member.HouseNumber,
		PostalCode:       member.PostalCode,
		City:             member.City,
		MembershipType:   member.MembershipType,
		MembershipStatus: status,
		PaymentStatus:    paymentStatus,
		Role:             role,
	}
}

// ListMembers lists all members for the back office, newest first
func (s *AdminService) ListMembers(ctx context.Context, offset, limit int) ([]*AdminMemberView, int64, error) {
	members, total, err := s.memberRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*AdminMemberView, 0, len(members))
	for _, member := range members {
		out = append(out, mapMember(member))
	}
	return out, total, nil
}

// UpdateMember applies a partial update to a member and, when changed,
// the account email. Both rows update in one transaction.
func (s *AdminService) UpdateMember(ctx context.Context, memberID uint, input *UpdateMemberInput) (*AdminMemberView, error) {
	member, err := s.getMemberByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && member.User != nil && *input.Email != member.User.Email {
		member.User.Email = *input.Email
	}
	if input.FirstName != nil {
		member.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		member.LastName = *input.LastName
	}
	if input.Phone != nil {
		member.Phone = input.Phone
	}
	if input.Street != nil {
		member.Street = input.Street
	}
	if input.HouseNumber != nil {
		member.HouseNumber = input.HouseNumber
	}
	if input.PostalCode != nil {
		member.PostalCode = input.PostalCode
	}
	if input.City != nil {
		member.City = input.City
	}
	if input.MembershipType != nil {
		member.MembershipType = input.MembershipType
	}
	if input.PaymentStatus != nil {
		member.PaymentStatus = *input.PaymentStatus
	}
	if input.Credit != nil {
		member.Credit = *input.Credit
	}
	if input.PunchCardCount != nil {
		member.PunchCardCount = *input.PunchCardCount
	}
	if input.StartDate != nil {
		member.MembershipStartDate = input.StartDate
	}
	if input.ExpiryDate != nil {
		member.MembershipExpiryDate = input.ExpiryDate
	}

	if err := s.memberRepo.UpdateWithUser(ctx, member, member.User); err != nil {
		return nil, err
	}
	return mapMember(member), nil
}

// SetMembershipStatus approves or resets a membership application.
// Admins cannot downgrade their own account.
func (s *AdminService) SetMembershipStatus(ctx context.Context, memberID, actingUserID uint, approved bool) (*AdminMemberView, error) {
	member, err := s.getMemberByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if member.UserID == actingUserID && member.User.AccountType == models.AccountAdmin && !approved {
		return nil, domain.ErrCannotDowngradeSelf
	}

	if approved {
		now := s.now()
		member.User.AccountType = models.AccountMember
		member.ConversionDate = &now
		member.MembershipStartDate = &now
	} else {
		member.User.AccountType = models.AccountPending
	}

	if err := s.memberRepo.UpdateWithUser(ctx, member, member.User); err != nil {
		return nil, err
	}
	return mapMember(member), nil
}

// ToggleAdmin flips a member between ADMIN and MEMBER. Admins cannot
// remove their own admin role.
func (s *AdminService) ToggleAdmin(ctx context.Context, memberID, actingUserID uint) (*AdminMemberView, error) {
	member, err := s.getMemberByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if member.UserID == actingUserID && member.User.AccountType == models.AccountAdmin {
		return nil, domain.ErrCannotDowngradeSelf
	}

	if member.User.AccountType == models.AccountAdmin {
		member.User.AccountType = models.AccountMember
	} else {
		member.User.AccountType = models.AccountAdmin
	}

	if err := s.memberRepo.UpdateWithUser(ctx, member, member.User); err != nil {
		return nil, err
	}
	return mapMember(member), nil
}

// MarkPaid marks a member's subscription paid. Monthly members get a
// next due date one month out.
func (s *AdminService) MarkPaid(ctx context.Context, memberID uint) (*AdminMemberView, error) {
	member, err := s.getMemberByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	member.PaymentStatus = models.PaymentStatusPaid
	member.LastPaymentDate = &now
	if member.MembershipType != nil && *member.MembershipType == models.MembershipMonthly {
		due := now.AddDate(0, 1, 0)
		member.NextPaymentDue = &due
	} else {
		member.NextPaymentDue = nil
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return mapMember(member), nil
}

// DeleteMember removes a member and their account
func (s *AdminService) DeleteMember(ctx context.Context, memberID uint) error {
	member, err := s.getMemberByID(ctx, memberID)
	if err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, member.UserID)
}

// ============================================================
// Dashboards
// ============================================================

// PlayDayPlayer is one registered player on a play day
type PlayDayPlayer struct {
	MemberID       uint    `json:"member_id"`
	Name           string  `json:"name"`
	Email          string  `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	MembershipType *string `json:"membership_type,omitempty"`
	PaymentStatus  string  `json:"payment_status,omitempty"`
	BookingType    string  `json:"booking_type,omitempty"`
}

// PlayDay groups registrations for one session
type PlayDay struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	Time          string          `json:"time"`
	Location      string          `json:"location"`
	Registrations []PlayDayPlayer `json:"registrations"`
}

// DashboardOverview is the admin landing page payload
type DashboardOverview struct {
	TotalMembers    int64                          `json:"total_members"`
	PendingMembers  int64                          `json:"pending_members"`
	OpenPayments    int64                          `json:"open_payments"`
	PlayDays        []PlayDay                      `json:"play_days"`
	MyRegistrations []*models.RegistrationResponse `json:"my_registrations"`
}

// Overview builds the admin dashboard: headline counts, the next play
// days with approved paid players, and the admin's own registrations.
func (s *AdminService) Overview(ctx context.Context, adminUserID uint) (*DashboardOverview, error) {
	members, _, err := s.memberRepo.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}

	overview := &DashboardOverview{
		TotalMembers: int64(len(members)),
		PlayDays:     []PlayDay{},
	}
	for _, member := range members {
		accountType := ""
		if member.User != nil {
			accountType = member.User.AccountType
		}
		switch {
		case accountType == models.AccountTrial,
			accountType == models.AccountTrialExpired,
			member.MembershipType == nil:
			overview.PendingMembers++
		}
		if (accountType == models.AccountMember || accountType == models.AccountAdmin) &&
			member.PaymentStatus != models.PaymentStatusPaid {
			overview.OpenPayments++
		}
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	regs, err := s.regRepo.ListByRange(ctx, today, today.AddDate(0, 0, 90))
	if err != nil {
		return nil, err
	}

	playDayMap := make(map[string]*PlayDay)
	order := []string{}
	for _, reg := range regs {
		member := reg.Member
		if member == nil || member.User == nil {
			continue
		}
		approved := member.User.AccountType == models.AccountMember ||
			member.User.AccountType == models.AccountAdmin
		if !approved || member.PaymentStatus != models.PaymentStatusPaid {
			continue
		}

		dateStr := reg.TrainingDate.Format("2006-01-02")
		key := dateStr + "|" + reg.TrainingTime + "|" + reg.Location
		day, ok := playDayMap[key]
		if !ok {
			day = &PlayDay{
				ID:       key,
				Date:     dateStr,
				Time:     reg.TrainingTime,
				Location: reg.Location,
			}
			playDayMap[key] = day
			order = append(order, key)
		}
		day.Registrations = append(day.Registrations, PlayDayPlayer{
			MemberID:       member.ID,
			Name:           member.FullName(),
			MembershipType: member.MembershipType,
		})
	}

	for i, key := range order {
		if i >= 4 {
			break
		}
		overview.PlayDays = append(overview.PlayDays, *playDayMap[key])
	}

	adminMember, err := s.memberRepo.GetByUserID(ctx, adminUserID)
	if err == nil {
		myRegs, err := s.regRepo.ListByMember(ctx, adminMember.ID, today)
		if err != nil {
			return nil, err
		}
		for i, reg := range myRegs {
			if i >= 4 {
				break
			}
			overview.MyRegistrations = append(overview.MyRegistrations, reg.ToResponse())
		}
	}

	return overview, nil
}

// SessionGroup groups all bookings for one session in the planning view
type SessionGroup struct {
	Date               string                     `json:"date"`
	Time               string                     `json:"time"`
	Location           string                     `json:"location"`
	TotalRegistrations int                        `json:"total_registrations"`
	CapacityLeft       int                        `json:"capacity_left"`
	ByMembershipType   map[string][]PlayDayPlayer `json:"by_membership_type"`
	ByPaymentStatus    map[string]int             `json:"by_payment_status"`
}

// TrainingPlanning merges both booking tables into per-session groups
// for the past 30 and coming 90 days.
func (s *AdminService) TrainingPlanning(ctx context.Context) ([]*SessionGroup, int, error) {
	now := s.now()
	from := now.AddDate(0, 0, -30)
	to := now.AddDate(0, 0, 90)

	regs, err := s.regRepo.ListByRange(ctx, from, to)
	if err != nil {
		return nil, 0, err
	}
	lessons, err := s.trialRepo.ListByRange(ctx, from, to)
	if err != nil {
		return nil, 0, err
	}

	groups := make(map[string]*SessionGroup)
	order := []string{}

	group := func(date, timeStr, location string) *SessionGroup {
		key := date + "|" + timeStr + "|" + location
		g, ok := groups[key]
		if !ok {
			g = &SessionGroup{
				Date:             date,
				Time:             timeStr,
				Location:         location,
				CapacityLeft:     domain.CapacityFor(location),
				ByMembershipType: map[string][]PlayDayPlayer{},
				ByPaymentStatus:  map[string]int{models.PaymentStatusPaid: 0, models.PaymentStatusUnpaid: 0},
			}
			groups[key] = g
			order = append(order, key)
		}
		return g
	}

	add := func(g *SessionGroup, member *models.Member, bucket, bookingType string) {
		paymentStatus := models.PaymentStatusUnpaid
		if member.PaymentStatus == models.PaymentStatusPaid {
			paymentStatus = models.PaymentStatusPaid
		}
		email := ""
		if member.User != nil {
			email = member.User.Email
		}

		g.TotalRegistrations++
		left := domain.CapacityFor(g.Location) - g.TotalRegistrations
		if left < 0 {
			left = 0
		}
		g.CapacityLeft = left
		g.ByPaymentStatus[paymentStatus]++
		g.ByMembershipType[bucket] = append(g.ByMembershipType[bucket], PlayDayPlayer{
			MemberID:      member.ID,
			Name:          member.FullName(),
			Email:         email,
			Phone:         member.Phone,
			PaymentStatus: paymentStatus,
			BookingType:   bookingType,
		})
	}

	for _, reg := range regs {
		if reg.Member == nil {
			continue
		}
		g := group(reg.TrainingDate.Format("2006-01-02"), reg.TrainingTime, reg.Location)
		bucket := "UNKNOWN"
		if reg.Member.MembershipType != nil {
			bucket = *reg.Member.MembershipType
		}
		add(g, reg.Member, bucket, "REGISTRATION")
	}

	for _, lesson := range lessons {
		if lesson.Member == nil {
			continue
		}
		g := group(lesson.ScheduledDate.Format("2006-01-02"), lesson.ScheduledTime, lesson.Location)
		add(g, lesson.Member, "TRIAL", "TRIAL_LESSON")
	}

	out := make([]*SessionGroup, 0, len(order))
	for _, key := range order {
		out = append(out, groups[key])
	}
	return out, len(regs) + len(lessons), nil
}

// PaymentBucket splits members into paid and unpaid for one type
type PaymentBucket struct {
	Paid   []PlayDayPlayer `json:"paid"`
	Unpaid []PlayDayPlayer `json:"unpaid"`
}

// PaymentsOverview groups paying members by membership type
type PaymentsOverview struct {
	TotalMembers     int                       `json:"total_members"`
	TotalPaid        int                       `json:"total_paid"`
	TotalUnpaid      int                       `json:"total_unpaid"`
	ByMembershipType map[string]*PaymentBucket `json:"by_membership_type"`
}

// Payments builds the contribution overview per membership type
func (s *AdminService) Payments(ctx context.Context) (*PaymentsOverview, error) {
	members, err := s.memberRepo.ListWithMembership(ctx)
	if err != nil {
		return nil, err
	}

	overview := &PaymentsOverview{
		TotalMembers: len(members),
		ByMembershipType: map[string]*PaymentBucket{
			models.MembershipYearlyUpfront: {Paid: []PlayDayPlayer{}, Unpaid: []PlayDayPlayer{}},
			models.MembershipYearly:        {Paid: []PlayDayPlayer{}, Unpaid: []PlayDayPlayer{}},
			models.MembershipMonthly:       {Paid: []PlayDayPlayer{}, Unpaid: []PlayDayPlayer{}},
			models.MembershipPerSession:    {Paid: []PlayDayPlayer{}, Unpaid: []PlayDayPlayer{}},
			models.MembershipPunchCard:     {Paid: []PlayDayPlayer{}, Unpaid: []PlayDayPlayer{}},
		},
	}

	for _, member := range members {
		isPaid := member.PaymentStatus == models.PaymentStatusPaid
		if isPaid {
			overview.TotalPaid++
		} else {
			overview.TotalUnpaid++
		}

		if member.MembershipType == nil {
			continue
		}
		bucket, ok := overview.ByMembershipType[*member.MembershipType]
		if !ok {
			continue
		}

		email := ""
		if member.User != nil {
			email = member.User.Email
		}
		entry := PlayDayPlayer{
			MemberID:      member.ID,
			Name:          member.FullName(),
			Email:         email,
			Phone:         member.Phone,
			PaymentStatus: member.PaymentStatus,
		}
		if isPaid {
			bucket.Paid = append(bucket.Paid, entry)
		} else {
			bucket.Unpaid = append(bucket.Unpaid, entry)
		}
	}

	return overview, nil
}

// PaymentHistory lists raw payment rows, optionally filtered by status
func (s *AdminService) PaymentHistory(ctx context.Context, status string, offset, limit int) ([]*models.PaymentResponse, int64, error) {
	payments, total, err := s.paymentRepo.List(ctx, status, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*models.PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		out = append(out, payment.ToResponse())
	}
	return out, total, nil
}

// DashboardStats is the KPI payload for the admin dashboard
type DashboardStats struct {
	TotalMembers      int `json:"total_members"`
	PendingMembers    int `json:"pending_members"`
	OpenPayments      int `json:"open_payments"`
	TotalTrialMembers int `json:"total_trial_members"`
	ConvertedToMember int `json:"converted_to_member"`
	PaymentDetails    struct {
		TotalWithSubscription int `json:"total_with_subscription"`
		Paid                  int `json:"paid"`
		Unpaid                int `json:"unpaid"`
	} `json:"payment_details"`
}

// Stats computes membership KPIs
func (s *AdminService) Stats(ctx context.Context) (*DashboardStats, error) {
	members, _, err := s.memberRepo.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{}
	for _, member := range members {
		accountType := ""
		if member.User != nil {
			accountType = member.User.AccountType
		}

		isFull := accountType == models.AccountMember || accountType == models.AccountAdmin
		if isFull {
			stats.TotalMembers++
		}
		if accountType == models.AccountPending {
			stats.PendingMembers++
		}
		if accountType == models.AccountTrial || accountType == models.AccountTrialExpired {
			stats.TotalTrialMembers++
		}
		if accountType == models.AccountMember {
			stats.ConvertedToMember++
		}

		if isFull && member.MembershipType != nil {
			stats.PaymentDetails.TotalWithSubscription++
			if member.PaymentStatus == models.PaymentStatusPaid {
				stats.PaymentDetails.Paid++
			} else {
				stats.PaymentDetails.Unpaid++
			}
		}
	}
	stats.OpenPayments = stats.PaymentDetails.Unpaid

	return stats, nil
}

// getMemberByID resolves a member by ID
func (s *AdminService) getMemberByID(ctx context.Context, memberID uint) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}
