package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/models"
	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/repositories"
	"github.com/Goldwhyit/almere-pickleball/internal/core/domain"
	"github.com/Goldwhyit/almere-pickleball/internal/pkg/password"
	"github.com/Goldwhyit/almere-pickleball/internal/pkg/pricing"

	"gorm.io/gorm"
)

// MembershipService handles membership applications, pricing and
// payment bookkeeping.
type MembershipService struct {
	userRepo    repositories.UserRepository
	memberRepo  repositories.MemberRepository
	paymentRepo repositories.PaymentRepository
	authService *AuthService
	now         func() time.Time
}

// NewMembershipService creates a new membership service
func NewMembershipService(
	userRepo repositories.UserRepository,
	memberRepo repositories.MemberRepository,
	paymentRepo repositories.PaymentRepository,
	authService *AuthService,
) *MembershipService {
	return &MembershipService{
		userRepo:    userRepo,
		memberRepo:  memberRepo,
		paymentRepo: paymentRepo,
		authService: authService,
		now:         time.Now,
	}
}

// ApplyInput represents a membership application
type ApplyInput struct {
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required,min=8"`
	FirstName         string `json:"first_name" validate:"required,max=100"`
	LastName          string `json:"last_name" validate:"required,max=100"`
	Phone             string `json:"phone" validate:"omitempty,max=30"`
	Street            string `json:"street" validate:"omitempty,max=100"`
	HouseNumber       string `json:"house_number" validate:"omitempty,max=10"`
	PostalCode        string `json:"postal_code" validate:"omitempty,max=10"`
	City              string `json:"city" validate:"omitempty,max=100"`
	EmergencyName     string `json:"emergency_name" validate:"omitempty,max=100"`
	EmergencyPhone    string `json:"emergency_phone" validate:"omitempty,max=30"`
	EmergencyRelation string `json:"emergency_relation" validate:"omitempty,max=50"`
	HasPlayedBefore   *bool  `json:"has_played_before"`
	ExperienceLevel   string `json:"experience_level" validate:"omitempty,max=50"`
	OtherSports       string `json:"other_sports" validate:"omitempty,max=200"`
	MembershipType    string `json:"membership_type" validate:"required,oneof=YEARLY_UPFRONT YEARLY MONTHLY PUNCH_CARD PER_SESSION"`
}

// SessionPaymentInput represents a per-session payment request
type SessionPaymentInput struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"required,max=255"`
}

// ApplyResult is returned after a membership application
type ApplyResult struct {
	User            *models.UserResponse    `json:"user"`
	AccessToken     string                  `json:"access_token"`
	RefreshToken    string                  `json:"refresh_token"`
	Payment         *models.PaymentResponse `json:"payment,omitempty"`
	PricingInfo     *pricing.Quote          `json:"pricing_info,omitempty"`
	RequiresPayment bool                    `json:"requires_payment"`
}

// PaymentStatusInfo summarizes a member's payment state
type PaymentStatusInfo struct {
	MembershipType       *string                   `json:"membership_type"`
	PaymentStatus        string                    `json:"payment_status"`
	MembershipExpiryDate *time.Time                `json:"membership_expiry_date"`
	NextPaymentDue       *time.Time                `json:"next_payment_due"`
	IsExpired            bool                      `json:"is_expired"`
	DaysUntilExpiry      *int                      `json:"days_until_expiry"`
	RecentPayments       []*models.PaymentResponse `json:"recent_payments"`
}

// MonthlyCheck is the answer to "does this monthly member owe money"
type MonthlyCheck struct {
	RequiresPayment bool    `json:"requires_payment"`
	Amount          float64 `json:"amount"`
	Reason          string  `json:"reason,omitempty"`
}

// MembershipTypeInfo describes one published membership option
type MembershipTypeInfo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Features []string `json:"features"`
}

// Apply creates a member account straight from the public application
// form, together with the initial payment record. Monthly memberships
// are priced pro rata for the remaining training days of the month.
func (s *MembershipService) Apply(ctx context.Context, input *ApplyInput) (*ApplyResult, error) {
	// 1. Email must be free
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailExists
	}

	if !password.Validate(input.Password) {
		return nil, domain.ErrWeakPassword
	}
	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 2. Create user and member
	now := s.now()
	punchCount := 0
	if input.MembershipType == models.MembershipPunchCard {
		punchCount = domain.PunchCardSize
	}

	user := &models.User{
		Email:       input.Email,
		Password:    hashed,
		AccountType: models.AccountMember,
		IsActive:    true,
	}
	member := &models.Member{
		FirstName:           input.FirstName,
		LastName:            input.LastName,
		Phone:               optional(input.Phone),
		Street:              optional(input.Street),
		HouseNumber:         optional(input.HouseNumber),
		PostalCode:          optional(input.PostalCode),
		City:                optional(input.City),
		EmergencyName:       optional(input.EmergencyName),
		EmergencyPhone:      optional(input.EmergencyPhone),
		EmergencyRelation:   optional(input.EmergencyRelation),
		HasPlayedBefore:     input.HasPlayedBefore,
		ExperienceLevel:     optional(input.ExperienceLevel),
		OtherSports:         optional(input.OtherSports),
		MembershipType:      &input.MembershipType,
		PunchCardCount:      punchCount,
		PaymentStatus:       models.PaymentStatusPending,
		MembershipStartDate: &now,
	}

	if err := s.memberRepo.CreateWithUser(ctx, member, user); err != nil {
		return nil, err
	}

	// 3. Determine the first payment
	amount, paymentType, description, expiry, quote := s.initialPayment(input, now)

	var paymentResp *models.PaymentResponse
	if amount > 0 {
		payment := &models.Payment{
			MemberID:    member.ID,
			Amount:      amount,
			PaymentType: paymentType,
			Description: description,
			Status:      models.PaymentStatusPending,
			PaymentURL:  fmt.Sprintf("https://example.com/pay/%d", member.ID),
			ExpiresAt:   expiry,
		}
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return nil, err
		}
		paymentResp = payment.ToResponse()

		member.MembershipExpiryDate = expiry
		member.NextPaymentDue = expiry
		if err := s.memberRepo.Update(ctx, member); err != nil {
			return nil, err
		}
	} else if quote != nil {
		// Monthly application with no chargeable training days left:
		// mark the month paid so we don't ask again
		monthKey := pricing.MonthKey(now)
		member.MembershipExpiryDate = expiry
		member.NextPaymentDue = expiry
		member.LastPaidMonth = &monthKey
		member.PaymentStatus = models.PaymentStatusPaid
		if err := s.memberRepo.Update(ctx, member); err != nil {
			return nil, err
		}
	}

	// 4. Issue tokens for immediate login
	tokens, err := s.authService.IssueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	user.Member = member

	log.Printf("✅ Membership application: %s (%s)", user.Email, input.MembershipType)

	return &ApplyResult{
		User:            user.ToResponse(),
		AccessToken:     tokens.AccessToken,
		RefreshToken:    tokens.RefreshToken,
		Payment:         paymentResp,
		PricingInfo:     quote,
		RequiresPayment: amount > 0,
	}, nil
}

// initialPayment works out the first invoice for a new membership
func (s *MembershipService) initialPayment(input *ApplyInput, now time.Time) (float64, string, string, *time.Time, *pricing.Quote) {
	fullName := input.FirstName + " " + input.LastName

	switch input.MembershipType {
	case models.MembershipYearlyUpfront:
		expiry := now.AddDate(1, 0, 0)
		return pricing.YearlyUpfrontPrice, models.PaymentTypeYearly,
			"Jaarlidmaatschap voor " + fullName, &expiry, nil
	case models.MembershipYearly:
		expiry := now.AddDate(1, 0, 0)
		return pricing.YearlyPrice, models.PaymentTypeYearly,
			"Jaarlidmaatschap voor " + fullName, &expiry, nil
	case models.MembershipMonthly:
		quote := pricing.MonthlyProRata(now)
		expiry := now.AddDate(0, 1, 0)
		description := fmt.Sprintf("Maandlidmaatschap voor %s - %s", fullName, quote.Reason)
		return quote.Price, models.PaymentTypeMonthly, description, &expiry, &quote
	case models.MembershipPunchCard:
		expiry := now.AddDate(0, 6, 0)
		return pricing.PunchCardPrice, models.PaymentTypePunchCard,
			fmt.Sprintf("Strippenkaart (%d beurten) voor %s", domain.PunchCardSize, fullName), &expiry, nil
	default: // PER_SESSION
		return 0, models.PaymentTypePerSession, "Betaal per sessie", nil, nil
	}
}

// CreateSessionPayment creates a pending payment for a per-session booking
func (s *MembershipService) CreateSessionPayment(ctx context.Context, userID uint, input *SessionPaymentInput) (*models.PaymentResponse, error) {
	member, err := s.getMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	if member.MembershipType == nil || *member.MembershipType != models.MembershipPerSession {
		return nil, domain.ErrNotPerSession
	}

	payment := &models.Payment{
		MemberID:    member.ID,
		Amount:      input.Amount,
		PaymentType: models.PaymentTypePerSession,
		Description: input.Description,
		Status:      models.PaymentStatusPending,
		PaymentURL:  fmt.Sprintf("https://example.com/pay-session/%d/%d", member.ID, s.now().UnixMilli()),
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return payment.ToResponse(), nil
}

// PaymentStatus returns a member's payment state with recent payments
func (s *MembershipService) PaymentStatus(ctx context.Context, userID uint) (*PaymentStatusInfo, error) {
	member, err := s.getMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.ListByMember(ctx, member.ID, 5)
	if err != nil {
		return nil, err
	}
	recent := make([]*models.PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		recent = append(recent, payment.ToResponse())
	}

	info := &PaymentStatusInfo{
		MembershipType:       member.MembershipType,
		PaymentStatus:        member.PaymentStatus,
		MembershipExpiryDate: member.MembershipExpiryDate,
		NextPaymentDue:       member.NextPaymentDue,
		RecentPayments:       recent,
	}

	if member.MembershipExpiryDate != nil {
		now := s.now()
		info.IsExpired = member.MembershipExpiryDate.Before(now)
		days := int(math.Ceil(member.MembershipExpiryDate.Sub(now).Hours() / 24))
		info.DaysUntilExpiry = &days
	}

	return info, nil
}

// ConfirmMonthlyPayment marks the current month paid for a monthly member
func (s *MembershipService) ConfirmMonthlyPayment(ctx context.Context, userID uint) (*models.MemberResponse, error) {
	member, err := s.getMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	if member.MembershipType == nil || *member.MembershipType != models.MembershipMonthly {
		return nil, domain.ErrNotMonthlyMember
	}

	now := s.now()
	monthKey := pricing.MonthKey(now)
	member.LastPaidMonth = &monthKey
	member.PaymentStatus = models.PaymentStatusPaid
	member.LastPaymentDate = &now

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}

	log.Printf("✅ Monthly payment confirmed: member %d (%s)", member.ID, monthKey)
	return member.ToResponse(), nil
}

// CheckMonthlyPayment reports whether a monthly member owes for the
// current month, and how much given the remaining training days.
func (s *MembershipService) CheckMonthlyPayment(ctx context.Context, userID uint) (*MonthlyCheck, error) {
	member, err := s.getMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	if member.MembershipType == nil || *member.MembershipType != models.MembershipMonthly {
		return &MonthlyCheck{}, nil
	}

	now := s.now()
	lastPaid := ""
	if member.LastPaidMonth != nil {
		lastPaid = *member.LastPaidMonth
	}
	if pricing.PaidForMonth(lastPaid, now) {
		return &MonthlyCheck{}, nil
	}

	quote := pricing.MonthlyProRata(now)
	return &MonthlyCheck{
		RequiresPayment: quote.ShouldCharge,
		Amount:          quote.Price,
		Reason:          quote.Reason,
	}, nil
}

// MembershipTypes returns the published membership options
func (s *MembershipService) MembershipTypes() []MembershipTypeInfo {
	return []MembershipTypeInfo{
		{
			ID:       models.MembershipYearlyUpfront,
			Name:     "Jaarlidmaatschap ineens",
			Price:    "€168 ineens (10% korting)",
			Features: []string{"Betaal per jaar", "10% korting", "Club events inbegrepen"},
		},
		{
			ID:       models.MembershipYearly,
			Name:     "Jaarlidmaatschap",
			Price:    "€187/jaar (≈ €15,58/maand)",
			Features: []string{"Automatische incasso", "Onbeperkt spelen", "Community & events"},
		},
		{
			ID:       models.MembershipMonthly,
			Name:     "Maandlidmaatschap",
			Price:    "€34,00/maand (prorationed)",
			Features: []string{"Maandelijks opzegbaar", "Onbeperkt spelen", "Pro-rata eerste maand"},
		},
		{
			ID:       models.MembershipPerSession,
			Name:     "Per keer",
			Price:    "€8,50 per speeldag",
			Features: []string{"Betaal per speeldag", "Ideaal voor flexibiliteit"},
		},
		{
			ID:       models.MembershipPunchCard,
			Name:     "Strippenkaart",
			Price:    "€67,50 voor 10 beurten",
			Features: []string{"6 maanden geldig", "1x per week wijzigbaar"},
		},
	}
}

// getMember resolves the member profile for a user
func (s *MembershipService) getMember(ctx context.Context, userID uint) (*models.Member, error) {
	member, err := s.memberRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}
