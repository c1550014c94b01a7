package services

import (
	"context"
	"testing"
	"time"

	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/models"
	"github.com/Goldwhyit/almere-pickleball/internal/config"
	"github.com/Goldwhyit/almere-pickleball/internal/core/domain"
	"github.com/Goldwhyit/almere-pickleball/internal/pkg/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMembershipService(s *fakeStore) *MembershipService {
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "access-secret",
			RefreshSecret:    "refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
	auth := NewAuthService(&fakeUserRepo{s}, &fakeTokenRepo{s}, &fakeMemberRepo{s}, cfg)
	svc := NewMembershipService(&fakeUserRepo{s}, &fakeMemberRepo{s}, &fakePaymentRepo{s}, auth)
	svc.now = func() time.Time { return testClock }
	return svc
}

func applyInput(membershipType string) *ApplyInput {
	return &ApplyInput{
		Email:          "nieuw@example.com",
		Password:       "welkom-op-de-baan",
		FirstName:      "Sanne",
		LastName:       "Bakker",
		MembershipType: membershipType,
	}
}

func TestMembershipApply(t *testing.T) {
	ctx := context.Background()

	t.Run("yearly upfront charges the discounted year at once", func(t *testing.T) {
		s := newFakeStore()
		svc := newMembershipService(s)

		result, err := svc.Apply(ctx, applyInput(models.MembershipYearlyUpfront))
		require.NoError(t, err)
		assert.True(t, result.RequiresPayment)
		require.NotNil(t, result.Payment)
		assert.InDelta(t, pricing.YearlyUpfrontPrice, result.Payment.Amount, 0.001)
		assert.Equal(t, models.AccountMember, result.User.AccountType)

		member, err := (&fakeMemberRepo{s}).GetByUserID(ctx, result.User.ID)
		require.NoError(t, err)
		require.NotNil(t, member.MembershipExpiryDate)
		assert.Equal(t, testClock.AddDate(1, 0, 0), *member.MembershipExpiryDate)
	})

	t.Run("yearly charges the monthly-installment year price", func(t *testing.T) {
		s := newFakeStore()
		svc := newMembershipService(s)

		result, err := svc.Apply(ctx, applyInput(models.MembershipYearly))
		require.NoError(t, err)
		require.NotNil(t, result.Payment)
		assert.InDelta(t, pricing.YearlyPrice, result.Payment.Amount, 0.001)
	})

	t.Run("monthly with no training days left defers to next month", func(t *testing.T) {
		// 31 August 2026 is a Monday and the last day of the month, so
		// no Tuesday or Thursday sessions remain.
		s := newFakeStore()
		svc := newMembershipService(s)

		result, err := svc.Apply(ctx, applyInput(models.MembershipMonthly))
		require.NoError(t, err)
		assert.False(t, result.RequiresPayment)
		assert.Nil(t, result.Payment)
		require.NotNil(t, result.PricingInfo)
		assert.False(t, result.PricingInfo.ShouldCharge)

		member, err := (&fakeMemberRepo{s}).GetByUserID(ctx, result.User.ID)
		require.NoError(t, err)
		require.NotNil(t, member.LastPaidMonth)
		assert.Equal(t, "2026-08", *member.LastPaidMonth)
		assert.Equal(t, models.PaymentStatusPaid, member.PaymentStatus)
	})

	t.Run("monthly mid-month charges the full month price", func(t *testing.T) {
		s := newFakeStore()
		svc := newMembershipService(s)
		// Monday 3 August 2026: eight training days remain in August
		svc.now = func() time.Time {
			return time.Date(2026, time.August, 3, 10, 0, 0, 0, time.Local)
		}

		result, err := svc.Apply(ctx, applyInput(models.MembershipMonthly))
		require.NoError(t, err)
		assert.True(t, result.RequiresPayment)
		require.NotNil(t, result.Payment)
		assert.InDelta(t, pricing.FullMonthPrice, result.Payment.Amount, 0.001)
		require.NotNil(t, result.PricingInfo)
		assert.Equal(t, 8, result.PricingInfo.RemainingDays)
	})

	t.Run("punch card starts with ten punches and six months validity", func(t *testing.T) {
		s := newFakeStore()
		svc := newMembershipService(s)

		result, err := svc.Apply(ctx, applyInput(models.MembershipPunchCard))
		require.NoError(t, err)
		require.NotNil(t, result.Payment)
		assert.InDelta(t, pricing.PunchCardPrice, result.Payment.Amount, 0.001)

		member, err := (&fakeMemberRepo{s}).GetByUserID(ctx, result.User.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PunchCardSize, member.PunchCardCount)
		require.NotNil(t, member.MembershipExpiryDate)
		assert.Equal(t, testClock.AddDate(0, 6, 0), *member.MembershipExpiryDate)
	})

	t.Run("per session requires no upfront payment", func(t *testing.T) {
		s := newFakeStore()
		svc := newMembershipService(s)

		result, err := svc.Apply(ctx, applyInput(models.MembershipPerSession))
		require.NoError(t, err)
		assert.False(t, result.RequiresPayment)
		assert.Nil(t, result.Payment)
		assert.Empty(t, s.payments)
	})

	t.Run("rejects an email that is already in use", func(t *testing.T) {
		s := newFakeStore()
		svc := newMembershipService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipYearly))
		member.User.Email = "nieuw@example.com"

		_, err := svc.Apply(ctx, applyInput(models.MembershipYearly))
		assert.ErrorIs(t, err, domain.ErrEmailExists)
	})
}

func TestSessionPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending payment for a per-session member", func(t *testing.T) {
		s := newFakeStore()
		svc := newMembershipService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipPerSession))

		resp, err := svc.CreateSessionPayment(ctx, member.UserID, &SessionPaymentInput{
			Amount:      pricing.PricePerSession,
			Description: "Speeldag dinsdag",
		})
		require.NoError(t, err)
		assert.InDelta(t, pricing.PricePerSession, resp.Amount, 0.001)
		assert.Equal(t, models.PaymentStatusPending, resp.Status)
	})

	t.Run("rejects other membership types", func(t *testing.T) {
		s := newFakeStore()
		svc := newMembershipService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipMonthly))

		_, err := svc.CreateSessionPayment(ctx, member.UserID, &SessionPaymentInput{
			Amount:      pricing.PricePerSession,
			Description: "Speeldag dinsdag",
		})
		assert.ErrorIs(t, err, domain.ErrNotPerSession)
	})
}

func TestMonthlyPaymentCycle(t *testing.T) {
	ctx := context.Background()

	t.Run("check reports the amount due for an unpaid month", func(t *testing.T) {
		s := newFakeStore()
		svc := newMembershipService(s)
		svc.now = func() time.Time {
			return time.Date(2026, time.August, 3, 10, 0, 0, 0, time.Local)
		}
		member := s.addMember(models.AccountMember, strPtr(models.MembershipMonthly))
		lastPaid := "2026-07"
		member.LastPaidMonth = &lastPaid

		check, err := svc.CheckMonthlyPayment(ctx, member.UserID)
		require.NoError(t, err)
		assert.True(t, check.RequiresPayment)
		assert.InDelta(t, pricing.FullMonthPrice, check.Amount, 0.001)
	})

	t.Run("check is quiet when the month is already paid", func(t *testing.T) {
		s := newFakeStore()
		svc := newMembershipService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipMonthly))
		lastPaid := "2026-08"
		member.LastPaidMonth = &lastPaid

		check, err := svc.CheckMonthlyPayment(ctx, member.UserID)
		require.NoError(t, err)
		assert.False(t, check.RequiresPayment)
		assert.Zero(t, check.Amount)
	})

	t.Run("confirm marks the current month paid", func(t *testing.T) {
		s := newFakeStore()
		svc := newMembershipService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipMonthly))
		member.PaymentStatus = models.PaymentStatusUnpaid

		_, err := svc.ConfirmMonthlyPayment(ctx, member.UserID)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPaid, member.PaymentStatus)
		require.NotNil(t, member.LastPaidMonth)
		assert.Equal(t, "2026-08", *member.LastPaidMonth)
		require.NotNil(t, member.LastPaymentDate)
		assert.Equal(t, testClock, *member.LastPaymentDate)
	})

	t.Run("confirm rejects non-monthly members", func(t *testing.T) {
		s := newFakeStore()
		svc := newMembershipService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipYearly))

		_, err := svc.ConfirmMonthlyPayment(ctx, member.UserID)
		assert.ErrorIs(t, err, domain.ErrNotMonthlyMember)
	})
}

func TestPaymentStatus(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	svc := newMembershipService(s)
	member := s.addMember(models.AccountMember, strPtr(models.MembershipYearly))
	member.PaymentStatus = models.PaymentStatusPaid
	expiry := testClock.AddDate(0, 0, 45)
	member.MembershipExpiryDate = &expiry

	s.nextPayID++
	s.payments[s.nextPayID] = &models.Payment{
		ID:       s.nextPayID,
		MemberID: member.ID,
		Amount:   pricing.YearlyPrice,
		Status:   models.PaymentStatusPaid,
	}

	info, err := svc.PaymentStatus(ctx, member.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, info.PaymentStatus)
	assert.False(t, info.IsExpired)
	require.NotNil(t, info.DaysUntilExpiry)
	assert.Equal(t, 45, *info.DaysUntilExpiry)
	require.Len(t, info.RecentPayments, 1)
}

func TestMembershipTypes(t *testing.T) {
	svc := newMembershipService(newFakeStore())

	types := svc.MembershipTypes()
	require.Len(t, types, 5)

	ids := make([]string, 0, len(types))
	for _, info := range types {
		ids = append(ids, info.ID)
		assert.NotEmpty(t, info.Name)
		assert.NotEmpty(t, info.Price)
		assert.NotEmpty(t, info.Features)
	}
	assert.Equal(t, []string{
		models.MembershipYearlyUpfront,
		models.MembershipYearly,
		models.MembershipMonthly,
		models.MembershipPerSession,
		models.MembershipPunchCard,
	}, ids)
}
