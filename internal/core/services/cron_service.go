package services

import (
	"context"
	"log"
	"time"

	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/models"
	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/repositories"
	"github.com/Goldwhyit/almere-pickleball/internal/pkg/pricing"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled maintenance jobs: expiring trials, flagging
// overdue monthly payments and cleaning up stale refresh tokens.
type CronService struct {
	memberRepo       repositories.MemberRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cron             *cron.Cron
	now              func() time.Time
}

// NewCronService creates a new cron service
func NewCronService(memberRepo repositories.MemberRepository, refreshTokenRepo repositories.RefreshTokenRepository) *CronService {
	return &CronService{
		memberRepo:       memberRepo,
		refreshTokenRepo: refreshTokenRepo,
		cron:             cron.New(),
		now:              time.Now,
	}
}

// Start registers and launches all scheduled jobs
func (s *CronService) Start() {
	// Nightly at 02:00: expire trials past their end date
	s.cron.AddFunc("0 2 * * *", s.ExpireTrials)

	// Nightly at 02:30: remove expired refresh tokens
	s.cron.AddFunc("30 2 * * *", s.CleanupRefreshTokens)

	// First of the month at 03:00: flag monthly members unpaid
	s.cron.AddFunc("0 3 1 * *", s.FlagMonthlyPayments)

	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

// ExpireTrials moves TRIAL accounts past their trial end date to
// TRIAL_EXPIRED so they can no longer book lessons.
func (s *CronService) ExpireTrials() {
	ctx := context.Background()

	members, err := s.memberRepo.ListExpiredTrials(ctx, s.now())
	if err != nil {
		log.Printf("❌ Trial expiry query error: %v", err)
		return
	}

	expired := 0
	for _, member := range members {
		if member.User == nil {
			continue
		}
		member.User.AccountType = models.AccountTrialExpired
		member.IsTrialExpired = true
		if err := s.memberRepo.UpdateWithUser(ctx, member, member.User); err != nil {
			log.Printf("❌ Trial expiry update error for member %d: %v", member.ID, err)
			continue
		}
		expired++
	}

	if expired > 0 {
		log.Printf("⏰ Expired %d trial accounts", expired)
	}
}

// FlagMonthlyPayments marks monthly members UNPAID when the new month
// has no recorded payment yet.
func (s *CronService) FlagMonthlyPayments() {
	ctx := context.Background()

	members, err := s.memberRepo.ListWithMembership(ctx)
	if err != nil {
		log.Printf("❌ Monthly payment query error: %v", err)
		return
	}

	now := s.now()
	flagged := 0
	for _, member := range members {
		if member.MembershipType == nil || *member.MembershipType != models.MembershipMonthly {
			continue
		}
		lastPaid := ""
		if member.LastPaidMonth != nil {
			lastPaid = *member.LastPaidMonth
		}
		if pricing.PaidForMonth(lastPaid, now) {
			continue
		}
		if member.PaymentStatus == models.PaymentStatusUnpaid {
			continue
		}

		member.PaymentStatus = models.PaymentStatusUnpaid
		if err := s.memberRepo.Update(ctx, member); err != nil {
			log.Printf("❌ Monthly payment flag error for member %d: %v", member.ID, err)
			continue
		}
		flagged++
	}

	if flagged > 0 {
		log.Printf("💶 Flagged %d monthly members for payment", flagged)
	}
}

// CleanupRefreshTokens removes refresh tokens past their expiry
func (s *CronService) CleanupRefreshTokens() {
	if err := s.refreshTokenRepo.DeleteExpired(context.Background()); err != nil {
		log.Printf("❌ Refresh token cleanup error: %v", err)
	}
}
