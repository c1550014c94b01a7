package services

import (
	"context"
	"testing"
	"time"

	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/models"
	"github.com/Goldwhyit/almere-pickleball/internal/config"
	"github.com/Goldwhyit/almere-pickleball/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrialService(s *fakeStore) *TrialService {
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "access-secret",
			RefreshSecret:    "refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
	auth := NewAuthService(&fakeUserRepo{s}, &fakeTokenRepo{s}, &fakeMemberRepo{s}, cfg)
	svc := NewTrialService(&fakeUserRepo{s}, &fakeMemberRepo{s}, &fakeTrialRepo{s}, auth)
	svc.now = func() time.Time { return testClock }
	return svc
}

func signupInput(email string) *SignupInput {
	return &SignupInput{
		Email:       email,
		Password:    "welkom-op-de-baan",
		FirstName:   "Pieter",
		LastName:    "de Vries",
		DateOfBirth: "1988-04-12",
	}
}

func TestTrialSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a trial account with a 30 day window", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)

		resp, err := svc.Signup(ctx, signupInput("pieter@example.com"))
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, models.AccountTrial, resp.User.AccountType)

		member, err := (&fakeMemberRepo{s}).GetByUserID(ctx, resp.User.ID)
		require.NoError(t, err)
		require.NotNil(t, member.TrialEndDate)
		assert.Equal(t, testClock.AddDate(0, 0, 30), *member.TrialEndDate)
	})

	t.Run("rejects an email that is already in use", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipYearly))
		member.User.Email = "bezet@example.com"

		_, err := svc.Signup(ctx, signupInput("bezet@example.com"))
		assert.ErrorIs(t, err, domain.ErrEmailExists)
	})

	t.Run("blocks re-signup within the cooldown year", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)
		member := s.addMember(models.AccountTrialExpired, nil)
		member.User.Email = "terug@example.com"
		end := testClock.AddDate(0, 0, -100)
		member.TrialEndDate = &end

		_, err := svc.Signup(ctx, signupInput("terug@example.com"))

		var cooldown *domain.TrialCooldownError
		require.ErrorAs(t, err, &cooldown)
		assert.Equal(t, 100, cooldown.DaysSinceExpiry)
		assert.Equal(t, 265, cooldown.DaysRemaining())
	})

	t.Run("restarts the trial after the cooldown year", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)
		member := s.addMember(models.AccountTrialExpired, nil)
		member.User.Email = "terug@example.com"
		end := testClock.AddDate(0, 0, -400)
		member.TrialEndDate = &end
		member.TrialLessonsUsed = 3
		member.IsTrialExpired = true
		reason := "TE_DUUR"
		member.StopReason = &reason

		resp, err := svc.Signup(ctx, signupInput("terug@example.com"))
		require.NoError(t, err)
		assert.Equal(t, models.AccountTrial, resp.User.AccountType)
		assert.Equal(t, 0, member.TrialLessonsUsed)
		assert.False(t, member.IsTrialExpired)
		assert.Nil(t, member.StopReason)
		assert.Equal(t, testClock.AddDate(0, 0, 30), *member.TrialEndDate)
	})

	t.Run("rejects a weak password", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)
		input := signupInput("kort@example.com")
		input.Password = "kort"

		_, err := svc.Signup(ctx, input)
		assert.ErrorIs(t, err, domain.ErrWeakPassword)
	})
}

func TestTrialMyStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("reports progress on an active trial", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)
		member := s.addMember(models.AccountTrial, nil)
		start := testClock.AddDate(0, 0, -10)
		end := testClock.AddDate(0, 0, 20)
		member.TrialStartDate = &start
		member.TrialEndDate = &end
		member.TrialLessonsUsed = 3

		s.nextLessonID++
		s.lessons[s.nextLessonID] = &models.TrialLesson{
			ID:       s.nextLessonID,
			MemberID: member.ID,
			Status:   models.LessonStatusCompleted,
		}

		status, err := svc.MyStatus(ctx, member.UserID)
		require.NoError(t, err)
		assert.Equal(t, 20, status.DaysRemaining)
		assert.Equal(t, 3, status.TrialLessonsBooked)
		assert.Equal(t, 1, status.TrialLessonsCompleted)
		assert.Equal(t, 100, status.CompletionPercentage)
		assert.False(t, status.IsTrialExpired)
		assert.Equal(t, models.AccountTrial, status.AccountType)
	})

	t.Run("expires the account when the window has passed", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)
		member := s.addMember(models.AccountTrial, nil)
		end := testClock.AddDate(0, 0, -2)
		member.TrialEndDate = &end

		status, err := svc.MyStatus(ctx, member.UserID)
		require.NoError(t, err)
		assert.True(t, status.IsTrialExpired)
		assert.Equal(t, 0, status.DaysRemaining)
		assert.Equal(t, models.AccountTrialExpired, status.AccountType)
		assert.Equal(t, models.AccountTrialExpired, member.User.AccountType)
		assert.True(t, member.IsTrialExpired)
	})
}

func TestTrialBookDates(t *testing.T) {
	ctx := context.Background()

	activeTrial := func(s *fakeStore) *models.Member {
		member := s.addMember(models.AccountTrial, nil)
		start := testClock
		end := testClock.AddDate(0, 0, 30)
		member.TrialStartDate = &start
		member.TrialEndDate = &end
		return member
	}

	t.Run("books three lessons at the trial location", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)
		member := activeTrial(s)

		lessons, err := svc.BookDates(ctx, member.UserID, &BookDatesInput{
			Date1: "2026-09-01",
			Date2: "2026-09-03",
			Date3: "2026-09-08",
		})
		require.NoError(t, err)
		require.Len(t, lessons, 3)
		for _, lesson := range lessons {
			assert.Equal(t, domain.TrialLessonTime, lesson.Time)
			assert.Equal(t, domain.LocationTrial, lesson.Location)
			assert.Equal(t, models.LessonStatusScheduled, lesson.Status)
		}
		assert.Equal(t, 3, member.TrialLessonsUsed)
	})

	t.Run("rejects accounts without an active trial", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipYearly))

		_, err := svc.BookDates(ctx, member.UserID, &BookDatesInput{
			Date1: "2026-09-01", Date2: "2026-09-03", Date3: "2026-09-08",
		})
		assert.ErrorIs(t, err, domain.ErrTrialNotActive)
	})

	t.Run("rejects booking twice", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)
		member := activeTrial(s)

		_, err := svc.BookDates(ctx, member.UserID, &BookDatesInput{
			Date1: "2026-09-01", Date2: "2026-09-03", Date3: "2026-09-08",
		})
		require.NoError(t, err)
		_, err = svc.BookDates(ctx, member.UserID, &BookDatesInput{
			Date1: "2026-09-10", Date2: "2026-09-11", Date3: "2026-09-12",
		})
		assert.ErrorIs(t, err, domain.ErrDatesAlreadyBooked)
	})

	t.Run("rejects dates in the past", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)
		member := activeTrial(s)

		_, err := svc.BookDates(ctx, member.UserID, &BookDatesInput{
			Date1: "2026-08-29", Date2: "2026-09-03", Date3: "2026-09-08",
		})
		assert.ErrorIs(t, err, domain.ErrDateInPast)
	})

	t.Run("rejects dates beyond two weeks out", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)
		member := activeTrial(s)

		_, err := svc.BookDates(ctx, member.UserID, &BookDatesInput{
			Date1: "2026-09-01", Date2: "2026-09-03", Date3: "2026-09-15",
		})
		assert.ErrorIs(t, err, domain.ErrDateOutsideWindow)
	})

	t.Run("rejects duplicate dates", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)
		member := activeTrial(s)

		_, err := svc.BookDates(ctx, member.UserID, &BookDatesInput{
			Date1: "2026-09-01", Date2: "2026-09-01", Date3: "2026-09-08",
		})
		assert.ErrorIs(t, err, domain.ErrDuplicateDates)
	})
}

func TestTrialReschedule(t *testing.T) {
	ctx := context.Background()

	seedLesson := func(s *fakeStore, member *models.Member, date time.Time) *models.TrialLesson {
		s.nextLessonID++
		lesson := &models.TrialLesson{
			ID:            s.nextLessonID,
			MemberID:      member.ID,
			ScheduledDate: date,
			ScheduledTime: domain.TrialLessonTime,
			Location:      domain.LocationTrial,
			Status:        models.LessonStatusScheduled,
		}
		s.lessons[lesson.ID] = lesson
		return lesson
	}

	t.Run("moves a lesson to a new date", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)
		member := s.addMember(models.AccountTrial, nil)
		lesson := seedLesson(s, member, time.Date(2026, time.September, 3, 0, 0, 0, 0, time.Local))

		resp, err := svc.Reschedule(ctx, member.UserID, lesson.ID, &RescheduleInput{
			NewDate: "2026-09-08",
			NewTime: "18:00",
		})
		require.NoError(t, err)
		assert.Equal(t, "2026-09-08", resp.Date)
	})

	t.Run("rejects rescheduling within 24 hours of the lesson", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)
		member := s.addMember(models.AccountTrial, nil)
		// Lesson today at 18:00, the clock reads 10:00
		lesson := seedLesson(s, member, time.Date(2026, time.August, 31, 0, 0, 0, 0, time.Local))

		_, err := svc.Reschedule(ctx, member.UserID, lesson.ID, &RescheduleInput{
			NewDate: "2026-09-08",
			NewTime: "18:00",
		})
		assert.ErrorIs(t, err, domain.ErrRescheduleTooLate)
	})

	t.Run("rejects rescheduling someone else's lesson", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)
		owner := s.addMember(models.AccountTrial, nil)
		other := s.addMember(models.AccountTrial, nil)
		lesson := seedLesson(s, owner, time.Date(2026, time.September, 3, 0, 0, 0, 0, time.Local))

		_, err := svc.Reschedule(ctx, other.UserID, lesson.ID, &RescheduleInput{
			NewDate: "2026-09-08",
			NewTime: "18:00",
		})
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})
}

func TestTrialConvertAndDecline(t *testing.T) {
	ctx := context.Background()

	t.Run("convert upgrades the account", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)
		member := s.addMember(models.AccountTrial, nil)

		_, err := svc.ConvertToMember(ctx, member.UserID)
		require.NoError(t, err)
		assert.Equal(t, models.AccountMember, member.User.AccountType)
		require.NotNil(t, member.ConversionDate)
		assert.Equal(t, testClock, *member.ConversionDate)
	})

	t.Run("decline records the stop reason", func(t *testing.T) {
		s := newFakeStore()
		svc := newTrialService(s)
		member := s.addMember(models.AccountTrial, nil)

		err := svc.Decline(ctx, member.UserID, &DeclineInput{
			Reason:   "TE_DUUR",
			Feedback: "Leuke sport, te prijzig",
		})
		require.NoError(t, err)
		assert.Equal(t, models.AccountTrialExpired, member.User.AccountType)
		assert.True(t, member.IsTrialExpired)
		require.NotNil(t, member.StopReason)
		assert.Equal(t, "TE_DUUR", *member.StopReason)
	})
}

func TestTrialStatsAggregation(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	svc := newTrialService(s)

	converted := s.addMember(models.AccountTrial, nil)
	now := testClock
	converted.ConversionDate = &now
	converted.TrialLessons = []models.TrialLesson{
		{Status: models.LessonStatusCompleted},
		{Status: models.LessonStatusCompleted},
	}

	expired := s.addMember(models.AccountTrialExpired, nil)
	reason := "GEEN_TIJD"
	expired.StopReason = &reason

	s.addMember(models.AccountTrial, nil)
	s.addMember(models.AccountTrial, nil)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalTrialMembers)
	assert.Equal(t, 1, stats.ConvertedToMember)
	assert.Equal(t, 1, stats.TrialExpired)
	assert.Equal(t, "25.0%", stats.ConversionRate)
	assert.Equal(t, 2, stats.TotalLessonsCompleted)
	assert.Equal(t, "0.5", stats.AverageLessonsPerMember)
	assert.Equal(t, []string{"GEEN_TIJD"}, stats.StopReasons)
}
