package services

import (
	"context"
	"testing"
	"time"

	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/models"
	"github.com/Goldwhyit/almere-pickleball/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 31 August 2026, 10:00. The next trainings are Tuesday
// 1 September (Almere Haven) and Thursday 3 September (Noordenplassen).
var testClock = time.Date(2026, time.August, 31, 10, 0, 0, 0, time.Local)

func newBookingService(s *fakeStore) *BookingService {
	svc := NewBookingService(&fakeRegRepo{s}, &fakeTrialRepo{s}, &fakeMemberRepo{s})
	svc.now = func() time.Time { return testClock }
	return svc
}

func strPtr(v string) *string { return &v }

func TestAvailableSlots(t *testing.T) {
	ctx := context.Background()

	t.Run("projects four dates per location in chronological order", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)

		slots, err := svc.AvailableSlots(ctx)
		require.NoError(t, err)
		require.Len(t, slots, 8)

		assert.Equal(t, "2026-09-01", slots[0].Date)
		assert.Equal(t, domain.LocationAlmereHaven, slots[0].Location)
		assert.Equal(t, "19:30", slots[0].Time)
		assert.Equal(t, "21:30", slots[0].EndTime)
		assert.Equal(t, "dinsdag", slots[0].DayName)
		assert.Equal(t, 38, slots[0].Capacity)

		assert.Equal(t, "2026-09-03", slots[1].Date)
		assert.Equal(t, domain.LocationNoordenplassen, slots[1].Location)
		assert.Equal(t, "donderdag", slots[1].DayName)
		assert.Equal(t, 16, slots[1].Capacity)

		// Chronological throughout
		for i := 1; i < len(slots); i++ {
			assert.LessOrEqual(t, slots[i-1].Date, slots[i].Date)
		}
	})

	t.Run("hides full sessions and projects the next date instead", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)

		// Fill Thursday 3 September to capacity
		for i := 0; i < 16; i++ {
			member := s.addMember(models.AccountMember, strPtr(models.MembershipYearly))
			s.nextRegID++
			s.regs[s.nextRegID] = &models.TrainingRegistration{
				ID:           s.nextRegID,
				MemberID:     member.ID,
				TrainingDate: time.Date(2026, time.September, 3, 0, 0, 0, 0, time.Local),
				TrainingTime: "18:30",
				Location:     domain.LocationNoordenplassen,
			}
		}

		slots, err := svc.AvailableSlots(ctx)
		require.NoError(t, err)
		require.Len(t, slots, 8)

		for _, slot := range slots {
			assert.False(t, slot.Date == "2026-09-03" && slot.Location == domain.LocationNoordenplassen,
				"full session should be hidden")
		}
		// The fourth Noordenplassen slot shifts one week further out
		assert.Equal(t, "2026-10-01", slots[7].Date)
	})

	t.Run("counts both booking tables", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)

		member := s.addMember(models.AccountMember, strPtr(models.MembershipPunchCard))
		s.nextLessonID++
		s.lessons[s.nextLessonID] = &models.TrialLesson{
			ID:            s.nextLessonID,
			MemberID:      member.ID,
			ScheduledDate: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.Local),
			ScheduledTime: "19:30",
			Location:      domain.LocationAlmereHaven,
			Status:        models.LessonStatusScheduled,
		}

		slots, err := svc.AvailableSlots(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), slots[0].Booked)
	})
}

func TestBookPunchSession(t *testing.T) {
	ctx := context.Background()

	t.Run("deducts a punch", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipPunchCard))
		member.PunchCardCount = 3

		result, err := svc.BookPunchSession(ctx, member.UserID, &BookTrainingInput{
			Date:     "2026-09-01",
			Time:     "19:30",
			Location: domain.LocationAlmereHaven,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.PunchCardCount)
		assert.Equal(t, 2, member.PunchCardCount)
		require.NotNil(t, result.Lesson)
		assert.Equal(t, "2026-09-01", result.Lesson.Date)
	})

	t.Run("rejects an empty punch card", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipPunchCard))
		member.PunchCardCount = 0

		_, err := svc.BookPunchSession(ctx, member.UserID, &BookTrainingInput{
			Date:     "2026-09-01",
			Time:     "19:30",
			Location: domain.LocationAlmereHaven,
		})
		assert.ErrorIs(t, err, domain.ErrNoPunchesLeft)
	})

	t.Run("rejects members without a punch card", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipYearly))

		_, err := svc.BookPunchSession(ctx, member.UserID, &BookTrainingInput{
			Date:     "2026-09-01",
			Time:     "19:30",
			Location: domain.LocationAlmereHaven,
		})
		assert.ErrorIs(t, err, domain.ErrPunchCardOnly)
	})

	t.Run("rejects full sessions without spending a punch", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipPunchCard))
		member.PunchCardCount = 5

		for i := 0; i < 16; i++ {
			other := s.addMember(models.AccountMember, strPtr(models.MembershipYearly))
			s.nextRegID++
			s.regs[s.nextRegID] = &models.TrainingRegistration{
				ID:           s.nextRegID,
				MemberID:     other.ID,
				TrainingDate: time.Date(2026, time.September, 3, 0, 0, 0, 0, time.Local),
				Location:     domain.LocationNoordenplassen,
			}
		}

		_, err := svc.BookPunchSession(ctx, member.UserID, &BookTrainingInput{
			Date:     "2026-09-03",
			Time:     "18:30",
			Location: domain.LocationNoordenplassen,
		})
		assert.ErrorIs(t, err, domain.ErrTrainingFull)
		assert.Equal(t, 5, member.PunchCardCount)
	})
}

func TestCancelPunchSession(t *testing.T) {
	ctx := context.Background()

	book := func(s *fakeStore, member *models.Member, date time.Time, startTime string) *models.TrialLesson {
		s.nextLessonID++
		lesson := &models.TrialLesson{
			ID:            s.nextLessonID,
			MemberID:      member.ID,
			ScheduledDate: date,
			ScheduledTime: startTime,
			Location:      domain.LocationAlmereHaven,
			Status:        models.LessonStatusScheduled,
		}
		s.lessons[lesson.ID] = lesson
		return lesson
	}

	t.Run("restores the punch", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipPunchCard))
		member.PunchCardCount = 4
		lesson := book(s, member, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.Local), "19:30")

		result, err := svc.CancelPunchSession(ctx, member.UserID, lesson.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, result.PunchCardCount)
		assert.Equal(t, models.LessonStatusCancelled, lesson.Status)
	})

	t.Run("never restores beyond a full card", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipPunchCard))
		member.PunchCardCount = domain.PunchCardSize
		lesson := book(s, member, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.Local), "19:30")

		result, err := svc.CancelPunchSession(ctx, member.UserID, lesson.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PunchCardSize, result.PunchCardCount)
	})

	t.Run("rejects cancellation within four hours of start", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipPunchCard))
		member.PunchCardCount = 4
		// Session starts at 12:00 today, the clock reads 10:00
		lesson := book(s, member, time.Date(2026, time.August, 31, 0, 0, 0, 0, time.Local), "12:00")

		_, err := svc.CancelPunchSession(ctx, member.UserID, lesson.ID)
		assert.ErrorIs(t, err, domain.ErrCancelTooLate)
		assert.Equal(t, 4, member.PunchCardCount)
	})

	t.Run("rejects cancelling someone else's booking", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)
		owner := s.addMember(models.AccountMember, strPtr(models.MembershipPunchCard))
		other := s.addMember(models.AccountMember, strPtr(models.MembershipPunchCard))
		lesson := book(s, owner, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.Local), "19:30")

		_, err := svc.CancelPunchSession(ctx, other.UserID, lesson.ID)
		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})
}

func TestRegisterForTraining(t *testing.T) {
	ctx := context.Background()
	input := &BookTrainingInput{
		Date:     "2026-09-01",
		Time:     "19:30",
		Location: domain.LocationAlmereHaven,
	}

	t.Run("registers a yearly member", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipYearly))

		result, err := svc.RegisterForTraining(ctx, member.UserID, input)
		require.NoError(t, err)
		require.NotNil(t, result.Registration)
		assert.Nil(t, result.Credit)
	})

	t.Run("deducts credit from per-session members", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipPerSession))
		member.Credit = 10.00

		result, err := svc.RegisterForTraining(ctx, member.UserID, input)
		require.NoError(t, err)
		require.NotNil(t, result.Credit)
		assert.InDelta(t, 1.50, *result.Credit, 0.001)
	})

	t.Run("leaves insufficient credit untouched", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipPerSession))
		member.Credit = 5.00

		result, err := svc.RegisterForTraining(ctx, member.UserID, input)
		require.NoError(t, err)
		require.NotNil(t, result.Credit)
		assert.InDelta(t, 5.00, *result.Credit, 0.001)
	})

	t.Run("rejects duplicate registrations", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipYearly))

		_, err := svc.RegisterForTraining(ctx, member.UserID, input)
		require.NoError(t, err)
		_, err = svc.RegisterForTraining(ctx, member.UserID, input)
		assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)
	})

	t.Run("redirects punch card members to their own flow", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipPunchCard))

		_, err := svc.RegisterForTraining(ctx, member.UserID, input)
		assert.ErrorIs(t, err, domain.ErrPunchCardExcluded)
	})

	t.Run("rejects a full session", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)

		full := &BookTrainingInput{
			Date:     "2026-09-03",
			Time:     "18:30",
			Location: domain.LocationNoordenplassen,
		}
		for i := 0; i < 16; i++ {
			member := s.addMember(models.AccountMember, strPtr(models.MembershipYearly))
			_, err := svc.RegisterForTraining(ctx, member.UserID, full)
			require.NoError(t, err)
		}

		late := s.addMember(models.AccountMember, strPtr(models.MembershipYearly))
		_, err := svc.RegisterForTraining(ctx, late.UserID, full)
		assert.ErrorIs(t, err, domain.ErrTrainingFull)
	})
}

func TestCancelRegistration(t *testing.T) {
	ctx := context.Background()

	t.Run("refunds per-session credit", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipPerSession))
		member.Credit = 10.00

		result, err := svc.RegisterForTraining(ctx, member.UserID, &BookTrainingInput{
			Date:     "2026-09-01",
			Time:     "19:30",
			Location: domain.LocationAlmereHaven,
		})
		require.NoError(t, err)

		cancelled, err := svc.CancelRegistration(ctx, member.UserID, result.Registration.ID)
		require.NoError(t, err)
		require.NotNil(t, cancelled.Credit)
		assert.InDelta(t, 10.00, *cancelled.Credit, 0.001)
	})

	t.Run("rejects cancellation within four hours of start", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipYearly))

		s.nextRegID++
		s.regs[s.nextRegID] = &models.TrainingRegistration{
			ID:           s.nextRegID,
			MemberID:     member.ID,
			TrainingDate: time.Date(2026, time.August, 31, 0, 0, 0, 0, time.Local),
			TrainingTime: "12:00",
			Location:     domain.LocationAlmereHaven,
		}

		_, err := svc.CancelRegistration(ctx, member.UserID, s.nextRegID)
		assert.ErrorIs(t, err, domain.ErrCancelTooLate)
	})

	t.Run("rejects a missing registration", func(t *testing.T) {
		s := newFakeStore()
		svc := newBookingService(s)
		member := s.addMember(models.AccountMember, strPtr(models.MembershipYearly))

		_, err := svc.CancelRegistration(ctx, member.UserID, 999)
		assert.ErrorIs(t, err, domain.ErrRegistrationGone)
	})
}
