package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/models"
	"github.com/Goldwhyit/almere-pickleball/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// trialRepository implements TrialRepository interface
type trialRepository struct {
	db *gorm.DB
}

// NewTrialRepository creates a new trial lesson repository
func NewTrialRepository(db *gorm.DB) TrialRepository {
	return &trialRepository{db: db}
}

// Create creates a new trial lesson
func (r *trialRepository) Create(ctx context.Context, lesson *models.TrialLesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

// CreateBatch creates multiple lessons in one transaction
func (r *trialRepository) CreateBatch(ctx context.Context, lessons []*models.TrialLesson) error {
	return r.db.WithContext(ctx).Create(lessons).Error
}

// GetByID gets a trial lesson by ID
func (r *trialRepository) GetByID(ctx context.Context, id uint) (*models.TrialLesson, error) {
	var lesson models.TrialLesson
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Update updates a trial lesson
func (r *trialRepository) Update(ctx context.Context, lesson *models.TrialLesson) error {
	return r.db.WithContext(ctx).Save(lesson).Error
}

// ListByMember lists all lessons for a member, earliest first
func (r *trialRepository) ListByMember(ctx context.Context, memberID uint) ([]*models.TrialLesson, error) {
	var lessons []*models.TrialLesson
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("scheduled_date ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

// ListScheduledByMember lists a member's scheduled lessons
func (r *trialRepository) ListScheduledByMember(ctx context.Context, memberID uint) ([]*models.TrialLesson, error) {
	var lessons []*models.TrialLesson
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Where("status = ?", models.LessonStatusScheduled).
		Order("scheduled_date ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

// ListByRange lists lessons within [from, to] with members preloaded
func (r *trialRepository) ListByRange(ctx context.Context, from, to time.Time) ([]*models.TrialLesson, error) {
	var lessons []*models.TrialLesson
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Member.User").
		Where("scheduled_date >= ? AND scheduled_date <= ?", from, to).
		Order("scheduled_date ASC, scheduled_time ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

// sessionLessonCount is the scan target for the grouped occupancy query
type sessionLessonCount struct {
	ScheduledDate time.Time
	Location      string
	Total         int64
}

// CountBySessions returns lesson occupancy per session within [from, to).
// Cancelled lessons do not hold a spot.
func (r *trialRepository) CountBySessions(ctx context.Context, from, to time.Time) (map[SessionKey]int64, error) {
	var rows []sessionLessonCount
	err := r.db.WithContext(ctx).
		Model(&models.TrialLesson{}).
		Select("scheduled_date, location, COUNT(*) AS total").
		Where("scheduled_date >= ? AND scheduled_date < ?", from, to).
		Where("status IN ?", []string{models.LessonStatusScheduled, models.LessonStatusCompleted}).
		Group("scheduled_date, location").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[SessionKey]int64, len(rows))
	for _, row := range rows {
		key := SessionKey{
			Date:     row.ScheduledDate.Format("2006-01-02"),
			Location: row.Location,
		}
		counts[key] = row.Total
	}
	return counts, nil
}

// BookSession creates a lesson booking inside a transaction. The member
// row is locked, the apply callback mutates it (punch card deduction),
// the session occupancy across lessons and registrations is checked
// against capacity and the lesson row is inserted.
func (r *trialRepository) BookSession(ctx context.Context, lesson *models.TrialLesson, capacity int, apply func(m *models.Member) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.Member
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", lesson.MemberID).
			First(&member).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrMemberNotFound
			}
			return err
		}

		occupied, err := countSessionOccupancy(tx, lesson.ScheduledDate, lesson.Location)
		if err != nil {
			return err
		}
		if occupied >= int64(capacity) {
			return domain.ErrTrainingFull
		}

		if apply != nil {
			if err := apply(&member); err != nil {
				return err
			}
			if err := tx.Save(&member).Error; err != nil {
				return err
			}
		}

		return tx.Create(lesson).Error
	})
}

// CancelSession cancels a lesson inside a transaction, applying the
// member mutation (punch restore) atomically with the status change.
func (r *trialRepository) CancelSession(ctx context.Context, lessonID, memberID uint, apply func(m *models.Member, l *models.TrialLesson) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.Member
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", memberID).
			First(&member).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrMemberNotFound
			}
			return err
		}

		var lesson models.TrialLesson
		if err := tx.Where("id = ?", lessonID).First(&lesson).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTrialNotFound
			}
			return err
		}

		if apply != nil {
			if err := apply(&member, &lesson); err != nil {
				return err
			}
			if err := tx.Save(&member).Error; err != nil {
				return err
			}
		}

		lesson.Status = models.LessonStatusCancelled
		return tx.Save(&lesson).Error
	})
}

// countSessionOccupancy counts held spots for one session across both
// lesson bookings and training registrations.
func countSessionOccupancy(tx *gorm.DB, date time.Time, location string) (int64, error) {
	var lessonCount int64
	err := tx.Model(&models.TrialLesson{}).
		Where("scheduled_date = ? AND location = ?", date, location).
		Where("status IN ?", []string{models.LessonStatusScheduled, models.LessonStatusCompleted}).
		Count(&lessonCount).Error
	if err != nil {
		return 0, err
	}

	var regCount int64
	err = tx.Model(&models.TrainingRegistration{}).
		Where("training_date = ? AND location = ?", date, location).
		Count(&regCount).Error
	if err != nil {
		return 0, err
	}

	return lessonCount + regCount, nil
}
