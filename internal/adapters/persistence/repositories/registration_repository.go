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

// registrationRepository implements RegistrationRepository interface
type registrationRepository struct {
	db *gorm.DB
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

// Register creates a registration inside a transaction. The member row
// is locked first, the duplicate and capacity checks run against both
// booking tables, the apply callback mutates the member (credit
// deduction) and the registration row is inserted. Any step failing
// rolls the whole thing back.
func (r *registrationRepository) Register(ctx context.Context, reg *models.TrainingRegistration, capacity int, apply func(m *models.Member) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.Member
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", reg.MemberID).
			First(&member).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrMemberNotFound
			}
			return err
		}

		var dup int64
		err = tx.Model(&models.TrainingRegistration{}).
			Where("member_id = ? AND training_date = ? AND location = ?",
				reg.MemberID, reg.TrainingDate, reg.Location).
			Count(&dup).Error
		if err != nil {
			return err
		}
		if dup > 0 {
			return domain.ErrAlreadyRegistered
		}

		occupied, err := countSessionOccupancy(tx, reg.TrainingDate, reg.Location)
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

		return tx.Create(reg).Error
	})
}

// Unregister deletes a registration inside a transaction. The check
// callback validates the registration (ownership, cancellation window)
// and the apply callback mutates the member (credit refund).
func (r *registrationRepository) Unregister(ctx context.Context, registrationID, memberID uint, check func(reg *models.TrainingRegistration) error, apply func(m *models.Member) error) error {
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

		var reg models.TrainingRegistration
		if err := tx.Where("id = ?", registrationID).First(&reg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRegistrationGone
			}
			return err
		}

		if check != nil {
			if err := check(&reg); err != nil {
				return err
			}
		}

		if apply != nil {
			if err := apply(&member); err != nil {
				return err
			}
			if err := tx.Save(&member).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&reg).Error
	})
}

// GetByID gets a registration by ID
func (r *registrationRepository) GetByID(ctx context.Context, id uint) (*models.TrainingRegistration, error) {
	var reg models.TrainingRegistration
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// sessionRegCount is the scan target for the grouped occupancy query
type sessionRegCount struct {
	TrainingDate time.Time
	Location     string
	Total        int64
}

// CountBySessions returns registration occupancy per session within [from, to)
func (r *registrationRepository) CountBySessions(ctx context.Context, from, to time.Time) (map[SessionKey]int64, error) {
	var rows []sessionRegCount
	err := r.db.WithContext(ctx).
		Model(&models.TrainingRegistration{}).
		Select("training_date, location, COUNT(*) AS total").
		Where("training_date >= ? AND training_date < ?", from, to).
		Group("training_date, location").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[SessionKey]int64, len(rows))
	for _, row := range rows {
		key := SessionKey{
			Date:     row.TrainingDate.Format("2006-01-02"),
			Location: row.Location,
		}
		counts[key] = row.Total
	}
	return counts, nil
}

// ListByMember lists a member's registrations from the given date onward
func (r *registrationRepository) ListByMember(ctx context.Context, memberID uint, from time.Time) ([]*models.TrainingRegistration, error) {
	var regs []*models.TrainingRegistration
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND training_date >= ?", memberID, from).
		Order("training_date ASC, training_time ASC").
		Find(&regs).Error
	if err != nil {
		return nil, err
	}
	return regs, nil
}

// ListByRange lists registrations within [from, to] with members preloaded
func (r *registrationRepository) ListByRange(ctx context.Context, from, to time.Time) ([]*models.TrainingRegistration, error) {
	var regs []*models.TrainingRegistration
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Member.User").
		Where("training_date >= ? AND training_date <= ?", from, to).
		Order("training_date ASC, training_time ASC").
		Find(&regs).Error
	if err != nil {
		return nil, err
	}
	return regs, nil
}
