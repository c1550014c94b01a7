package repositories

import (
	"context"
	"time"

	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// memberRepository implements MemberRepository interface
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create creates a new member
func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// GetByID gets a member by ID with user preloaded
func (r *memberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByUserID gets a member by user ID with user preloaded
func (r *memberRepository) GetByUserID(ctx context.Context, userID uint) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Update updates a member
func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

// List lists members with pagination, newest first
func (r *memberRepository) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	var members []*models.Member
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Member{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&members).Error
	if err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

// ListByAccountTypes lists members whose user has one of the account types
func (r *memberRepository) ListByAccountTypes(ctx context.Context, accountTypes []string, offset, limit int) ([]*models.Member, int64, error) {
	var members []*models.Member
	var total int64

	base := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Joins("JOIN users ON users.id = members.user_id").
		Where("users.account_type IN ?", accountTypes)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.
		Preload("User").
		Preload("TrialLessons").
		Order("members.created_at DESC")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}
	if err := query.Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

// ListWithMembership lists members that have a membership type set
func (r *memberRepository) ListWithMembership(ctx context.Context) ([]*models.Member, error) {
	var members []*models.Member
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = members.user_id").
		Where("users.account_type IN ?", []string{models.AccountMember, models.AccountAdmin}).
		Where("members.membership_type IS NOT NULL").
		Order("members.last_name ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ListExpiredTrials lists trial members whose trial window has passed
func (r *memberRepository) ListExpiredTrials(ctx context.Context, now time.Time) ([]*models.Member, error) {
	var members []*models.Member
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = members.user_id").
		Where("users.account_type = ?", models.AccountTrial).
		Where("members.trial_end_date < ?", now).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// UpdateWithUser updates member and user rows in one transaction
func (r *memberRepository) UpdateWithUser(ctx context.Context, member *models.Member, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		return tx.Save(member).Error
	})
}

// CreateWithUser creates user and member rows in one transaction
func (r *memberRepository) CreateWithUser(ctx context.Context, member *models.Member, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		member.UserID = user.ID
		return tx.Create(member).Error
	})
}
