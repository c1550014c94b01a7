package repositories

import (
	"context"

	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// photoRepository implements PhotoRepository interface
type photoRepository struct {
	db *gorm.DB
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *gorm.DB) PhotoRepository {
	return &photoRepository{db: db}
}

// Create creates a new photo record
func (r *photoRepository) Create(ctx context.Context, photo *models.Photo) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

// GetByID gets a photo by ID
func (r *photoRepository) GetByID(ctx context.Context, id uint) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&photo).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// Update updates a photo
func (r *photoRepository) Update(ctx context.Context, photo *models.Photo) error {
	return r.db.WithContext(ctx).Save(photo).Error
}

// Delete deletes a photo
func (r *photoRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Photo{}, id).Error
}

// ListActive lists active photos in display order
func (r *photoRepository) ListActive(ctx context.Context) ([]*models.Photo, error) {
	var photos []*models.Photo
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC").
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// ListAll lists all photos, including inactive, in display order
func (r *photoRepository) ListAll(ctx context.Context) ([]*models.Photo, error) {
	var photos []*models.Photo
	err := r.db.WithContext(ctx).
		Order("sort_order ASC").
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// MaxSortOrder returns the highest sort order in use
func (r *photoRepository) MaxSortOrder(ctx context.Context) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&models.Photo{}).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// Reorder applies new sort orders in one transaction
func (r *photoRepository) Reorder(ctx context.Context, orders map[uint]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, order := range orders {
			err := tx.Model(&models.Photo{}).
				Where("id = ?", id).
				Update("sort_order", order).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
