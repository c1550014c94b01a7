package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/models"
	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/repositories"
	"github.com/Goldwhyit/almere-pickleball/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxImageSize limits gallery uploads to 5 MB
const MaxImageSize = 5 << 20

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// PhotoService manages the homepage photo gallery
type PhotoService struct {
	photoRepo repositories.PhotoRepository
	uploadDir string
}

// NewPhotoService creates a new photo service
func NewPhotoService(photoRepo repositories.PhotoRepository, uploadDir string) *PhotoService {
	return &PhotoService{
		photoRepo: photoRepo,
		uploadDir: uploadDir,
	}
}

// CreatePhotoInput carries a new gallery entry
type CreatePhotoInput struct {
	Title    string `json:"title" validate:"required,max=200"`
	Alt      string `json:"alt" validate:"required,max=200"`
	ImageURL string `json:"image_url" validate:"required,max=500"`
}

// UpdatePhotoInput carries partial gallery updates
type UpdatePhotoInput struct {
	Title    *string `json:"title" validate:"omitempty,max=200"`
	Alt      *string `json:"alt" validate:"omitempty,max=200"`
	ImageURL *string `json:"image_url" validate:"omitempty,max=500"`
	IsActive *bool   `json:"is_active"`
}

// ReorderInput carries the new gallery order, first entry shown first
type ReorderInput struct {
	PhotoIDs []uint `json:"photo_ids" validate:"required,min=1,dive,gt=0"`
}

// ListActive returns the public gallery in display order
func (s *PhotoService) ListActive(ctx context.Context) ([]*models.Photo, error) {
	return s.photoRepo.ListActive(ctx)
}

// ListAll returns every gallery entry for the back office
func (s *PhotoService) ListAll(ctx context.Context) ([]*models.Photo, error) {
	return s.photoRepo.ListAll(ctx)
}

// Create adds a gallery entry at the end of the display order
func (s *PhotoService) Create(ctx context.Context, input *CreatePhotoInput) (*models.Photo, error) {
	maxOrder, err := s.photoRepo.MaxSortOrder(ctx)
	if err != nil {
		return nil, err
	}

	photo := &models.Photo{
		Title:     input.Title,
		Alt:       input.Alt,
		ImageURL:  input.ImageURL,
		SortOrder: maxOrder + 1,
		IsActive:  true,
	}
	if err := s.photoRepo.Create(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

// Update applies a partial update to a gallery entry
func (s *PhotoService) Update(ctx context.Context, photoID uint, input *UpdatePhotoInput) (*models.Photo, error) {
	photo, err := s.getPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		photo.Title = *input.Title
	}
	if input.Alt != nil {
		photo.Alt = *input.Alt
	}
	if input.ImageURL != nil {
		photo.ImageURL = *input.ImageURL
	}
	if input.IsActive != nil {
		photo.IsActive = *input.IsActive
	}

	if err := s.photoRepo.Update(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

// ToggleActive flips a gallery entry between shown and hidden
func (s *PhotoService) ToggleActive(ctx context.Context, photoID uint) (*models.Photo, error) {
	photo, err := s.getPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}

	photo.IsActive = !photo.IsActive
	if err := s.photoRepo.Update(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

// Delete removes a gallery entry. Locally uploaded files are removed
// from disk as well.
func (s *PhotoService) Delete(ctx context.Context, photoID uint) error {
	photo, err := s.getPhoto(ctx, photoID)
	if err != nil {
		return err
	}

	if err := s.photoRepo.Delete(ctx, photoID); err != nil {
		return err
	}

	if name, ok := strings.CutPrefix(photo.ImageURL, "/uploads/"); ok {
		// best effort, the database row is already gone
		_ = os.Remove(filepath.Join(s.uploadDir, filepath.Base(name)))
	}
	return nil
}

// Reorder rewrites the display order to match the given ID sequence
func (s *PhotoService) Reorder(ctx context.Context, input *ReorderInput) error {
	orders := make(map[uint]int, len(input.PhotoIDs))
	for i, id := range input.PhotoIDs {
		orders[id] = i + 1
	}
	return s.photoRepo.Reorder(ctx, orders)
}

// Upload stores an uploaded image under the upload directory and
// returns the public URL path for it.
func (s *PhotoService) Upload(file *multipart.FileHeader) (string, error) {
	if file.Size > MaxImageSize {
		return "", domain.ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExtensions[ext] {
		return "", domain.ErrUnsupportedImage
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.New().String() + ext
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.uploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := dst.ReadFrom(src); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

func (s *PhotoService) getPhoto(ctx context.Context, photoID uint) (*models.Photo, error) {
	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPhotoNotFound
		}
		return nil, err
	}
	return photo, nil
}
