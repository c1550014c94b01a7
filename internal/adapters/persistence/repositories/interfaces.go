package repositories

import (
	"context"
	"time"

	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// MemberRepository defines member repository interface
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error)
	ListByAccountTypes(ctx context.Context, accountTypes []string, offset, limit int) ([]*models.Member, int64, error)
	ListWithMembership(ctx context.Context) ([]*models.Member, error)
	ListExpiredTrials(ctx context.Context, now time.Time) ([]*models.Member, error)
	UpdateWithUser(ctx context.Context, member *models.Member, user *models.User) error
	CreateWithUser(ctx context.Context, member *models.Member, user *models.User) error
}

// SessionKey identifies a single training session
type SessionKey struct {
	Date     string
	Location string
}

// TrialRepository defines trial lesson repository interface.
// BookSession and CancelSession run inside a database transaction so
// the punch card mutation and the lesson row stay consistent.
type TrialRepository interface {
	Create(ctx context.Context, lesson *models.TrialLesson) error
	CreateBatch(ctx context.Context, lessons []*models.TrialLesson) error
	GetByID(ctx context.Context, id uint) (*models.TrialLesson, error)
	Update(ctx context.Context, lesson *models.TrialLesson) error
	ListByMember(ctx context.Context, memberID uint) ([]*models.TrialLesson, error)
	ListScheduledByMember(ctx context.Context, memberID uint) ([]*models.TrialLesson, error)
	ListByRange(ctx context.Context, from, to time.Time) ([]*models.TrialLesson, error)
	CountBySessions(ctx context.Context, from, to time.Time) (map[SessionKey]int64, error)
	BookSession(ctx context.Context, lesson *models.TrialLesson, capacity int, apply func(m *models.Member) error) error
	CancelSession(ctx context.Context, lessonID, memberID uint, apply func(m *models.Member, l *models.TrialLesson) error) error
}

// RegistrationRepository defines training registration repository
// interface. Register and Unregister run inside a database transaction
// so the capacity check, the member mutation and the registration row
// stay consistent under concurrent bookings.
type RegistrationRepository interface {
	Register(ctx context.Context, reg *models.TrainingRegistration, capacity int, apply func(m *models.Member) error) error
	Unregister(ctx context.Context, registrationID, memberID uint, check func(reg *models.TrainingRegistration) error, apply func(m *models.Member) error) error
	GetByID(ctx context.Context, id uint) (*models.TrainingRegistration, error)
	CountBySessions(ctx context.Context, from, to time.Time) (map[SessionKey]int64, error)
	ListByMember(ctx context.Context, memberID uint, from time.Time) ([]*models.TrainingRegistration, error)
	ListByRange(ctx context.Context, from, to time.Time) ([]*models.TrainingRegistration, error)
}

// PaymentRepository defines payment repository interface
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	ListByMember(ctx context.Context, memberID uint, limit int) ([]*models.Payment, error)
	List(ctx context.Context, status string, offset, limit int) ([]*models.Payment, int64, error)
}

// PhotoRepository defines photo repository interface
type PhotoRepository interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id uint) (*models.Photo, error)
	Update(ctx context.Context, photo *models.Photo) error
	Delete(ctx context.Context, id uint) error
	ListActive(ctx context.Context) ([]*models.Photo, error)
	ListAll(ctx context.Context) ([]*models.Photo, error)
	MaxSortOrder(ctx context.Context) (int, error)
	Reorder(ctx context.Context, orders map[uint]int) error
}
