package config

import (
	"log"
	"os"

	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/models"
	"github.com/Goldwhyit/almere-pickleball/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds the default admin account.
// Password comes from ADMIN_PASSWORD; the default is for development only.
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("account_type = ?", models.AccountAdmin).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Almere2026!"
	}

	hashedPassword, err := password.Hash(adminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:       "admin@almere-pickleball.nl",
		Password:    hashedPassword,
		AccountType: models.AccountAdmin,
		IsActive:    true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	profile := &models.Member{
		UserID:    admin.ID,
		FirstName: "Admin",
		LastName:  "User",
	}
	if err := s.db.Create(profile).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Email)
	return nil
}
