package database

import (
	"fmt"
	"log"

	"github.com/learnnest/learnnest-api/config"
	"github.com/learnnest/learnnest-api/model"
	"github.com/learnnest/learnnest-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	if err := s.SeedSuperadmin(); err != nil {
		return fmt.Errorf("failed to seed superadmin: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedSuperadmin creates the bootstrap superadmin account if none exists.
// The singleton rule means this is a no-op on every run after the first.
func (s *Seeder) SeedSuperadmin() error {
	var count int64
	if err := s.db.Model(&model.User{}).
		Where("role = ?", model.RoleSuperadmin).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Superadmin already exists, skipping")
		return nil
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	email := getEnv.SUPERADMIN_EMAIL
	password := getEnv.SUPERADMIN_PASSWORD
	if email == "" || password == "" {
		return fmt.Errorf("SUPERADMIN_EMAIL and SUPERADMIN_PASSWORD must be set to seed the superadmin")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	superadmin := model.User{
		FirstName:    "LearnNest",
		LastName:     "Admin",
		Username:     "superadmin",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleSuperadmin,
		IsFirstLogin: true,
	}

	if err := s.db.Create(&superadmin).Error; err != nil {
		return err
	}

	log.Printf("Created superadmin account: %s", email)
	return nil
}
