package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/models"
)

const (
	seedAdminEmail    = "admin@school.local"
	seedAdminPassword = "ChangeMe123!"
)

// SeedService bootstraps a fresh installation with a usable baseline:
// an admin account, two grade levels with one class each, and two subjects.
// Running it repeatedly is safe.
type SeedService interface {
	Run(ctx context.Context) error
}

type seedService struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(db *gorm.DB, logger zerolog.Logger) SeedService {
	return &seedService{
		db:     db,
		logger: logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) Run(ctx context.Context) error {
	if err := s.seedAdmin(ctx); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	grades := map[string]*models.Grade{}
	for _, name := range []string{"Grade 7", "Grade 8"} {
		grade := models.Grade{Name: name}
		err := s.db.WithContext(ctx).
			Where(models.Grade{Name: name}).
			FirstOrCreate(&grade).Error
		if err != nil {
			return fmt.Errorf("seed grade %q: %w", name, err)
		}
		grades[name] = &grade
	}

	for _, subject := range []models.Subject{
		{Name: "Mathematics", Code: "MATH"},
		{Name: "Science", Code: "SCI"},
	} {
		err := s.db.WithContext(ctx).
			Where(models.Subject{Name: subject.Name}).
			FirstOrCreate(&subject).Error
		if err != nil {
			return fmt.Errorf("seed subject %q: %w", subject.Name, err)
		}
	}

	classes := []struct {
		name  string
		grade string
	}{
		{"7A", "Grade 7"},
		{"8A", "Grade 8"},
	}
	for _, entry := range classes {
		class := models.Class{Name: entry.name, GradeID: grades[entry.grade].ID}
		err := s.db.WithContext(ctx).
			Where(models.Class{Name: entry.name, GradeID: grades[entry.grade].ID}).
			FirstOrCreate(&class).Error
		if err != nil {
			return fmt.Errorf("seed class %q: %w", entry.name, err)
		}
	}

	s.logger.Info().Msg("baseline data seeded")
	return nil
}

func (s *seedService) seedAdmin(ctx context.Context) error {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", seedAdminEmail).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:        seedAdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		FirstName:    "System",
		LastName:     "Admin",
		Locale:       "en",
		Active:       true,
	}
	if err := s.db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}

	s.logger.Warn().Str("email", seedAdminEmail).Msg("default admin created, change its password")
	return nil
}
