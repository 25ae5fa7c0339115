package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Grade{},
		&models.Subject{},
		&models.Class{},
		&models.Enrollment{},
		&models.Unit{},
		&models.Lesson{},
		&models.ContentAsset{},
		&models.Assignment{},
		&models.Question{},
		&models.Submission{},
		&models.GradeItem{},
		&models.RedeemCode{},
		&models.SubjectEnrollment{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		FirstName:    "Test",
		LastName:     "User",
		Locale:       "en",
		Active:       true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}
