package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/models"
)

func TestCodeRepositoryRedeem(t *testing.T) {
	db := setupTestDB(t)
	codes := NewCodeRepository(db)
	ctx := context.Background()

	subject := models.Subject{Name: "Mathematics", Code: "MATH"}
	require.NoError(t, db.Create(&subject).Error)
	student := createUser(t, db, "student@school.local", models.RoleStudent)

	require.NoError(t, codes.CreateBatch(ctx, []models.RedeemCode{{Code: "A1B2C3D4", SubjectID: subject.ID}}))

	code, err := codes.GetUnusedByCode(ctx, "A1B2C3D4")
	require.NoError(t, err)
	require.False(t, code.Used)

	code.RedeemedByID = &student.ID
	enrollment := models.SubjectEnrollment{
		StudentID: student.ID,
		SubjectID: subject.ID,
		Method:    "CODE",
		Code:      code.Code,
	}
	require.NoError(t, codes.Redeem(ctx, &code, &enrollment))

	var stored models.RedeemCode
	require.NoError(t, db.First(&stored, code.ID).Error)
	require.True(t, stored.Used)
	require.NotNil(t, stored.RedeemedByID)
	require.Equal(t, student.ID, *stored.RedeemedByID)
	require.NotNil(t, stored.RedeemedAt)

	var enrollments []models.SubjectEnrollment
	require.NoError(t, db.Where("student_id = ?", student.ID).Find(&enrollments).Error)
	require.Len(t, enrollments, 1)
	require.Equal(t, subject.ID, enrollments[0].SubjectID)

	// A used code is no longer discoverable and cannot be redeemed again.
	_, err = codes.GetUnusedByCode(ctx, "A1B2C3D4")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	second := models.SubjectEnrollment{StudentID: student.ID, SubjectID: subject.ID, Method: "CODE", Code: code.Code}
	require.ErrorIs(t, codes.Redeem(ctx, &code, &second), gorm.ErrRecordNotFound)
}

func TestCodeRepositoryListBySubject(t *testing.T) {
	db := setupTestDB(t)
	codes := NewCodeRepository(db)
	ctx := context.Background()

	math := models.Subject{Name: "Mathematics", Code: "MATH"}
	science := models.Subject{Name: "Science", Code: "SCI"}
	require.NoError(t, db.Create(&math).Error)
	require.NoError(t, db.Create(&science).Error)

	require.NoError(t, codes.CreateBatch(ctx, []models.RedeemCode{
		{Code: "MATH0001", SubjectID: math.ID},
		{Code: "MATH0002", SubjectID: math.ID},
		{Code: "SCI00001", SubjectID: science.ID},
	}))

	mathCodes, err := codes.ListBySubject(ctx, math.ID)
	require.NoError(t, err)
	require.Len(t, mathCodes, 2)
	require.Equal(t, "MATH0001", mathCodes[0].Code)

	all, err := codes.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestCodeRepositoryDuplicateCode(t *testing.T) {
	db := setupTestDB(t)
	codes := NewCodeRepository(db)
	ctx := context.Background()

	subject := models.Subject{Name: "Mathematics", Code: "MATH"}
	require.NoError(t, db.Create(&subject).Error)

	require.NoError(t, codes.CreateBatch(ctx, []models.RedeemCode{{Code: "SAME0000", SubjectID: subject.ID}}))
	err := codes.CreateBatch(ctx, []models.RedeemCode{{Code: "SAME0000", SubjectID: subject.ID}})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
