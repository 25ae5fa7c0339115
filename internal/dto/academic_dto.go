package dto

import (
	"time"

	"github.com/openedu/school-api/internal/models"
)

// GradeCreateRequest describes the payload for creating a grade level.
type GradeCreateRequest struct {
	Name string `json:"name" validate:"required,min=1"`
}

// GradeUpdateRequest describes the payload for renaming a grade level.
type GradeUpdateRequest struct {
	Name string `json:"name" validate:"required,min=1"`
}

// GradeResponse is the serialized representation of a grade level.
type GradeResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGradeResponse converts a model into a DTO.
func NewGradeResponse(model models.Grade) GradeResponse {
	return GradeResponse{
		ID:        model.ID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewGradeResponseSlice converts a slice of models into DTOs.
func NewGradeResponseSlice(grades []models.Grade) []GradeResponse {
	responses := make([]GradeResponse, 0, len(grades))
	for _, grade := range grades {
		responses = append(responses, NewGradeResponse(grade))
	}

	return responses
}

// SubjectCreateRequest describes the payload for creating a subject.
type SubjectCreateRequest struct {
	Name string `json:"name" validate:"required,min=1"`
	Code string `json:"code" validate:"omitempty,max=32"`
}

// SubjectUpdateRequest describes the payload for updating a subject.
type SubjectUpdateRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1"`
	Code *string `json:"code" validate:"omitempty,max=32"`
}

// SubjectResponse is the serialized representation of a subject.
type SubjectResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSubjectResponse converts a model into a DTO.
func NewSubjectResponse(model models.Subject) SubjectResponse {
	return SubjectResponse{
		ID:        model.ID,
		Name:      model.Name,
		Code:      model.Code,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewSubjectResponseSlice converts a slice of models into DTOs.
func NewSubjectResponseSlice(subjects []models.Subject) []SubjectResponse {
	responses := make([]SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		responses = append(responses, NewSubjectResponse(subject))
	}

	return responses
}

// ClassCreateRequest describes the payload for creating a class.
type ClassCreateRequest struct {
	Name              string `json:"name" validate:"required,min=1"`
	GradeID           uint   `json:"grade_id" validate:"required"`
	HomeroomTeacherID *uint  `json:"homeroom_teacher_id"`
}

// ClassUpdateRequest describes the payload for updating a class.
type ClassUpdateRequest struct {
	Name              *string `json:"name" validate:"omitempty,min=1"`
	GradeID           *uint   `json:"grade_id"`
	HomeroomTeacherID *uint   `json:"homeroom_teacher_id"`
}

// ClassResponse is the serialized representation of a class.
type ClassResponse struct {
	ID                uint           `json:"id"`
	Name              string         `json:"name"`
	GradeID           uint           `json:"grade_id"`
	Grade             *GradeResponse `json:"grade,omitempty"`
	HomeroomTeacherID *uint          `json:"homeroom_teacher_id"`
	HomeroomTeacher   *UserResponse  `json:"homeroom_teacher,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// NewClassResponse converts a model into a DTO, including shallow relations
// when they were preloaded.
func NewClassResponse(model models.Class) ClassResponse {
	response := ClassResponse{
		ID:                model.ID,
		Name:              model.Name,
		GradeID:           model.GradeID,
		HomeroomTeacherID: model.HomeroomTeacherID,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}

	if model.Grade.ID != 0 {
		grade := NewGradeResponse(model.Grade)
		response.Grade = &grade
	}

	if model.HomeroomTeacher != nil && model.HomeroomTeacher.ID != 0 {
		teacher := NewUserResponse(*model.HomeroomTeacher)
		response.HomeroomTeacher = &teacher
	}

	return response
}

// NewClassResponseSlice converts a slice of models into DTOs.
func NewClassResponseSlice(classes []models.Class) []ClassResponse {
	responses := make([]ClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, NewClassResponse(class))
	}

	return responses
}

// EnrollmentCreateRequest describes the payload for enrolling a student into a class.
type EnrollmentCreateRequest struct {
	UserID  uint `json:"user_id" validate:"required"`
	ClassID uint `json:"class_id" validate:"required"`
}

// EnrollmentResponse is the serialized representation of an enrollment.
type EnrollmentResponse struct {
	ID        uint           `json:"id"`
	UserID    uint           `json:"user_id"`
	ClassID   uint           `json:"class_id"`
	User      *UserResponse  `json:"user,omitempty"`
	Class     *ClassResponse `json:"class,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewEnrollmentResponse converts a model into a DTO.
func NewEnrollmentResponse(model models.Enrollment) EnrollmentResponse {
	response := EnrollmentResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		ClassID:   model.ClassID,
		CreatedAt: model.CreatedAt,
	}

	if model.User.ID != 0 {
		user := NewUserResponse(model.User)
		response.User = &user
	}

	if model.Class.ID != 0 {
		class := NewClassResponse(model.Class)
		response.Class = &class
	}

	return response
}

// NewEnrollmentResponseSlice converts a slice of models into DTOs.
func NewEnrollmentResponseSlice(enrollments []models.Enrollment) []EnrollmentResponse {
	responses := make([]EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, NewEnrollmentResponse(enrollment))
	}

	return responses
}
