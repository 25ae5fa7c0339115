package models

import "time"

// Grade represents a school year level, e.g. "Grade 7".
type Grade struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Classes   []Class   `json:"classes,omitempty"`
}

// Subject represents a taught discipline, e.g. "Math".
type Subject struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;uniqueIndex;not null" json:"name"`
	Code      string    `gorm:"size:32" json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Class represents a homeroom group within a grade. Class names are unique
// per grade, not globally.
type Class struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:128;not null;uniqueIndex:idx_classes_name_grade" json:"name"`
	GradeID           uint      `gorm:"not null;uniqueIndex:idx_classes_name_grade" json:"grade_id"`
	HomeroomTeacherID *uint     `json:"homeroom_teacher_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	Grade             Grade     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"grade,omitempty"`
	HomeroomTeacher   *User     `gorm:"foreignKey:HomeroomTeacherID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"homeroom_teacher,omitempty"`
}

// Enrollment links a student to a class. A student enrolls in a class at most once.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_enrollments_user_class" json:"user_id"`
	ClassID   uint      `gorm:"not null;uniqueIndex:idx_enrollments_user_class" json:"class_id"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"user,omitempty"`
	Class     Class     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"class,omitempty"`
}
