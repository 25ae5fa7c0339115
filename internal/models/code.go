package models

import "time"

// RedeemCode is a one-time token bound to a subject. Redeeming it enrolls the
// redeemer into the subject.
type RedeemCode struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Code         string     `gorm:"size:16;uniqueIndex;not null" json:"code"`
	SubjectID    uint       `gorm:"not null;index" json:"subject_id"`
	Used         bool       `gorm:"not null;default:false" json:"used"`
	RedeemedByID *uint      `json:"redeemed_by_id"`
	RedeemedAt   *time.Time `json:"redeemed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Subject      Subject    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"subject,omitempty"`
}

// SubjectEnrollment records a student's self-service enrollment into a
// subject, created when a redeem code is used.
type SubjectEnrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"not null;index" json:"student_id"`
	SubjectID uint      `gorm:"not null;index" json:"subject_id"`
	Method    string    `gorm:"size:16;not null;default:CODE" json:"method"`
	Code      string    `gorm:"size:16" json:"code"`
	CreatedAt time.Time `json:"created_at"`
	Student   User      `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"student,omitempty"`
	Subject   Subject   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"subject,omitempty"`
}
