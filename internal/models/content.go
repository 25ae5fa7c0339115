package models

import (
	"time"

	"gorm.io/datatypes"
)

// ContentAsset types.
const (
	AssetTypePDF   = "PDF"
	AssetTypeVideo = "VIDEO"
	AssetTypeLink  = "LINK"
)

// IsValidAssetType reports whether the given string is a known asset type.
func IsValidAssetType(assetType string) bool {
	switch assetType {
	case AssetTypePDF, AssetTypeVideo, AssetTypeLink:
		return true
	}
	return false
}

// Unit groups lessons under a subject, ordered by an explicit index.
type Unit struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SubjectID  uint      `gorm:"not null;index" json:"subject_id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	OrderIndex int       `gorm:"not null;default:0" json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Subject    Subject   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"subject,omitempty"`
}

// Lesson is a single teaching unit within a Unit.
type Lesson struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UnitID     uint      `gorm:"not null;index" json:"unit_id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	OrderIndex int       `gorm:"not null;default:0" json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Unit       Unit      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"unit,omitempty"`
}

// ContentAsset is a learning resource attached to a lesson.
type ContentAsset struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	LessonID  uint           `gorm:"not null;index" json:"lesson_id"`
	Type      string         `gorm:"size:16;not null" json:"type"`
	URLOrKey  string         `gorm:"size:512;not null" json:"url_or_key"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Language  string         `gorm:"size:8;not null;default:en" json:"language"`
	Metadata  datatypes.JSON `gorm:"type:json" json:"metadata,omitempty"`
	Version   int            `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Lesson    Lesson         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"lesson,omitempty"`
}
