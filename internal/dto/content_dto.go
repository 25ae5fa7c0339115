package dto

import (
	"encoding/json"
	"time"

	"github.com/openedu/school-api/internal/models"
)

// UnitCreateRequest describes the payload for creating a unit under a subject.
type UnitCreateRequest struct {
	SubjectID  uint   `json:"subject_id" validate:"required"`
	Title      string `json:"title" validate:"required,min=1"`
	OrderIndex int    `json:"order_index" validate:"gte=0"`
}

// UnitUpdateRequest describes the payload for updating a unit.
type UnitUpdateRequest struct {
	Title      *string `json:"title" validate:"omitempty,min=1"`
	OrderIndex *int    `json:"order_index" validate:"omitempty,gte=0"`
}

// UnitResponse is the serialized representation of a unit.
type UnitResponse struct {
	ID         uint      `json:"id"`
	SubjectID  uint      `json:"subject_id"`
	Title      string    `json:"title"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewUnitResponse converts a model into a DTO.
func NewUnitResponse(model models.Unit) UnitResponse {
	return UnitResponse{
		ID:         model.ID,
		SubjectID:  model.SubjectID,
		Title:      model.Title,
		OrderIndex: model.OrderIndex,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// NewUnitResponseSlice converts a slice of models into DTOs.
func NewUnitResponseSlice(units []models.Unit) []UnitResponse {
	responses := make([]UnitResponse, 0, len(units))
	for _, unit := range units {
		responses = append(responses, NewUnitResponse(unit))
	}

	return responses
}

// LessonCreateRequest describes the payload for creating a lesson under a unit.
type LessonCreateRequest struct {
	UnitID     uint   `json:"unit_id" validate:"required"`
	Title      string `json:"title" validate:"required,min=1"`
	OrderIndex int    `json:"order_index" validate:"gte=0"`
}

// LessonUpdateRequest describes the payload for updating a lesson.
type LessonUpdateRequest struct {
	Title      *string `json:"title" validate:"omitempty,min=1"`
	OrderIndex *int    `json:"order_index" validate:"omitempty,gte=0"`
}

// LessonResponse is the serialized representation of a lesson.
type LessonResponse struct {
	ID         uint      `json:"id"`
	UnitID     uint      `json:"unit_id"`
	Title      string    `json:"title"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewLessonResponse converts a model into a DTO.
func NewLessonResponse(model models.Lesson) LessonResponse {
	return LessonResponse{
		ID:         model.ID,
		UnitID:     model.UnitID,
		Title:      model.Title,
		OrderIndex: model.OrderIndex,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// NewLessonResponseSlice converts a slice of models into DTOs.
func NewLessonResponseSlice(lessons []models.Lesson) []LessonResponse {
	responses := make([]LessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		responses = append(responses, NewLessonResponse(lesson))
	}

	return responses
}

// AssetCreateRequest describes the payload for attaching a content asset to a
// lesson. URLOrKey may be omitted when a file is uploaded alongside the request.
type AssetCreateRequest struct {
	LessonID   uint            `json:"lesson_id" form:"lesson_id" validate:"required"`
	Type       string          `json:"type" form:"type" validate:"required,oneof=PDF VIDEO LINK"`
	URLOrKey   string          `json:"url_or_key" form:"url_or_key"`
	Title      string          `json:"title" form:"title" validate:"required,min=1"`
	Language   string          `json:"language" form:"language" validate:"omitempty,bcp47_language_tag"`
	Metadata   json.RawMessage `json:"metadata" form:"-"`
	Version    int             `json:"version" form:"version" validate:"omitempty,gte=1"`
}

// AssetUpdateRequest describes the payload for updating a content asset.
type AssetUpdateRequest struct {
	Title    *string         `json:"title" validate:"omitempty,min=1"`
	Language *string         `json:"language" validate:"omitempty,bcp47_language_tag"`
	Metadata json.RawMessage `json:"metadata"`
	Version  *int            `json:"version" validate:"omitempty,gte=1"`
}

// AssetResponse is the serialized representation of a content asset.
type AssetResponse struct {
	ID        uint            `json:"id"`
	LessonID  uint            `json:"lesson_id"`
	Type      string          `json:"type"`
	URLOrKey  string          `json:"url_or_key"`
	Title     string          `json:"title"`
	Language  string          `json:"language"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewAssetResponse converts a model into a DTO.
func NewAssetResponse(model models.ContentAsset) AssetResponse {
	return AssetResponse{
		ID:        model.ID,
		LessonID:  model.LessonID,
		Type:      model.Type,
		URLOrKey:  model.URLOrKey,
		Title:     model.Title,
		Language:  model.Language,
		Metadata:  json.RawMessage(model.Metadata),
		Version:   model.Version,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// NewAssetResponseSlice converts a slice of models into DTOs.
func NewAssetResponseSlice(assets []models.ContentAsset) []AssetResponse {
	responses := make([]AssetResponse, 0, len(assets))
	for _, asset := range assets {
		responses = append(responses, NewAssetResponse(asset))
	}

	return responses
}
