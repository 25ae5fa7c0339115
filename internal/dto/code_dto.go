package dto

import (
	"time"

	"github.com/openedu/school-api/internal/models"
)

// CodeGenerateRequest describes the payload for minting redeem codes for a subject.
type CodeGenerateRequest struct {
	SubjectID uint `json:"subject_id" validate:"required"`
	Count     int  `json:"count" validate:"required,gte=1,lte=500"`
}

// CodeRedeemRequest describes the payload for redeeming a code.
type CodeRedeemRequest struct {
	Code string `json:"code" validate:"required,len=8"`
}

// CodeResponse is the serialized representation of a redeem code.
type CodeResponse struct {
	ID           uint       `json:"id"`
	Code         string     `json:"code"`
	SubjectID    uint       `json:"subject_id"`
	Used         bool       `json:"used"`
	RedeemedByID *uint      `json:"redeemed_by_id"`
	RedeemedAt   *time.Time `json:"redeemed_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewCodeResponse converts a model into a DTO.
func NewCodeResponse(model models.RedeemCode) CodeResponse {
	return CodeResponse{
		ID:           model.ID,
		Code:         model.Code,
		SubjectID:    model.SubjectID,
		Used:         model.Used,
		RedeemedByID: model.RedeemedByID,
		RedeemedAt:   model.RedeemedAt,
		CreatedAt:    model.CreatedAt,
	}
}

// NewCodeResponseSlice converts a slice of models into DTOs.
func NewCodeResponseSlice(codes []models.RedeemCode) []CodeResponse {
	responses := make([]CodeResponse, 0, len(codes))
	for _, code := range codes {
		responses = append(responses, NewCodeResponse(code))
	}

	return responses
}

// RedeemResult is returned after a successful code redemption.
type RedeemResult struct {
	SubjectID uint            `json:"subject_id"`
	Subject   SubjectResponse `json:"subject"`
}
