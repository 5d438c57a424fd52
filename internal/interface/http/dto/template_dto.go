package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
)

type TemplateRequest struct {
	Name           string                     `json:"name" binding:"required"`
	Description    string                     `json:"description"`
	Sections       map[string]json.RawMessage `json:"sections"`
	FromProposalID *uuid.UUID                 `json:"from_proposal_id"`
}

type TemplateResponse struct {
	ID          uuid.UUID                  `json:"id"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Document    map[string]json.RawMessage `json:"document"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

func ToTemplateResponse(t *entity.ProposalTemplate) TemplateResponse {
	return TemplateResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Document:    DocumentJSON(t.Document),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func ToTemplateResponses(templates []*entity.ProposalTemplate) []TemplateResponse {
	responses := make([]TemplateResponse, 0, len(templates))
	for _, t := range templates {
		responses = append(responses, ToTemplateResponse(t))
	}
	return responses
}
