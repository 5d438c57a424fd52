package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/codec"
	"github.com/ignatzorin/proposal-backend/internal/domain/document"
	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

type CreateProposalRequest struct {
	Title      string     `json:"title" binding:"max=200"`
	ClientID   *uuid.UUID `json:"client_id"`
	ProjectID  *uuid.UUID `json:"project_id"`
	TemplateID *uuid.UUID `json:"template_id"`
}

type UpdateProposalRequest struct {
	Title     string     `json:"title" binding:"max=200"`
	ClientID  *uuid.UUID `json:"client_id"`
	ProjectID *uuid.UUID `json:"project_id"`
}

// SaveDocumentRequest передаёт изменённые секции. Ключи принимаются в snake_case
// и camelCase, значения в формате API или как строка с JSON.
type SaveDocumentRequest struct {
	Sections    map[string]json.RawMessage `json:"sections" binding:"required"`
	BaseVersion *int                       `json:"base_version"`
}

type SignRequest struct {
	Name string `json:"name" form:"name"`
}

type ProposalResponse struct {
	ID             uuid.UUID                  `json:"id"`
	ProviderID     uuid.UUID                  `json:"provider_id"`
	ClientID       *uuid.UUID                 `json:"client_id"`
	ProjectID      *uuid.UUID                 `json:"project_id"`
	Title          string                     `json:"title"`
	Status         string                     `json:"status"`
	ShareLink      string                     `json:"share_link,omitempty"`
	SentAt         *time.Time                 `json:"sent_at"`
	AcceptedAt     *time.Time                 `json:"accepted_at"`
	RejectedAt     *time.Time                 `json:"rejected_at"`
	CurrentVersion int                        `json:"current_version"`
	Document       map[string]json.RawMessage `json:"document,omitempty"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// ParseSections переводит ключи запроса в секции документа.
func ParseSections(raw map[string]json.RawMessage) (map[codec.Section]any, error) {
	sections := make(map[codec.Section]any, len(raw))
	for key, value := range raw {
		section, err := codec.ParseSection(key)
		if err != nil {
			return nil, apperror.Validation(key, "неизвестная секция документа")
		}
		sections[section] = value
	}
	return sections, nil
}

// DocumentJSON кодирует документ тем же кодеком, что и хранилище.
func DocumentJSON(doc *document.Document) map[string]json.RawMessage {
	if doc == nil {
		return nil
	}
	fields, err := doc.Fields()
	if err != nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(fields))
	for key, value := range fields {
		out[key] = json.RawMessage(value)
	}
	return out
}

func optionalID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

// IDOrNil разворачивает необязательный идентификатор из запроса.
func IDOrNil(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}

// ToProposalResponse без документа используется в списках.
func ToProposalResponse(p *entity.Proposal, withDocument bool) ProposalResponse {
	resp := ProposalResponse{
		ID:             p.ID,
		ProviderID:     p.ProviderID,
		ClientID:       optionalID(p.ClientID),
		ProjectID:      optionalID(p.ProjectID),
		Title:          p.Title,
		Status:         p.Status.String(),
		ShareLink:      p.ShareLink,
		SentAt:         p.SentAt,
		AcceptedAt:     p.AcceptedAt,
		RejectedAt:     p.RejectedAt,
		CurrentVersion: p.CurrentVersion,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if withDocument {
		resp.Document = DocumentJSON(p.Document)
	}
	return resp
}

func ToProposalResponses(proposals []*entity.Proposal) []ProposalResponse {
	responses := make([]ProposalResponse, 0, len(proposals))
	for _, p := range proposals {
		responses = append(responses, ToProposalResponse(p, false))
	}
	return responses
}

type VersionResponse struct {
	ID            uuid.UUID                  `json:"id"`
	ProposalID    uuid.UUID                  `json:"proposal_id"`
	VersionNumber int                        `json:"version_number"`
	ContentHash   string                     `json:"content_hash"`
	Reason        string                     `json:"reason"`
	RestoredFrom  *uuid.UUID                 `json:"restored_from,omitempty"`
	Content       map[string]json.RawMessage `json:"content"`
	CreatedAt     time.Time                  `json:"created_at"`
}

func ToVersionResponse(v *entity.Version) VersionResponse {
	return VersionResponse{
		ID:            v.ID,
		ProposalID:    v.ProposalID,
		VersionNumber: v.VersionNumber,
		ContentHash:   v.ContentHash,
		Reason:        v.Reason.String(),
		RestoredFrom:  v.RestoredFrom,
		Content:       DocumentJSON(v.Content),
		CreatedAt:     v.CreatedAt,
	}
}

func ToVersionResponses(versions []*entity.Version) []VersionResponse {
	responses := make([]VersionResponse, 0, len(versions))
	for _, v := range versions {
		responses = append(responses, ToVersionResponse(v))
	}
	return responses
}

// SaveDocumentResponse возвращает предложение после сохранения и созданная версия.
type SaveDocumentResponse struct {
	Proposal ProposalResponse `json:"proposal"`
	Version  VersionResponse  `json:"version"`
}
