package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/document"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/validation"
)

// ProposalTemplate хранит заготовку документа без предложения-владельца.
// Новое предложение может начинаться с копии её содержимого.
type ProposalTemplate struct {
	ID          uuid.UUID
	ProviderID  uuid.UUID
	Name        string
	Description string
	Document    *document.Document
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewProposalTemplate(providerID uuid.UUID, name, description string, doc *document.Document, now time.Time) (*ProposalTemplate, error) {
	t := &ProposalTemplate{
		ID:         uuid.New(),
		ProviderID: providerID,
		CreatedAt:  now,
	}
	if err := t.Update(name, description, doc, now); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *ProposalTemplate) Update(name, description string, doc *document.Document, now time.Time) error {
	name = strings.TrimSpace(name)
	if err := validation.ValidateTemplateName(name); err != nil {
		return apperror.Validation("name", err.Error())
	}
	if doc == nil {
		doc = document.New()
	} else {
		doc = doc.Clone()
	}
	// В шаблоне не бывает подписи клиента.
	doc.SetClientSignature("")

	t.Name = name
	t.Description = strings.TrimSpace(description)
	t.Document = doc
	t.UpdatedAt = now
	return nil
}

func (t *ProposalTemplate) IsOwnedBy(userID uuid.UUID) bool {
	return t.ProviderID == userID
}
