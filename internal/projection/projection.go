// Package projection описывает то, что видит шаблон отображения предложения:
// данные предложения, документ только на чтение, состояние подписи и
// действия клиента. Шаблоны не знают о хранилище и жизненном цикле.
package projection

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/document"
	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
)

type ProposalView struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	ClientID       *uuid.UUID `json:"client_id,omitempty"`
	ProjectID      *uuid.UUID `json:"project_id,omitempty"`
	CurrentVersion int        `json:"current_version"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	RejectedAt     *time.Time `json:"rejected_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SignatureState описывает подписи и состояние формы подписи клиента.
type SignatureState struct {
	Provider  string `json:"provider"`
	Client    string `json:"client"`
	Signing   bool   `json:"signing"`
	Draft     string `json:"draft"`
	CanSign   bool   `json:"can_sign"`
	CanAccept bool   `json:"can_accept"`
	CanReject bool   `json:"can_reject"`
}

// Actions перечисляет действия клиента, доступные шаблону.
type Actions interface {
	OnStartSign()
	OnCancelSign()
	OnChangeDraftSignature(name string)
	OnConfirmSign(ctx context.Context) error
	OnAccept(ctx context.Context) error
	OnReject(ctx context.Context) error
}

type Projection struct {
	Proposal  ProposalView
	Document  document.Reader
	Signature SignatureState
	Actions   Actions
	// ActionPath: адрес страницы просмотра, от которого строятся адреса
	// действий (ActionPath + "/sign" и т.д.). Заполняется транспортом.
	ActionPath string
}

// ActionURL возвращает адрес действия клиента для HTML-форм.
func (p Projection) ActionURL(action string) string {
	return strings.TrimSuffix(p.ActionPath, "/") + "/" + action
}

func viewOf(p *entity.Proposal) ProposalView {
	view := ProposalView{
		ID:             p.ID,
		Title:          p.Title,
		Status:         p.Status.String(),
		CurrentVersion: p.CurrentVersion,
		SentAt:         p.SentAt,
		AcceptedAt:     p.AcceptedAt,
		RejectedAt:     p.RejectedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.ClientID != uuid.Nil {
		id := p.ClientID
		view.ClientID = &id
	}
	if p.ProjectID != uuid.Nil {
		id := p.ProjectID
		view.ProjectID = &id
	}
	return view
}

func build(p *entity.Proposal, actions Actions, interactive, signing bool, draft string) Projection {
	// Шаблон получает копию: даже приведение Reader к *Document не
	// позволит изменить предложение.
	doc := p.Document.Clone()
	sig := doc.Signature()

	state := SignatureState{
		Provider: sig.Provider,
		Client:   sig.Client,
		Signing:  signing,
		Draft:    draft,
	}
	if interactive && p.Status == valueobject.ProposalStatusSent {
		state.CanSign = true
		state.CanAccept = sig.IsSignedByClient()
		state.CanReject = true
	}

	return Projection{
		Proposal:  viewOf(p),
		Document:  doc,
		Signature: state,
		Actions:   actions,
	}
}

// Preview строит проекцию для просмотра исполнителем: действия отключены.
func Preview(p *entity.Proposal) Projection {
	return build(p, ReadOnlyActions{}, false, false, "")
}
