package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventProposalSent     EventType = "proposal.sent"
	EventProposalSigned   EventType = "proposal.signed"
	EventProposalAccepted EventType = "proposal.accepted"
	EventProposalRejected EventType = "proposal.rejected"
)

// ProposalEvent несёт уведомление об успешном переходе жизненного цикла.
type ProposalEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	ProposalID uuid.UUID `json:"proposal_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Status     string    `json:"status"`
	Title      string    `json:"title"`
	Version    int       `json:"version"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewProposalEvent(eventType EventType, p *Proposal, now time.Time) ProposalEvent {
	return ProposalEvent{
		ID:         uuid.New(),
		Type:       eventType,
		ProposalID: p.ID,
		ProviderID: p.ProviderID,
		Status:     p.Status.String(),
		Title:      p.Title,
		Version:    p.CurrentVersion,
		OccurredAt: now,
	}
}
