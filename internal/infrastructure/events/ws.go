package events

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
)

// Broadcaster: часть ws.Hub, нужная для уведомлений.
type Broadcaster interface {
	BroadcastToUser(ctx context.Context, userID uuid.UUID, event string, data any) error
}

// WSNotifier отправляет событие исполнителю, владельцу предложения.
type WSNotifier struct {
	hub Broadcaster
}

func NewWSNotifier(hub Broadcaster) *WSNotifier {
	return &WSNotifier{hub: hub}
}

func (n *WSNotifier) Publish(ctx context.Context, event entity.ProposalEvent) error {
	return n.hub.BroadcastToUser(ctx, event.ProviderID, string(event.Type), event)
}
