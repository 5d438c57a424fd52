package proposal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/logger"
)

// EventPublisher доставляет уведомления о переходах жизненного цикла.
// Ошибка доставки не отменяет уже сохранённый переход.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.ProposalEvent) error
}

// LinkGenerator строит ссылку, по которой клиент открывает предложение.
type LinkGenerator interface {
	ShareLink(proposalID uuid.UUID) (string, error)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, entity.ProposalEvent) error { return nil }

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

func now() time.Time {
	return time.Now().UTC()
}

func publish(ctx context.Context, events EventPublisher, event entity.ProposalEvent) {
	if err := events.Publish(ctx, event); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"component":   "proposal",
			"event":       event.Type,
			"proposal_id": event.ProposalID,
		}).WithError(err).Warn("не удалось опубликовать событие")
	}
}
