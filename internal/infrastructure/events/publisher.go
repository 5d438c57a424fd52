// Package events доставляет события жизненного цикла предложений: в RabbitMQ
// для внешних потребителей и по WebSocket исполнителю.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/goroutine"
	"github.com/ignatzorin/proposal-backend/internal/logger"
)

type Publisher interface {
	Publish(ctx context.Context, event entity.ProposalEvent) error
}

// Nop отбрасывает события.
type Nop struct{}

func (Nop) Publish(context.Context, entity.ProposalEvent) error { return nil }

// Fanout доставляет событие всем получателям. Ошибка одного получателя не
// мешает остальным.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event entity.ProposalEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Async публикует событие в фоне, не задерживая ответ на запрос. Контекст
// запроса не используется: он завершается раньше доставки.
type Async struct {
	next    Publisher
	timeout time.Duration
	spawn   func(ctx context.Context, fn func(context.Context))
}

func NewAsync(next Publisher, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Async{next: next, timeout: timeout, spawn: goroutine.SafeGoWithContext}
}

func (a *Async) Publish(_ context.Context, event entity.ProposalEvent) error {
	a.spawn(context.Background(), func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		if err := a.next.Publish(ctx, event); err != nil {
			logger.Log.WithFields(logrus.Fields{
				"component":   "events",
				"event":       event.Type,
				"proposal_id": event.ProposalID,
			}).WithError(err).Warn("событие не доставлено")
		}
	})
	return nil
}
