// Package cache хранит отрисованные страницы просмотра предложения. Ключ
// включает версию, время изменения и статус, поэтому любая запись в
// предложение делает старые записи недостижимыми.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/logger"
)

type ReviewCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// InvalidateProposal удаляет все записи предложения.
	InvalidateProposal(ctx context.Context, proposalID uuid.UUID) error
}

func proposalPrefix(proposalID uuid.UUID) string {
	return "review:" + proposalID.String() + ":"
}

// ReviewKey строит ключ страницы просмотра.
func ReviewKey(proposalID uuid.UUID, version int, updatedAt time.Time, status, template string) string {
	return fmt.Sprintf("%s%d:%d:%s:%s", proposalPrefix(proposalID), version, updatedAt.UnixNano(), status, template)
}

// GetOrRender отдаёт страницу из кэша или отрисовывает и сохраняет её. Сбой
// кэша не мешает ответу: страница просто отрисовывается заново.
func GetOrRender(ctx context.Context, c ReviewCache, key string, ttl time.Duration, render func() ([]byte, error)) ([]byte, error) {
	log := logger.Component("cache").WithField("key", key)

	if value, ok, err := c.Get(ctx, key); err != nil {
		log.WithError(err).Warn("не удалось прочитать кэш")
	} else if ok {
		return value, nil
	}

	value, err := render()
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		log.WithError(err).Warn("не удалось записать кэш")
	}
	return value, nil
}
