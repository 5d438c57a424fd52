package codec

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/metrics"
)

const previewLimit = 120

// Anomaly описывает секцию, которую не удалось разобрать при чтении.
type Anomaly struct {
	Section Section
	Reason  string
	Err     error
}

var (
	hookMu sync.RWMutex
	hook   func(Anomaly)
)

// SetAnomalyHook подписывает обработчик на аномалии чтения и возвращает
// функцию отписки. Используется утилитой перенормализации и тестами.
func SetAnomalyHook(fn func(Anomaly)) (restore func()) {
	hookMu.Lock()
	prev := hook
	hook = fn
	hookMu.Unlock()
	return func() {
		hookMu.Lock()
		hook = prev
		hookMu.Unlock()
	}
}

func anomalyReason(err error) string {
	switch {
	case errors.Is(err, ErrNotJSON):
		return "not_json"
	case errors.Is(err, ErrInvalidValue):
		return "invalid_value"
	default:
		return "shape_mismatch"
	}
}

func reportAnomaly(section Section, raw any, err error) {
	reason := anomalyReason(err)
	metrics.RecordDecodeAnomaly(section.String(), reason)
	logger.Log.WithFields(logrus.Fields{
		"component": "codec",
		"section":   section,
		"reason":    reason,
		"raw":       preview(raw),
	}).Warnf("секция заменена значением по умолчанию: %v", err)

	hookMu.RLock()
	fn := hook
	hookMu.RUnlock()
	if fn != nil {
		fn(Anomaly{Section: section, Reason: reason, Err: err})
	}
}

// noteLegacy считает чтения в устаревшем формате, чтобы видеть, сколько
// записей ещё ждут перенормализации.
func noteLegacy(section Section, raw any) {
	switch raw.(type) {
	case string, []byte:
	default:
		return
	}
	enc := Inspect(section, raw)
	if !enc.NeedsRewrite() {
		return
	}
	metrics.RecordLegacyRead(section.String(), string(enc))
	logger.Log.WithFields(logrus.Fields{
		"component": "codec",
		"section":   section,
		"encoding":  enc,
	}).Debug("прочитана секция в устаревшем формате")
}

func preview(raw any) string {
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprintf("%v", raw)
	}
	r := []rune(s)
	if len(r) > previewLimit {
		return string(r[:previewLimit]) + "…"
	}
	return s
}
