package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Секции, которые не удалось разобрать и которые заменены значением по умолчанию.
	DecodeAnomalies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_decode_anomalies_total",
			Help: "Number of stored proposal sections replaced by defaults during decode",
		},
		[]string{"section", "reason"},
	)

	// Чтения секций в устаревшем формате (без тега, двойное кодирование).
	LegacyReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_legacy_reads_total",
			Help: "Number of proposal sections read from a legacy wire encoding",
		},
		[]string{"section", "encoding"},
	)

	LifecycleTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_lifecycle_transitions_total",
			Help: "Number of proposal status transitions",
		},
		[]string{"from", "to"},
	)

	VersionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_versions_created_total",
			Help: "Number of proposal versions appended",
		},
		[]string{"reason"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~4s
		},
		[]string{"method", "path", "status"},
	)
)

func RecordDecodeAnomaly(section, reason string) {
	DecodeAnomalies.WithLabelValues(section, reason).Inc()
}

func RecordLegacyRead(section, encoding string) {
	LegacyReads.WithLabelValues(section, encoding).Inc()
}

func RecordTransition(from, to string) {
	LifecycleTransitions.WithLabelValues(from, to).Inc()
}

func RecordVersion(reason string) {
	VersionsCreated.WithLabelValues(reason).Inc()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}
