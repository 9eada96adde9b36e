package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

var (
	// Logger is the structured audit logger for moderation decisions.
	// Operational logging stays on logrus; this stream is machine-parsed.
	Logger *zap.Logger

	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qubit_events_total",
			Help: "Total number of gateway events processed",
		},
		[]string{"type"},
	)

	offensesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qubit_offenses_recorded_total",
			Help: "Total number of content policy offenses recorded",
		},
	)

	actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qubit_moderation_actions_total",
			Help: "Total number of escalation actions executed",
		},
		[]string{"action"},
	)

	spamTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qubit_spam_messages_total",
			Help: "Total number of messages short-circuited by the anti-spam window",
		},
	)

	snapshotFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qubit_snapshot_failures_total",
			Help: "Total number of failed ledger snapshot writes",
		},
	)

	messageProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qubit_message_processing_duration_seconds",
			Help:    "Time spent processing messages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
)

func init() {
	Logger = zap.Must(zap.NewProduction())

	prometheus.MustRegister(eventsTotal, offensesTotal, actionsTotal, spamTotal, snapshotFailuresTotal, messageProcessingDuration)

	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)
}

// RecordEvent counts one processed gateway event by type.
func RecordEvent(eventType string) {
	eventsTotal.WithLabelValues(eventType).Inc()
}

func RecordOffense() {
	offensesTotal.Inc()
}

func RecordAction(action string) {
	actionsTotal.WithLabelValues(action).Inc()
}

func RecordSpam() {
	spamTotal.Inc()
}

func RecordSnapshotFailure() {
	snapshotFailuresTotal.Inc()
}

// StartMessageProcessing returns a function to record message processing duration.
func StartMessageProcessing() func(status string) {
	timer := prometheus.NewTimer(messageProcessingDuration.WithLabelValues("processing"))
	return func(status string) {
		timer.ObserveDuration()
	}
}

// MetricsServer exposes /metrics as a lifecycle component.
type MetricsServer struct {
	server *http.Server
}

func NewMetricsServer(addr string) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &MetricsServer{
		server: &http.Server{Addr: addr, Handler: mux},
	}
}

func (m *MetricsServer) Start(_ context.Context) error {
	go func() {
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server failed")
		}
	}()
	return nil
}

func (m *MetricsServer) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.server.Shutdown(shutdownCtx)
}
