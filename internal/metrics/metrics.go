// Package metrics exposes indexer counters on a private Prometheus registry.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Namespace prefixes every metric name.
const Namespace = "satoru_indexer"

// Metrics records decode and fetch outcomes. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	eventsDecoded   *prometheus.CounterVec
	eventsUnknown   prometheus.Counter
	recordsInserted *prometheus.CounterVec
	insertFailures  *prometheus.CounterVec
	processDuration *prometheus.HistogramVec

	eventsFetched prometheus.Counter
	lastBlock     prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		eventsDecoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "events_decoded_total",
				Help:      "Events decoded into records",
			},
			[]string{"event"},
		),
		eventsUnknown: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "events_unknown_total",
				Help:      "Events whose key has no decoder",
			},
		),
		recordsInserted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "records_inserted_total",
				Help:      "Records accepted by the sink",
			},
			[]string{"event"},
		),
		insertFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "insert_failures_total",
				Help:      "Records rejected by the sink",
			},
			[]string{"event"},
		),
		processDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "process_duration_seconds",
				Help:      "Time to decode and insert one event",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"event"},
		),
		eventsFetched: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "events_fetched_total",
				Help:      "Events fetched from the node after deduplication",
			},
		),
		lastBlock: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "last_processed_block",
				Help:      "Last block of the most recent completed batch",
			},
		),
	}

	m.registry.MustRegister(
		m.eventsDecoded,
		m.eventsUnknown,
		m.recordsInserted,
		m.insertFailures,
		m.processDuration,
		m.eventsFetched,
		m.lastBlock,
	)
	return m
}

func (m *Metrics) IncDecoded(event string) {
	if m == nil {
		return
	}
	m.eventsDecoded.WithLabelValues(event).Inc()
}

func (m *Metrics) IncUnknown() {
	if m == nil {
		return
	}
	m.eventsUnknown.Inc()
}

func (m *Metrics) IncInserted(event string) {
	if m == nil {
		return
	}
	m.recordsInserted.WithLabelValues(event).Inc()
}

func (m *Metrics) IncInsertFailure(event string) {
	if m == nil {
		return
	}
	m.insertFailures.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveProcess(event string, d time.Duration) {
	if m == nil {
		return
	}
	m.processDuration.WithLabelValues(event).Observe(d.Seconds())
}

func (m *Metrics) AddFetched(n int) {
	if m == nil {
		return
	}
	m.eventsFetched.Add(float64(n))
}

func (m *Metrics) SetLastBlock(block uint64) {
	if m == nil {
		return
	}
	m.lastBlock.Set(float64(block))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
