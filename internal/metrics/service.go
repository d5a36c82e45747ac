package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// Service is the Prometheus implementation of Metrics.
type Service struct {
	BackendReads       prometheus.Counter
	BackendWrites      prometheus.Counter
	BackendErrors      prometheus.Counter
	FlushRuns          prometheus.Counter
	FlushFailures      prometheus.Counter
	PendingWrites      prometheus.Gauge
	DegradedWorksheets prometheus.Gauge
	StartupTimeSeconds prometheus.Gauge
}

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		BackendReads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_backend_reads_total",
			Help: "The total number of bulk reads issued to the spreadsheet backend.",
		}),
		BackendWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_backend_writes_total",
			Help: "The total number of overwrite and append calls issued to the spreadsheet backend.",
		}),
		BackendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_backend_errors_total",
			Help: "The total number of failed spreadsheet backend calls.",
		}),
		FlushRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_flush_runs_total",
			Help: "The total number of flush passes over the pending write queues.",
		}),
		FlushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_flush_failures_total",
			Help: "The total number of flush batches that failed and were re-queued.",
		}),
		PendingWrites: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "league_pending_writes",
			Help: "The number of enqueued mutations not yet applied to the backend.",
		}),
		DegradedWorksheets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "league_degraded_worksheets",
			Help: "The number of worksheets serving reads from memory after repeated flush failures.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "league_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.BackendReads,
		s.BackendWrites,
		s.BackendErrors,
		s.FlushRuns,
		s.FlushFailures,
		s.PendingWrites,
		s.DegradedWorksheets,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncBackendReads() { s.BackendReads.Inc() }

func (s *Service) IncBackendWrites() { s.BackendWrites.Inc() }

func (s *Service) IncBackendErrors() { s.BackendErrors.Inc() }

func (s *Service) IncFlushRuns() { s.FlushRuns.Inc() }

func (s *Service) IncFlushFailures() { s.FlushFailures.Inc() }

func (s *Service) SetPendingWrites(count float64) { s.PendingWrites.Set(count) }

func (s *Service) SetDegradedWorksheets(count float64) { s.DegradedWorksheets.Set(count) }

func (s *Service) SetStartupTime(seconds float64) { s.StartupTimeSeconds.Set(seconds) }
