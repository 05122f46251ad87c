// Package metrics exposes Prometheus counters for the analyzer surfaces.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spamurai/spamurai/internal/core"
	"go.uber.org/zap"
)

// Collector owns the analyzer metric families.
type Collector struct {
	analyses    *prometheus.CounterVec
	urlVerdicts *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewCollector registers the analyzer metrics with a fresh registry and
// returns the collector together with the registry to serve.
func NewCollector() (*Collector, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "spamurai_analyses_total",
			Help: "Completed text analyses by classification and warning level",
		}, []string{"classification", "warning_level"}),
		urlVerdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "spamurai_url_verdicts_total",
			Help: "URL risk assessments by risk level",
		}, []string{"risk_level"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "spamurai_analysis_duration_seconds",
			Help:    "Wall time per text analysis",
			Buckets: prometheus.DefBuckets,
		}),
	}, registry
}

// ObserveAnalysis records one completed analysis.
func (c *Collector) ObserveAnalysis(analysis *core.TextAnalysis, elapsed time.Duration) {
	c.analyses.WithLabelValues(analysis.Classification, string(analysis.WarningLevel)).Inc()
	for _, risk := range analysis.Phishing.URLRisks {
		if risk.RiskLevel != "" {
			c.urlVerdicts.WithLabelValues(string(risk.RiskLevel)).Inc()
		}
	}
	c.duration.Observe(elapsed.Seconds())
}

// ObserveURLVerdict records one standalone URL assessment.
func (c *Collector) ObserveURLVerdict(assessment *core.URLRiskAssessment) {
	if assessment.RiskLevel != "" {
		c.urlVerdicts.WithLabelValues(string(assessment.RiskLevel)).Inc()
	}
}

// Server serves the metrics endpoint.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewServer creates a metrics server for the given registry.
func NewServer(registry *prometheus.Registry, listenAddr string, logger *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &Server{
		srv: &http.Server{
			Addr:    listenAddr,
			Handler: mux,
		},
		logger: logger,
	}
}

// Start starts serving in the background.
func (s *Server) Start() {
	s.logger.Info("Metrics server starting", zap.String("address", s.srv.Addr))
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Metrics server error", zap.Error(err))
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
