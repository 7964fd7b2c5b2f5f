package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

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
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ladder_operations_total",
			Help: "The total number of attempted ladder operations.",
		}, []string{"op"}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ladder_operation_rejections_total",
			Help: "The total number of ladder operations rejected, by error code.",
		}, []string{"op", "code"}),
		MatchesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_matches_applied_total",
			Help: "The total number of match results applied to team ratings.",
		}),
		PeriodsFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_periods_finalized_total",
			Help: "The total number of periods finalized.",
		}),
		RatingDelta: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ladder_rating_delta_points",
			Help:    "Absolute rating change per team per applied match.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 75, 100, 150, 250},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ladder_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.Operations,
		s.Rejections,
		s.MatchesApplied,
		s.PeriodsFinalized,
		s.RatingDelta,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncOperation(op string) {
	s.Operations.WithLabelValues(op).Inc()
}

func (s *Service) IncRejection(op, code string) {
	s.Rejections.WithLabelValues(op, code).Inc()
}

func (s *Service) IncMatchesApplied(n int) {
	s.MatchesApplied.Add(float64(n))
}

func (s *Service) IncPeriodsFinalized() {
	s.PeriodsFinalized.Inc()
}

func (s *Service) ObserveRatingDelta(delta float64) {
	if delta < 0 {
		delta = -delta
	}
	s.RatingDelta.Observe(delta)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
