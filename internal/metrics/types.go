package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	Operations         *prometheus.CounterVec
	Rejections         *prometheus.CounterVec
	MatchesApplied     prometheus.Counter
	PeriodsFinalized   prometheus.Counter
	RatingDelta        prometheus.Histogram
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
