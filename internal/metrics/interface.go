package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncOperation(op string)
	IncRejection(op, code string)
	IncMatchesApplied(n int)
	IncPeriodsFinalized()
	ObserveRatingDelta(delta float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
