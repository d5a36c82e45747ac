package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the store from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncBackendReads()
	IncBackendWrites()
	IncBackendErrors()
	IncFlushRuns()
	IncFlushFailures()
	SetPendingWrites(count float64)
	SetDegradedWorksheets(count float64)
	SetStartupTime(seconds float64)
}
