package filesystem

// Observer records filesystem operation metrics. Implementations are provided
// by the metrics package to break the import cycle between filesystem and metrics.
type Observer interface {
	// ObserveOperation records duration and error status for a filesystem operation.
	// operation is one of OpStat, OpReadDir, OpRead, OpWrite.
	ObserveOperation(operation string, durationSeconds float64, err error)

	// Retry-specific metrics for NFS resilience.
	ObserveRetryAttempt(operation string)
	ObserveRetrySuccess(operation string)
	ObserveRetryFailure(operation string)
	ObserveStaleError(operation string)
}

// defaultObserver is the package-level observer set at startup.
// If nil, metric recording is silently skipped (safe for tests).
var defaultObserver Observer

// SetObserver sets the package-level metrics observer.
// Call this once at startup after creating the observer implementation.
func SetObserver(o Observer) {
	defaultObserver = o
}

// observe is a nil-safe helper for the package-level observer.
func observe() Observer {
	return defaultObserver
}
