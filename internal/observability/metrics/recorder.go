package metrics

// Recorder is the narrow metrics surface the build pipeline depends on.
// SamplingMetrics implements it; tests substitute an in-memory recorder.
type Recorder interface {
	// RecordOperation counts an operation outcome, e.g. ("build", "success").
	RecordOperation(operation, status string)

	// RecordDuration records how long an operation or stage took, in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError counts a failure of operation by error category.
	RecordError(operation, errorType string)
}

var _ Recorder = (*SamplingMetrics)(nil)
