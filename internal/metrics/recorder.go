package metrics

import "time"

// ResultLabel enumerates per-match outcomes for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFail    ResultLabel = "fail"
	ResultIgnore  ResultLabel = "ignore"
)

// Recorder defines observability hooks for upload runs. Implementations may
// forward to Prometheus or any other backend.
type Recorder interface {
	IncMatchResult(result ResultLabel)
	ObserveUploadDuration(d time.Duration, success bool)
	IncCacheHit()
	ObserveRunDuration(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncMatchResult(ResultLabel)                {}
func (NoopRecorder) ObserveUploadDuration(time.Duration, bool) {}
func (NoopRecorder) IncCacheHit()                              {}
func (NoopRecorder) ObserveRunDuration(time.Duration)          {}
