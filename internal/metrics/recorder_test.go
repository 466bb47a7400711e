package metrics

import "time"

type testRecorder struct {
	results map[ResultLabel]int
	uploads map[bool]int
	hits    int
	runs    int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{results: map[ResultLabel]int{}, uploads: map[bool]int{}}
}

func (t *testRecorder) IncMatchResult(result ResultLabel) { t.results[result]++ }
func (t *testRecorder) ObserveUploadDuration(_ time.Duration, success bool) {
	t.uploads[success]++
}
func (t *testRecorder) IncCacheHit()                     { t.hits++ }
func (t *testRecorder) ObserveRunDuration(time.Duration) { t.runs++ }

var (
	_ Recorder = (*testRecorder)(nil)
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)
