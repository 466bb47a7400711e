package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	matchResults   *prom.CounterVec
	uploadDuration *prom.HistogramVec
	cacheHits      prom.Counter
	runDuration    prom.Histogram
	runs           prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.matchResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "imgup",
			Name:      "match_results_total",
			Help:      "Image references processed by outcome",
		}, []string{"result"})
		pr.uploadDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "imgup",
			Name:      "upload_duration_seconds",
			Help:      "Duration of individual upload requests",
			Buckets:   prom.DefBuckets,
		}, []string{"result"})
		pr.cacheHits = prom.NewCounter(prom.CounterOpts{
			Namespace: "imgup",
			Name:      "cache_hits_total",
			Help:      "References rewritten from the run cache without uploading",
		})
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "imgup",
			Name:      "run_duration_seconds",
			Help:      "Duration of a full run over one note",
			Buckets:   prom.DefBuckets,
		})
		pr.runs = prom.NewCounter(prom.CounterOpts{
			Namespace: "imgup",
			Name:      "runs_total",
			Help:      "Completed runs",
		})
		reg.MustRegister(pr.matchResults, pr.uploadDuration, pr.cacheHits, pr.runDuration, pr.runs)
	})
	return pr
}

func (p *PrometheusRecorder) IncMatchResult(result ResultLabel) {
	if p == nil || p.matchResults == nil {
		return
	}
	p.matchResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveUploadDuration(d time.Duration, success bool) {
	if p == nil || p.uploadDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.uploadDuration.WithLabelValues(res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCacheHit() {
	if p == nil || p.cacheHits == nil {
		return
	}
	p.cacheHits.Inc()
}

// ObserveRunDuration also counts the run.
func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
	p.runs.Inc()
}
