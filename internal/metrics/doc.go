// Package metrics provides observability hooks for upload runs.
//
// Components receive a Recorder and default to NoopRecorder, so call sites
// never check for nil:
//
//	orch := pipeline.New(resolver, uploader, pipeline.WithRecorder(metrics.NoopRecorder{}))
//
// When metrics are enabled, the watch command installs a PrometheusRecorder
// backed by its own registry and exposes it through Listen and Server.
package metrics
