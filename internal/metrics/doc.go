// Package metrics provides the observability hooks for tracker activity.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never needs nil checks:
//
//	t := tracker.New(tracker.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// PrometheusRecorder registers its collectors on the given registry and
// HTTPHandler exposes that registry for scraping (used by `checkem watch`).
package metrics
