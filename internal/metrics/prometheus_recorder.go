package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "checkem"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	checks          *prom.CounterVec
	checkDuration   prom.Histogram
	persistResults  *prom.CounterVec
	persistDuration *prom.HistogramVec
	trackedKeys     prom.Gauge
	notifications   *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil registry gets a fresh private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		checks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Check calls by whether the value changed",
		}, []string{"changed"}),
		checkDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Duration of check calls including auto-save",
			Buckets:   prom.DefBuckets,
		}),
		persistResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "persist_results_total",
			Help:      "Store load/save outcomes",
		}, []string{"op", "result"}),
		persistDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "persist_duration_seconds",
			Help:      "Duration of whole-store load/save operations",
			Buckets:   prom.DefBuckets,
		}, []string{"op"}),
		trackedKeys: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_keys",
			Help:      "Number of records in the store",
		}),
		notifications: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Change notifications by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.checks, pr.checkDuration, pr.persistResults, pr.persistDuration, pr.trackedKeys, pr.notifications)
	return pr
}

func (p *PrometheusRecorder) IncCheck(changed bool) {
	if p == nil {
		return
	}
	label := "false"
	if changed {
		label = "true"
	}
	p.checks.WithLabelValues(label).Inc()
}

func (p *PrometheusRecorder) ObserveCheckDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.checkDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPersist(op PersistOp, result ResultLabel) {
	if p == nil {
		return
	}
	p.persistResults.WithLabelValues(string(op), string(result)).Inc()
}

func (p *PrometheusRecorder) ObservePersistDuration(op PersistOp, d time.Duration) {
	if p == nil {
		return
	}
	p.persistDuration.WithLabelValues(string(op)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetTrackedKeys(n int) {
	if p == nil {
		return
	}
	p.trackedKeys.Set(float64(n))
}

func (p *PrometheusRecorder) IncNotify(success bool) {
	if p == nil {
		return
	}
	res := string(ResultFailure)
	if success {
		res = string(ResultSuccess)
	}
	p.notifications.WithLabelValues(res).Inc()
}
