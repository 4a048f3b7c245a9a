package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultSkipped = "skipped"
)

type Metrics struct {
	dispatches *prometheus.CounterVec
	actions    *prometheus.CounterVec
	pushes     *prometheus.CounterVec
	duration   prometheus.Histogram
}

// NewMetrics registers the dispatch collectors on reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailrouter",
			Name:      "dispatch_total",
			Help:      "Inbound messages dispatched, by primary delivery result.",
		}, []string{"result"}),
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailrouter",
			Name:      "action_total",
			Help:      "Delivery actions executed, by action and result.",
		}, []string{"action", "result"}),
		pushes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailrouter",
			Name:      "push_total",
			Help:      "Push notifications attempted, by channel and result.",
		}, []string{"channel", "result"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mailrouter",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent dispatching one inbound message, pushes included.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func resultLabel(err error) string {
	if err != nil {
		return resultFailure
	}
	return resultSuccess
}
