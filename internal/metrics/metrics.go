// Package metrics exposes the bot's Prometheus collectors:
//
//	bot_jobs_total{type,status}          jobs processed by the per-symbol queues
//	bot_jobs_discarded_total             pending jobs dropped by a queue purge
//	bot_gate_results_total{job,class}    error gate outcomes
//	bot_streams_open{family}             live stream subscriptions
//	bot_actions_total{action}            actions determined by decision cycles
//	bot_cancel_results_total{side,result} cancel attempts made by the open-order state machine
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mtxJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_jobs_total",
			Help: "Jobs processed by symbol queues",
		},
		[]string{"type", "status"},
	)

	mtxJobsDiscarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_jobs_discarded_total",
			Help: "Pending jobs discarded when a queue was purged",
		},
	)

	mtxGateResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_gate_results_total",
			Help: "Error gate results by job and class",
		},
		[]string{"job", "class"},
	)

	mtxStreamsOpen = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bot_streams_open",
			Help: "Open stream subscriptions by family",
		},
		[]string{"family"},
	)

	mtxActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_actions_total",
			Help: "Actions determined by decision cycles",
		},
		[]string{"action"},
	)

	mtxCancelResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_cancel_results_total",
			Help: "Cancel attempts by side and result",
		},
		[]string{"side", "result"},
	)

	registry = prometheus.NewRegistry()
)

func init() {
	registry.MustRegister(
		mtxJobs,
		mtxJobsDiscarded,
		mtxGateResults,
		mtxStreamsOpen,
		mtxActions,
		mtxCancelResults,
		collectors.NewGoCollector(),
	)
}

func ObserveJob(jobType, status string) {
	mtxJobs.WithLabelValues(jobType, status).Inc()
}

func ObserveJobsDiscarded(n int) {
	mtxJobsDiscarded.Add(float64(n))
}

func ObserveGateResult(job, class string) {
	mtxGateResults.WithLabelValues(job, class).Inc()
}

func SetStreamsOpen(family string, n int) {
	mtxStreamsOpen.WithLabelValues(family).Set(float64(n))
}

func ObserveAction(action string) {
	mtxActions.WithLabelValues(action).Inc()
}

func ObserveCancel(side string, ok bool) {
	result := "cancelled"
	if !ok {
		result = "failed"
	}
	mtxCancelResults.WithLabelValues(side, result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
