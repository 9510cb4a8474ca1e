package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Recomputations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calificaciones", Name: "recomputations_total", Help: "Office score recomputations by outcome",
	}, []string{"outcome"})
	RecomputeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "calificaciones", Name: "recompute_duration_seconds", Help: "Office score recomputation latency",
		Buckets: prometheus.DefBuckets,
	})
	WorkflowTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calificaciones", Name: "workflow_transitions_total", Help: "Period score workflow transitions",
	}, []string{"action", "outcome"})
	JobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calificaciones", Name: "job_runs_total", Help: "Background job runs",
	}, []string{"job"})
	JobErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calificaciones", Name: "job_errors_total", Help: "Background job errors",
	}, []string{"job"})
)

func init() {
	prometheus.MustRegister(Recomputations, RecomputeDuration, WorkflowTransitions, JobRuns, JobErrors)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveRecompute(d time.Duration, err error) {
	RecomputeDuration.Observe(d.Seconds())
	if err != nil {
		Recomputations.WithLabelValues("error").Inc()
		return
	}
	Recomputations.WithLabelValues("ok").Inc()
}

func ObserveTransition(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	WorkflowTransitions.WithLabelValues(action, outcome).Inc()
}
