package evaluation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/forgelabs/planforge/internal/rubric"
)

var (
	// EvaluationsTotal counts completed evaluations.
	// Labels: verdict (approved, rejected)
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planforge",
			Subsystem: "evaluation",
			Name:      "evaluations_total",
			Help:      "Total number of plan evaluations by verdict",
		},
		[]string{"verdict"},
	)

	// CriterionScores tracks the distribution of rubric scores.
	// Labels: criterion
	CriterionScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "planforge",
			Subsystem: "evaluation",
			Name:      "criterion_score",
			Help:      "Rubric score per criterion (0-10)",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		},
		[]string{"criterion"},
	)

	// CriticalIssuesPerPlan tracks how many blocking issues each
	// evaluation produced.
	CriticalIssuesPerPlan = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "planforge",
			Subsystem: "evaluation",
			Name:      "critical_issues_per_plan",
			Help:      "Number of critical issues found per evaluated plan",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	// ConsistencyIssuesTotal counts structural findings.
	// Labels: severity (error, warning)
	ConsistencyIssuesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planforge",
			Subsystem: "evaluation",
			Name:      "consistency_issues_total",
			Help:      "Total structural validator findings by severity",
		},
		[]string{"severity"},
	)
)

// recordResult updates Prometheus metrics from one evaluation result.
func recordResult(r *Result, verdict string) {
	if r == nil {
		return
	}

	EvaluationsTotal.WithLabelValues(verdict).Inc()
	CriticalIssuesPerPlan.Observe(float64(len(r.CriticalIssues)))

	for _, c := range rubric.Criteria() {
		if sc, ok := r.Scores[c]; ok {
			CriterionScores.WithLabelValues(string(c)).Observe(float64(sc.Score))
		}
	}

	if r.Consistency != nil {
		if n := r.Consistency.ErrorCount(); n > 0 {
			ConsistencyIssuesTotal.WithLabelValues("error").Add(float64(n))
		}
		if n := r.Consistency.WarningCount(); n > 0 {
			ConsistencyIssuesTotal.WithLabelValues("warning").Add(float64(n))
		}
	}
}
