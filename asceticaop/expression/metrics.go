package expression

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var (
	matchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pointcut",
		Subsystem: "expression",
		Name:      "matches_total",
		Help:      "Total expression evaluations by evaluator and result",
	}, []string{"evaluator", "result"})

	definitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pointcut",
		Subsystem: "expression",
		Name:      "definitions_total",
		Help:      "Total expression definitions by outcome",
	}, []string{"status"})

	definitionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pointcut",
		Subsystem: "expression",
		Name:      "definition_duration_seconds",
		Help:      "Duration of parsing and resolving an expression",
		Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1},
	})

	namespacesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pointcut",
		Subsystem: "registry",
		Name:      "namespaces",
		Help:      "Number of live namespaces",
	})
)

var tracer = otel.Tracer("asceticaop.expression")

const (
	evaluatorMatch       = "match"
	evaluatorClassFilter = "class_filter"
	evaluatorCflow       = "cflow"
	evaluatorCflowStack  = "cflow_stack"
	evaluatorArgs        = "args"
)

type recorder struct {
	enabled bool
}

func (r recorder) match(evaluator string, result bool) {
	if !r.enabled {
		return
	}
	matchesTotal.WithLabelValues(evaluator, resultLabel(result)).Inc()
}

func (r recorder) definition(err error, seconds float64) {
	if !r.enabled {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	definitionsTotal.WithLabelValues(status).Inc()
	definitionDuration.Observe(seconds)
}

func (r recorder) namespaces(delta float64) {
	if !r.enabled {
		return
	}
	namespacesGauge.Add(delta)
}

func resultLabel(result bool) string {
	if result {
		return "true"
	}
	return "false"
}
