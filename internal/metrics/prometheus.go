package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qmodel_query_duration_seconds",
			Help:    "Evaluation query duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"level", "kind"},
	)

	StoreQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qmodel_store_queries_total",
			Help: "Total number of evaluation store queries",
		},
		[]string{"level", "status"},
	)

	EvaluationWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qmodel_evaluation_writes_total",
			Help: "Total number of evaluation upserts",
		},
		[]string{"level", "status"},
	)

	RelationWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qmodel_relation_writes_total",
			Help: "Total number of relation edge bulk writes",
		},
		[]string{"status"},
	)

	SimulationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qmodel_simulations_total",
			Help: "Total number of what-if simulation runs",
		},
		[]string{"status"},
	)

	ActiveSimulationSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "qmodel_simulation_sessions_active",
			Help: "Currently open simulation sessions",
		},
	)
)

func Init() {
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(StoreQueriesTotal)
	prometheus.MustRegister(EvaluationWritesTotal)
	prometheus.MustRegister(RelationWritesTotal)
	prometheus.MustRegister(SimulationsTotal)
	prometheus.MustRegister(ActiveSimulationSessions)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
