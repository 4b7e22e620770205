package simulation

import (
	"errors"

	"go.uber.org/zap"

	"github.com/qmodel/backend/internal/storage/models"
	"github.com/qmodel/backend/pkg/logger"
)

// ErrUnknownMetric reports an override against a metric evaluation id that is
// not part of the model snapshot.
var ErrUnknownMetric = errors.New("metric not found in simulation model")

// Model is an in-memory what-if snapshot of one evaluation date: metric and
// factor bundles indexed by their evaluation id, plus the metric -> factor
// influence graph of that date. Overrides and recomputes never touch the
// store; the model is discarded with the session that owns it.
//
// A Model is exclusively owned by one session. It is not safe for concurrent
// use.
type Model struct {
	metrics map[string]*models.MetricBundle
	factors map[string]*models.FactorBundle

	// influenced maps a metric evaluation id to the factor evaluation ids it
	// feeds; impacts maps a factor evaluation id to its per-metric weights.
	influenced map[string][]string
	impacts    map[string]map[string]float64

	dirty map[string]bool
	log   *zap.Logger
}

// NewModel builds a simulation model from one date's metric bundles, factor
// bundles and metric -> factor edges. Bundles without an evaluation for the
// date are skipped and logged; edges referencing ids outside the supplied
// bundles are skipped and logged, never added to the influence graph.
func NewModel(metrics []models.MetricBundle, factors []models.FactorBundle, edges []models.RelationEdge) *Model {
	m := &Model{
		metrics:    make(map[string]*models.MetricBundle, len(metrics)),
		factors:    make(map[string]*models.FactorBundle, len(factors)),
		influenced: make(map[string][]string),
		impacts:    make(map[string]map[string]float64),
		dirty:      make(map[string]bool),
		log:        logger.GetLogger(),
	}

	for i := range metrics {
		metric := metrics[i]
		if len(metric.Evaluations) == 0 {
			m.log.Warn("Metric bundle without evaluation skipped", zap.String("metric", metric.ID))
			continue
		}
		m.metrics[metric.Evaluations[0].ID] = &metric
	}
	for i := range factors {
		factor := factors[i]
		if len(factor.Evaluations) == 0 {
			m.log.Warn("Factor bundle without evaluation skipped", zap.String("factor", factor.ID))
			continue
		}
		m.factors[factor.Evaluations[0].ID] = &factor
	}

	m.readEdges(edges)
	return m
}

func (m *Model) readEdges(edges []models.RelationEdge) {
	edgeMetricIDs := make(map[string]bool)
	edgeFactorIDs := make(map[string]bool)

	for _, edge := range edges {
		metricID, factorID := edge.SourceID, edge.TargetID
		edgeMetricIDs[metricID] = true
		edgeFactorIDs[factorID] = true

		if !contains(m.influenced[metricID], factorID) {
			m.influenced[metricID] = append(m.influenced[metricID], factorID)
		}

		if _, ok := m.metrics[metricID]; !ok {
			m.log.Warn("Edge references metric absent from snapshot",
				zap.String("metricId", metricID),
				zap.String("factorId", factorID),
			)
			continue
		}
		if _, ok := m.factors[factorID]; !ok {
			m.log.Warn("Edge references factor absent from snapshot",
				zap.String("metricId", metricID),
				zap.String("factorId", factorID),
			)
			continue
		}

		weights, ok := m.impacts[factorID]
		if !ok {
			weights = make(map[string]float64)
			m.impacts[factorID] = weights
		}
		if _, dup := weights[metricID]; dup {
			m.log.Warn("Duplicate edge skipped",
				zap.String("metricId", metricID),
				zap.String("factorId", factorID),
			)
			continue
		}
		weights[metricID] = edge.Weight
	}

	m.validate(edgeMetricIDs, edgeFactorIDs)
}

// validate is advisory only: count and membership mismatches between the
// edge set and the supplied bundles are logged, never fatal.
func (m *Model) validate(edgeMetricIDs, edgeFactorIDs map[string]bool) {
	if len(edgeMetricIDs) != len(m.metrics) {
		m.log.Warn("Metric count mismatch between edges and bundles",
			zap.Int("edges", len(edgeMetricIDs)),
			zap.Int("bundles", len(m.metrics)),
		)
	}
	if len(edgeFactorIDs) != len(m.factors) {
		m.log.Warn("Factor count mismatch between edges and bundles",
			zap.Int("edges", len(edgeFactorIDs)),
			zap.Int("bundles", len(m.factors)),
		)
	}
	for id := range edgeMetricIDs {
		if _, ok := m.metrics[id]; !ok {
			m.log.Warn("Metric referenced by edges but missing from bundles", zap.String("metricId", id))
		}
	}
	for id := range edgeFactorIDs {
		if _, ok := m.factors[id]; !ok {
			m.log.Warn("Factor referenced by edges but missing from bundles", zap.String("factorId", id))
		}
	}
}

// SetMetric overrides one metric's value and marks every factor it influences
// as dirty. The override replaces the metric's evaluation with a fresh one
// carrying the new value; id, datasource, date and rationale are kept.
func (m *Model) SetMetric(metricID string, value float64) error {
	metric, ok := m.metrics[metricID]
	if !ok {
		return ErrUnknownMetric
	}

	overrideEvaluation(&metric.Evaluations, value)
	for _, factorID := range m.influenced[metricID] {
		m.dirty[factorID] = true
	}
	return nil
}

// SetMetrics applies a batch of overrides. Order between independent metric
// overrides is unspecified. The first unknown metric id aborts the batch.
func (m *Model) SetMetrics(values map[string]float64) error {
	for metricID, value := range values {
		if err := m.SetMetric(metricID, value); err != nil {
			return err
		}
	}
	return nil
}

// Simulate recomputes every dirty factor as the weighted average of the
// current values of the metrics in its influence map, then clears the dirty
// set and returns all factor bundles, recomputed and untouched alike.
//
// A metric present in the influence map but absent from the snapshot
// contributes value 0 with its full weight. A factor whose weights sum to
// zero is left at its prior value and logged.
func (m *Model) Simulate() []models.FactorBundle {
	for factorID := range m.dirty {
		weights := m.impacts[factorID]

		var sumWeights, sumValues float64
		for metricID, weight := range weights {
			var value float64
			if metric, ok := m.metrics[metricID]; ok && len(metric.Evaluations) > 0 {
				value = metric.Evaluations[0].Value
			}
			sumWeights += weight
			sumValues += value * weight
		}

		if sumWeights == 0 {
			m.log.Warn("Factor has zero total weight, keeping prior value",
				zap.String("factorId", factorID),
			)
			continue
		}

		factor := m.factors[factorID]
		overrideEvaluation(&factor.Evaluations, sumValues/sumWeights)
	}

	m.dirty = make(map[string]bool)
	return m.Factors()
}

// Factors returns the current factor bundles of the model.
func (m *Model) Factors() []models.FactorBundle {
	ret := make([]models.FactorBundle, 0, len(m.factors))
	for _, factor := range m.factors {
		ret = append(ret, *factor)
	}
	return ret
}

// overrideEvaluation swaps the sole evaluation of a snapshot bundle for a new
// one with the given value. Evaluations are immutable, so a copy is made
// instead of mutating in place.
func overrideEvaluation(evals *[]models.Evaluation, value float64) {
	if len(*evals) == 0 {
		return
	}
	prior := (*evals)[0]
	*evals = []models.Evaluation{{
		ID:         prior.ID,
		Datasource: prior.Datasource,
		Date:       prior.Date,
		Value:      value,
		Rationale:  prior.Rationale,
	}}
}

func contains(values []string, v string) bool {
	for _, e := range values {
		if e == v {
			return true
		}
	}
	return false
}
