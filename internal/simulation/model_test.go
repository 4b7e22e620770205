package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qmodel/backend/internal/storage/models"
)

const day = "2024-03-01"

func metricBundle(id string, value float64) models.MetricBundle {
	return models.MetricBundle{
		ID:      id,
		Name:    id,
		Project: "p",
		Evaluations: []models.Evaluation{{
			ID:         "p-" + id + "-" + day,
			Datasource: "dashboard",
			Date:       day,
			Value:      value,
			Rationale:  "measured",
		}},
	}
}

func factorBundle(id string, value float64) models.FactorBundle {
	return models.FactorBundle{
		ID:      id,
		Name:    id,
		Project: "p",
		Evaluations: []models.Evaluation{{
			ID:         "p-" + id + "-" + day,
			Datasource: "dashboard",
			Date:       day,
			Value:      value,
			Rationale:  "computed",
		}},
	}
}

func edge(metricID, factorID string, weight float64) models.RelationEdge {
	return models.RelationEdge{
		Project:    "p",
		Date:       day,
		SourceID:   "p-" + metricID + "-" + day,
		SourceType: "metrics",
		TargetID:   "p-" + factorID + "-" + day,
		TargetType: "factors",
		Weight:     weight,
	}
}

func evalID(entityID string) string {
	return "p-" + entityID + "-" + day
}

// twoMetricModel builds m1=0.8 (weight 0.7) and m2=0.2 (weight 0.3) feeding
// factor f.
func twoMetricModel() *Model {
	return NewModel(
		[]models.MetricBundle{metricBundle("m1", 0.8), metricBundle("m2", 0.2)},
		[]models.FactorBundle{factorBundle("f", 0)},
		[]models.RelationEdge{edge("m1", "f", 0.7), edge("m2", "f", 0.3)},
	)
}

func factorByID(t *testing.T, factors []models.FactorBundle, id string) models.FactorBundle {
	t.Helper()
	for _, f := range factors {
		if f.ID == id {
			return f
		}
	}
	t.Fatalf("factor %q not in result", id)
	return models.FactorBundle{}
}

func TestSimulate_WeightedAverage(t *testing.T) {
	model := twoMetricModel()

	require.NoError(t, model.SetMetric(evalID("m1"), 0.8))
	factors := model.Simulate()

	f := factorByID(t, factors, "f")
	require.Len(t, f.Evaluations, 1)
	assert.InDelta(t, 0.62, f.Evaluations[0].Value, 1e-9)
}

func TestSimulate_OverrideChangesResult(t *testing.T) {
	model := twoMetricModel()

	require.NoError(t, model.SetMetric(evalID("m1"), 0.0))
	factors := model.Simulate()

	f := factorByID(t, factors, "f")
	assert.InDelta(t, 0.06, f.Evaluations[0].Value, 1e-9)
}

func TestSimulate_PreservesEvaluationIdentity(t *testing.T) {
	model := twoMetricModel()

	require.NoError(t, model.SetMetric(evalID("m1"), 0.5))
	factors := model.Simulate()

	f := factorByID(t, factors, "f")
	ev := f.Evaluations[0]
	assert.Equal(t, evalID("f"), ev.ID)
	assert.Equal(t, "dashboard", ev.Datasource)
	assert.Equal(t, day, ev.Date)
	assert.Equal(t, "computed", ev.Rationale)
}

func TestSetMetric_UnknownID(t *testing.T) {
	model := twoMetricModel()

	err := model.SetMetric("doesNotExist", 1.0)
	assert.ErrorIs(t, err, ErrUnknownMetric)

	// Snapshot untouched: recompute is a no-op.
	f := factorByID(t, model.Simulate(), "f")
	assert.Equal(t, 0.0, f.Evaluations[0].Value)
}

func TestSetMetrics_Batch(t *testing.T) {
	model := twoMetricModel()

	require.NoError(t, model.SetMetrics(map[string]float64{
		evalID("m1"): 1.0,
		evalID("m2"): 1.0,
	}))
	f := factorByID(t, model.Simulate(), "f")
	assert.InDelta(t, 1.0, f.Evaluations[0].Value, 1e-9)
}

func TestSimulate_OverrideIsolation(t *testing.T) {
	// m2 influences nothing; overriding it must not dirty any factor.
	model := NewModel(
		[]models.MetricBundle{metricBundle("m1", 0.8), metricBundle("m2", 0.2)},
		[]models.FactorBundle{factorBundle("f", 0.4)},
		[]models.RelationEdge{edge("m1", "f", 1)},
	)

	require.NoError(t, model.SetMetric(evalID("m2"), 0.9))
	f := factorByID(t, model.Simulate(), "f")
	assert.Equal(t, 0.4, f.Evaluations[0].Value)
}

func TestSimulate_ClearsDirtySet(t *testing.T) {
	model := twoMetricModel()

	require.NoError(t, model.SetMetric(evalID("m1"), 0.0))
	model.Simulate()

	// A later override re-dirties the factor; the recompute sees both the
	// old and the new override values.
	require.NoError(t, model.SetMetric(evalID("m2"), 0.9))
	f := factorByID(t, model.Simulate(), "f")
	assert.InDelta(t, (0.0*0.7+0.9*0.3)/1.0, f.Evaluations[0].Value, 1e-9)
}

func TestSimulate_ZeroWeightKeepsPriorValue(t *testing.T) {
	model := NewModel(
		[]models.MetricBundle{metricBundle("m1", 0.8)},
		[]models.FactorBundle{factorBundle("f", 0.4)},
		[]models.RelationEdge{edge("m1", "f", 0)},
	)

	require.NoError(t, model.SetMetric(evalID("m1"), 0.9))
	f := factorByID(t, model.Simulate(), "f")
	assert.Equal(t, 0.4, f.Evaluations[0].Value)
}

func TestNewModel_SkipsEdgesOutsideSnapshot(t *testing.T) {
	model := NewModel(
		[]models.MetricBundle{metricBundle("m1", 0.8)},
		[]models.FactorBundle{factorBundle("f", 0.4)},
		[]models.RelationEdge{
			edge("m1", "f", 0.5),
			edge("ghost", "f", 0.5),
		},
	)

	require.NoError(t, model.SetMetric(evalID("m1"), 0.8))
	f := factorByID(t, model.Simulate(), "f")

	// The ghost edge never entered the influence map, so the recompute uses
	// only m1's weight.
	assert.InDelta(t, 0.8, f.Evaluations[0].Value, 1e-9)
}

func TestNewModel_SkipsBundlesWithoutEvaluations(t *testing.T) {
	empty := models.MetricBundle{ID: "empty", Project: "p"}
	model := NewModel(
		[]models.MetricBundle{metricBundle("m1", 0.8), empty},
		[]models.FactorBundle{factorBundle("f", 0.4)},
		[]models.RelationEdge{edge("m1", "f", 1)},
	)

	err := model.SetMetric("p-empty-"+day, 0.5)
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestSimulate_ReturnsUntouchedFactorsToo(t *testing.T) {
	model := NewModel(
		[]models.MetricBundle{metricBundle("m1", 0.8)},
		[]models.FactorBundle{factorBundle("f1", 0.4), factorBundle("f2", 0.5)},
		[]models.RelationEdge{edge("m1", "f1", 1), edge("m1", "f2", 1)},
	)

	require.NoError(t, model.SetMetric(evalID("m1"), 0.8))
	factors := model.Simulate()
	assert.Len(t, factors, 2)
}
