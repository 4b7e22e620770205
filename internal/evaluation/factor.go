package evaluation

import (
	"context"
	"time"

	"github.com/qmodel/backend/internal/storage/models"
)

// FactorEvaluations returns every factor of the project with its latest
// evaluation.
func (e *Engine) FactorEvaluations(ctx context.Context, projectID string) ([]models.FactorBundle, error) {
	buckets, err := e.latestBuckets(ctx, models.Factors, projectID, "")
	if err != nil {
		return nil, err
	}
	return buildFactorBundles(buckets), nil
}

// FactorEvaluation returns the latest evaluation of one factor, or nil when
// the factor has none.
func (e *Engine) FactorEvaluation(ctx context.Context, projectID, factorID string) (*models.FactorBundle, error) {
	buckets, err := e.latestElementBuckets(ctx, models.Factors, projectID, factorID)
	if err != nil {
		return nil, err
	}
	bundles := buildFactorBundles(buckets)
	if len(bundles) == 0 {
		return nil, nil
	}
	return &bundles[0], nil
}

// FactorEvaluationsRanged returns every factor of the project with its
// evaluations inside the closed interval, ascending by date.
func (e *Engine) FactorEvaluationsRanged(ctx context.Context, projectID string, from, to time.Time) ([]models.FactorBundle, error) {
	buckets, err := e.rangedBuckets(ctx, models.Factors, projectID, "", from, to)
	if err != nil {
		return nil, err
	}
	return buildFactorBundles(buckets), nil
}

// FactorEvaluationRanged returns one factor's evaluations inside the closed
// interval, or nil when there are none.
func (e *Engine) FactorEvaluationRanged(ctx context.Context, projectID, factorID string, from, to time.Time) (*models.FactorBundle, error) {
	buckets, err := e.rangedElementBuckets(ctx, models.Factors, projectID, factorID, from, to)
	if err != nil {
		return nil, err
	}
	bundles := buildFactorBundles(buckets)
	if len(bundles) == 0 {
		return nil, nil
	}
	return &bundles[0], nil
}

// FactorSnapshot returns the factor bundles of one exact evaluation date.
// Simulation read path: a missing collection degrades to an empty result.
func (e *Engine) FactorSnapshot(ctx context.Context, projectID string, date time.Time) ([]models.FactorBundle, error) {
	buckets, err := e.snapshotBuckets(ctx, models.Factors, projectID, date)
	if err != nil {
		return nil, err
	}
	return buildFactorBundles(buckets), nil
}

// FactorMetricsEvaluation returns one factor together with the latest
// evaluations of the metrics feeding it.
func (e *Engine) FactorMetricsEvaluation(ctx context.Context, projectID, factorID string) (*models.FactorMetrics, error) {
	buckets, err := e.latestBuckets(ctx, models.Metrics, projectID, factorID)
	if err != nil {
		return nil, err
	}
	factor, err := e.FactorEvaluation(ctx, projectID, factorID)
	if err != nil {
		return nil, err
	}

	fm := &models.FactorMetrics{Metrics: buildMetricBundles(buckets)}
	if factor != nil {
		fm.Factor = *factor
	}
	return fm, nil
}

// FactorMetricsEvaluationRanged is FactorMetricsEvaluation over a closed
// date interval.
func (e *Engine) FactorMetricsEvaluationRanged(ctx context.Context, projectID, factorID string, from, to time.Time) (*models.FactorMetrics, error) {
	buckets, err := e.rangedBuckets(ctx, models.Metrics, projectID, factorID, from, to)
	if err != nil {
		return nil, err
	}
	factor, err := e.FactorEvaluation(ctx, projectID, factorID)
	if err != nil {
		return nil, err
	}

	fm := &models.FactorMetrics{Metrics: buildMetricBundles(buckets)}
	if factor != nil {
		fm.Factor = *factor
	}
	return fm, nil
}

// FactorMetricsEvaluations returns, for every factor of the project, the
// latest evaluations of the metrics feeding it. The id -> name map driving
// the iteration lives only for this call.
func (e *Engine) FactorMetricsEvaluations(ctx context.Context, projectID string) ([]models.FactorMetrics, error) {
	names, err := e.IDNames(ctx, projectID, models.Factors)
	if err != nil {
		return nil, err
	}

	ret := make([]models.FactorMetrics, 0, len(names))
	for factorID := range names {
		fm, err := e.FactorMetricsEvaluation(ctx, projectID, factorID)
		if err != nil {
			return nil, err
		}
		ret = append(ret, *fm)
	}
	return ret, nil
}

// FactorMetricsEvaluationsRanged is FactorMetricsEvaluations over a closed
// date interval.
func (e *Engine) FactorMetricsEvaluationsRanged(ctx context.Context, projectID string, from, to time.Time) ([]models.FactorMetrics, error) {
	names, err := e.IDNames(ctx, projectID, models.Factors)
	if err != nil {
		return nil, err
	}

	ret := make([]models.FactorMetrics, 0, len(names))
	for factorID := range names {
		fm, err := e.FactorMetricsEvaluationRanged(ctx, projectID, factorID, from, to)
		if err != nil {
			return nil, err
		}
		ret = append(ret, *fm)
	}
	return ret, nil
}

// IDNames returns the id -> display name map of all entities of a level.
// The result is request scoped by construction; it is never cached on the
// Engine.
func (e *Engine) IDNames(ctx context.Context, projectID string, level models.Level) (map[string]string, error) {
	buckets, err := e.latestBuckets(ctx, level, projectID, "")
	if err != nil {
		return nil, err
	}
	return idNamesFromBuckets(buckets), nil
}
