package evaluation

import (
	"context"
	"time"

	"github.com/qmodel/backend/internal/storage/models"
)

// StrategicIndicatorEvaluations returns every strategic indicator of the
// project with its latest evaluation.
func (e *Engine) StrategicIndicatorEvaluations(ctx context.Context, projectID string) ([]models.StrategicIndicatorBundle, error) {
	buckets, err := e.latestBuckets(ctx, models.StrategicIndicators, projectID, "")
	if err != nil {
		return nil, err
	}
	return buildStrategicIndicatorBundles(buckets), nil
}

// StrategicIndicatorEvaluation returns the latest evaluation of one
// strategic indicator, or nil when it has none.
func (e *Engine) StrategicIndicatorEvaluation(ctx context.Context, projectID, indicatorID string) (*models.StrategicIndicatorBundle, error) {
	buckets, err := e.latestElementBuckets(ctx, models.StrategicIndicators, projectID, indicatorID)
	if err != nil {
		return nil, err
	}
	bundles := buildStrategicIndicatorBundles(buckets)
	if len(bundles) == 0 {
		return nil, nil
	}
	return &bundles[0], nil
}

// StrategicIndicatorEvaluationsRanged returns every strategic indicator of
// the project with its evaluations inside the closed interval.
func (e *Engine) StrategicIndicatorEvaluationsRanged(ctx context.Context, projectID string, from, to time.Time) ([]models.StrategicIndicatorBundle, error) {
	buckets, err := e.rangedBuckets(ctx, models.StrategicIndicators, projectID, "", from, to)
	if err != nil {
		return nil, err
	}
	return buildStrategicIndicatorBundles(buckets), nil
}

// StrategicIndicatorEvaluationRanged returns one strategic indicator's
// evaluations inside the closed interval, or nil when there are none.
func (e *Engine) StrategicIndicatorEvaluationRanged(ctx context.Context, projectID, indicatorID string, from, to time.Time) (*models.StrategicIndicatorBundle, error) {
	buckets, err := e.rangedElementBuckets(ctx, models.StrategicIndicators, projectID, indicatorID, from, to)
	if err != nil {
		return nil, err
	}
	bundles := buildStrategicIndicatorBundles(buckets)
	if len(bundles) == 0 {
		return nil, nil
	}
	return &bundles[0], nil
}

// StrategicIndicatorFactorsEvaluation returns one strategic indicator
// together with the latest evaluations of the factors feeding it.
func (e *Engine) StrategicIndicatorFactorsEvaluation(ctx context.Context, projectID, indicatorID string) (*models.StrategicIndicatorFactors, error) {
	buckets, err := e.latestBuckets(ctx, models.Factors, projectID, indicatorID)
	if err != nil {
		return nil, err
	}
	indicator, err := e.StrategicIndicatorEvaluation(ctx, projectID, indicatorID)
	if err != nil {
		return nil, err
	}

	sif := &models.StrategicIndicatorFactors{Factors: buildFactorBundles(buckets)}
	if indicator != nil {
		sif.Indicator = *indicator
	}
	return sif, nil
}

// StrategicIndicatorFactorsEvaluationRanged is
// StrategicIndicatorFactorsEvaluation over a closed date interval.
func (e *Engine) StrategicIndicatorFactorsEvaluationRanged(ctx context.Context, projectID, indicatorID string, from, to time.Time) (*models.StrategicIndicatorFactors, error) {
	buckets, err := e.rangedBuckets(ctx, models.Factors, projectID, indicatorID, from, to)
	if err != nil {
		return nil, err
	}
	indicator, err := e.StrategicIndicatorEvaluation(ctx, projectID, indicatorID)
	if err != nil {
		return nil, err
	}

	sif := &models.StrategicIndicatorFactors{Factors: buildFactorBundles(buckets)}
	if indicator != nil {
		sif.Indicator = *indicator
	}
	return sif, nil
}

// StrategicIndicatorFactorsEvaluations returns the factor evaluations of
// every strategic indicator in the project. The id -> name map driving the
// iteration lives only for this call.
func (e *Engine) StrategicIndicatorFactorsEvaluations(ctx context.Context, projectID string) ([]models.StrategicIndicatorFactors, error) {
	names, err := e.IDNames(ctx, projectID, models.StrategicIndicators)
	if err != nil {
		return nil, err
	}

	ret := make([]models.StrategicIndicatorFactors, 0, len(names))
	for indicatorID := range names {
		sif, err := e.StrategicIndicatorFactorsEvaluation(ctx, projectID, indicatorID)
		if err != nil {
			return nil, err
		}
		ret = append(ret, *sif)
	}
	return ret, nil
}

// StrategicIndicatorFactorsEvaluationsRanged is
// StrategicIndicatorFactorsEvaluations over a closed date interval.
func (e *Engine) StrategicIndicatorFactorsEvaluationsRanged(ctx context.Context, projectID string, from, to time.Time) ([]models.StrategicIndicatorFactors, error) {
	names, err := e.IDNames(ctx, projectID, models.StrategicIndicators)
	if err != nil {
		return nil, err
	}

	ret := make([]models.StrategicIndicatorFactors, 0, len(names))
	for indicatorID := range names {
		sif, err := e.StrategicIndicatorFactorsEvaluationRanged(ctx, projectID, indicatorID, from, to)
		if err != nil {
			return nil, err
		}
		ret = append(ret, *sif)
	}
	return ret, nil
}

// StrategicIndicatorMetricsEvaluations returns, for every factor feeding the
// strategic indicator, the latest evaluations of the metrics feeding that
// factor.
func (e *Engine) StrategicIndicatorMetricsEvaluations(ctx context.Context, projectID, indicatorID string) ([]models.FactorMetrics, error) {
	sif, err := e.StrategicIndicatorFactorsEvaluation(ctx, projectID, indicatorID)
	if err != nil {
		return nil, err
	}

	ret := make([]models.FactorMetrics, 0, len(sif.Factors))
	for _, factor := range sif.Factors {
		fm, err := e.FactorMetricsEvaluation(ctx, factor.Project, factor.ID)
		if err != nil {
			return nil, err
		}
		fm.Factor = factor
		ret = append(ret, *fm)
	}
	return ret, nil
}

// StrategicIndicatorMetricsEvaluationsRanged is
// StrategicIndicatorMetricsEvaluations over a closed date interval.
func (e *Engine) StrategicIndicatorMetricsEvaluationsRanged(ctx context.Context, projectID, indicatorID string, from, to time.Time) ([]models.FactorMetrics, error) {
	sif, err := e.StrategicIndicatorFactorsEvaluationRanged(ctx, projectID, indicatorID, from, to)
	if err != nil {
		return nil, err
	}

	ret := make([]models.FactorMetrics, 0, len(sif.Factors))
	for _, factor := range sif.Factors {
		fm, err := e.FactorMetricsEvaluationRanged(ctx, factor.Project, factor.ID, from, to)
		if err != nil {
			return nil, err
		}
		fm.Factor = factor
		ret = append(ret, *fm)
	}
	return ret, nil
}
