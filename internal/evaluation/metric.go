package evaluation

import (
	"context"
	"time"

	"github.com/qmodel/backend/internal/storage/models"
)

// MetricEvaluations returns every metric of the project with its latest
// evaluation.
func (e *Engine) MetricEvaluations(ctx context.Context, projectID string) ([]models.MetricBundle, error) {
	buckets, err := e.latestBuckets(ctx, models.Metrics, projectID, "")
	if err != nil {
		return nil, err
	}
	return buildMetricBundles(buckets), nil
}

// MetricEvaluation returns the latest evaluation of one metric, or nil when
// the metric has none.
func (e *Engine) MetricEvaluation(ctx context.Context, projectID, metricID string) (*models.MetricBundle, error) {
	buckets, err := e.latestElementBuckets(ctx, models.Metrics, projectID, metricID)
	if err != nil {
		return nil, err
	}
	bundles := buildMetricBundles(buckets)
	if len(bundles) == 0 {
		return nil, nil
	}
	return &bundles[0], nil
}

// MetricEvaluationsRanged returns every metric of the project with its
// evaluations inside the closed interval, ascending by date.
func (e *Engine) MetricEvaluationsRanged(ctx context.Context, projectID string, from, to time.Time) ([]models.MetricBundle, error) {
	buckets, err := e.rangedBuckets(ctx, models.Metrics, projectID, "", from, to)
	if err != nil {
		return nil, err
	}
	return buildMetricBundles(buckets), nil
}

// MetricEvaluationRanged returns one metric's evaluations inside the closed
// interval, or nil when there are none.
func (e *Engine) MetricEvaluationRanged(ctx context.Context, projectID, metricID string, from, to time.Time) (*models.MetricBundle, error) {
	buckets, err := e.rangedElementBuckets(ctx, models.Metrics, projectID, metricID, from, to)
	if err != nil {
		return nil, err
	}
	bundles := buildMetricBundles(buckets)
	if len(bundles) == 0 {
		return nil, nil
	}
	return &bundles[0], nil
}

// MetricSnapshot returns the metric bundles of one exact evaluation date.
// Simulation read path: a missing collection degrades to an empty result.
func (e *Engine) MetricSnapshot(ctx context.Context, projectID string, date time.Time) ([]models.MetricBundle, error) {
	buckets, err := e.snapshotBuckets(ctx, models.Metrics, projectID, date)
	if err != nil {
		return nil, err
	}
	return buildMetricBundles(buckets), nil
}
