package evaluation

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/qmodel/backend/internal/storage/models"
)

// Query plumbing shared by the per-level facades. "parent" scopes results to
// entities feeding that parent; the empty string means all entities.

func (e *Engine) latestBuckets(ctx context.Context, level models.Level, projectID, parent string) ([]bucket, error) {
	pipeline := latestPipeline(level, parentFilter(level, parent), e.limits.GroupLimit)
	return e.entityBuckets(ctx, level, projectID, pipeline, "latest", true)
}

func (e *Engine) latestElementBuckets(ctx context.Context, level models.Level, projectID, elementID string) ([]bucket, error) {
	pipeline := latestPipeline(level, elementFilter(level, elementID), e.limits.GroupLimit)
	return e.entityBuckets(ctx, level, projectID, pipeline, "latest", true)
}

func (e *Engine) rangedBuckets(ctx context.Context, level models.Level, projectID, parent string, from, to time.Time) ([]bucket, error) {
	filter := mergeFilters(parentFilter(level, parent), dateRangeFilter(from, to))
	pipeline := rangedPipeline(level, filter, e.limits.GroupLimit, e.limits.BucketLimit)
	return e.entityBuckets(ctx, level, projectID, pipeline, "ranged", true)
}

func (e *Engine) rangedElementBuckets(ctx context.Context, level models.Level, projectID, elementID string, from, to time.Time) ([]bucket, error) {
	filter := mergeFilters(elementFilter(level, elementID), dateRangeFilter(from, to))
	pipeline := rangedPipeline(level, filter, e.limits.GroupLimit, e.limits.BucketLimit)
	return e.entityBuckets(ctx, level, projectID, pipeline, "ranged", true)
}

// snapshotBuckets is the read path used by simulation model construction.
// The collection existence check is skipped here on purpose: the caller
// treats a missing collection as an empty result.
func (e *Engine) snapshotBuckets(ctx context.Context, level models.Level, projectID string, date time.Time) ([]bucket, error) {
	filter := dateRangeFilter(date, date)
	pipeline := rangedPipeline(level, filter, e.limits.GroupLimit, e.limits.BucketLimit)
	return e.entityBuckets(ctx, level, projectID, pipeline, "snapshot", false)
}

func (e *Engine) relationDocuments(ctx context.Context, projectID string, from, to time.Time) ([]bson.M, error) {
	collection := models.Relations.Collection(projectID)
	if err := e.store.RequireCollection(ctx, collection); err != nil {
		return nil, err
	}

	var docs []bson.M
	pipeline := relationRangePipeline(from, to, e.limits.RelationLimit)
	if err := e.aggregate(ctx, collection, pipeline, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// latestRelationDate resolves the evaluation date of the most recent edge on
// record for the project. ok is false when the project has no edges.
func (e *Engine) latestRelationDate(ctx context.Context, projectID string) (time.Time, bool, error) {
	collection := models.Relations.Collection(projectID)
	if err := e.store.RequireCollection(ctx, collection); err != nil {
		return time.Time{}, false, err
	}

	var docs []bson.M
	if err := e.aggregate(ctx, collection, latestRelationDatePipeline(), &docs); err != nil {
		return time.Time{}, false, err
	}
	if len(docs) == 0 {
		return time.Time{}, false, nil
	}

	raw := models.AsString(docs[0][models.FieldEvaluationDate])
	date, err := time.Parse(models.DateFormat, raw)
	if err != nil {
		return time.Time{}, false, nil
	}
	return date, true, nil
}

// MetricFactorEdgesAt returns the metric -> factor edges of one exact
// evaluation date. This is the simulation seed query, so the collection
// existence check is skipped and a missing collection reads as empty.
func (e *Engine) MetricFactorEdgesAt(ctx context.Context, projectID string, date time.Time) ([]models.RelationEdge, error) {
	collection := models.Relations.Collection(projectID)

	var docs []bson.M
	pipeline := metricFactorEdgesPipeline(projectID, date, e.limits.RelationLimit)
	if err := e.aggregate(ctx, collection, pipeline, &docs); err != nil {
		return nil, err
	}

	edges := make([]models.RelationEdge, 0, len(docs))
	for _, doc := range docs {
		edges = append(edges, models.DecodeRelationEdge(doc))
	}
	return edges, nil
}
