package evaluation

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	appmetrics "github.com/qmodel/backend/internal/metrics"
	"github.com/qmodel/backend/internal/storage/models"
	mongostore "github.com/qmodel/backend/internal/storage/mongo"
	"github.com/qmodel/backend/pkg/logger"
)

// Limits caps the size of aggregation results. There is no pagination: the
// caps are hard cut-offs, kept configurable instead of implicit.
type Limits struct {
	GroupLimit         int
	BucketLimit        int
	RelationLimit      int
	RelationWindowDays int
}

func DefaultLimits() Limits {
	return Limits{
		GroupLimit:         10000,
		BucketLimit:        10000,
		RelationLimit:      1000,
		RelationWindowDays: 15,
	}
}

func (l Limits) withDefaults() Limits {
	def := DefaultLimits()
	if l.GroupLimit <= 0 {
		l.GroupLimit = def.GroupLimit
	}
	if l.BucketLimit <= 0 {
		l.BucketLimit = def.BucketLimit
	}
	if l.RelationLimit <= 0 {
		l.RelationLimit = def.RelationLimit
	}
	if l.RelationWindowDays <= 0 {
		l.RelationWindowDays = def.RelationWindowDays
	}
	return l
}

// Engine answers evaluation and relation queries and performs evaluation and
// relation writes against the backing store. All operations are synchronous
// request/response calls; the Engine assumes the store connection is already
// open and does not manage its lifecycle.
type Engine struct {
	store  *mongostore.Client
	limits Limits
	log    *zap.Logger
}

func NewEngine(store *mongostore.Client, limits Limits) *Engine {
	return &Engine{
		store:  store,
		limits: limits.withDefaults(),
		log:    logger.GetLogger(),
	}
}

// bucket is one aggregation group: an entity id plus its matching records.
type bucket struct {
	ID        string   `bson:"_id"`
	Documents []bson.M `bson:"documents"`
}

func (e *Engine) aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := e.store.Database().Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregation on %q failed: %w", collection, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode aggregation result from %q: %w", collection, err)
	}
	return nil
}

func (e *Engine) entityBuckets(ctx context.Context, level models.Level, projectID string,
	pipeline mongo.Pipeline, kind string, checkExists bool) ([]bucket, error) {

	collection := level.Collection(projectID)
	start := time.Now()
	if checkExists {
		if err := e.store.RequireCollection(ctx, collection); err != nil {
			appmetrics.StoreQueriesTotal.WithLabelValues(string(level), "error").Inc()
			return nil, err
		}
	}

	var buckets []bucket
	if err := e.aggregate(ctx, collection, pipeline, &buckets); err != nil {
		appmetrics.StoreQueriesTotal.WithLabelValues(string(level), "error").Inc()
		return nil, err
	}

	appmetrics.StoreQueriesTotal.WithLabelValues(string(level), "ok").Inc()
	appmetrics.QueryDuration.WithLabelValues(string(level), kind).Observe(time.Since(start).Seconds())
	e.log.Debug("Evaluation query executed",
		zap.String("collection", collection),
		zap.String("kind", kind),
		zap.Int("groups", len(buckets)),
	)
	return buckets, nil
}
