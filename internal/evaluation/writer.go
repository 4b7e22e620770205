package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	appmetrics "github.com/qmodel/backend/internal/metrics"
	"github.com/qmodel/backend/internal/storage/models"
)

const defaultDatasource = "dashboard"

// EvaluationWrite carries everything needed to upsert one dated evaluation.
type EvaluationWrite struct {
	Project      string
	EntityID     string
	Name         string
	Description  string
	Date         time.Time
	Value        float64
	Rationale    string
	Datasource   string
	Estimation   models.Estimation
	Missing      []string
	MismatchDays int
	ForwardLinks []string
}

// SetEvaluation upserts one evaluation keyed by its hard id. The full
// document is overwritten; the estimation field is omitted entirely (never
// written as null) when absent.
func (e *Engine) SetEvaluation(ctx context.Context, level models.Level, w EvaluationWrite) error {
	collection := level.Collection(w.Project)
	if err := e.store.RequireCollection(ctx, collection); err != nil {
		appmetrics.EvaluationWritesTotal.WithLabelValues(string(level), "error").Inc()
		return err
	}

	hardID := HardID(w.Project, w.EntityID, w.Date)
	datasource := w.Datasource
	if datasource == "" {
		datasource = defaultDatasource
	}

	doc := bson.M{
		models.FieldID:             hardID,
		models.FieldProject:        w.Project,
		level.EntityField():        w.EntityID,
		models.FieldEvaluationDate: w.Date.Format(models.DateFormat),
		models.FieldDatasource:     datasource,
		models.FieldName:           w.Name,
		models.FieldDescription:    w.Description,
		models.FieldValue:          w.Value,
		models.FieldRationale:      w.Rationale,
		models.FieldDatesMismatch:  w.MismatchDays,
	}
	if missingField := level.MissingField(); missingField != "" {
		doc[missingField] = missingOrEmpty(w.Missing)
	}
	switch level {
	case models.Metrics:
		doc[models.FieldFactorLinks] = missingOrEmpty(w.ForwardLinks)
	case models.Factors:
		doc[models.FieldIndicatorLinks] = missingOrEmpty(w.ForwardLinks)
	}
	if w.Estimation != nil {
		doc[models.FieldEstimation] = estimationDocs(w.Estimation)
	}

	filter := bson.M{models.FieldID: hardID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	if _, err := e.store.Database().Collection(collection).UpdateOne(ctx, filter, update, opts); err != nil {
		appmetrics.EvaluationWritesTotal.WithLabelValues(string(level), "error").Inc()
		return fmt.Errorf("failed to upsert evaluation %q: %w", hardID, err)
	}

	appmetrics.EvaluationWritesTotal.WithLabelValues(string(level), "ok").Inc()
	e.log.Debug("Evaluation upserted",
		zap.String("collection", collection),
		zap.String("id", hardID),
	)
	return nil
}

func missingOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func estimationDocs(est models.Estimation) []bson.M {
	docs := make([]bson.M, 0, len(est))
	for _, item := range est {
		doc := bson.M{
			models.FieldEstimationID:    item.ID,
			models.FieldEstimationLabel: item.Label,
			models.FieldEstimationValue: item.Value,
		}
		if item.UpperThreshold != nil {
			doc[models.FieldEstimationUpperThreshold] = *item.UpperThreshold
		}
		docs = append(docs, doc)
	}
	return docs
}

// RewriteMetricFactorLinks overwrites, for every evaluation of the metric
// bundle, only the denormalized factor-link array of the stored record.
// Used after the relation graph changes, so the arrays stay consistent with
// the edge list.
func (e *Engine) RewriteMetricFactorLinks(ctx context.Context, metric models.MetricBundle) error {
	return e.rewriteForwardLinks(ctx, models.Metrics, metric.Project, metric.ID,
		metric.Evaluations, models.FieldFactorLinks, metric.Factors)
}

// RewriteFactorIndicatorLinks overwrites, for every evaluation of the factor
// bundle, only the denormalized indicator-link array of the stored record.
func (e *Engine) RewriteFactorIndicatorLinks(ctx context.Context, factor models.FactorBundle) error {
	return e.rewriteForwardLinks(ctx, models.Factors, factor.Project, factor.ID,
		factor.Evaluations, models.FieldIndicatorLinks, factor.Indicators)
}

func (e *Engine) rewriteForwardLinks(ctx context.Context, level models.Level, projectID, entityID string,
	evals []models.Evaluation, linkField string, links []string) error {

	collection := level.Collection(projectID)
	if err := e.store.RequireCollection(ctx, collection); err != nil {
		return err
	}

	opts := options.Update().SetUpsert(true)
	for _, ev := range evals {
		date, err := time.Parse(models.DateFormat, ev.Date)
		if err != nil {
			return fmt.Errorf("evaluation %q has malformed date %q: %w", ev.ID, ev.Date, err)
		}

		hardID := HardID(projectID, entityID, date)
		update := bson.M{"$set": bson.M{linkField: missingOrEmpty(links)}}
		if _, err := e.store.Database().Collection(collection).UpdateOne(ctx, bson.M{models.FieldID: hardID}, update, opts); err != nil {
			return fmt.Errorf("failed to rewrite links of %q: %w", hardID, err)
		}
	}
	return nil
}

// WriteMetricFactorRelations bulk-upserts one metric -> factor edge per
// source metric id. The weight/value/category slices are positionally
// aligned with metricIDs; missing positions default to zero/empty.
//
// The write is unordered and best effort: one failing edge does not abort
// the rest of the batch. The boolean result is true only when the store
// acknowledged the batch and every edge was matched or inserted.
func (e *Engine) WriteMetricFactorRelations(ctx context.Context, projectID string, metricIDs []string,
	weights, sourceValues []float64, sourceCategories []string,
	factorID string, date time.Time, targetValue string) (bool, error) {

	return e.writeRelationEdges(ctx, projectID, metricIDs, weights, sourceValues, sourceCategories,
		factorID, date, targetValue, true)
}

// WriteFactorIndicatorRelations bulk-upserts one factor -> strategic
// indicator edge per source factor id, with the same contract as
// WriteMetricFactorRelations.
func (e *Engine) WriteFactorIndicatorRelations(ctx context.Context, projectID string, factorIDs []string,
	weights, sourceValues []float64, sourceCategories []string,
	indicatorID string, date time.Time, targetValue string) (bool, error) {

	return e.writeRelationEdges(ctx, projectID, factorIDs, weights, sourceValues, sourceCategories,
		indicatorID, date, targetValue, false)
}

func (e *Engine) writeRelationEdges(ctx context.Context, projectID string, sourceIDs []string,
	weights, sourceValues []float64, sourceCategories []string,
	targetID string, date time.Time, targetValue string, metricToFactor bool) (bool, error) {

	collection := models.Relations.Collection(projectID)
	if err := e.store.RequireCollection(ctx, collection); err != nil {
		appmetrics.RelationWritesTotal.WithLabelValues("error").Inc()
		return false, err
	}

	sourceType, targetType := string(models.Factors), string(models.StrategicIndicators)
	if metricToFactor {
		sourceType, targetType = string(models.Metrics), string(models.Factors)
	}

	writes := make([]mongo.WriteModel, 0, len(sourceIDs))
	for i, sourceID := range sourceIDs {
		relation := RelationKey(projectID, sourceID, targetID, date)
		doc := bson.M{
			models.FieldEvaluationDate: date.Format(models.DateFormat),
			models.FieldProject:        projectID,
			models.FieldRelation:       relation,
			models.FieldSourceID:       HardID(projectID, sourceID, date),
			models.FieldSourceType:     sourceType,
			models.FieldTargetID:       HardID(projectID, targetID, date),
			models.FieldTargetType:     targetType,
			models.FieldValue:          floatAt(sourceValues, i),
			models.FieldWeight:         floatAt(weights, i),
			models.FieldTargetValue:    targetValue,
			models.FieldSourceLabel:    stringAt(sourceCategories, i),
		}

		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{models.FieldID: relation}).
			SetUpdate(bson.M{"$set": doc}).
			SetUpsert(true))
	}

	opts := options.BulkWrite().SetOrdered(false)
	result, err := e.store.Database().Collection(collection).BulkWrite(ctx, writes, opts)
	if err != nil {
		appmetrics.RelationWritesTotal.WithLabelValues("error").Inc()
		var bwe mongo.BulkWriteException
		if errors.As(err, &bwe) {
			// Partial failure of an unordered batch: surfaced as a boolean,
			// the caller decides on remediation.
			e.log.Warn("Partial relation bulk write failure",
				zap.String("collection", collection),
				zap.Int("requested", len(sourceIDs)),
				zap.Int("failed", len(bwe.WriteErrors)),
			)
			return false, nil
		}
		return false, fmt.Errorf("relation bulk write on %q failed: %w", collection, err)
	}

	written := result.MatchedCount + result.UpsertedCount
	ok := written == int64(len(sourceIDs))
	if ok {
		appmetrics.RelationWritesTotal.WithLabelValues("ok").Inc()
	} else {
		appmetrics.RelationWritesTotal.WithLabelValues("error").Inc()
		e.log.Warn("Relation bulk write count mismatch",
			zap.String("collection", collection),
			zap.Int("requested", len(sourceIDs)),
			zap.Int64("written", written),
		)
	}
	return ok, nil
}

func stringAt(values []string, i int) string {
	if i >= 0 && i < len(values) {
		return values[i]
	}
	return ""
}

func floatAt(values []float64, i int) float64 {
	if i >= 0 && i < len(values) {
		return values[i]
	}
	return 0
}
