package evaluation

import (
	"context"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/qmodel/backend/internal/storage/models"
)

// Relations returns the current deduplicated influence graph of the project.
// The reference date is the most recent edge date on record; when the project
// has no edges at all, today is used and the result is empty.
func (e *Engine) Relations(ctx context.Context, projectID string) ([]models.Relation, error) {
	dateTo, ok, err := e.latestRelationDate(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		dateTo = time.Now()
	}
	return e.RelationsForDate(ctx, projectID, dateTo)
}

// RelationsForDate returns the deduplicated influence graph as of dateTo.
// Edges are collected over a trailing window ending at dateTo, newest first,
// and only the most recent edge per (source, target) pair survives. Edges
// whose endpoints cannot be resolved to bare entity ids are skipped.
func (e *Engine) RelationsForDate(ctx context.Context, projectID string, dateTo time.Time) ([]models.Relation, error) {
	dateFrom := dateTo.AddDate(0, 0, -e.limits.RelationWindowDays)
	docs, err := e.relationDocuments(ctx, projectID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	return dedupeRelations(docs, e.log), nil
}

// dedupeRelations collapses a date-descending edge list to the most recent
// edge per (source, target) pair, dropping edges with targets outside the
// model levels or with unresolvable composite ids.
func dedupeRelations(docs []bson.M, log *zap.Logger) []models.Relation {
	seen := make(map[string]bool, len(docs))
	ret := make([]models.Relation, 0, len(docs))
	for _, doc := range docs {
		edge := models.DecodeRelationEdge(doc)
		if edge.TargetType != string(models.Factors) && edge.TargetType != string(models.StrategicIndicators) {
			continue
		}

		sourceID, sourceOK := RelationLabel(edge.SourceID)
		targetID, targetOK := RelationLabel(edge.TargetID)
		if !sourceOK || !targetOK {
			log.Warn("Skipping relation edge with unresolvable endpoint",
				zap.String("relation", edge.Relation),
				zap.String("sourceId", edge.SourceID),
				zap.String("targetId", edge.TargetID),
			)
			continue
		}

		// Documents arrive newest first, so the first pair occurrence is
		// the most recent edge.
		pair := sourceID + "->" + targetID
		if seen[pair] {
			continue
		}
		seen[pair] = true

		ret = append(ret, models.Relation{
			Weight: formatFloat(edge.Weight),
			Source: models.RelationSource{
				ID:       sourceID,
				Value:    formatFloat(edge.Value),
				Category: edge.SourceLabel,
				Type:     edge.SourceType,
			},
			Target: models.RelationTarget{
				ID:    targetID,
				Value: edge.TargetValue,
				Type:  edge.TargetType,
			},
		})
	}
	return ret
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
