package evaluation

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/qmodel/backend/internal/storage/models"
)

// Pipeline construction for the two query families. Both group the matching
// records by entity id and finally sort the groups by entity id so output
// order is deterministic.

// parentFilter restricts a level's evaluations to entities whose forward-link
// array contains the given parent id. An empty parent means no filter.
func parentFilter(level models.Level, parent string) bson.M {
	if parent == "" {
		return bson.M{}
	}
	return bson.M{level.ParentField(): parent}
}

func elementFilter(level models.Level, elementID string) bson.M {
	return bson.M{level.EntityField(): elementID}
}

// dateRangeFilter builds the closed-interval date filter. Lexicographic
// comparison is safe because the date format is zero padded and fixed width.
func dateRangeFilter(from, to time.Time) bson.M {
	return bson.M{models.FieldEvaluationDate: bson.M{
		"$gte": from.Format(models.DateFormat),
		"$lte": to.Format(models.DateFormat),
	}}
}

func mergeFilters(filters ...bson.M) bson.M {
	merged := bson.M{}
	for _, f := range filters {
		for k, v := range f {
			merged[k] = v
		}
	}
	return merged
}

// latestPipeline keeps only the most recent record of each entity: sort all
// matches descending by date, group per entity, then slice each group to its
// first record.
func latestPipeline(level models.Level, filter bson.M, groupLimit int) mongo.Pipeline {
	return groupedPipeline(level, filter, -1, groupLimit, 1)
}

// rangedPipeline keeps each entity's records within the interval, ascending
// by date, up to bucketLimit records per entity.
func rangedPipeline(level models.Level, filter bson.M, groupLimit, bucketLimit int) mongo.Pipeline {
	return groupedPipeline(level, filter, 1, groupLimit, bucketLimit)
}

func groupedPipeline(level models.Level, filter bson.M, dateOrder, groupLimit, sliceLimit int) mongo.Pipeline {
	entityField := level.EntityField()
	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: filter}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: models.FieldEvaluationDate, Value: dateOrder}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + entityField},
			{Key: "documents", Value: bson.D{{Key: "$push", Value: "$$ROOT"}}},
		}}},
		bson.D{{Key: "$limit", Value: groupLimit}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "documents", Value: bson.D{{Key: "$slice", Value: bson.A{"$documents", sliceLimit}}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "documents." + entityField, Value: 1}}}},
	}
}

// relationRangePipeline returns raw relation records in the closed interval,
// most recent first, so consumers deduplicating by (source, target) keep the
// latest edge of each pair.
func relationRangePipeline(from, to time.Time, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{models.FieldEvaluationDate: bson.M{"$gte": from.Format(models.DateFormat)}}}},
		bson.D{{Key: "$match", Value: bson.M{models.FieldEvaluationDate: bson.M{"$lte": to.Format(models.DateFormat)}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: models.FieldEvaluationDate, Value: -1}}}},
		bson.D{{Key: "$limit", Value: limit}},
	}
}

func latestRelationDatePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: models.FieldEvaluationDate, Value: -1}}}},
		bson.D{{Key: "$limit", Value: 1}},
	}
}

// metricFactorEdgesPipeline selects the metric -> factor subgraph of one
// exact evaluation date.
func metricFactorEdgesPipeline(projectID string, date time.Time, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{models.FieldProject: projectID}}},
		bson.D{{Key: "$match", Value: bson.M{models.FieldEvaluationDate: date.Format(models.DateFormat)}}},
		bson.D{{Key: "$match", Value: bson.M{models.FieldTargetType: string(models.Factors)}}},
		bson.D{{Key: "$limit", Value: limit}},
	}
}
