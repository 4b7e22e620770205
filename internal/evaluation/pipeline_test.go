package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/qmodel/backend/internal/storage/models"
)

func TestParentFilter_Empty(t *testing.T) {
	assert.Empty(t, parentFilter(models.Metrics, ""))
}

func TestParentFilter_MetricsUseFactorLinks(t *testing.T) {
	filter := parentFilter(models.Metrics, "codequality")
	assert.Equal(t, bson.M{"factors": "codequality"}, filter)
}

func TestParentFilter_FactorsUseIndicatorLinks(t *testing.T) {
	filter := parentFilter(models.Factors, "productquality")
	assert.Equal(t, bson.M{"indicators": "productquality"}, filter)
}

func TestElementFilter(t *testing.T) {
	assert.Equal(t, bson.M{"metric": "bugdensity"}, elementFilter(models.Metrics, "bugdensity"))
	assert.Equal(t, bson.M{"strategic_indicator": "pq"}, elementFilter(models.StrategicIndicators, "pq"))
}

func TestDateRangeFilter_ClosedInterval(t *testing.T) {
	filter := dateRangeFilter(date(t, "2024-03-01"), date(t, "2024-03-15"))
	expected := bson.M{"evaluationDate": bson.M{
		"$gte": "2024-03-01",
		"$lte": "2024-03-15",
	}}
	assert.Equal(t, expected, filter)
}

func TestMergeFilters(t *testing.T) {
	merged := mergeFilters(
		bson.M{"factors": "codequality"},
		bson.M{"evaluationDate": bson.M{"$gte": "2024-03-01", "$lte": "2024-03-15"}},
	)
	assert.Len(t, merged, 2)
	assert.Equal(t, "codequality", merged["factors"])
}

// stageValue digs the value of one pipeline stage by operator name.
func stageValue(t *testing.T, stage bson.D, op string) interface{} {
	t.Helper()
	require.Len(t, stage, 1)
	require.Equal(t, op, stage[0].Key)
	return stage[0].Value
}

func TestLatestPipeline_SortsDescendingAndSlicesOne(t *testing.T) {
	pipeline := latestPipeline(models.Metrics, bson.M{}, 10000)
	require.Len(t, pipeline, 6)

	sortStage := stageValue(t, pipeline[1], "$sort").(bson.D)
	assert.Equal(t, "evaluationDate", sortStage[0].Key)
	assert.Equal(t, -1, sortStage[0].Value)

	projectStage := stageValue(t, pipeline[4], "$project").(bson.D)
	slice := projectStage[0].Value.(bson.D)[0].Value.(bson.A)
	assert.Equal(t, 1, slice[1])
}

func TestRangedPipeline_SortsAscendingAndSlicesBucketLimit(t *testing.T) {
	pipeline := rangedPipeline(models.Factors, bson.M{}, 10000, 500)
	require.Len(t, pipeline, 6)

	sortStage := stageValue(t, pipeline[1], "$sort").(bson.D)
	assert.Equal(t, 1, sortStage[0].Value)

	projectStage := stageValue(t, pipeline[4], "$project").(bson.D)
	slice := projectStage[0].Value.(bson.D)[0].Value.(bson.A)
	assert.Equal(t, 500, slice[1])
}

func TestGroupedPipeline_GroupsByEntityField(t *testing.T) {
	pipeline := latestPipeline(models.StrategicIndicators, bson.M{}, 10000)

	groupStage := stageValue(t, pipeline[2], "$group").(bson.D)
	assert.Equal(t, "$strategic_indicator", groupStage[0].Value)

	finalSort := stageValue(t, pipeline[5], "$sort").(bson.D)
	assert.Equal(t, "documents.strategic_indicator", finalSort[0].Key)
	assert.Equal(t, 1, finalSort[0].Value)
}

func TestRelationRangePipeline_NewestFirst(t *testing.T) {
	pipeline := relationRangePipeline(date(t, "2024-02-15"), date(t, "2024-03-01"), 1000)
	require.Len(t, pipeline, 4)

	first := stageValue(t, pipeline[0], "$match").(bson.M)
	assert.Equal(t, bson.M{"$gte": "2024-02-15"}, first["evaluationDate"])

	sortStage := stageValue(t, pipeline[2], "$sort").(bson.D)
	assert.Equal(t, -1, sortStage[0].Value)
}

func TestMetricFactorEdgesPipeline_ExactDateAndTargetType(t *testing.T) {
	pipeline := metricFactorEdgesPipeline("p", date(t, "2024-03-01"), 1000)
	require.Len(t, pipeline, 4)

	dateMatch := stageValue(t, pipeline[1], "$match").(bson.M)
	assert.Equal(t, "2024-03-01", dateMatch["evaluationDate"])

	typeMatch := stageValue(t, pipeline[2], "$match").(bson.M)
	assert.Equal(t, "factors", typeMatch["targetType"])
}
