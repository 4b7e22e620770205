package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func metricDoc(id, date string, value float64) bson.M {
	return bson.M{
		"_id":                 "p-" + id + "-" + date,
		"metric":              id,
		"project":             "p",
		"evaluationDate":      date,
		"datasource":          "dashboard",
		"name":                "Bug density",
		"description":         "Bugs per line",
		"value":               value,
		"info":                "computed",
		"dates_mismatch_days": int32(0),
		"factors":             primitive.A{"codequality"},
	}
}

func TestBuildMetricBundles(t *testing.T) {
	buckets := []bucket{{
		ID: "bugdensity",
		Documents: []bson.M{
			metricDoc("bugdensity", "2024-03-01", 0.8),
			metricDoc("bugdensity", "2024-03-02", 0.9),
		},
	}}

	bundles := buildMetricBundles(buckets)
	require.Len(t, bundles, 1)

	b := bundles[0]
	assert.Equal(t, "bugdensity", b.ID)
	assert.Equal(t, "Bug density", b.Name)
	assert.Equal(t, "p", b.Project)
	assert.Equal(t, []string{"codequality"}, b.Factors)
	require.Len(t, b.Evaluations, 2)
	assert.Equal(t, 0.8, b.Evaluations[0].Value)
	assert.Equal(t, "2024-03-02", b.Evaluations[1].Date)
}

func TestBuildMetricBundles_NameDefaultsToID(t *testing.T) {
	doc := metricDoc("bugdensity", "2024-03-01", 0.8)
	delete(doc, "name")

	bundles := buildMetricBundles([]bucket{{ID: "bugdensity", Documents: []bson.M{doc}}})
	require.Len(t, bundles, 1)
	assert.Equal(t, "bugdensity", bundles[0].Name)
}

func TestBuildFactorBundles_CarriesMissingMetrics(t *testing.T) {
	buckets := []bucket{{
		ID: "codequality",
		Documents: []bson.M{{
			"_id":             "p-codequality-2024-03-01",
			"factor":          "codequality",
			"project":         "p",
			"evaluationDate":  "2024-03-01",
			"value":           0.62,
			"missing_metrics": primitive.A{"duplication"},
			"indicators":      primitive.A{"productquality"},
		}},
	}}

	bundles := buildFactorBundles(buckets)
	require.Len(t, bundles, 1)
	assert.Equal(t, []string{"productquality"}, bundles[0].Indicators)
	require.Len(t, bundles[0].Evaluations, 1)
	assert.Equal(t, []string{"duplication"}, bundles[0].Evaluations[0].MissingElements)
}

func TestBuildStrategicIndicatorBundles_EstimationPerSlot(t *testing.T) {
	threshold := 0.33
	buckets := []bucket{{
		ID: "productquality",
		Documents: []bson.M{
			{
				"_id":                 "p-productquality-2024-03-01",
				"strategic_indicator": "productquality",
				"project":             "p",
				"evaluationDate":      "2024-03-01",
				"value":               0.7,
				"estimation": primitive.A{
					bson.M{"id": int32(1), "label": "Good", "value": 0.7, "upperThreshold": threshold},
				},
			},
			{
				"_id":                 "p-productquality-2024-03-02",
				"strategic_indicator": "productquality",
				"project":             "p",
				"evaluationDate":      "2024-03-02",
				"value":               0.8,
			},
		},
	}}

	bundles := buildStrategicIndicatorBundles(buckets)
	require.Len(t, bundles, 1)
	require.Len(t, bundles[0].Estimations, 2)

	first := bundles[0].Estimations[0]
	require.Len(t, first, 1)
	assert.Equal(t, "Good", first[0].Label)
	require.NotNil(t, first[0].UpperThreshold)
	assert.Equal(t, threshold, *first[0].UpperThreshold)

	assert.Nil(t, bundles[0].Estimations[1])
}

func TestIDNamesFromBuckets(t *testing.T) {
	buckets := []bucket{
		{ID: "bugdensity", Documents: []bson.M{metricDoc("bugdensity", "2024-03-01", 0.8)}},
		{ID: "duplication", Documents: []bson.M{{
			"metric": "duplication",
			"name":   "Duplication",
		}}},
	}

	names := idNamesFromBuckets(buckets)
	assert.Equal(t, map[string]string{
		"bugdensity":  "Bug density",
		"duplication": "Duplication",
	}, names)
}
