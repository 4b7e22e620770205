package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAsFloat_Coercions(t *testing.T) {
	assert.Equal(t, 0.7, AsFloat(0.7))
	assert.Equal(t, 1.0, AsFloat(int32(1)))
	assert.Equal(t, 2.0, AsFloat(int64(2)))
	assert.Equal(t, 0.5, AsFloat("0.5"))
	assert.Equal(t, 0.0, AsFloat(nil))
	assert.Equal(t, 0.0, AsFloat("not a number"))
}

func TestAsFloatPtr_DistinguishesAbsent(t *testing.T) {
	assert.Nil(t, AsFloatPtr(nil))

	p := AsFloatPtr(0.0)
	require.NotNil(t, p)
	assert.Equal(t, 0.0, *p)
}

func TestAsString_Defaults(t *testing.T) {
	assert.Equal(t, "", AsString(nil))
	assert.Equal(t, "x", AsString("x"))
	assert.Equal(t, "fallback", AsStringOrDefault(nil, "fallback"))
	assert.Equal(t, "fallback", AsStringOrDefault("", "fallback"))
}

func TestAsStringSlice(t *testing.T) {
	assert.Nil(t, AsStringSlice(nil))
	assert.Equal(t, []string{"a", "b"}, AsStringSlice(primitive.A{"a", "b"}))
	assert.Equal(t, []string{"a"}, AsStringSlice([]string{"a"}))
	assert.Nil(t, AsStringSlice("not an array"))
}

func TestDecodeEvaluation(t *testing.T) {
	doc := bson.M{
		"_id":                 "p-codequality-2024-03-01",
		"datasource":          "dashboard",
		"evaluationDate":      "2024-03-01",
		"value":               0.62,
		"info":                "weighted average",
		"dates_mismatch_days": int32(2),
		"missing_metrics":     primitive.A{"duplication"},
	}

	ev := DecodeEvaluation(doc, FieldMissingMetrics)
	assert.Equal(t, "p-codequality-2024-03-01", ev.ID)
	assert.Equal(t, "2024-03-01", ev.Date)
	assert.Equal(t, 0.62, ev.Value)
	assert.Equal(t, 2, ev.MismatchDays)
	assert.Equal(t, []string{"duplication"}, ev.MissingElements)
}

func TestDecodeEvaluation_MissingFieldsDefault(t *testing.T) {
	ev := DecodeEvaluation(bson.M{"_id": "x"}, "")
	assert.Equal(t, 0.0, ev.Value)
	assert.Equal(t, 0, ev.MismatchDays)
	assert.Nil(t, ev.MissingElements)
}

func TestDecodeEstimation(t *testing.T) {
	raw := primitive.A{
		bson.M{"id": int32(1), "label": "Good", "value": 0.7, "upperThreshold": 0.33},
		bson.M{"id": int32(2), "label": "Bad", "value": 0.3},
	}

	est := DecodeEstimation(raw)
	require.Len(t, est, 2)
	assert.Equal(t, 1, est[0].ID)
	assert.Equal(t, "Good", est[0].Label)
	require.NotNil(t, est[0].UpperThreshold)
	assert.Equal(t, 0.33, *est[0].UpperThreshold)
	assert.Nil(t, est[1].UpperThreshold)
}

func TestDecodeEstimation_AbsentIsNil(t *testing.T) {
	assert.Nil(t, DecodeEstimation(nil))
	assert.Nil(t, DecodeEstimation("garbage"))
}

func TestDecodeRelationEdge_IntegerWeight(t *testing.T) {
	doc := bson.M{
		"project":        "p",
		"evaluationDate": "2024-03-01",
		"relation":       "p-m1->f1-2024-03-01",
		"sourceId":       "p-m1-2024-03-01",
		"sourceType":     "metrics",
		"targetId":       "p-f1-2024-03-01",
		"targetType":     "factors",
		"value":          0.8,
		"weight":         int32(1),
		"targetValue":    "0.62",
		"sourceLabel":    "Good",
	}

	edge := DecodeRelationEdge(doc)
	assert.Equal(t, 1.0, edge.Weight)
	assert.Equal(t, "p-m1-2024-03-01", edge.SourceID)
	assert.Equal(t, "factors", edge.TargetType)
}
