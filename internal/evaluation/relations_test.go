package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func relationDoc(sourceID, targetID, targetType, date string, weight float64) bson.M {
	return bson.M{
		"project":        "p",
		"evaluationDate": date,
		"relation":       "p-" + sourceID + "->" + targetID + "-" + date,
		"sourceId":       sourceID,
		"sourceType":     "metrics",
		"targetId":       targetID,
		"targetType":     targetType,
		"value":          0.8,
		"weight":         weight,
		"targetValue":    "0.62",
		"sourceLabel":    "Good",
	}
}

func TestDedupeRelations_KeepsLatestPerPair(t *testing.T) {
	// Newest first, as the store query returns them.
	docs := []bson.M{
		relationDoc("p-bugdensity-2024-03-10", "p-codequality-2024-03-10", "factors", "2024-03-10", 0.7),
		relationDoc("p-bugdensity-2024-03-01", "p-codequality-2024-03-01", "factors", "2024-03-01", 0.5),
	}

	relations := dedupeRelations(docs, zap.NewNop())
	require.Len(t, relations, 1)
	assert.Equal(t, "0.7", relations[0].Weight)
	assert.Equal(t, "bugdensity", relations[0].Source.ID)
	assert.Equal(t, "codequality", relations[0].Target.ID)
}

func TestDedupeRelations_DistinctPairsSurvive(t *testing.T) {
	docs := []bson.M{
		relationDoc("p-bugdensity-2024-03-10", "p-codequality-2024-03-10", "factors", "2024-03-10", 0.7),
		relationDoc("p-duplication-2024-03-10", "p-codequality-2024-03-10", "factors", "2024-03-10", 0.3),
		relationDoc("p-codequality-2024-03-10", "p-productquality-2024-03-10", "strategic_indicators", "2024-03-10", 1),
	}

	relations := dedupeRelations(docs, zap.NewNop())
	assert.Len(t, relations, 3)
}

func TestDedupeRelations_SkipsUnknownTargetType(t *testing.T) {
	docs := []bson.M{
		relationDoc("p-bugdensity-2024-03-10", "p-codequality-2024-03-10", "metrics", "2024-03-10", 0.7),
	}
	assert.Empty(t, dedupeRelations(docs, zap.NewNop()))
}

func TestDedupeRelations_SkipsUnresolvableEndpoints(t *testing.T) {
	docs := []bson.M{
		relationDoc("malformed", "p-codequality-2024-03-10", "factors", "2024-03-10", 0.7),
		relationDoc("p-bugdensity-2024-03-10", "malformed", "factors", "2024-03-10", 0.7),
	}
	assert.Empty(t, dedupeRelations(docs, zap.NewNop()))
}

func TestDedupeRelations_IntegerWeightCoerced(t *testing.T) {
	doc := relationDoc("p-bugdensity-2024-03-10", "p-codequality-2024-03-10", "factors", "2024-03-10", 0)
	doc["weight"] = int32(1)

	relations := dedupeRelations([]bson.M{doc}, zap.NewNop())
	require.Len(t, relations, 1)
	assert.Equal(t, "1", relations[0].Weight)
}

func TestDedupeRelations_SourceSnapshotFields(t *testing.T) {
	docs := []bson.M{
		relationDoc("p-bugdensity-2024-03-10", "p-codequality-2024-03-10", "factors", "2024-03-10", 0.7),
	}

	relations := dedupeRelations(docs, zap.NewNop())
	require.Len(t, relations, 1)
	assert.Equal(t, "0.8", relations[0].Source.Value)
	assert.Equal(t, "Good", relations[0].Source.Category)
	assert.Equal(t, "0.62", relations[0].Target.Value)
}
