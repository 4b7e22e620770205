package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollection_ProjectQualified(t *testing.T) {
	assert.Equal(t, "metrics.p", Metrics.Collection("p"))
	assert.Equal(t, "factors.p", Factors.Collection("p"))
	assert.Equal(t, "strategic_indicators.p", StrategicIndicators.Collection("p"))
	assert.Equal(t, "relations.p", Relations.Collection("p"))
}

func TestCollection_BareName(t *testing.T) {
	assert.Equal(t, "metrics", Metrics.Collection(""))
	assert.Equal(t, "metrics", Metrics.Collection("EMPTY"))
	assert.Equal(t, "metrics", Metrics.Collection("empty"))
	assert.Equal(t, "metrics", Metrics.Collection(`""`))
}

func TestEntityField(t *testing.T) {
	assert.Equal(t, "metric", Metrics.EntityField())
	assert.Equal(t, "factor", Factors.EntityField())
	assert.Equal(t, "strategic_indicator", StrategicIndicators.EntityField())
}

func TestParentField(t *testing.T) {
	assert.Equal(t, "factors", Metrics.ParentField())
	assert.Equal(t, "indicators", Factors.ParentField())
}

func TestMissingField(t *testing.T) {
	assert.Equal(t, "", Metrics.MissingField())
	assert.Equal(t, "missing_metrics", Factors.MissingField())
	assert.Equal(t, "missing_factors", StrategicIndicators.MissingField())
}
