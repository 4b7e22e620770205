package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimits_WithDefaults(t *testing.T) {
	limits := Limits{}.withDefaults()
	assert.Equal(t, DefaultLimits(), limits)
}

func TestLimits_ExplicitValuesKept(t *testing.T) {
	limits := Limits{
		GroupLimit:         5,
		BucketLimit:        6,
		RelationLimit:      7,
		RelationWindowDays: 8,
	}.withDefaults()

	assert.Equal(t, 5, limits.GroupLimit)
	assert.Equal(t, 6, limits.BucketLimit)
	assert.Equal(t, 7, limits.RelationLimit)
	assert.Equal(t, 8, limits.RelationWindowDays)
}

func TestLimits_PartialDefaults(t *testing.T) {
	limits := Limits{GroupLimit: 5}.withDefaults()
	assert.Equal(t, 5, limits.GroupLimit)
	assert.Equal(t, DefaultLimits().BucketLimit, limits.BucketLimit)
}
