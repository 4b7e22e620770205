package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qmodel/backend/internal/storage/models"
)

func TestMissingOrEmpty(t *testing.T) {
	assert.Equal(t, []string{}, missingOrEmpty(nil))
	assert.Equal(t, []string{"a"}, missingOrEmpty([]string{"a"}))
}

func TestEstimationDocs_OmitsAbsentThreshold(t *testing.T) {
	threshold := 0.33
	docs := estimationDocs(models.Estimation{
		{ID: 1, Label: "Good", Value: 0.7, UpperThreshold: &threshold},
		{ID: 2, Label: "Bad", Value: 0.3},
	})
	require.Len(t, docs, 2)

	assert.Equal(t, 0.33, docs[0][models.FieldEstimationUpperThreshold])
	_, present := docs[1][models.FieldEstimationUpperThreshold]
	assert.False(t, present)
}

func TestPositionalDefaults(t *testing.T) {
	weights := []float64{0.7}
	categories := []string{"Good"}

	assert.Equal(t, 0.7, floatAt(weights, 0))
	assert.Equal(t, 0.0, floatAt(weights, 1))
	assert.Equal(t, "Good", stringAt(categories, 0))
	assert.Equal(t, "", stringAt(categories, 1))
}
