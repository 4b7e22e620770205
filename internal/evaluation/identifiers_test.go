package evaluation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestHardID_WithProject(t *testing.T) {
	id := HardID("p", "f1", date(t, "2024-03-01"))
	assert.Equal(t, "p-f1-2024-03-01", id)
}

func TestHardID_EmptyProject(t *testing.T) {
	id := HardID("", "f1", date(t, "2024-03-01"))
	assert.Equal(t, "f1-2024-03-01", id)
}

func TestHardID_Idempotent(t *testing.T) {
	d := date(t, "2024-03-01")
	assert.Equal(t, HardID("p", "f1", d), HardID("p", "f1", d))
}

func TestRelationKey(t *testing.T) {
	key := RelationKey("p", "m1", "f1", date(t, "2024-03-01"))
	assert.Equal(t, "p-m1->f1-2024-03-01", key)
}

func TestRelationLabel_Composite(t *testing.T) {
	label, ok := RelationLabel("p-codequality-2024-03-01")
	require.True(t, ok)
	assert.Equal(t, "codequality", label)
}

func TestRelationLabel_TwoSegments(t *testing.T) {
	label, ok := RelationLabel("p-codequality")
	require.True(t, ok)
	assert.Equal(t, "codequality", label)
}

func TestRelationLabel_Unresolvable(t *testing.T) {
	_, ok := RelationLabel("codequality")
	assert.False(t, ok)

	_, ok = RelationLabel("")
	assert.False(t, ok)
}
