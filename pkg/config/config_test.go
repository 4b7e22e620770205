package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Mongo.Host)
	assert.Equal(t, 27017, cfg.Mongo.Port)
	assert.Equal(t, "qmodel", cfg.Mongo.Database)

	assert.Equal(t, 10000, cfg.Query.GroupLimit)
	assert.Equal(t, 10000, cfg.Query.BucketLimit)
	assert.Equal(t, 1000, cfg.Query.RelationLimit)
	assert.Equal(t, 15, cfg.Query.RelationWindowDays)

	assert.Equal(t, "info", cfg.Logging.Level)
}
