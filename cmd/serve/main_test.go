package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigWithoutConfigFile(t *testing.T) {
	// The test binary runs in a directory with no mode.yaml, the same
	// situation as serving an arbitrary directory of casts.
	config := loadConfig()
	require.NotNil(t, config)
	assert.Equal(t, 8000, config.Server.Port)
	assert.True(t, config.Server.FetchAssets)
}
