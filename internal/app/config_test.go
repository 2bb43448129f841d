package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigRequiresAPIBaseURL(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("API_BASE_URL", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("API_BASE_URL", "http://api.local/v1/")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://api.local/v1", cfg.APIBaseURL)
	assert.Equal(t, int64(5<<20), cfg.ImportMaxBytes)
	assert.Equal(t, 10, cfg.PageSize)
	assert.False(t, cfg.IsProduction())
}
