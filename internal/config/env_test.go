package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://app@localhost:5432/barterhub")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("API_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Mode)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins)
	assert.Equal(t, cfg.DBDSN, cfg.DBDSNReadonly)
	assert.Equal(t, "secret", cfg.DBPasswordReadonly)
	assert.Equal(t, 3*time.Second, cfg.ClaimLockTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParseRequiresDSN(t *testing.T) {
	// restored by Setenv on cleanup
	t.Setenv("DB_DSN", "")
	require.NoError(t, os.Unsetenv("DB_DSN"))

	_, err := Parse()
	assert.Error(t, err)
}
