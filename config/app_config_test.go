package config

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadAppConfigDefaults(t *testing.T) {
	cfg, err := LoadAppConfig(discard(), "does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "local", cfg.Source.Kind)
	assert.Equal(t, 22, cfg.Source.Port)
	assert.Equal(t, "06:30", cfg.Scheduler.RunAt)
	assert.Equal(t, 500, cfg.Enrichment.BatchLimit)
}

func TestLoadAppConfigValidation(t *testing.T) {
	t.Run("rejects unknown source kind", func(t *testing.T) {
		t.Setenv("SOURCE_KIND", "ftp")
		_, err := LoadAppConfig(discard(), "does-not-exist.env")
		assert.Error(t, err)
	})

	t.Run("rejects malformed run-at mark", func(t *testing.T) {
		t.Setenv("SCHEDULER_RUN_AT", "6h30")
		_, err := LoadAppConfig(discard(), "does-not-exist.env")
		assert.Error(t, err)
	})

	t.Run("sftp requires host and user", func(t *testing.T) {
		t.Setenv("SOURCE_KIND", "sftp")
		_, err := LoadAppConfig(discard(), "does-not-exist.env")
		assert.Error(t, err)
	})

	t.Run("sftp with host and user passes", func(t *testing.T) {
		t.Setenv("SOURCE_KIND", "sftp")
		t.Setenv("SOURCE_HOST", "files.internal")
		t.Setenv("SOURCE_USER", "batch")
		cfg, err := LoadAppConfig(discard(), "does-not-exist.env")
		require.NoError(t, err)
		assert.Equal(t, "files.internal", cfg.Source.Host)
	})
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "se****-key", maskSecret("secret-api-key"))
}
