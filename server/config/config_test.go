package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ValidateConfig(t *testing.T) {
	t.Parallel()

	t.Run("invalid listen address", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.ListenAddress = "rando-address" // doesn't follow the format

		assert.ErrorIs(t, ValidateConfig(cfg), ErrInvalidListenAddress)
	})

	t.Run("invalid lookup timeout", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.LookupConfig.Timeout = "soon"

		assert.ErrorIs(t, ValidateConfig(cfg), ErrInvalidLookupTimeout)
	})

	t.Run("negative lookup timeout", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.LookupConfig.Timeout = "-1s"

		assert.ErrorIs(t, ValidateConfig(cfg), ErrInvalidLookupTimeout)
	})

	t.Run("valid configuration", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, ValidateConfig(DefaultConfig()))
	})
}

func TestConfig_TimeoutDuration(t *testing.T) {
	t.Parallel()

	d, err := DefaultLookupConfig().TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	d, err = (&Lookup{}).TimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestConfig_Read(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := Read(filepath.Join(t.TempDir(), "missing.toml"))

		assert.Error(t, err)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.toml")

		content := `
listen_address = "127.0.0.1:9000"

[lookup_config]
model = "gemini-2.5-flash"
timeout = "5s"
`

		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Read(path)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddress)
		assert.Equal(t, "gemini-2.5-flash", cfg.LookupConfig.Model)
		assert.Equal(t, "5s", cfg.LookupConfig.Timeout)
		assert.Equal(t, DefaultCORSConfig(), cfg.CORSConfig)
	})
}
