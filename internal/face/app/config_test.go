package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AIP_CONFIG_FILE", "")
	t.Setenv("AIP_APP_ID", "")
	t.Setenv("AIP_TIMEOUT", "")
	t.Setenv("AIP_BASE_URL", "")
	t.Setenv("AIP_RATE_LIMIT", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "https://aip.baidubce.com", cfg.BaseURL)
	require.Equal(t, 60*time.Second, cfg.Timeout)
	require.Equal(t, "warn", cfg.LogLevel)
	require.False(t, cfg.RateLimit)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aipface.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_id: file-app
api_key: file-key
secret_key: file-secret
timeout: 15s
rate_limit: true
log_format: json
`), 0o600))

	t.Setenv("AIP_CONFIG_FILE", path)
	t.Setenv("AIP_APP_ID", "")
	t.Setenv("AIP_API_KEY", "env-key")
	t.Setenv("AIP_SECRET_KEY", "")
	t.Setenv("AIP_TIMEOUT", "30")
	t.Setenv("AIP_RATE_LIMIT", "")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "file-app", cfg.AppID)
	require.Equal(t, "env-key", cfg.APIKey)
	require.Equal(t, "file-secret", cfg.SecretKey)
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.True(t, cfg.RateLimit)
	require.Equal(t, "json", cfg.LogFormat)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigBadFile(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		t.Setenv("AIP_CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := LoadConfig()
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("app_id: [unterminated"), 0o600))
		t.Setenv("AIP_CONFIG_FILE", path)

		_, err := LoadConfig()
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Config{AppID: "a", APIKey: "k", SecretKey: "s"}
	require.NoError(t, cfg.Validate())

	missing := cfg
	missing.SecretKey = ""
	require.ErrorContains(t, missing.Validate(), "AIP_SECRET_KEY")

	missing = cfg
	missing.AppID = ""
	require.ErrorContains(t, missing.Validate(), "AIP_APP_ID")
}
