package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Keep the test hermetic regardless of the host environment.
	for _, key := range []string{"TONEDOWN_ADDR", "TONEDOWN_PORT", "TOXICITY_API_KEY", "TONEDOWN_SCORING_ENDPOINT", "TONEDOWN_LOG_LEVEL", "TONEDOWN_LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, DefaultScoringEndpoint, cfg.Moderation.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Moderation.Timeout)
	assert.Empty(t, cfg.Moderation.APIKey)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tonedown.yaml")
	content := `
server:
  addr: ":8088"
moderation:
  endpoint: "https://scoring.internal/v1/score"
  api_key: "file-key"
logging:
  level: debug
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8088", cfg.Server.Addr)
	assert.Equal(t, "https://scoring.internal/v1/score", cfg.Moderation.Endpoint)
	assert.Equal(t, "file-key", cfg.Moderation.APIKey)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TONEDOWN_PORT", "9999")
	t.Setenv("TOXICITY_API_KEY", "env-key")
	t.Setenv("TONEDOWN_SCORING_ENDPOINT", "https://alt.example.net/score")
	t.Setenv("TONEDOWN_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "env-key", cfg.Moderation.APIKey)
	assert.Equal(t, "https://alt.example.net/score", cfg.Moderation.Endpoint)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tonedown.yaml")
	require.NoError(t, os.WriteFile(path, []byte("moderation:\n  api_key: file-key\n"), 0o600))

	t.Setenv("TOXICITY_API_KEY", "env-key")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Moderation.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg.Logging.Format = "json"
	cfg.Moderation.Endpoint = ""
	assert.Error(t, cfg.Validate())

	cfg.Moderation.Endpoint = DefaultScoringEndpoint
	cfg.Server.Addr = ""
	assert.Error(t, cfg.Validate())
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tonedown.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o600))

	reloaded := make(chan *Config, 1)
	watcher, err := NewWatcher(path, nil, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "debug", cfg.Logging.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("config reload was not observed")
	}
}

func TestWatcher_IgnoresInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tonedown.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o600))

	reloaded := make(chan *Config, 1)
	watcher, err := NewWatcher(path, nil, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	// A config that fails validation must not reach the callback.
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  format: xml\n"), 0o600))

	select {
	case cfg := <-reloaded:
		t.Fatalf("unexpected reload with invalid config: %+v", cfg)
	case <-time.After(500 * time.Millisecond):
	}
}
