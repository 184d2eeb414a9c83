package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	content := `
server: https://qa.example.com:8443
poll_interval: 500ms
log_level: debug
watch_paths:
  - ./tests
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://qa.example.com:8443", cfg.Server)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"./tests"}, cfg.WatchPaths)
	assert.Equal(t, DefaultConfig().LogFile, cfg.LogFile)
	require.NoError(t, cfg.Validate())

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")

	require.NoError(t, os.WriteFile(path, []byte("poll_interval: often"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadUnreadable(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFile)
	cfg := DefaultConfig()
	cfg.Server = "http://10.0.0.5:8000"
	cfg.WatchPaths = []string{"/srv/tests"}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty server", func(c *Config) { c.Server = "" }, "server is required"},
		{"no scheme", func(c *Config) { c.Server = "localhost:8000" }, "must be an http or https URL"},
		{"ftp", func(c *Config) { c.Server = "ftp://example.com" }, "must be an http or https URL"},
		{"zero interval", func(c *Config) { c.PollInterval = 0 }, "poll_interval must be positive"},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }, "request_timeout must be positive"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, `invalid log_level "loud"`},
		{"empty level", func(c *Config) { c.LogLevel = "" }, ""},
		{"empty watch path", func(c *Config) { c.WatchPaths = []string{""} }, "watch_paths"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
