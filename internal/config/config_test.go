package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
server:
  port: 9090
  host: "0.0.0.0"
  allowed_origins:
    - "https://example.com"

forms:
  - id: "hero"
    source: "landing-hero"
    consent_required: true
  - id: "footer"
    source: "landing-footer"

rate_limit:
  window_seconds: 120
  max_per_window: 5
  per_client_per_minute: 10

transport:
  mode: "http"
  base_url: "https://esp.example.com/api/v1"
  api_key: "test-key"
  timeout_seconds: 15
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.AllowedOrigins)

	require.Len(t, cfg.Forms, 2)
	assert.Equal(t, "hero", cfg.Forms[0].ID)
	assert.Equal(t, "landing-hero", cfg.Forms[0].Source)
	assert.True(t, cfg.Forms[0].ConsentRequired)
	assert.False(t, cfg.Forms[1].ConsentRequired)

	assert.Equal(t, 120, cfg.RateLimit.WindowSeconds)
	assert.Equal(t, 5, cfg.RateLimit.MaxPerWindow)
	assert.Equal(t, 10, cfg.RateLimit.PerClientPerMinute)

	assert.Equal(t, "http", cfg.Transport.Mode)
	assert.Equal(t, "https://esp.example.com/api/v1", cfg.Transport.BaseURL)
	assert.Equal(t, 15, cfg.Transport.TimeoutSeconds)

	require.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	configPath := writeConfig(t, `
analytics:
  enabled: true
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 60, cfg.RateLimit.WindowSeconds)
	assert.Equal(t, 3, cfg.RateLimit.MaxPerWindow)
	assert.Equal(t, 30, cfg.RateLimit.PerClientPerMinute)
	assert.Equal(t, "stub", cfg.Transport.Mode)
	assert.Equal(t, 30, cfg.Transport.TimeoutSeconds)
	assert.Equal(t, 800, cfg.Transport.StubDelayMs)
	assert.True(t, cfg.Analytics.Enabled)

	// A default form is provided so a bare config still serves one form
	require.Len(t, cfg.Forms, 1)
	assert.Equal(t, "default", cfg.Forms[0].ID)
	assert.Equal(t, "landing-page", cfg.Forms[0].Source)
	assert.True(t, cfg.Forms[0].ConsentRequired)
}

func TestLoadFromEnv(t *testing.T) {
	configPath := writeConfig(t, `
transport:
  mode: "stub"
`)

	t.Setenv("TRANSPORT_MODE", "http")
	t.Setenv("TRANSPORT_BASE_URL", "https://env.example.com")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http", cfg.Transport.Mode)
	assert.Equal(t, "https://env.example.com", cfg.Transport.BaseURL)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid stub config",
			mutate: func(c *Config) {},
		},
		{
			name:    "http without base url",
			mutate:  func(c *Config) { c.Transport.Mode = "http" },
			wantErr: "base_url",
		},
		{
			name:    "ses without contact list",
			mutate:  func(c *Config) { c.Transport.Mode = "ses" },
			wantErr: "contact_list",
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Transport.Mode = "carrier-pigeon" },
			wantErr: "unknown transport mode",
		},
		{
			name: "duplicate form ids",
			mutate: func(c *Config) {
				c.Forms = append(c.Forms, FormConfig{ID: "default", Source: "other"})
			},
			wantErr: "duplicate form id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, "")
			cfg, err := Load(configPath)
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
