package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the gateway.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Forms     []FormConfig    `yaml:"forms"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Redis     RedisConfig     `yaml:"redis"`
	Transport TransportConfig `yaml:"transport"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with container detection.
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// FormConfig describes one subscription form instance. Each form gets
// its own validator and rate-limit state so independent forms on one
// page never share limits.
type FormConfig struct {
	ID              string `yaml:"id"`
	Source          string `yaml:"source"`
	ConsentRequired bool   `yaml:"consent_required"`
}

// RateLimitConfig holds both the per-form submission window and the
// per-client admission limit enforced at the HTTP edge.
type RateLimitConfig struct {
	WindowSeconds      int `yaml:"window_seconds"`
	MaxPerWindow       int `yaml:"max_per_window"`
	PerClientPerMinute int `yaml:"per_client_per_minute"`
}

// Window returns the submission window as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// RedisConfig holds the optional Redis backend for edge rate limiting.
// When disabled the gateway falls back to an in-memory keyed limiter.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// TransportConfig selects and configures the submission backend.
// Mode is one of "stub", "http", or "ses".
type TransportConfig struct {
	Mode           string    `yaml:"mode"`
	BaseURL        string    `yaml:"base_url"`
	APIKey         string    `yaml:"api_key"`
	TimeoutSeconds int       `yaml:"timeout_seconds"`
	StubDelayMs    int       `yaml:"stub_delay_ms"`
	SES            SESConfig `yaml:"ses"`
}

// Timeout returns the per-submission timeout. Zero disables the
// timeout entirely (the in-flight guard then depends solely on the
// transport settling).
func (c TransportConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StubDelay returns the simulated delivery delay for the stub backend.
func (c TransportConfig) StubDelay() time.Duration {
	return time.Duration(c.StubDelayMs) * time.Millisecond
}

// SESConfig holds AWS SES v2 contact-list settings.
type SESConfig struct {
	Region      string `yaml:"region"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	ContactList string `yaml:"contact_list"`
}

// AnalyticsConfig toggles the event sink.
type AnalyticsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:8080"}
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
	if cfg.RateLimit.MaxPerWindow == 0 {
		cfg.RateLimit.MaxPerWindow = 3
	}
	if cfg.RateLimit.PerClientPerMinute == 0 {
		cfg.RateLimit.PerClientPerMinute = 30
	}
	if cfg.Transport.Mode == "" {
		cfg.Transport.Mode = "stub"
	}
	if cfg.Transport.TimeoutSeconds == 0 {
		cfg.Transport.TimeoutSeconds = 30
	}
	if cfg.Transport.StubDelayMs == 0 {
		cfg.Transport.StubDelayMs = 800
	}
	if cfg.Transport.SES.Region == "" {
		cfg.Transport.SES.Region = "us-west-2"
	}
	if len(cfg.Forms) == 0 {
		cfg.Forms = []FormConfig{{
			ID:              "default",
			Source:          "landing-page",
			ConsentRequired: true,
		}}
	}
	for i := range cfg.Forms {
		if cfg.Forms[i].Source == "" {
			cfg.Forms[i].Source = cfg.Forms[i].ID
		}
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars, so secrets
// can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if mode := os.Getenv("TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if baseURL := os.Getenv("TRANSPORT_BASE_URL"); baseURL != "" {
		cfg.Transport.BaseURL = baseURL
	}
	if apiKey := os.Getenv("TRANSPORT_API_KEY"); apiKey != "" {
		cfg.Transport.APIKey = apiKey
	}
	if accessKey := os.Getenv("AWS_SES_ACCESS_KEY"); accessKey != "" {
		cfg.Transport.SES.AccessKey = accessKey
	}
	if secretKey := os.Getenv("AWS_SES_SECRET_KEY"); secretKey != "" {
		cfg.Transport.SES.SecretKey = secretKey
	}
	if region := os.Getenv("AWS_SES_REGION"); region != "" {
		cfg.Transport.SES.Region = region
	}
	if list := os.Getenv("AWS_SES_CONTACT_LIST"); list != "" {
		cfg.Transport.SES.ContactList = list
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		if !cfg.Redis.Enabled {
			cfg.Redis.Enabled = true
		}
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}

	return cfg, nil
}

// Validate checks cross-field constraints that yaml parsing cannot.
func (c *Config) Validate() error {
	switch c.Transport.Mode {
	case "stub":
	case "http":
		if c.Transport.BaseURL == "" {
			return fmt.Errorf("transport.base_url is required for http mode")
		}
	case "ses":
		if c.Transport.SES.ContactList == "" {
			return fmt.Errorf("transport.ses.contact_list is required for ses mode")
		}
	default:
		return fmt.Errorf("unknown transport mode %q", c.Transport.Mode)
	}

	seen := make(map[string]bool, len(c.Forms))
	for _, form := range c.Forms {
		if form.ID == "" {
			return fmt.Errorf("form id must not be empty")
		}
		if seen[form.ID] {
			return fmt.Errorf("duplicate form id %q", form.ID)
		}
		seen[form.ID] = true
	}

	return nil
}
