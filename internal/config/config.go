package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FairForge/backplane/internal/provider"
)

// Backend selectors. Any other value leaves the capability unavailable rather
// than failing resolution.
const (
	BackendAlpha = "alpha"
	BackendBeta  = "beta"
	BackendGamma = "gamma"
	BackendMock  = "mock"
)

// Config is the configuration snapshot: read once at startup, immutable for
// the process lifetime. Changing it requires a fresh process.
type Config struct {
	Server   ServerConfig     `yaml:"server"`
	MockMode bool             `yaml:"mock_mode"`
	Auth     CapabilityConfig `yaml:"auth"`
	Database CapabilityConfig `yaml:"database"`
	Storage  CapabilityConfig `yaml:"storage"`
	Alpha    AlphaConfig      `yaml:"alpha"`
	Beta     BetaConfig       `yaml:"beta"`
	Gamma    GammaConfig      `yaml:"gamma"`
	Signer   SignerConfig     `yaml:"signer"`
}

type ServerConfig struct {
	Port     int    `yaml:"port" default:"8080"`
	LogLevel string `yaml:"log_level" default:"info"`
}

// CapabilityConfig binds one capability to a backend selector.
type CapabilityConfig struct {
	Backend string `yaml:"backend"`
}

// AlphaConfig holds connection parameters for the combined
// auth+database+storage service.
type AlphaConfig struct {
	Endpoint  string `yaml:"endpoint"`
	ProjectID string `yaml:"project_id"`
}

// BetaConfig holds connection parameters for the auth+database service.
type BetaConfig struct {
	Endpoint  string `yaml:"endpoint"`
	ProjectID string `yaml:"project_id"`
	APIKey    string `yaml:"api_key"`
}

// GammaConfig holds the proxy-mediated object store parameters. The client
// side only ever sees the proxy and the public URL base, never credentials.
type GammaConfig struct {
	ProxyURL      string `yaml:"proxy_url"`
	Bucket        string `yaml:"bucket"`
	PublicURLBase string `yaml:"public_url_base"`
}

// SignerConfig configures the trusted intermediary that holds the object
// store credentials and issues short-lived signed URLs.
type SignerConfig struct {
	S3Endpoint    string        `yaml:"s3_endpoint"`
	S3Region      string        `yaml:"s3_region" default:"us-east-1"`
	S3AccessKey   string        `yaml:"s3_access_key"`
	S3SecretKey   string        `yaml:"s3_secret_key"`
	URLTTL        time.Duration `yaml:"url_ttl" default:"15m"`
	RatePerSecond int           `yaml:"rate_per_second" default:"50"`
	Burst         int           `yaml:"burst" default:"100"`
}

// Default returns a config with the documented defaults applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, LogLevel: "info"},
		Signer: SignerConfig{
			S3Region:      "us-east-1",
			URLTTL:        15 * time.Minute,
			RatePerSecond: 50,
			Burst:         100,
		},
	}
}

// Load reads the snapshot from path (optional), applies environment
// overrides, and validates it. Missing parameters for a selected backend are
// a startup-time error, never a runtime one.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - operator-supplied path
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	LoadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every selected backend has its required connection
// parameters. Unknown selectors are allowed: the factory treats them as
// "capability unavailable".
func (c *Config) Validate() error {
	if c.MockMode {
		return nil
	}

	selected := map[string]bool{
		c.Auth.Backend:     true,
		c.Database.Backend: true,
		c.Storage.Backend:  true,
	}

	if selected[BackendAlpha] {
		if c.Alpha.Endpoint == "" {
			return provider.ErrConfiguration("alpha.endpoint", "required when an alpha backend is selected")
		}
		if c.Alpha.ProjectID == "" {
			return provider.ErrConfiguration("alpha.project_id", "required when an alpha backend is selected")
		}
	}

	if selected[BackendBeta] {
		if c.Beta.Endpoint == "" {
			return provider.ErrConfiguration("beta.endpoint", "required when a beta backend is selected")
		}
		if c.Beta.APIKey == "" {
			return provider.ErrConfiguration("beta.api_key", "required when a beta backend is selected")
		}
	}

	if c.Storage.Backend == BackendGamma {
		if c.Gamma.ProxyURL == "" {
			return provider.ErrConfiguration("gamma.proxy_url", "required when the gamma backend is selected")
		}
		if c.Gamma.Bucket == "" {
			return provider.ErrConfiguration("gamma.bucket", "required when the gamma backend is selected")
		}
		if c.Gamma.PublicURLBase == "" {
			return provider.ErrConfiguration("gamma.public_url_base", "required when the gamma backend is selected")
		}
	}

	// Beta has no storage surface; selecting it for storage is a
	// misconfiguration, not an unavailable capability.
	if c.Storage.Backend == BackendBeta {
		return provider.ErrConfiguration("storage.backend", "beta has no storage capability")
	}

	return nil
}
