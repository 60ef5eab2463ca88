package config

import (
	"os"
	"strconv"
)

// LoadFromEnv applies BACKPLANE_* environment overrides on top of cfg.
func LoadFromEnv(cfg *Config) {
	if port := os.Getenv("BACKPLANE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	cfg.Server.LogLevel = GetEnvOrDefault("BACKPLANE_LOG_LEVEL", cfg.Server.LogLevel)

	if mock := os.Getenv("BACKPLANE_MOCK_MODE"); mock != "" {
		if b, err := strconv.ParseBool(mock); err == nil {
			cfg.MockMode = b
		}
	}

	cfg.Auth.Backend = GetEnvOrDefault("BACKPLANE_AUTH_BACKEND", cfg.Auth.Backend)
	cfg.Database.Backend = GetEnvOrDefault("BACKPLANE_DATABASE_BACKEND", cfg.Database.Backend)
	cfg.Storage.Backend = GetEnvOrDefault("BACKPLANE_STORAGE_BACKEND", cfg.Storage.Backend)

	// Credentials stay out of config files in production.
	cfg.Signer.S3AccessKey = GetEnvOrDefault("BACKPLANE_S3_ACCESS_KEY", cfg.Signer.S3AccessKey)
	cfg.Signer.S3SecretKey = GetEnvOrDefault("BACKPLANE_S3_SECRET_KEY", cfg.Signer.S3SecretKey)
	cfg.Beta.APIKey = GetEnvOrDefault("BACKPLANE_BETA_API_KEY", cfg.Beta.APIKey)
}

// GetEnvOrDefault returns environment variable or default value
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
