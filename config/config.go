package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/monitorlens/backend/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Matching  MatchingConfig
	Ingest    IngestConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds catalog storage configuration
type DatabaseConfig struct {
	Type string `mapstructure:"type"` // "memory" or "postgres"
	URL  string `mapstructure:"url"`
}

// MatchingConfig holds the cross-store matching thresholds
type MatchingConfig struct {
	MinScore                 float64 `mapstructure:"min_score"`
	ModelSimilarityThreshold float64 `mapstructure:"model_similarity_threshold"`
	SpecsSimilarityThreshold float64 `mapstructure:"specs_similarity_threshold"`
	EnableDebugLogging       bool    `mapstructure:"enable_debug_logging"`
}

// IngestConfig holds the batch ingest configuration
type IngestConfig struct {
	Category string          `mapstructure:"category"`
	Sources  []domain.Source `mapstructure:"sources"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/monitorlens/")

	// Environment variable settings
	v.SetEnvPrefix("MONITORLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Database defaults
	v.SetDefault("database.type", "memory")

	// Matching defaults
	v.SetDefault("matching.min_score", 0.8)
	v.SetDefault("matching.model_similarity_threshold", 0.8)
	v.SetDefault("matching.specs_similarity_threshold", 0.7)
	v.SetDefault("matching.enable_debug_logging", false)

	// Ingest defaults
	v.SetDefault("ingest.category", "Monitors")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Database.Type != "memory" && config.Database.Type != "postgres" {
		return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", config.Database.Type)
	}

	if config.Database.Type == "postgres" && config.Database.URL == "" {
		return fmt.Errorf("database URL is required when database type is 'postgres' (set MONITORLENS_DATABASE_URL)")
	}

	if config.Matching.MinScore < 0 || config.Matching.MinScore > 1 {
		return fmt.Errorf("matching min_score must be within [0, 1], got: %v", config.Matching.MinScore)
	}

	for _, source := range config.Ingest.Sources {
		if source.Name == "" || source.File == "" {
			return fmt.Errorf("every ingest source needs a name and a file, got: %+v", source)
		}
	}

	return nil
}
