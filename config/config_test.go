package config

import (
	"os"
	"testing"

	"github.com/monitorlens/backend/internal/domain"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("MONITORLENS_SERVER_PORT")
		os.Unsetenv("MONITORLENS_SERVER_ENVIRONMENT")
		os.Unsetenv("MONITORLENS_DATABASE_TYPE")
		os.Unsetenv("MONITORLENS_DATABASE_URL")
		os.Unsetenv("MONITORLENS_MATCHING_MIN_SCORE")
		os.Unsetenv("MONITORLENS_INGEST_CATEGORY")
		os.Unsetenv("MONITORLENS_RATELIMIT_PER_IP")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Database.Type != "memory" {
			t.Errorf("Database.Type = %s, want memory", cfg.Database.Type)
		}
		if cfg.Matching.MinScore != 0.8 {
			t.Errorf("Matching.MinScore = %v, want 0.8", cfg.Matching.MinScore)
		}
		if cfg.Matching.ModelSimilarityThreshold != 0.8 {
			t.Errorf("Matching.ModelSimilarityThreshold = %v, want 0.8", cfg.Matching.ModelSimilarityThreshold)
		}
		if cfg.Matching.SpecsSimilarityThreshold != 0.7 {
			t.Errorf("Matching.SpecsSimilarityThreshold = %v, want 0.7", cfg.Matching.SpecsSimilarityThreshold)
		}
		if cfg.Ingest.Category != "Monitors" {
			t.Errorf("Ingest.Category = %s, want Monitors", cfg.Ingest.Category)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MONITORLENS_SERVER_PORT", "9090")
		os.Setenv("MONITORLENS_SERVER_ENVIRONMENT", "production")
		os.Setenv("MONITORLENS_DATABASE_TYPE", "postgres")
		os.Setenv("MONITORLENS_DATABASE_URL", "postgres://localhost:5432/monitorlens")
		os.Setenv("MONITORLENS_MATCHING_MIN_SCORE", "0.9")
		os.Setenv("MONITORLENS_INGEST_CATEGORY", "TVs")
		os.Setenv("MONITORLENS_RATELIMIT_PER_IP", "200")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Database.Type != "postgres" {
			t.Errorf("Database.Type = %s, want postgres", cfg.Database.Type)
		}
		if cfg.Database.URL != "postgres://localhost:5432/monitorlens" {
			t.Errorf("Database.URL = %s, want the configured URL", cfg.Database.URL)
		}
		if cfg.Matching.MinScore != 0.9 {
			t.Errorf("Matching.MinScore = %v, want 0.9", cfg.Matching.MinScore)
		}
		if cfg.Ingest.Category != "TVs" {
			t.Errorf("Ingest.Category = %s, want TVs", cfg.Ingest.Category)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
	})

	t.Run("fails validation for invalid database type", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MONITORLENS_DATABASE_TYPE", "mysql")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid database type")
		}
	})

	t.Run("fails validation when postgres URL is missing", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("MONITORLENS_DATABASE_TYPE", "postgres")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing database URL")
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Type: "memory"},
			Matching: MatchingConfig{MinScore: 0.8},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(valid()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails for out-of-range min score", func(t *testing.T) {
		cfg := valid()
		cfg.Matching.MinScore = 1.5
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for min_score > 1")
		}
	})

	t.Run("fails for a source without a file", func(t *testing.T) {
		cfg := valid()
		cfg.Ingest.Sources = []domain.Source{{Name: "anhoch"}}
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for source without file")
		}
	})

	t.Run("accepts complete sources", func(t *testing.T) {
		cfg := valid()
		cfg.Ingest.Sources = []domain.Source{
			{Name: "anhoch", Website: "https://anhoch.example", File: "anhoch.json"},
		}
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})
}
