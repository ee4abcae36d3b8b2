package config

import (
	"os"
	"strconv"

	"pricebench/domain/core"
	"pricebench/domain/pricing"
	"pricebench/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Evaluation EvaluationDefaults
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// EvaluationDefaults holds the installation-wide evaluation defaults. Each
// request may override them; they are never mutated after load.
type EvaluationDefaults struct {
	ExcessThresholdPct      int
	InexequibleThresholdPct int
	DecimalPlaces           int
	UseNBRRounding          bool
}

// EvaluationConfig converts the defaults into an engine configuration
func (d EvaluationDefaults) EvaluationConfig() pricing.EvaluationConfig {
	return pricing.EvaluationConfig{
		ExcessThresholdPct:      d.ExcessThresholdPct,
		InexequibleThresholdPct: d.InexequibleThresholdPct,
		DecimalPlaces:           d.DecimalPlaces,
		UseNBRRounding:          d.UseNBRRounding,
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Evaluation: EvaluationDefaults{
			ExcessThresholdPct:      getEnvIntOrDefault("PB_EXCESS_THRESHOLD_PCT", 25),
			InexequibleThresholdPct: getEnvIntOrDefault("PB_INEXEQUIBLE_THRESHOLD_PCT", 75),
			DecimalPlaces:           core.ClampDecimalPlaces(getEnvIntOrDefault("PB_DECIMAL_PLACES", 2)),
			UseNBRRounding:          getEnvBoolOrDefault("PB_NBR_ROUNDING", true),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Evaluation.ExcessThresholdPct < 0 || config.Evaluation.ExcessThresholdPct > 100 {
		return errors.ConfigInvalid("PB_EXCESS_THRESHOLD_PCT must be in [0,100]")
	}
	if config.Evaluation.InexequibleThresholdPct < 0 || config.Evaluation.InexequibleThresholdPct > 100 {
		return errors.ConfigInvalid("PB_INEXEQUIBLE_THRESHOLD_PCT must be in [0,100]")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
