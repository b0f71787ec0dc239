package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig
	Engine   EngineConfig
	Search   SearchConfig
	Database DatabaseConfig
	Server   ServerConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name    string
	Version string
}

// EngineConfig holds analysis engine configuration
type EngineConfig struct {
	AnalysisTimeoutSeconds int
	CacheTTLHours          int
	RetentionDays          int
	RateLimitWindowSeconds int
	MaxRequests            int
	MaxResults             int
	MinSimilarity          float64
	CorpusLimit            int
}

// SearchConfig holds external search collaborator configuration
type SearchConfig struct {
	Enabled              bool
	Endpoint             string
	UserAgent            string
	MaxRequestsPerMinute int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int
}

// LoadConfig loads configuration from .env file
func LoadConfig(envPath string, log *logrus.Logger) (*Config, error) {
	if envPath == "" {
		envPath = ".env"
	}

	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "Originality Tracker"),
			Version: getEnv("APP_VERSION", "1.0.0"),
		},
		Engine: EngineConfig{
			AnalysisTimeoutSeconds: getEnvAsInt("ANALYSIS_TIMEOUT_SECONDS", 15),
			CacheTTLHours:          getEnvAsInt("CACHE_TTL_HOURS", 24),
			RetentionDays:          getEnvAsInt("RETENTION_DAYS", 30),
			RateLimitWindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			MaxRequests:            getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 10),
			MaxResults:             getEnvAsInt("MAX_RESULTS", 5),
			MinSimilarity:          getEnvAsFloat("MIN_SIMILARITY", 0.3),
			CorpusLimit:            getEnvAsInt("CORPUS_LIMIT", 500),
		},
		Search: SearchConfig{
			Enabled:              getEnvAsBool("SEARCH_ENABLED", true),
			Endpoint:             getEnv("SEARCH_ENDPOINT", "https://api.duckduckgo.com"),
			UserAgent:            getEnv("SEARCH_USER_AGENT", "originality-tracker/1.0"),
			MaxRequestsPerMinute: getEnvAsInt("SEARCH_MAX_REQUESTS_PER_MINUTE", 30),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./posts.db"),
		},
		Server: ServerConfig{
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
	}

	// validation
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	log.WithField("file", envPath).Info("Config loaded successfully")
	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as a bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Engine.AnalysisTimeoutSeconds < 1 {
		return fmt.Errorf("ANALYSIS_TIMEOUT_SECONDS must be positive")
	}
	if config.Engine.CacheTTLHours < 1 {
		return fmt.Errorf("CACHE_TTL_HOURS must be positive")
	}
	if config.Engine.RetentionDays < 1 {
		return fmt.Errorf("RETENTION_DAYS must be positive")
	}
	if config.Engine.RateLimitWindowSeconds < 1 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be positive")
	}
	if config.Engine.MaxRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_MAX_REQUESTS must be positive")
	}
	if config.Engine.MaxResults < 1 {
		return fmt.Errorf("MAX_RESULTS must be positive")
	}
	if config.Engine.MinSimilarity < 0 || config.Engine.MinSimilarity > 1 {
		return fmt.Errorf("MIN_SIMILARITY must be between 0 and 1")
	}
	if config.Search.Enabled && config.Search.Endpoint == "" {
		return fmt.Errorf("SEARCH_ENDPOINT is required when search is enabled")
	}
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be a valid port number")
	}

	// if we are storing the db in a nested directory, create the directory
	dbDir := filepath.Dir(config.Database.Path)
	if dbDir != "." && dbDir != "" {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	return nil
}
