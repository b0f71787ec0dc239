package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

const testEnvPath = "./test.env"

func cleanup() {
	os.Remove(testEnvPath)
}

// TestMain handles test setup and cleanup for all tests in this package
func TestMain(m *testing.M) {
	exitCode := m.Run()

	cleanup()

	os.Exit(exitCode)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_ENV_VAR", "test-value")
	defer os.Unsetenv("TEST_ENV_VAR")

	value := getEnv("TEST_ENV_VAR", "default-value")
	assert.Equal(t, "test-value", value)

	value = getEnv("NON_EXISTENT_VAR", "default-value")
	assert.Equal(t, "default-value", value)
}

func TestGetEnvAsInt(t *testing.T) {
	os.Setenv("TEST_INT_VAR", "42")
	defer os.Unsetenv("TEST_INT_VAR")

	value := getEnvAsInt("TEST_INT_VAR", 10)
	assert.Equal(t, 42, value)

	os.Setenv("TEST_INVALID_INT_VAR", "not-an-int")
	defer os.Unsetenv("TEST_INVALID_INT_VAR")

	value = getEnvAsInt("TEST_INVALID_INT_VAR", 10)
	assert.Equal(t, 10, value)

	value = getEnvAsInt("NON_EXISTENT_VAR", 10)
	assert.Equal(t, 10, value)
}

func TestGetEnvAsFloat(t *testing.T) {
	os.Setenv("TEST_FLOAT_VAR", "0.45")
	defer os.Unsetenv("TEST_FLOAT_VAR")

	value := getEnvAsFloat("TEST_FLOAT_VAR", 0.3)
	assert.Equal(t, 0.45, value)

	value = getEnvAsFloat("NON_EXISTENT_VAR", 0.3)
	assert.Equal(t, 0.3, value)
}

func TestGetEnvAsBool(t *testing.T) {
	os.Setenv("TEST_BOOL_VAR", "false")
	defer os.Unsetenv("TEST_BOOL_VAR")

	value := getEnvAsBool("TEST_BOOL_VAR", true)
	assert.False(t, value)

	os.Setenv("TEST_INVALID_BOOL_VAR", "maybe")
	defer os.Unsetenv("TEST_INVALID_BOOL_VAR")

	value = getEnvAsBool("TEST_INVALID_BOOL_VAR", true)
	assert.True(t, value)
}

func TestLoadConfigDefaults(t *testing.T) {
	err := os.WriteFile(testEnvPath, []byte("APP_NAME=Test Tracker\n"), 0644)
	assert.NoError(t, err)
	defer cleanup()

	config, err := LoadConfig(testEnvPath, testLogger())
	assert.NoError(t, err)

	assert.Equal(t, "Test Tracker", config.App.Name)
	assert.Equal(t, 15, config.Engine.AnalysisTimeoutSeconds)
	assert.Equal(t, 24, config.Engine.CacheTTLHours)
	assert.Equal(t, 30, config.Engine.RetentionDays)
	assert.Equal(t, 10, config.Engine.MaxRequests)
	assert.Equal(t, 5, config.Engine.MaxResults)
	assert.Equal(t, 0.3, config.Engine.MinSimilarity)
	assert.Equal(t, "./posts.db", config.Database.Path)
	assert.Equal(t, 8080, config.Server.Port)
	assert.True(t, config.Search.Enabled)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("./does-not-exist.env", testLogger())
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Engine: EngineConfig{
				AnalysisTimeoutSeconds: 15,
				CacheTTLHours:          24,
				RetentionDays:          30,
				RateLimitWindowSeconds: 60,
				MaxRequests:            10,
				MaxResults:             5,
				MinSimilarity:          0.3,
				CorpusLimit:            500,
			},
			Search: SearchConfig{
				Enabled:  true,
				Endpoint: "https://api.duckduckgo.com",
			},
			Database: DatabaseConfig{Path: "./test.db"},
			Server:   ServerConfig{Port: 8080},
		}
	}
	assert.NoError(t, validateConfig(valid()))

	// invalid timeout
	config := valid()
	config.Engine.AnalysisTimeoutSeconds = 0
	err := validateConfig(config)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ANALYSIS_TIMEOUT_SECONDS")

	// similarity threshold out of range
	config = valid()
	config.Engine.MinSimilarity = 1.5
	err = validateConfig(config)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MIN_SIMILARITY")

	// search enabled without an endpoint
	config = valid()
	config.Search.Endpoint = ""
	err = validateConfig(config)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SEARCH_ENDPOINT")

	// bad port
	config = valid()
	config.Server.Port = 0
	err = validateConfig(config)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
}

func TestValidateConfigCreatesDatabaseDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "posts.db")

	config := &Config{
		Engine: EngineConfig{
			AnalysisTimeoutSeconds: 15,
			CacheTTLHours:          24,
			RetentionDays:          30,
			RateLimitWindowSeconds: 60,
			MaxRequests:            10,
			MaxResults:             5,
			MinSimilarity:          0.3,
			CorpusLimit:            500,
		},
		Database: DatabaseConfig{Path: dbPath},
		Server:   ServerConfig{Port: 8080},
	}
	assert.NoError(t, validateConfig(config))

	info, err := os.Stat(filepath.Dir(dbPath))
	assert.NoError(t, err)
	assert.True(t, info.IsDir())
}
