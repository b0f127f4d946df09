package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Scheduling policy
	Scheduling SchedulingConfig
}

// ServerConfig holds process-level configuration
type ServerConfig struct {
	Environment string `validate:"oneof=development staging production"`
	LogLevel    string `validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFile     string // empty logs to stdout
	LogMaxSize  int    `validate:"gte=0"` // megabytes
	LogBackups  int    `validate:"gte=0"`
	LogMaxAge   int    `validate:"gte=0"` // days
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int `validate:"gte=0"`
	MaxIdleConnections int `validate:"gte=0"`
	ConnMaxLifetime    time.Duration
}

// SchedulingConfig holds the consistency engine policy. It can be overridden
// from a YAML file named by SCHEDULER_POLICY_FILE.
type SchedulingConfig struct {
	MaxWalkingDistanceMeters float64       `yaml:"max_walking_distance_meters" validate:"gt=0"`
	StoreTimeout             time.Duration `yaml:"store_timeout" validate:"gt=0"`
	RecomputeCron            string        `yaml:"recompute_cron" validate:"required"`
	RecomputeLeadDays        int           `yaml:"recompute_lead_days" validate:"gte=0,lte=14"`
}

// DefaultSchedulingConfig returns the policy used when nothing is configured
func DefaultSchedulingConfig() SchedulingConfig {
	return SchedulingConfig{
		MaxWalkingDistanceMeters: 1000,
		StoreTimeout:             5 * time.Second,
		RecomputeCron:            "0 0 2 * * *", // 2:00 AM daily
		RecomputeLeadDays:        1,
	}
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	defaults := DefaultSchedulingConfig()

	config := &Config{
		Server: ServerConfig{
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFile:     getEnv("LOG_FILE", ""),
			LogMaxSize:  getEnvAsInt("LOG_MAX_SIZE_MB", 10),
			LogBackups:  getEnvAsInt("LOG_MAX_BACKUPS", 7),
			LogMaxAge:   getEnvAsInt("LOG_MAX_AGE_DAYS", 7),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Scheduling: SchedulingConfig{
			MaxWalkingDistanceMeters: getEnvAsFloat("MAX_WALKING_DISTANCE_METERS", defaults.MaxWalkingDistanceMeters),
			StoreTimeout:             getEnvAsDuration("STORE_TIMEOUT", defaults.StoreTimeout),
			RecomputeCron:            getEnv("RECOMPUTE_CRON", defaults.RecomputeCron),
			RecomputeLeadDays:        getEnvAsInt("RECOMPUTE_LEAD_DAYS", defaults.RecomputeLeadDays),
		},
	}

	if path := getEnv("SCHEDULER_POLICY_FILE", ""); path != "" {
		if err := config.Scheduling.LoadPolicyFile(path); err != nil {
			return nil, err
		}
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadPolicyFile overlays the scheduling policy with values from a YAML file.
// Keys missing from the file keep their current value.
func (s *SchedulingConfig) LoadPolicyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read policy file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	return c.validateStructs()
}

func (c *Config) validateStructs() error {
	v := validator.New()
	for _, section := range []interface{}{&c.Server, &c.Database, &c.Scheduling} {
		if err := v.Struct(section); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.Scheduling.RecomputeCron); err != nil {
		return fmt.Errorf("invalid RECOMPUTE_CRON %q: %w", c.Scheduling.RecomputeCron, err)
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}
	return value
}
