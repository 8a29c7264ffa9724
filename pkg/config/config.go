package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Registry RegistryConfig
	Cache    CacheConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Pipeline PipelineConfig
	Export   ExportConfig
}

// RegistryConfig holds registry service configuration
type RegistryConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CacheConfig holds registry document cache configuration
type CacheConfig struct {
	// Backend selects the cache store implementation: "file" or "redis"
	Backend string
	Dir     string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// PipelineConfig holds reconciliation pipeline configuration
type PipelineConfig struct {
	// StalenessWindows are the monitored staleness windows, in days
	StalenessWindows []int
}

// ExportConfig holds output export configuration
type ExportConfig struct {
	Dir string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	windows, err := getEnvAsIntList("PIPELINE_STALENESS_WINDOWS", []int{3, 7, 14})
	if err != nil {
		return nil, err
	}

	return &Config{
		Registry: RegistryConfig{
			BaseURL: getEnv("REGISTRY_BASE_URL", "http://cnes.datasus.gov.br"),
			Timeout: time.Duration(getEnvAsInt("REGISTRY_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Cache: CacheConfig{
			Backend: getEnv("CACHE_BACKEND", "file"),
			Dir:     getEnv("CACHE_DIR", "data/hospitais"),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "hospital_capacity"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Pipeline: PipelineConfig{
			StalenessWindows: windows,
		},
		Export: ExportConfig{
			Dir: getEnv("EXPORT_DIR", "exports"),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsIntList(key string, defaultValue []int) ([]int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parts := strings.Split(value, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		intVal, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid value %q for %s: %w", part, key, err)
		}
		out = append(out, intVal)
	}
	return out, nil
}
