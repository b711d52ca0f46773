package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	Catalog CatalogConfig
	JWT     JWTConfig
	Auth    AuthConfig
	S3      S3Config
	OTEL    OTELConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port     string
	Timezone string // calendar days for statistics are cut in this zone
}

// StoreConfig selects where workouts, templates and users are persisted
type StoreConfig struct {
	Backend string
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CatalogConfig holds the wger exercise database settings
type CatalogConfig struct {
	BaseURL  string
	Language int
	Limit    int
	Timeout  time.Duration
}

// JWTConfig holds access token settings
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// AuthConfig holds the simulated login behaviour
type AuthConfig struct {
	AutoRegister bool // unknown emails are registered on login
}

// S3Config holds object storage settings for published exports
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	PublicURL string
	AccessKey string
	SecretKey string
}

// Enabled reports whether exports can be published
func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// OTELConfig holds OpenTelemetry settings
type OTELConfig struct {
	Enabled        bool
	Endpoint       string
	InstanceID     string
	Token          string
	ServiceName    string
	ServiceVersion string
	Environment    string
}

// LogConfig holds logrus settings
type LogConfig struct {
	Level string
	JSON  bool
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "8080"),
			Timezone: getEnv("TIMEZONE", "UTC"),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", BackendRedis),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "fitlog"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Catalog: CatalogConfig{
			BaseURL:  getEnv("WGER_BASE_URL", "https://wger.de/api/v2"),
			Language: getEnvAsInt("WGER_LANGUAGE", 2),
			Limit:    getEnvAsInt("WGER_LIMIT", 50),
			Timeout:  time.Duration(getEnvAsInt("WGER_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Expiry: time.Duration(getEnvAsInt("JWT_EXPIRY_HOURS", 24*7)) * time.Hour,
		},
		Auth: AuthConfig{
			AutoRegister: getEnvAsBool("AUTH_AUTO_REGISTER", true),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Bucket:    getEnv("S3_BUCKET", "fitlog-exports"),
			PublicURL: getEnv("S3_PUBLIC_URL", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", "any"),
			SecretKey: getEnv("S3_SECRET_KEY", "any"),
		},
		OTEL: OTELConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			InstanceID:     getEnv("OTEL_INSTANCE_ID", ""),
			Token:          getEnv("OTEL_TOKEN", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "fitlog-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			JSON:  getEnvAsBool("LOG_JSON", false),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Store.Backend != BackendRedis && c.Store.Backend != BackendMongo {
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendRedis, BackendMongo, c.Store.Backend)
	}
	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}
	if c.Catalog.Limit <= 0 {
		return fmt.Errorf("WGER_LIMIT must be positive")
	}
	return nil
}

// Location returns the time zone statistics are computed in
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
