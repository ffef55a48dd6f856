package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	RateTable  RateTableConfig
	Auth       AuthConfig
	Secrets    SecretsConfig
	Settlement SettlementConfig
	Logger     LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int
	Host           string
	MetricsPort    int
	RateLimitRPS   float64
	RateLimitBurst int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// RedisConfig holds the rate-cache redis configuration. Addr empty disables
// the cache and rate lookups go straight to the rate table.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// RateTableConfig holds the external commission/withholding rate table
// endpoint configuration
type RateTableConfig struct {
	BaseURL      string
	Timeout      time.Duration
	Jurisdiction string
}

// AuthConfig holds JWT verification configuration
type AuthConfig struct {
	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	AccessTokenTTL time.Duration
}

// SecretsConfig selects where the DB password and JWT secret come from.
// Provider is one of: env, aws, vault, file.
type SecretsConfig struct {
	Provider     string
	AWSRegion    string
	VaultAddr    string
	VaultMount   string
	FilePath     string
	DBSecretKey  string
	JWTSecretKey string
}

// SettlementConfig holds the settlement batch configuration
type SettlementConfig struct {
	Workers int
	// Enables the built-in first-of-month scheduler for single-instance
	// deployments; multi-instance deployments trigger runs externally
	AutoRun bool
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
			RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 50),
			RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 100),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "commission_service"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 5)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("RATE_CACHE_TTL", time.Hour),
		},
		RateTable: RateTableConfig{
			BaseURL:      getEnv("RATE_TABLE_URL", ""),
			Timeout:      getEnvAsDuration("RATE_TABLE_TIMEOUT", 2*time.Second),
			Jurisdiction: getEnv("WITHHOLDING_JURISDICTION", "KR"),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", ""),
			JWTIssuer:      getEnv("JWT_ISSUER", "commission-service"),
			JWTAudience:    getEnv("JWT_AUDIENCE", ""),
			AccessTokenTTL: getEnvAsDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		},
		Secrets: SecretsConfig{
			Provider:     getEnv("SECRETS_PROVIDER", "env"),
			AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
			VaultAddr:    getEnv("VAULT_ADDR", ""),
			VaultMount:   getEnv("VAULT_MOUNT", "secret"),
			FilePath:     getEnv("SECRETS_FILE", ""),
			DBSecretKey:  getEnv("DB_SECRET_KEY", "commission-service/db-password"),
			JWTSecretKey: getEnv("JWT_SECRET_KEY", "commission-service/jwt-secret"),
		},
		Settlement: SettlementConfig{
			Workers: getEnvAsInt("SETTLEMENT_WORKERS", 8),
			AutoRun: getEnvAsBool("SETTLEMENT_AUTO_RUN", false),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Secrets may arrive via the configured provider instead of env, so
	// only the env provider requires them up front
	if cfg.Secrets.Provider == "env" {
		if cfg.Database.Password == "" {
			return nil, fmt.Errorf("DB_PASSWORD is required")
		}
		if cfg.Auth.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
	}
	if cfg.RateTable.BaseURL == "" {
		return nil, fmt.Errorf("RATE_TABLE_URL is required")
	}

	return cfg, nil
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
