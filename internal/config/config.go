package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	Detection DetectionConfig
	Backup    BackupConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// DetectionConfig holds the thresholds the irregularity detector flags on.
type DetectionConfig struct {
	// GrossDeltaRatio flags a line whose gross deviates from the prior period
	// by more than this fraction (0.25 = 25%).
	GrossDeltaRatio decimal.Decimal
	// PenaltyRatio flags a line whose penalties exceed this fraction of gross.
	PenaltyRatio decimal.Decimal
}

type BackupConfig struct {
	Enabled  bool
	Interval time.Duration
}

func Load() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hr_payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Irregularity detection thresholds
	grossDelta, err := decimal.NewFromString(getEnv("IRREGULARITY_GROSS_DELTA_RATIO", "0.25"))
	if err != nil {
		return nil, fmt.Errorf("invalid IRREGULARITY_GROSS_DELTA_RATIO: %w", err)
	}
	penaltyRatio, err := decimal.NewFromString(getEnv("IRREGULARITY_PENALTY_RATIO", "0.5"))
	if err != nil {
		return nil, fmt.Errorf("invalid IRREGULARITY_PENALTY_RATIO: %w", err)
	}
	config.Detection = DetectionConfig{
		GrossDeltaRatio: grossDelta,
		PenaltyRatio:    penaltyRatio,
	}

	// Backup scheduling
	backupInterval, err := time.ParseDuration(getEnv("BACKUP_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKUP_INTERVAL: %w", err)
	}
	config.Backup = BackupConfig{
		Enabled:  getEnv("BACKUP_ENABLED", "true") == "true",
		Interval: backupInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Detection.GrossDeltaRatio.IsNegative() {
		return fmt.Errorf("IRREGULARITY_GROSS_DELTA_RATIO must be non-negative")
	}
	if c.Detection.PenaltyRatio.IsNegative() {
		return fmt.Errorf("IRREGULARITY_PENALTY_RATIO must be non-negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
