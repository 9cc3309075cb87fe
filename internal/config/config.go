package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Payroll  PayrollConfig
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
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// PayrollConfig holds the settings of the payroll engine itself.
type PayrollConfig struct {
	// TaxTablePath points at a YAML file with dated tax tables. Empty means the built-in table.
	TaxTablePath      string
	WeekOfMonthPolicy string
	// WeekAutoCloseAfter is the grace period after a week ends before the job closes it.
	WeekAutoCloseAfter    time.Duration
	WeekAutoCloseInterval time.Duration
}

func Load() (*Config, error) {
	config, err := LoadDatabase()
	if err != nil {
		return nil, err
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Payroll configuration
	autoCloseAfter, err := time.ParseDuration(getEnv("WEEK_AUTO_CLOSE_AFTER", "48h"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEEK_AUTO_CLOSE_AFTER: %w", err)
	}
	autoCloseInterval, err := time.ParseDuration(getEnv("WEEK_AUTO_CLOSE_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEEK_AUTO_CLOSE_INTERVAL: %w", err)
	}

	config.Payroll = PayrollConfig{
		TaxTablePath:          getEnv("TAX_TABLE_PATH", ""),
		WeekOfMonthPolicy:     getEnv("WEEK_OF_MONTH_POLICY", "calendar_grid"),
		WeekAutoCloseAfter:    autoCloseAfter,
		WeekAutoCloseInterval: autoCloseInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadDatabase reads only the database settings. Tools such as the migrator use it.
func LoadDatabase() (*Config, error) {
	// A missing .env is fine, the environment may already be populated.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "payroll"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
	}
	if config.Database.Password == "" {
		return nil, fmt.Errorf("configuration validation failed: DB_PASSWORD is required")
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
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.Payroll.WeekAutoCloseAfter < 0 {
		return fmt.Errorf("WEEK_AUTO_CLOSE_AFTER must not be negative")
	}
	if c.Payroll.WeekAutoCloseInterval <= 0 {
		return fmt.Errorf("WEEK_AUTO_CLOSE_INTERVAL must be positive")
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

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
