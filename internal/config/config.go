package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Sentinel SentinelConfig
	Session  SessionConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// SentinelConfig holds the scoring engine settings. MaxLoginAttempts,
// RateLimitWindow and BotScoreThreshold are fixed after startup.
type SentinelConfig struct {
	MaxLoginAttempts   int
	RateLimitWindow    time.Duration
	BotScoreThreshold  int
	IPReputationAPIKey string
	ReputationTimeout  time.Duration
	RetentionDays      int
	CleanupInterval    time.Duration
	DemoUsername       string
	DemoPassword       string
}

type SessionConfig struct {
	RedisURL     string // empty = in-memory store
	TTL          time.Duration
	CookieSecure bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "sentinel"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:     getEnv("PORT", "8080"),
			Env:      env,
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Sentinel: SentinelConfig{
			MaxLoginAttempts:   getEnvAsInt("MAX_LOGIN_ATTEMPTS", 5),
			RateLimitWindow:    getEnvAsDuration("RATE_LIMIT_WINDOW", 300*time.Second),
			BotScoreThreshold:  getEnvAsInt("BOT_SCORE_THRESHOLD", 100),
			IPReputationAPIKey: getEnv("IP_REPUTATION_API_KEY", ""),
			ReputationTimeout:  getEnvAsDuration("IP_REPUTATION_TIMEOUT", 2*time.Second),
			RetentionDays:      getEnvAsInt("ATTEMPT_RETENTION_DAYS", 7),
			CleanupInterval:    getEnvAsDuration("CLEANUP_INTERVAL", 1*time.Hour),
			DemoUsername:       getEnv("DEMO_USERNAME", "demo"),
			DemoPassword:       getEnv("DEMO_PASSWORD", "password"),
		},
		Session: SessionConfig{
			RedisURL:     getEnv("SESSION_REDIS_URL", ""),
			TTL:          getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			CookieSecure: env == "production",
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := cfg.Sentinel.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *SentinelConfig) validate() error {
	if c.MaxLoginAttempts < 1 {
		return fmt.Errorf("MAX_LOGIN_ATTEMPTS must be at least 1 (got %d)", c.MaxLoginAttempts)
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive (got %s)", c.RateLimitWindow)
	}
	if c.BotScoreThreshold < 1 {
		return fmt.Errorf("BOT_SCORE_THRESHOLD must be at least 1 (got %d)", c.BotScoreThreshold)
	}
	if c.RetentionDays < 1 {
		return fmt.Errorf("ATTEMPT_RETENTION_DAYS must be at least 1 (got %d)", c.RetentionDays)
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
