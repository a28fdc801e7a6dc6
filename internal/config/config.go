package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Engine       EngineConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. Leave Addr empty to fall back to
// in-process ticket locks.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	InternalAPIKeyHash    string
}

// EngineConfig tunes the SLA engine: the business window, the sweep cadence,
// and the per-ticket lock bounds.
type EngineConfig struct {
	BusinessDayStart     string
	BusinessDayEnd       string
	SweepIntervalSeconds int
	LockTTLSeconds       int
	LockWaitMillis       int
	LockRetryMillis      int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "sla-engine"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			InternalAPIKeyHash:    os.Getenv("AUTH_INTERNAL_API_KEY_HASH"),
		},
		Engine: EngineConfig{
			BusinessDayStart:     getEnv("ENGINE_BUSINESS_DAY_START", "09:00"),
			BusinessDayEnd:       getEnv("ENGINE_BUSINESS_DAY_END", "18:00"),
			SweepIntervalSeconds: getEnvAsInt("ENGINE_SWEEP_INTERVAL_SECONDS", 60),
			LockTTLSeconds:       getEnvAsInt("ENGINE_LOCK_TTL_SECONDS", 30),
			LockWaitMillis:       getEnvAsInt("ENGINE_LOCK_WAIT_MILLIS", 2000),
			LockRetryMillis:      getEnvAsInt("ENGINE_LOCK_RETRY_MILLIS", 50),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SweepInterval returns the sweep cadence as a duration.
func (e EngineConfig) SweepInterval() time.Duration {
	if e.SweepIntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(e.SweepIntervalSeconds) * time.Second
}

// LockTTL returns how long a held ticket lock survives a crashed holder.
func (e EngineConfig) LockTTL() time.Duration {
	if e.LockTTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(e.LockTTLSeconds) * time.Second
}

// LockWait returns the acquisition bound before a caller gets a busy error.
func (e EngineConfig) LockWait() time.Duration {
	if e.LockWaitMillis <= 0 {
		return 2 * time.Second
	}
	return time.Duration(e.LockWaitMillis) * time.Millisecond
}

// LockRetry returns the polling interval between acquisition attempts.
func (e EngineConfig) LockRetry() time.Duration {
	if e.LockRetryMillis <= 0 {
		return 50 * time.Millisecond
	}
	return time.Duration(e.LockRetryMillis) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
