package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Saga      SagaConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	AdminAssetsDir        string
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

// RedisConfig holds Redis connection values.
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
	BcryptCost            int
	VerifyURL             string
	VerifyTimeoutMillis   int
	CookieName            string
	TokenHeader           string
	SignInPath            string
	ForbiddenPath         string
}

// RateLimitConfig throttles the unauthenticated credential endpoints.
type RateLimitConfig struct {
	RegisterPerWindow int
	LoginPerWindow    int
	WindowSeconds     int
}

// SagaConfig tunes compensation retries for multi-step writes.
type SagaConfig struct {
	CompensationAttempts  int
	CompensationBackoffMs int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	port := getEnv("APP_PORT", "8080")

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "vrcface"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  port,
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			AdminAssetsDir:        os.Getenv("APP_ADMIN_ASSETS_DIR"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60*24*7),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			VerifyURL:             getEnv("AUTH_VERIFY_URL", fmt.Sprintf("http://127.0.0.1:%s/api/auth/verify", port)),
			VerifyTimeoutMillis:   getEnvAsInt("AUTH_VERIFY_TIMEOUT_MS", 3000),
			CookieName:            getEnv("AUTH_COOKIE_NAME", "auth-token"),
			TokenHeader:           getEnv("AUTH_TOKEN_HEADER", "x-auth-token"),
			SignInPath:            getEnv("AUTH_SIGN_IN_PATH", "/auth"),
			ForbiddenPath:         getEnv("AUTH_FORBIDDEN_PATH", "/403"),
		},
		RateLimit: RateLimitConfig{
			RegisterPerWindow: getEnvAsInt("RATE_LIMIT_REGISTER", 5),
			LoginPerWindow:    getEnvAsInt("RATE_LIMIT_LOGIN", 20),
			WindowSeconds:     getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
		Saga: SagaConfig{
			CompensationAttempts:  getEnvAsInt("SAGA_COMPENSATION_ATTEMPTS", 3),
			CompensationBackoffMs: getEnvAsInt("SAGA_COMPENSATION_BACKOFF_MS", 100),
		},
	}

	if cfg.App.Env == "production" && cfg.Auth.JWTSecret == "dev-secret" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET must be set in production")
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

// VerifyTimeout bounds every credential verification round trip.
func (a AuthConfig) VerifyTimeout() time.Duration {
	if a.VerifyTimeoutMillis <= 0 {
		return 3 * time.Second
	}
	return time.Duration(a.VerifyTimeoutMillis) * time.Millisecond
}

// Window returns the rate limit window.
func (r RateLimitConfig) Window() time.Duration {
	if r.WindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(r.WindowSeconds) * time.Second
}

// CompensationBackoff returns the initial delay between compensation attempts.
func (s SagaConfig) CompensationBackoff() time.Duration {
	if s.CompensationBackoffMs <= 0 {
		return 0
	}
	return time.Duration(s.CompensationBackoffMs) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
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
