package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session storage backends.
const (
	SessionBackendSQLite = "sqlite"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// OTP stores of the development ticket service.
const (
	OTPStoreMemory = "memory"
	OTPStoreRedis  = "redis"
)

// Config aggregates runtime configuration for the client and the fake service.
type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	Logger  LoggerConfig
	Stub    StubConfig
}

// AppConfig identifies the running binary.
type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// APIConfig points the client at the ticket service.
type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// SessionConfig selects where the persisted session fields are read from.
type SessionConfig struct {
	Backend    string
	SQLitePath string
	KeyPrefix  string
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

// StubConfig configures the fake ticket service.
type StubConfig struct {
	Host             string
	Port             string
	JWTSecret        string
	TokenTTLMinutes  int
	OTPTTLMinutes    int
	BcryptCost       int
	PostgresDSN      string
	PostgresMaxConns int32
	OTPStore         string
	LogOTP           bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	backend := strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendSQLite))
	switch backend {
	case SessionBackendSQLite, SessionBackendRedis, SessionBackendMemory:
	default:
		return nil, fmt.Errorf("invalid SESSION_BACKEND %q", backend)
	}

	otpStore := strings.ToLower(getEnv("STUB_OTP_STORE", OTPStoreMemory))
	if otpStore != OTPStoreMemory && otpStore != OTPStoreRedis {
		return nil, fmt.Errorf("invalid STUB_OTP_STORE %q", otpStore)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "reportit"),
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		API: APIConfig{
			BaseURL:        strings.TrimRight(getEnv("TICKET_API_BASE_URL", "http://192.168.1.140:8080"), "/"),
			TimeoutSeconds: getEnvAsInt("TICKET_API_TIMEOUT_SECONDS", 0),
		},
		Session: SessionConfig{
			Backend:    backend,
			SQLitePath: getEnv("SESSION_SQLITE_PATH", "reportit.db"),
			KeyPrefix:  os.Getenv("SESSION_KEY_PREFIX"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Stub: StubConfig{
			Host:             getEnv("STUB_HOST", "0.0.0.0"),
			Port:             getEnv("STUB_PORT", "8080"),
			JWTSecret:        getEnv("STUB_JWT_SECRET", "dev-secret"),
			TokenTTLMinutes:  getEnvAsInt("STUB_TOKEN_TTL_MINUTES", 60),
			OTPTTLMinutes:    getEnvAsInt("STUB_OTP_TTL_MINUTES", 10),
			BcryptCost:       getEnvAsInt("STUB_BCRYPT_COST", 10),
			PostgresDSN:      os.Getenv("STUB_POSTGRES_DSN"),
			PostgresMaxConns: int32(getEnvAsInt("STUB_POSTGRES_MAX_CONNS", 4)),
			OTPStore:         otpStore,
			LogOTP:           getEnvAsBool("STUB_LOG_OTP", true),
		},
	}

	return cfg, nil
}

// Timeout returns the client request timeout. Zero leaves the transport default in place.
func (a APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// Addr returns the fake service bind address.
func (s StubConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
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
