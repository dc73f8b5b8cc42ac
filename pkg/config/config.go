package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment driven settings for the API server.
type Config struct {
	Env            string
	Host           string
	Port           string
	AllowedOrigins []string
	LogLevel       string
	LogDir         string

	// RequestTimeout bounds every request context, store calls included.
	RequestTimeout time.Duration
	MaxBodyBytes   int64

	Auth      AuthConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Stats     StatsConfig
}

// AuthConfig contains token and bootstrap admin settings.
type AuthConfig struct {
	JWTSecret     string
	TokenExpiry   time.Duration
	BcryptCost    int
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// RedisConfig contains the cache connection. An empty Addr selects the in-memory cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig controls the per-IP fixed window limiter.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// StatsConfig controls statistics caching and reconciliation.
type StatsConfig struct {
	CacheTTL          time.Duration
	ReconcileInterval time.Duration
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // seconds
	ConnMaxIdleTime int // seconds
	RunMigrations   bool
}

// Load builds a Config from environment variables with sensible defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:            getEnv("TECHBOOST_ENV", "development"),
		Host:           getEnv("TECHBOOST_HOST", "0.0.0.0"),
		Port:           getEnv("PORT", "5000"),
		LogLevel:       getEnv("TECHBOOST_LOG_LEVEL", "info"),
		LogDir:         getEnv("TECHBOOST_LOG_DIR", "logs"),
		RequestTimeout: getEnvAsDuration("TECHBOOST_REQUEST_TIMEOUT", 10*time.Second),
		MaxBodyBytes:   int64(getEnvAsInt("TECHBOOST_MAX_BODY_BYTES", 1<<20)),
	}

	cfg.AllowedOrigins = splitAndTrim(getEnv("TECHBOOST_ALLOWED_ORIGINS", "http://localhost:5173"))
	cfg.Auth = loadAuthConfig()
	cfg.Database = loadDatabaseConfig()
	cfg.Redis = RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}
	cfg.RateLimit = RateLimitConfig{
		Requests: getEnvAsInt("TECHBOOST_RATE_LIMIT", 100),
		Window:   getEnvAsDuration("TECHBOOST_RATE_WINDOW", time.Minute),
	}
	cfg.Stats = StatsConfig{
		CacheTTL:          getEnvAsDuration("TECHBOOST_STATS_CACHE_TTL", 30*time.Second),
		ReconcileInterval: getEnvAsDuration("TECHBOOST_STATS_RECONCILE_INTERVAL", time.Hour),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ServerAddress joins the host and port into a listen address.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsProduction reports whether the app is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func (c *Config) validate() error {
	if c.IsProduction() && c.Auth.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("TECHBOOST_REQUEST_TIMEOUT must be positive")
	}
	if c.Auth.TokenExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive")
	}
	return nil
}

// DSN builds a PostgreSQL DSN for gorm.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
		d.TimeZone,
	)
}

const defaultJWTSecret = "techboost-dev-secret"

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		TokenExpiry:   getEnvAsDuration("JWT_EXPIRES_IN", 30*24*time.Hour),
		BcryptCost:    getEnvAsInt("BCRYPT_COST", 10),
		AdminEmail:    os.Getenv("TECHBOOST_ADMIN_EMAIL"),
		AdminPassword: os.Getenv("TECHBOOST_ADMIN_PASSWORD"),
		AdminName:     getEnv("TECHBOOST_ADMIN_NAME", "Administrator"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	cfg := DatabaseConfig{
		Host:            getEnv("TECHBOOST_DB_HOST", "127.0.0.1"),
		Port:            getEnv("TECHBOOST_DB_PORT", "5432"),
		User:            getEnv("TECHBOOST_DB_USER", "postgres"),
		Password:        os.Getenv("TECHBOOST_DB_PASSWORD"),
		Name:            getEnv("TECHBOOST_DB_NAME", "techboost"),
		SSLMode:         getEnv("TECHBOOST_DB_SSLMODE", "disable"),
		TimeZone:        getEnv("TECHBOOST_DB_TIMEZONE", "UTC"),
		MaxIdleConns:    getEnvAsInt("TECHBOOST_DB_MAX_IDLE_CONNS", 5),
		MaxOpenConns:    getEnvAsInt("TECHBOOST_DB_MAX_OPEN_CONNS", 20),
		ConnMaxLifetime: getEnvAsInt("TECHBOOST_DB_CONN_MAX_LIFETIME", 1800),
		ConnMaxIdleTime: getEnvAsInt("TECHBOOST_DB_CONN_MAX_IDLE_TIME", 300),
		RunMigrations:   getEnvAsBool("TECHBOOST_DB_RUN_MIGRATIONS", false),
	}

	// DATABASE_URL wins over the individual variables.
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		if err := applyDatabaseURL(&cfg, dbURL); err == nil {
			return cfg
		}
	}

	return cfg
}

// applyDatabaseURL overlays a postgres:// URL onto cfg.
func applyDatabaseURL(cfg *DatabaseConfig, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return fmt.Errorf("unsupported database scheme %q", parsed.Scheme)
	}

	if host := parsed.Hostname(); host != "" {
		cfg.Host = host
	}
	if port := parsed.Port(); port != "" {
		cfg.Port = port
	}
	if parsed.User != nil {
		cfg.User = parsed.User.Username()
		if password, ok := parsed.User.Password(); ok {
			cfg.Password = password
		}
	}
	if name := strings.TrimPrefix(parsed.Path, "/"); name != "" {
		cfg.Name = name
	}

	query := parsed.Query()
	if mode := query.Get("sslmode"); mode != "" {
		cfg.SSLMode = mode
	}
	if tz := query.Get("timezone"); tz != "" {
		cfg.TimeZone = tz
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("15s") and the "30d" form used by the old server.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	if days, ok := strings.CutSuffix(value, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil {
			return time.Duration(n) * 24 * time.Hour
		}
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return fallback
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})

	var cleaned []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	return cleaned
}
