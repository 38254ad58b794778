package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"familytree/pkg/platform/dedupe"
)

// Config is the full process configuration, read once at startup.
type Config struct {
	Server    Server
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Photo     PhotoConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	AllowedOrigins  []string
	TxTimeout       time.Duration
	ShutdownTimeout time.Duration
	// MetricsToken guards /metrics through X-Admin-Token. Empty leaves it open.
	MetricsToken string
}

// DatabaseConfig points at PostgreSQL. An empty URL runs the service on
// in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig points at the token revocation list. Empty URL falls back to
// an in-process list.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuthConfig holds token signing material and lifetimes.
type AuthConfig struct {
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	Issuer             string
	Audience           string
	SecureCookies      bool
}

// PhotoConfig locates the object store holding person photos.
type PhotoConfig struct {
	// BucketURL is a gocloud.dev blob URL: file:///var/photos, gs://bucket, mem://.
	BucketURL string
	// PublicBaseURL prefixes object keys to form browser-facing URLs.
	PublicBaseURL string
	// CanonicalPrefix is stored in front of bare object keys on update.
	CanonicalPrefix string
	MaxUploadBytes  int64
}

// RateLimitConfig sets per-minute request budgets. Buckets live in Redis when
// it is configured.
type RateLimitConfig struct {
	Disabled       bool
	AuthPerMinute  int
	WritePerMinute int
	ReadPerMinute  int
}

// LogConfig selects slog handler and level.
type LogConfig struct {
	Format string
	Level  string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envString("FAMILYTREE_ADDR", ":3000"),
			AllowedOrigins:  envList("ALLOWED_ORIGINS", []string{"http://127.0.0.1:5500"}),
			TxTimeout:       envDuration("TX_TIMEOUT", 5*time.Second),
			ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			MetricsToken:    os.Getenv("METRICS_TOKEN"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 1),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Auth: AuthConfig{
			// Development defaults; production must override both secrets.
			AccessTokenSecret:  envString("ACCESS_TOKEN_SECRET", "dev-access-secret-change-in-production"),
			RefreshTokenSecret: envString("REFRESH_TOKEN_SECRET", "dev-refresh-secret-change-in-production"),
			AccessTokenTTL:     envDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTokenTTL:    envDuration("REFRESH_TOKEN_TTL", 24*time.Hour),
			Issuer:             envString("TOKEN_ISSUER", "familytree"),
			Audience:           envString("TOKEN_AUDIENCE", "familytree-web"),
			SecureCookies:      envBool("SECURE_COOKIES", true),
		},
		Photo: PhotoConfig{
			BucketURL:       envString("PHOTO_BUCKET_URL", "mem://"),
			PublicBaseURL:   envString("PHOTO_PUBLIC_BASE_URL", "https://storage.googleapis.com/family-photos"),
			CanonicalPrefix: envString("PHOTO_CANONICAL_PREFIX", "storage.googleapis.com/family-photos/"),
			MaxUploadBytes:  int64(envInt("PHOTO_MAX_UPLOAD_BYTES", 5<<20)),
		},
		RateLimit: RateLimitConfig{
			Disabled:       envBool("RATE_LIMIT_DISABLED", false),
			AuthPerMinute:  envInt("RATE_LIMIT_AUTH_PER_MINUTE", 10),
			WritePerMinute: envInt("RATE_LIMIT_WRITE_PER_MINUTE", 60),
			ReadPerMinute:  envInt("RATE_LIMIT_READ_PER_MINUTE", 300),
		},
		Log: LogConfig{
			Format: envString("LOG_FORMAT", "json"),
			Level:  envString("LOG_LEVEL", "info"),
		},
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func envList(key string, def []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	return dedupe.AndTrim(strings.Split(raw, ","))
}
