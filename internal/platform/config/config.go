// Package config reads process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	fdstrings "fooddrop/pkg/platform/strings"
)

// Config is the full process configuration.
type Config struct {
	Server    Server
	Database  Database
	Redis     RedisConfig
	Audit     Audit
	Monitor   Monitor
	Kafka     Kafka
	RateLimit RateLimit
	Sentry    Sentry
	Log       Log
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	// Identity token verification.
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	// AdminToken guards operator routes. Empty disables them.
	AdminToken string
}

// Database selects the document store. An empty DSN runs on the in-memory
// store.
type Database struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	TxTimeout    time.Duration
}

// RedisConfig configures the audit session registry. An empty URL keeps
// sessions in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SessionTTL   time.Duration
}

// Audit controls the audit pipeline.
type Audit struct {
	DevMode     bool
	EnableInDev bool
	BufferSize  int
	// Breaker settings for the audit store writer.
	BreakerFailures int
	BreakerCooldown time.Duration
}

// PersistenceEnabled reports whether audit entries are written to the store.
// Development mode only mirrors them to the logger unless explicitly enabled.
func (a Audit) PersistenceEnabled() bool {
	return !a.DevMode || a.EnableInDev
}

// Monitor configures the query monitor.
type Monitor struct {
	WarnThreshold  time.Duration
	ErrorThreshold time.Duration
	BufferSize     int
	PruneInterval  time.Duration
	MaxAge         time.Duration
}

// Kafka configures the audit stream. No brokers disables it.
type Kafka struct {
	Brokers           []string
	AuditTopic        string
	Partitions        int32
	ReplicationFactor int16
}

// RateLimit sets per-user request limits. Buckets live in Redis when it is
// configured, otherwise in process.
type RateLimit struct {
	Disabled        bool
	SensitiveLimit  int
	SensitiveWindow time.Duration
	WriteLimit      int
	WriteWindow     time.Duration
}

// Sentry configures error tracking. An empty DSN disables it.
type Sentry struct {
	DSN         string
	Environment string
	SampleRate  float64
}

// Log configures the diagnostic logger.
type Log struct {
	Level  string
	Format string
}

// FromEnv builds the config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envString("FOODDROP_ADDR", ":8080"),
			ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			// Development default; production must override.
			JWTSigningKey: envString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     envString("JWT_ISSUER", "fooddrop-identity"),
			JWTAudience:   envString("JWT_AUDIENCE", "fooddrop"),
			AdminToken:    os.Getenv("ADMIN_TOKEN"),
		},
		Database: Database{
			DSN:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
			TxTimeout:    envDuration("DATABASE_TX_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			SessionTTL:   envDuration("AUDIT_SESSION_TTL", 30*time.Minute),
		},
		Audit: Audit{
			DevMode:         envBool("AUDIT_DEV_MODE", false),
			EnableInDev:     envBool("AUDIT_ENABLE_IN_DEV", false),
			BufferSize:      envInt("AUDIT_BUFFER_SIZE", 1024),
			BreakerFailures: envInt("AUDIT_BREAKER_FAILURES", 5),
			BreakerCooldown: envDuration("AUDIT_BREAKER_COOLDOWN", 30*time.Second),
		},
		Monitor: Monitor{
			WarnThreshold:  envDuration("MONITOR_WARN_THRESHOLD", time.Second),
			ErrorThreshold: envDuration("MONITOR_ERROR_THRESHOLD", 5*time.Second),
			BufferSize:     envInt("MONITOR_BUFFER_SIZE", 1000),
			PruneInterval:  envDuration("MONITOR_PRUNE_INTERVAL", time.Minute),
			MaxAge:         envDuration("MONITOR_MAX_AGE", time.Hour),
		},
		Kafka: Kafka{
			Brokers:           envList("KAFKA_BROKERS"),
			AuditTopic:        envString("KAFKA_AUDIT_TOPIC", "fooddrop.audit"),
			Partitions:        int32(envInt("KAFKA_AUDIT_PARTITIONS", 3)),
			ReplicationFactor: int16(envInt("KAFKA_AUDIT_REPLICATION", 1)),
		},
		RateLimit: RateLimit{
			Disabled:        envBool("RATE_LIMIT_DISABLED", false),
			SensitiveLimit:  envInt("RATE_LIMIT_SENSITIVE", 5),
			SensitiveWindow: envDuration("RATE_LIMIT_SENSITIVE_WINDOW", time.Hour),
			WriteLimit:      envInt("RATE_LIMIT_WRITE", 60),
			WriteWindow:     envDuration("RATE_LIMIT_WRITE_WINDOW", time.Minute),
		},
		Sentry: Sentry{
			DSN:         os.Getenv("SENTRY_DSN"),
			Environment: envString("APP_ENV", "development"),
			SampleRate:  envFloat("SENTRY_SAMPLE_RATE", 1.0),
		},
		Log: Log{
			Level:  envString("LOG_LEVEL", "info"),
			Format: envString("LOG_FORMAT", "json"),
		},
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return def
}

func envBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}

func envList(key string) []string {
	out := fdstrings.DedupeAndTrim(strings.Split(os.Getenv(key), ","))
	if len(out) == 0 {
		return nil
	}
	return out
}
