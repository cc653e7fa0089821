package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"FOODDROP_ADDR", "DATABASE_URL", "KAFKA_BROKERS", "AUDIT_DEV_MODE", "AUDIT_ENABLE_IN_DEV", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Database.DSN)
	assert.Nil(t, cfg.Kafka.Brokers)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Audit.PersistenceEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("FOODDROP_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("MONITOR_WARN_THRESHOLD", "250ms")
	t.Setenv("AUDIT_BUFFER_SIZE", "not-a-number")
	t.Setenv("SENTRY_SAMPLE_RATE", "0.25")
	t.Setenv("RATE_LIMIT_SENSITIVE_WINDOW", "30m")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 250*time.Millisecond, cfg.Monitor.WarnThreshold)
	assert.Equal(t, 1024, cfg.Audit.BufferSize)
	assert.InDelta(t, 0.25, cfg.Sentry.SampleRate, 1e-9)
	assert.Equal(t, 30*time.Minute, cfg.RateLimit.SensitiveWindow)
	assert.Equal(t, 5, cfg.RateLimit.SensitiveLimit)
}

func TestAuditPersistenceGate(t *testing.T) {
	tests := []struct {
		devMode, enableInDev, want bool
	}{
		{false, false, true},
		{true, false, false},
		{true, true, true},
		{false, true, true},
	}
	for _, tt := range tests {
		a := Audit{DevMode: tt.devMode, EnableInDev: tt.enableInDev}
		assert.Equal(t, tt.want, a.PersistenceEnabled(), "dev=%v enable=%v", tt.devMode, tt.enableInDev)
	}
}
