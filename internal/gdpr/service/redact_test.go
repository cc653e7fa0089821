package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fooddrop/internal/gdpr/models"
	audit "fooddrop/pkg/platform/audit"
)

func TestRedactEntries(t *testing.T) {
	original := audit.Entry{
		ID:        "a1",
		UserID:    "u1",
		Action:    audit.ActionDataDeletion,
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		IPAddress: "203.0.113.9",
		SessionID: "s1",
		Details: map[string]any{
			"userAgent":        "Mozilla/5.0",
			"device":           "Chrome 120 on Windows 10 (desktop)",
			"confirmationCode": "0f1e2d3c4b5a69788796a5b4c3d2e1f0",
			"reason":           "gdpr",
		},
	}

	out := redactEntries([]audit.Entry{original})
	require.Len(t, out, 1)
	got := out[0]

	assert.Equal(t, models.RedactedIPAddress, got.IPAddress)
	assert.Equal(t, models.RedactedUserAgent, got.Details["userAgent"])
	assert.NotContains(t, got.Details, "device", "device summary is derived from the user agent")
	assert.NotEqual(t, original.Details["confirmationCode"], got.Details["confirmationCode"])
	assert.Equal(t, "gdpr", got.Details["reason"])
	assert.Equal(t, "s1", got.SessionID)

	assert.Equal(t, "203.0.113.9", original.IPAddress, "input entries are not modified")
	assert.Equal(t, "Mozilla/5.0", original.Details["userAgent"])
	assert.Contains(t, original.Details, "device")
}

func TestRedactEntriesWithoutDetails(t *testing.T) {
	out := redactEntries([]audit.Entry{{UserID: "u1", Action: audit.ActionLogin}})
	require.Len(t, out, 1)
	assert.Equal(t, map[string]any{"userAgent": models.RedactedUserAgent}, out[0].Details)
}
