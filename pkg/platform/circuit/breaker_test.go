package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// step is one recorded outcome and the state expected right after it.
type step struct {
	fail     bool
	wantOpen bool
	opened   bool
	closed   bool
}

func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		steps []step
	}{
		{
			name: "opens on the third consecutive failure",
			opts: []Option{WithFailureThreshold(3)},
			steps: []step{
				{fail: true},
				{fail: true},
				{fail: true, wantOpen: true, opened: true},
				{fail: true, wantOpen: true},
			},
		},
		{
			name: "success clears the failure streak",
			opts: []Option{WithFailureThreshold(3)},
			steps: []step{
				{fail: true},
				{fail: true},
				{},
				{fail: true},
				{fail: true},
				{fail: true, wantOpen: true, opened: true},
			},
		},
		{
			name: "closes after enough successes",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			steps: []step{
				{fail: true, wantOpen: true, opened: true},
				{wantOpen: true},
				{closed: true},
			},
		},
		{
			name: "failure while open restarts the success count",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(3)},
			steps: []step{
				{fail: true, wantOpen: true, opened: true},
				{wantOpen: true},
				{wantOpen: true},
				{fail: true, wantOpen: true},
				{wantOpen: true},
				{wantOpen: true},
				{closed: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("audit-store", tt.opts...)
			for i, s := range tt.steps {
				var change StateChange
				if s.fail {
					_, change = b.RecordFailure()
				} else {
					_, change = b.RecordSuccess()
				}
				assert.Equal(t, s.wantOpen, b.IsOpen(), "step %d open", i)
				assert.Equal(t, s.opened, change.Opened, "step %d opened", i)
				assert.Equal(t, s.closed, change.Closed, "step %d closed", i)
			}
		})
	}
}

func TestBreakerStartsClosed(t *testing.T) {
	b := New("audit-store")
	assert.Equal(t, "audit-store", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreakerReportsFallbackWhileOpen(t *testing.T) {
	b := New("audit-store", WithFailureThreshold(1))

	useFallback, _ := b.RecordFailure()
	require.True(t, useFallback)

	usePrimary, _ := b.RecordSuccess()
	assert.True(t, usePrimary, "default success threshold is one")
}

func TestBreakerReset(t *testing.T) {
	b := New("audit-store", WithFailureThreshold(1))
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreakerCooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b := New("audit-store", WithFailureThreshold(1), WithCooldown(time.Minute), WithClock(func() time.Time { return now }))

	b.RecordFailure()
	assert.False(t, b.Allow())

	now = now.Add(59 * time.Second)
	assert.False(t, b.Allow())

	now = now.Add(time.Second)
	assert.True(t, b.Allow(), "trial call admitted once cooldown elapsed")

	// A failed trial call restarts the cooldown.
	b.RecordFailure()
	assert.False(t, b.Allow())
}

func TestBreakerWithoutCooldownStaysShut(t *testing.T) {
	b := New("audit-store", WithFailureThreshold(1))
	b.RecordFailure()
	assert.False(t, b.Allow())
}
