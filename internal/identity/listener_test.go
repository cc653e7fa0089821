package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"fooddrop/internal/identity"
	"fooddrop/internal/identity/mocks"
	profilemodels "fooddrop/internal/profile/models"
)

func TestListener(t *testing.T) {
	ctx := context.Background()
	id := identity.Identity{UID: "user-1", Email: "a@example.com"}
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("sign-out records the tracked session duration", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		profiles := mocks.NewMockProfileEnsurer(ctrl)
		auditor := mocks.NewMockLogoutAuditor(ctrl)

		now := start
		l := identity.NewListener(profiles, auditor, identity.WithListenerClock(func() time.Time { return now }))

		want := profilemodels.NewProfile(id.UID, id.Email, "", false, start, "")
		profiles.EXPECT().EnsureProfile(gomock.Any(), id).Return(want, nil)
		got, err := l.SignedIn(ctx, id)
		require.NoError(t, err)
		assert.Same(t, want, got)

		now = start.Add(42 * time.Minute)
		auditor.EXPECT().LogUserLogout(gomock.Any(), "user-1", 42*time.Minute)
		l.SignedOut(ctx, "user-1")
	})

	t.Run("sign-out without a tracked session records zero", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		auditor := mocks.NewMockLogoutAuditor(ctrl)
		l := identity.NewListener(mocks.NewMockProfileEnsurer(ctrl), auditor)

		auditor.EXPECT().LogUserLogout(gomock.Any(), "user-2", time.Duration(0))
		l.SignedOut(ctx, "user-2")
	})

	t.Run("profile failure is returned and not tracked", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		profiles := mocks.NewMockProfileEnsurer(ctrl)
		auditor := mocks.NewMockLogoutAuditor(ctrl)
		l := identity.NewListener(profiles, auditor)

		boom := errors.New("store down")
		profiles.EXPECT().EnsureProfile(gomock.Any(), id).Return(nil, boom)
		_, err := l.SignedIn(ctx, id)
		assert.ErrorIs(t, err, boom)

		auditor.EXPECT().LogUserLogout(gomock.Any(), "user-1", time.Duration(0))
		l.SignedOut(ctx, "user-1")
	})
}
