package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "fooddrop/pkg/domain-errors"
)

var (
	verifier = NewVerifier("test-signing-key", "test-issuer", "test-audience")
	alice    = Identity{UID: "u-alice", Email: "alice@example.com", DisplayName: "Alice", EmailVerified: true}
)

func Test_IssueAndVerify(t *testing.T) {
	token, err := verifier.Issue(alice, "session_1_abc", time.Hour)
	require.NoError(t, err)

	id, claims, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, alice, id)
	assert.Equal(t, "session_1_abc", claims.SessionID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_Verify_InvalidToken(t *testing.T) {
	_, _, err := verifier.Verify("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Equal(t, "invalid token", err.Error())
}

func Test_Verify_ExpiredToken(t *testing.T) {
	token, err := verifier.Issue(alice, "", -time.Hour)
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	require.Error(t, err)
	assert.Equal(t, "token has expired", err.Error())
}

func Test_Verify_WrongAudience(t *testing.T) {
	other := NewVerifier("test-signing-key", "test-issuer", "other-audience")
	token, err := other.Issue(alice, "", time.Hour)
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Verify_WrongKey(t *testing.T) {
	other := NewVerifier("another-key", "test-issuer", "test-audience")
	token, err := other.Issue(alice, "", time.Hour)
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
