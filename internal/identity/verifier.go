package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "fooddrop/pkg/domain-errors"
)

// Claims are the identity token claims.
type Claims struct {
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	SessionID     string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 identity tokens.
type Verifier struct {
	signingKey []byte
	issuer     string
	audience   string
	now        func() time.Time
}

func NewVerifier(signingKey, issuer, audience string) *Verifier {
	return &Verifier{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		now:        time.Now,
	}
}

// Issue signs a token for id. Used by development tooling and tests; the
// production provider issues its own tokens.
func (v *Verifier) Issue(id Identity, sessionID string, expiresIn time.Duration) (string, error) {
	now := v.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:         id.Email,
		Name:          id.DisplayName,
		EmailVerified: id.EmailVerified,
		SessionID:     sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    v.issuer,
			Audience:  []string{v.audience},
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(v.signingKey)
}

// Verify parses and validates a token, returning the identity and claims.
func (v *Verifier) Verify(tokenString string) (Identity, *Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	},
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return Identity{}, nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return Identity{}, nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return Identity{
		UID:           claims.Subject,
		Email:         claims.Email,
		DisplayName:   claims.Name,
		EmailVerified: claims.EmailVerified,
	}, claims, nil
}
