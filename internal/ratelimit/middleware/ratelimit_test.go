package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"fooddrop/internal/ratelimit/middleware/mocks"
	"fooddrop/internal/ratelimit/models"
	"fooddrop/internal/ratelimit/store/bucket"
	audit "fooddrop/pkg/platform/audit"
	"fooddrop/pkg/testutil"
)

type RateLimitSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	security *mocks.MockSecurityLogger
	logger   *slog.Logger
	reached  int
}

func TestRateLimitSuite(t *testing.T) {
	suite.Run(t, new(RateLimitSuite))
}

func (s *RateLimitSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.security = mocks.NewMockSecurityLogger(s.ctrl)
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.reached = 0
}

func (s *RateLimitSuite) handler(m *Middleware) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.reached++
		w.WriteHeader(http.StatusAccepted)
	})
	return m.RateLimitAuthenticated(models.ClassSensitive)(next)
}

func (s *RateLimitSuite) request(h http.Handler, userID string) *httptest.ResponseRecorder {
	req := testutil.WithClient(httptest.NewRequest(http.MethodPost, "/v1/me/gdpr/exports", nil), "203.0.113.7", "test-agent")
	if userID != "" {
		req = testutil.WithAuth(req, userID, "")
	}
	return testutil.DoRequest(h, req)
}

func (s *RateLimitSuite) TestRejectsOverLimitAndAudits() {
	m := New(bucket.New(), s.security, s.logger,
		WithLimit(models.ClassSensitive, models.Limit{Requests: 2, Window: time.Hour}))
	h := s.handler(m)

	s.security.EXPECT().
		LogSecurityEvent(gomock.Any(), "u1", audit.SecurityRateLimitExceeded, gomock.Any(), "203.0.113.7").
		Do(func(_ context.Context, _ string, _ audit.SecurityEvent, details map[string]any, _ string) {
			s.Equal("sensitive", details["class"])
			s.Equal("/v1/me/gdpr/exports", details["path"])
		})

	s.Equal(http.StatusAccepted, s.request(h, "u1").Code)
	rec := s.request(h, "u1")
	s.Equal(http.StatusAccepted, rec.Code)
	s.Equal("0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = s.request(h, "u1")
	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.Equal("3600", rec.Header().Get("Retry-After"))
	var body models.UserRateLimitExceededResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("user_rate_limit_exceeded", body.Error)
	s.Equal(2, body.QuotaLimit)
	s.Equal(2, s.reached)
}

func (s *RateLimitSuite) TestUsersAreLimitedSeparately() {
	m := New(bucket.New(), s.security, s.logger,
		WithLimit(models.ClassSensitive, models.Limit{Requests: 1, Window: time.Hour}))
	h := s.handler(m)

	s.Equal(http.StatusAccepted, s.request(h, "u1").Code)
	s.Equal(http.StatusAccepted, s.request(h, "u2").Code)
}

func (s *RateLimitSuite) TestAnonymousPassesThrough() {
	store := mocks.NewMockBucketStore(s.ctrl)
	h := s.handler(New(store, s.security, s.logger))

	s.Equal(http.StatusAccepted, s.request(h, "").Code)
	s.Equal(1, s.reached)
}

func (s *RateLimitSuite) TestStoreFailureFailsOpen() {
	store := mocks.NewMockBucketStore(s.ctrl)
	store.EXPECT().
		Allow(gomock.Any(), "user:u1:sensitive", 5, time.Hour).
		Return(nil, errors.New("redis: connection refused"))
	h := s.handler(New(store, s.security, s.logger))

	rec := s.request(h, "u1")
	s.Equal(http.StatusAccepted, rec.Code)
	s.Empty(rec.Header().Get("X-RateLimit-Limit"))
}

func (s *RateLimitSuite) TestDisabled() {
	store := mocks.NewMockBucketStore(s.ctrl)
	h := s.handler(New(store, s.security, s.logger, WithDisabled(true)))

	for range 10 {
		s.Equal(http.StatusAccepted, s.request(h, "u1").Code)
	}
}
