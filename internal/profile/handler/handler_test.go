package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"fooddrop/internal/identity"
	"fooddrop/internal/profile/handler/mocks"
	"fooddrop/internal/profile/models"
	"fooddrop/internal/validation"
	dErrors "fooddrop/pkg/domain-errors"
	"fooddrop/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	profiles *mocks.MockService
	sessions *mocks.MockSessionListener
	verifier *identity.Verifier
	router   chi.Router
	token    string
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.profiles = mocks.NewMockService(s.ctrl)
	s.sessions = mocks.NewMockSessionListener(s.ctrl)
	s.verifier = identity.NewVerifier("test-signing-key", "fooddrop-test", "fooddrop")

	h := New(s.profiles, s.sessions, s.verifier, slog.New(slog.DiscardHandler))
	s.router = chi.NewRouter()
	s.router.Route("/v1", h.Register)

	token, err := s.verifier.Issue(identity.Identity{UID: "u1", Email: "a@b.com", EmailVerified: true}, "s1", time.Hour)
	s.Require().NoError(err)
	s.token = token
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func (s *HandlerSuite) TestRequiresBearerToken() {
	s.token = ""
	rec := s.do(http.MethodGet, "/v1/me/profile", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)

	s.token = "not-a-jwt"
	rec = s.do(http.MethodGet, "/v1/me/profile", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestSignInAndOut() {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	profile := models.NewProfile("u1", "a@b.com", "", true, now, "")
	s.sessions.EXPECT().SignedIn(gomock.Any(), identity.Identity{UID: "u1", Email: "a@b.com", EmailVerified: true}).
		Return(profile, nil)

	rec := s.do(http.MethodPost, "/v1/session", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("u1", decodeBody(s.T(), rec)["uid"])

	s.sessions.EXPECT().SignedOut(gomock.Any(), "u1")
	rec = s.do(http.MethodDelete, "/v1/session", nil)
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *HandlerSuite) TestGetProfileNotFound() {
	s.profiles.EXPECT().GetProfile(gomock.Any(), "u1").
		Return(nil, dErrors.New(dErrors.CodeNotFound, "profile not found"))

	rec := s.do(http.MethodGet, "/v1/me/profile", nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("not_found", decodeBody(s.T(), rec)["error"])
}

func (s *HandlerSuite) TestUpdateProfileProtectedField() {
	s.profiles.EXPECT().UpdateProfile(gomock.Any(), "u1", map[string]any{"uid": "u2"}).
		Return(dErrors.New(dErrors.CodeProtectedField, "cannot update protected fields: uid"))

	rec := s.do(http.MethodPatch, "/v1/me/profile", map[string]any{"uid": "u2"})
	s.Equal(http.StatusForbidden, rec.Code)
	body := decodeBody(s.T(), rec)
	s.Equal("protected_field", body["error"])
	s.Equal("cannot update protected fields: uid", body["error_description"])
}

func (s *HandlerSuite) TestUpdateProfileRejectsMalformedBody() {
	req := httptest.NewRequest(http.MethodPatch, "/v1/me/profile", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestUpdatePreferences() {
	dark := models.ThemeDark
	want := models.DefaultPreferences()
	want.Theme = dark
	s.profiles.EXPECT().UpdatePreferences(gomock.Any(), "u1", models.PreferencesPatch{Theme: &dark}).Return(want, nil)

	rec := s.do(http.MethodPut, "/v1/me/preferences", map[string]any{"theme": "dark"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("dark", decodeBody(s.T(), rec)["theme"])
}

func (s *HandlerSuite) TestListCollections() {
	s.Run("bad limit", func() {
		rec := s.do(http.MethodGet, "/v1/me/collections?limit=ten", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("passes options through", func() {
		s.profiles.EXPECT().
			ListCollections(gomock.Any(), "u1", models.ListOptions{Limit: 10, OrderBy: "foodItemId", Direction: "asc"}).
			Return(nil, nil)

		rec := s.do(http.MethodGet, "/v1/me/collections?limit=10&orderBy=foodItemId&direction=asc", nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Equal([]any{}, decodeBody(s.T(), rec)["items"])
	})
}

func (s *HandlerSuite) TestAddCollectionItem() {
	in := models.NewCollectionItem{FoodItemID: "apple", Method: models.MethodScan}

	s.Run("created", func() {
		s.profiles.EXPECT().AddCollectionItem(gomock.Any(), "u1", in).Return("c1", nil)
		rec := s.do(http.MethodPost, "/v1/me/collections", in)
		s.Require().Equal(http.StatusCreated, rec.Code)
		s.Equal("c1", decodeBody(s.T(), rec)["id"])
	})

	s.Run("validation failure names the field", func() {
		verr := validation.Check(map[string]any{"method": "steal"}, models.CollectionItemRules)
		s.Require().Error(verr)
		s.profiles.EXPECT().AddCollectionItem(gomock.Any(), "u1", gomock.Any()).Return("", verr)

		rec := s.do(http.MethodPost, "/v1/me/collections", map[string]any{"foodItemId": "apple", "method": "steal"})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.NotEmpty(decodeBody(s.T(), rec)["field"])
	})

	s.Run("store failure hides detail", func() {
		s.profiles.EXPECT().AddCollectionItem(gomock.Any(), "u1", in).Return("", errors.New("connection reset"))
		rec := s.do(http.MethodPost, "/v1/me/collections", in)
		s.Equal(http.StatusInternalServerError, rec.Code)
		s.NotContains(rec.Body.String(), "connection reset")
	})
}

func TestSignInWithoutIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := New(mocks.NewMockService(ctrl), mocks.NewMockSessionListener(ctrl), nil, slog.New(slog.DiscardHandler))

	req := httptest.NewRequest(http.MethodPost, "/v1/session", nil)
	req = req.WithContext(requestcontext.WithUserID(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	h.handleSignIn(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
