package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fooddrop/internal/identity"
	"fooddrop/internal/profile/models"
	dErrors "fooddrop/pkg/domain-errors"
	"fooddrop/pkg/platform/httputil"
	"fooddrop/pkg/platform/middleware/auth"
	"fooddrop/pkg/platform/middleware/request"
	"fooddrop/pkg/requestcontext"
)

// Service defines the profile operations exposed over HTTP.
type Service interface {
	GetProfile(ctx context.Context, uid string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, uid string, fields map[string]any) error
	UpdatePreferences(ctx context.Context, uid string, patch models.PreferencesPatch) (models.Preferences, error)
	UpdateDisplayName(ctx context.Context, uid, name string) error
	ListCollections(ctx context.Context, uid string, opts models.ListOptions) ([]*models.CollectionItem, error)
	AddCollectionItem(ctx context.Context, uid string, in models.NewCollectionItem) (string, error)
}

// SessionListener reacts to sign-in and sign-out.
type SessionListener interface {
	SignedIn(ctx context.Context, id identity.Identity) (*models.Profile, error)
	SignedOut(ctx context.Context, uid string)
}

// Handler serves the signed-in user's session, profile and collections.
type Handler struct {
	logger   *slog.Logger
	profiles Service
	sessions SessionListener
	verifier auth.TokenVerifier
	timeout  time.Duration
	limit    func(http.Handler) http.Handler
}

// Option configures a Handler.
type Option func(*Handler)

// WithWriteLimit throttles profile and collection mutations.
func WithWriteLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		if mw != nil {
			h.limit = mw
		}
	}
}

// New creates a new profile Handler.
func New(profiles Service, sessions SessionListener, verifier auth.TokenVerifier, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger:   logger,
		profiles: profiles,
		sessions: sessions,
		verifier: verifier,
		timeout:  30 * time.Second,
		limit:    func(next http.Handler) http.Handler { return next },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the profile routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(h.timeout))
		r.Use(auth.RequireAuth(h.verifier, h.logger))

		r.Post("/session", h.handleSignIn)
		r.Delete("/session", h.handleSignOut)

		r.Get("/me/profile", h.handleGetProfile)
		r.Get("/me/collections", h.handleListCollections)

		r.Group(func(r chi.Router) {
			r.Use(h.limit)
			r.Patch("/me/profile", h.handleUpdateProfile)
			r.Put("/me/preferences", h.handleUpdatePreferences)
			r.Put("/me/display-name", h.handleUpdateDisplayName)
			r.Post("/me/collections", h.handleAddCollectionItem)
		})
	})
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		h.writeError(ctx, w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	profile, err := h.sessions.SignedIn(ctx, id)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.sessions.SignedOut(ctx, requestcontext.UserID(ctx))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, err := h.profiles.GetProfile(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := requestcontext.UserID(ctx)

	var fields map[string]any
	if err := httputil.DecodeJSON(r, &fields); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if err := h.profiles.UpdateProfile(ctx, uid, fields); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	profile, err := h.profiles.GetProfile(ctx, uid)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var patch models.PreferencesPatch
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	prefs, err := h.profiles.UpdatePreferences(ctx, requestcontext.UserID(ctx), patch)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, prefs)
}

type displayNameRequest struct {
	DisplayName string `json:"displayName"`
}

func (h *Handler) handleUpdateDisplayName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req displayNameRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if err := h.profiles.UpdateDisplayName(ctx, requestcontext.UserID(ctx), req.DisplayName); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListCollections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	opts := models.ListOptions{
		OrderBy:   q.Get("orderBy"),
		Direction: q.Get("direction"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(ctx, w, dErrors.New(dErrors.CodeBadRequest, "limit must be an integer"))
			return
		}
		opts.Limit = limit
	}

	items, err := h.profiles.ListCollections(ctx, requestcontext.UserID(ctx), opts)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if items == nil {
		items = []*models.CollectionItem{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) handleAddCollectionItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in models.NewCollectionItem
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	id, err := h.profiles.AddCollectionItem(ctx, requestcontext.UserID(ctx), in)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "profile request failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	} else {
		h.logger.WarnContext(ctx, "profile request rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
