package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fooddrop/internal/gdpr/models"
	gdprservice "fooddrop/internal/gdpr/service"
	dErrors "fooddrop/pkg/domain-errors"
	"fooddrop/pkg/platform/httputil"
	"fooddrop/pkg/platform/middleware/admin"
	"fooddrop/pkg/platform/middleware/auth"
	"fooddrop/pkg/requestcontext"
)

// Service defines the data subject rights operations exposed over HTTP.
type Service interface {
	RecordConsent(ctx context.Context, userID string, in models.ConsentInput) (*models.ConsentRecord, error)
	RequestExport(ctx context.Context, userID string, opts models.ExportOptions) (*models.ExportResult, error)
	RequestDeletion(ctx context.Context, userID, reason string, retainAnalytics bool) (*models.DeletionReceipt, error)
	ProcessDeletion(ctx context.Context, userID, code string, retainAnalytics bool) error
	ListRequests(ctx context.Context, userID string) ([]models.RequestSummary, error)
	ComplianceReport(ctx context.Context, userID string) (models.ComplianceReport, error)
}

// Handler serves consent, export and deletion endpoints.
type Handler struct {
	logger     *slog.Logger
	gdpr       Service
	verifier   auth.TokenVerifier
	adminToken string
	timeout    time.Duration
	limit      func(http.Handler) http.Handler
}

// Option configures a Handler.
type Option func(*Handler)

// WithSensitiveLimit throttles export and deletion requests.
func WithSensitiveLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		if mw != nil {
			h.limit = mw
		}
	}
}

// New creates a new GDPR Handler. An empty adminToken disables the operator
// routes.
func New(gdpr Service, verifier auth.TokenVerifier, adminToken string, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger:     logger,
		gdpr:       gdpr,
		verifier:   verifier,
		adminToken: adminToken,
		timeout:    60 * time.Second,
		limit:      func(next http.Handler) http.Handler { return next },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the GDPR routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.verifier, h.logger))
		r.Post("/me/gdpr/consent", h.handleRecordConsent)
		r.With(h.limit).Post("/me/gdpr/exports", h.handleRequestExport)
		r.With(h.limit).Post("/me/gdpr/deletion", h.handleRequestDeletion)
		r.With(h.limit).Post("/me/gdpr/deletion/confirm", h.handleConfirmDeletion)
		r.Get("/me/gdpr/requests", h.handleListRequests)
		r.Get("/me/gdpr/compliance", h.handleOwnCompliance)
	})
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		r.Get("/admin/users/{uid}/compliance", h.handleUserCompliance)
	})
}

func (h *Handler) handleRecordConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in models.ConsentInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	rec, err := h.gdpr.RecordConsent(ctx, requestcontext.UserID(ctx), in)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

// handleRequestExport generates the export synchronously. CSV exports are
// returned as an attachment; JSON exports carry the request id and status.
func (h *Handler) handleRequestExport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var opts models.ExportOptions
	if err := httputil.DecodeJSON(r, &opts); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if f := r.URL.Query().Get("format"); f != "" {
		opts.Format = models.ExportFormat(f)
	}

	result, err := h.gdpr.RequestExport(ctx, requestcontext.UserID(ctx), opts)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if opts.Format != models.FormatCSV {
		httputil.WriteJSON(w, http.StatusOK, result)
		return
	}

	csv, err := gdprservice.FormatDataAsCSV(result.Export)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="fooddrop-export-%s.csv"`, result.RequestID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}

type deletionRequest struct {
	Reason          string `json:"reason"`
	RetainAnalytics bool   `json:"retainAnalytics"`
}

func (h *Handler) handleRequestDeletion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req deletionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	receipt, err := h.gdpr.RequestDeletion(ctx, requestcontext.UserID(ctx), req.Reason, req.RetainAnalytics)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, receipt)
}

type confirmDeletionRequest struct {
	ConfirmationCode string `json:"confirmationCode"`
	RetainAnalytics  bool   `json:"retainAnalytics"`
}

func (h *Handler) handleConfirmDeletion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req confirmDeletionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if req.ConfirmationCode == "" {
		h.writeError(ctx, w, dErrors.New(dErrors.CodeBadRequest, "confirmationCode is required"))
		return
	}
	if err := h.gdpr.ProcessDeletion(ctx, requestcontext.UserID(ctx), req.ConfirmationCode, req.RetainAnalytics); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requests, err := h.gdpr.ListRequests(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if requests == nil {
		requests = []models.RequestSummary{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (h *Handler) handleOwnCompliance(w http.ResponseWriter, r *http.Request) {
	h.writeCompliance(w, r, requestcontext.UserID(r.Context()))
}

func (h *Handler) handleUserCompliance(w http.ResponseWriter, r *http.Request) {
	h.writeCompliance(w, r, chi.URLParam(r, "uid"))
}

func (h *Handler) writeCompliance(w http.ResponseWriter, r *http.Request, uid string) {
	ctx := r.Context()
	report, err := h.gdpr.ComplianceReport(ctx, uid)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "gdpr request failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	} else {
		h.logger.WarnContext(ctx, "gdpr request rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
