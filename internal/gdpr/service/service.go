package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"fooddrop/internal/docstore"
	"fooddrop/internal/gdpr/models"
	profilemodels "fooddrop/internal/profile/models"
	"fooddrop/internal/validation"
	dErrors "fooddrop/pkg/domain-errors"
	audit "fooddrop/pkg/platform/audit"
	"fooddrop/pkg/platform/audit/publisher"
	"fooddrop/pkg/platform/sentinel"
	"fooddrop/pkg/requestcontext"
)

type Store interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Commit(ctx context.Context, batch *docstore.Batch) error
	CreateExport(ctx context.Context, req *models.ExportRequest) error
	SaveExport(ctx context.Context, req *models.ExportRequest) error
	ListExports(ctx context.Context, userID string) ([]*models.ExportRequest, error)
	CreateDeletion(ctx context.Context, req *models.DeletionRequest) error
	ListDeletions(ctx context.Context, userID string) ([]*models.DeletionRequest, error)
	PendingDeletions(ctx context.Context, userID string) ([]*models.DeletionRequest, error)
	AppendConsent(ctx context.Context, rec *models.ConsentRecord) error
	ListConsents(ctx context.Context, userID string) ([]*models.ConsentRecord, error)
	DeletionOps(ctx context.Context, userID, keepID string) (*docstore.Batch, error)
	CompleteDeletionOps(req *models.DeletionRequest) *docstore.Batch
}

// ProfileService is the profile surface the GDPR workflows depend on.
type ProfileService interface {
	GetProfile(ctx context.Context, uid string) (*profilemodels.Profile, error)
	AllCollections(ctx context.Context, uid string) ([]*profilemodels.CollectionItem, error)
	ArchiveProfile(ctx context.Context, uid string, scheduledFor time.Time) error
	UpdatePreferences(ctx context.Context, uid string, patch profilemodels.PreferencesPatch) (profilemodels.Preferences, error)
	DeletionOps(ctx context.Context, uid string) (*docstore.Batch, error)
}

// AuditRecords reads and purges persisted audit data for one user.
type AuditRecords interface {
	ListByUser(ctx context.Context, userID string) ([]audit.Entry, error)
	ListMetricsByUser(ctx context.Context, userID string) ([]audit.PerformanceMetric, error)
	PurgeOps(ctx context.Context, userID string) (*docstore.Batch, error)
}

type AuditLogger interface {
	Record(ctx context.Context, userID string, action audit.Action, details map[string]any, opts ...publisher.RecordOption)
	Flush(ctx context.Context) error
}

// Service runs the data subject workflows: consent, export and erasure.
type Service struct {
	store    Store
	profiles ProfileService
	records  AuditRecords
	auditor  AuditLogger
	logger   *slog.Logger
	codeCost int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCodeCost sets the bcrypt cost for confirmation codes.
func WithCodeCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.codeCost = cost
		}
	}
}

func New(store Store, profiles ProfileService, records AuditRecords, auditor AuditLogger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		profiles: profiles,
		records:  records,
		auditor:  auditor,
		logger:   slog.Default(),
		codeCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordConsent appends a consent decision and mirrors its cookie and
// marketing choices onto the profile preferences.
func (s *Service) RecordConsent(ctx context.Context, userID string, in models.ConsentInput) (*models.ConsentRecord, error) {
	input, err := validation.ToRecord(in)
	if err != nil {
		return nil, err
	}
	if err := validation.Check(input, models.ConsentInputRules); err != nil {
		return nil, err
	}
	if _, err := s.profiles.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	rec := &models.ConsentRecord{
		UserID:            userID,
		Given:             in.Given,
		Version:           in.Version,
		CookiePreferences: in.CookiePreferences,
		MarketingEmails:   in.MarketingEmails,
		Timestamp:         requestcontext.Now(ctx).UTC(),
		IPAddress:         requestcontext.ClientIP(ctx),
	}
	if err := s.store.AppendConsent(ctx, rec); err != nil {
		return nil, err
	}

	given := in.Given
	cookies := in.CookiePreferences
	marketing := in.MarketingEmails
	_, err = s.profiles.UpdatePreferences(ctx, userID, profilemodels.PreferencesPatch{
		DataProcessingConsent: &given,
		CookiePreferences:     &cookies,
		MarketingEmails:       &marketing,
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, userID, audit.ActionConsentUpdate, map[string]any{
		"consentId":        rec.ID,
		"given":            rec.Given,
		"version":          rec.Version,
		"marketingEmails":  rec.MarketingEmails,
		"analyticsCookies": rec.CookiePreferences.Analytics,
	})
	return rec, nil
}

// RequestExport records the request, generates the export synchronously and
// leaves the request completed or failed.
func (s *Service) RequestExport(ctx context.Context, userID string, opts models.ExportOptions) (*models.ExportResult, error) {
	switch opts.Format {
	case "":
		opts.Format = models.FormatJSON
	case models.FormatJSON, models.FormatCSV:
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "format must be json or csv")
	}

	req := models.NewExportRequest(userID, opts, requestcontext.ClientIP(ctx), requestcontext.Now(ctx).UTC())
	if err := s.store.CreateExport(ctx, req); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, userID, audit.ActionDataExport, map[string]any{
		"requestId":          req.ID,
		"requestedDataTypes": opts.Requested(),
		"format":             string(opts.Format),
	})

	if err := req.TransitionTo(models.ExportProcessing, requestcontext.Now(ctx).UTC()); err != nil {
		return nil, err
	}
	if err := s.store.SaveExport(ctx, req); err != nil {
		return nil, err
	}

	export, genErr := s.GenerateDataExport(ctx, userID, opts)
	now := requestcontext.Now(ctx).UTC()
	if genErr != nil {
		if err := req.Fail(genErr.Error(), now); err != nil {
			return nil, err
		}
		// The caller's context may be gone; record the failure regardless.
		if err := s.store.SaveExport(context.WithoutCancel(ctx), req); err != nil {
			s.logger.ErrorContext(ctx, "failed to record export failure",
				"request_id", req.ID,
				"error", err,
			)
		}
		return nil, fmt.Errorf("generate export: %w", genErr)
	}

	if err := req.TransitionTo(models.ExportCompleted, now); err != nil {
		return nil, err
	}
	req.DataTypes = export.Metadata.DataTypes
	if err := s.store.SaveExport(ctx, req); err != nil {
		return nil, err
	}

	size := 0
	if raw, err := json.Marshal(export); err == nil {
		size = len(raw)
	}
	s.auditor.Record(ctx, userID, audit.ActionDataExport, map[string]any{
		"requestId":    req.ID,
		"status":       string(req.Status),
		"exportSize":   size,
		"includedData": export.Metadata.DataTypes,
	})
	s.logger.InfoContext(ctx, "data export generated",
		"user_id", userID,
		"request_id", req.ID,
		"size", size,
	)
	return &models.ExportResult{RequestID: req.ID, Status: req.Status, Export: export}, nil
}

// GenerateDataExport assembles the flagged categories concurrently. A failed
// category is logged and listed in metadata.incomplete; the rest still
// export. Only a cancelled context fails the whole export.
func (s *Service) GenerateDataExport(ctx context.Context, userID string, opts models.ExportOptions) (*models.UserDataExport, error) {
	export := &models.UserDataExport{
		Metadata: models.ExportMetadata{
			ExportDate: requestcontext.Now(ctx).UTC(),
			UserID:     userID,
			Version:    models.ExportVersion,
			DataTypes:  []string{},
		},
	}

	var (
		mu       sync.Mutex
		included = map[string]bool{}
		failed   = map[string]bool{}
	)
	done := func(dataType string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			failed[dataType] = true
			s.logger.WarnContext(ctx, "export category failed",
				"user_id", userID,
				"data_type", dataType,
				"error", err,
			)
			return
		}
		included[dataType] = true
	}

	var g errgroup.Group
	if opts.IncludeProfile || opts.IncludePreferences {
		g.Go(func() error {
			p, err := s.profiles.GetProfile(ctx, userID)
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			if err != nil {
				if opts.IncludeProfile {
					done(models.DataProfile, err)
				}
				if opts.IncludePreferences {
					done(models.DataPreferences, err)
				}
				return nil
			}
			if opts.IncludeProfile {
				export.Profile = p
				done(models.DataProfile, nil)
			}
			if opts.IncludePreferences {
				history, err := s.store.ListConsents(ctx, userID)
				if err != nil {
					s.logger.WarnContext(ctx, "consent history unavailable for export",
						"user_id", userID,
						"error", err,
					)
				}
				export.Preferences = &models.ExportPreferences{
					UserPreferences: p.Preferences,
					GDPRConsent:     p.GDPRConsent,
					ConsentHistory:  history,
				}
				done(models.DataPreferences, nil)
			}
			return nil
		})
	}
	if opts.IncludeCollections {
		g.Go(func() error {
			items, err := s.profiles.AllCollections(ctx, userID)
			if err == nil {
				export.Collections = items
			}
			done(models.DataCollections, err)
			return nil
		})
	}
	if opts.IncludeAnalytics {
		g.Go(func() error {
			metrics, err := s.records.ListMetricsByUser(ctx, userID)
			if err == nil {
				export.Analytics = metrics
			}
			done(models.DataAnalytics, err)
			return nil
		})
	}
	if opts.IncludeAuditLogs {
		g.Go(func() error {
			entries, err := s.records.ListByUser(ctx, userID)
			if err == nil {
				export.AuditLogs = redactEntries(entries)
			}
			done(models.DataAuditLogs, err)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, t := range models.DataTypeOrder {
		if included[t] {
			export.Metadata.DataTypes = append(export.Metadata.DataTypes, t)
		}
		if failed[t] {
			export.Metadata.Incomplete = append(export.Metadata.Incomplete, t)
		}
	}
	return export, nil
}

// RequestDeletion schedules erasure of the user's data and returns the
// single-use confirmation code. Only its hash is stored.
func (s *Service) RequestDeletion(ctx context.Context, userID, reason string, retainAnalytics bool) (*models.DeletionReceipt, error) {
	reason = strings.TrimSpace(reason)
	if err := validation.Check(map[string]any{"reason": reason}, models.DeletionReasonRules); err != nil {
		return nil, err
	}
	if _, err := s.profiles.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	code := newConfirmationCode()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.codeCost)
	if err != nil {
		return nil, fmt.Errorf("hash confirmation code: %w", err)
	}

	req := models.NewDeletionRequest(userID, reason, string(hash), retainAnalytics,
		requestcontext.ClientIP(ctx), requestcontext.Now(ctx).UTC())
	if err := s.store.CreateDeletion(ctx, req); err != nil {
		return nil, err
	}
	if err := s.profiles.ArchiveProfile(ctx, userID, req.ScheduledFor); err != nil {
		return nil, err
	}

	if reason == "" {
		reason = "not specified"
	}
	s.auditor.Record(ctx, userID, audit.ActionDataDeletion, map[string]any{
		"requestId":       req.ID,
		"scheduledFor":    req.ScheduledFor.Format(time.RFC3339),
		"retainAnalytics": retainAnalytics,
		"reason":          reason,
	})
	return &models.DeletionReceipt{
		RequestID:        req.ID,
		ConfirmationCode: code,
		ScheduledFor:     req.ScheduledFor,
	}, nil
}

// ProcessDeletion erases the user's data once a pending request with a
// matching code exists. Everything is written in one batch; on any failure
// nothing changes.
func (s *Service) ProcessDeletion(ctx context.Context, userID, code string, retainAnalytics bool) error {
	if !retainAnalytics {
		// Queued audit entries for this user must land before the purge.
		if err := s.auditor.Flush(ctx); err != nil {
			s.logger.WarnContext(ctx, "audit flush before deletion failed",
				"user_id", userID,
				"error", err,
			)
		}
	}

	var completed *models.DeletionRequest
	err := s.store.RunTransaction(ctx, func(ctx context.Context) error {
		pending, err := s.store.PendingDeletions(ctx, userID)
		if err != nil {
			return err
		}
		match := matchingRequest(pending, code)
		if match == nil {
			return dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound,
				"invalid confirmation code or request not found")
		}
		if err := match.TransitionTo(models.DeletionCompleted, requestcontext.Now(ctx).UTC()); err != nil {
			return err
		}

		batch := docstore.NewBatch()
		profileOps, err := s.profiles.DeletionOps(ctx, userID)
		if err != nil {
			return err
		}
		requestOps, err := s.store.DeletionOps(ctx, userID, match.ID)
		if err != nil {
			return err
		}
		batch.Merge(profileOps).Merge(requestOps)
		if !retainAnalytics {
			purge, err := s.records.PurgeOps(ctx, userID)
			if err != nil {
				return err
			}
			batch.Merge(purge)
		}
		batch.Merge(s.store.CompleteDeletionOps(match))

		completed = match
		return s.store.Commit(ctx, batch)
	})
	if err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.SystemActor, audit.ActionDataDeletion, map[string]any{
		"action":          "deletion_completed",
		"requestId":       completed.ID,
		"userHash":        hashUserID(userID),
		"retainAnalytics": retainAnalytics,
	})
	s.logger.InfoContext(ctx, "user data deleted",
		"request_id", completed.ID,
		"retain_analytics", retainAnalytics,
	)
	return nil
}

// ValidateGDPRCompliance reports consent and data-quality issues on a stored
// profile. It never writes.
func (s *Service) ValidateGDPRCompliance(p *profilemodels.Profile) models.ComplianceReport {
	issues := []string{}
	if !p.GDPRConsent.Given {
		issues = append(issues, "GDPR consent not properly recorded")
	}
	if p.GDPRConsent.Timestamp.IsZero() {
		issues = append(issues, "GDPR consent timestamp missing")
	}
	if p.GDPRConsent.Version == "" {
		issues = append(issues, "Privacy policy version not recorded")
	}
	if p.Email != "" && !validation.ValidateEmail(p.Email) {
		issues = append(issues, "Invalid email format stored")
	}
	return models.ComplianceReport{Compliant: len(issues) == 0, Issues: issues}
}

// ComplianceReport loads the stored profile and validates it.
func (s *Service) ComplianceReport(ctx context.Context, userID string) (models.ComplianceReport, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return models.ComplianceReport{}, err
	}
	return s.ValidateGDPRCompliance(p), nil
}

// ListRequests returns the user's export and deletion requests, newest first.
func (s *Service) ListRequests(ctx context.Context, userID string) ([]models.RequestSummary, error) {
	var (
		exports   []*models.ExportRequest
		deletions []*models.DeletionRequest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		exports, err = s.store.ListExports(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		deletions, err = s.store.ListDeletions(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.RequestSummary, 0, len(exports)+len(deletions))
	for _, r := range exports {
		out = append(out, models.RequestSummary{
			ID: r.ID, Kind: models.KindExport, Status: string(r.Status),
			RequestedAt: r.RequestedAt, CompletedAt: r.CompletedAt,
		})
	}
	for _, r := range deletions {
		out = append(out, models.RequestSummary{
			ID: r.ID, Kind: models.KindDeletion, Status: string(r.Status),
			RequestedAt: r.RequestedAt, CompletedAt: r.CompletedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RequestedAt.After(out[j].RequestedAt)
	})
	return out, nil
}

func matchingRequest(pending []*models.DeletionRequest, code string) *models.DeletionRequest {
	if code == "" {
		return nil
	}
	for _, req := range pending {
		if bcrypt.CompareHashAndPassword([]byte(req.ConfirmationHash), []byte(code)) == nil {
			return req
		}
	}
	return nil
}

func newConfirmationCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func hashUserID(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}
