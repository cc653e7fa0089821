package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"fooddrop/internal/docstore"
	"fooddrop/internal/identity"
	"fooddrop/internal/profile/models"
	"fooddrop/internal/validation"
	dErrors "fooddrop/pkg/domain-errors"
	audit "fooddrop/pkg/platform/audit"
	"fooddrop/pkg/platform/audit/publisher"
	"fooddrop/pkg/platform/sentinel"
	"fooddrop/pkg/requestcontext"
)

// registrationMethod is recorded for identities created through the
// identity provider's email flow.
const registrationMethod = "email"

type Store interface {
	Get(ctx context.Context, uid string) (*models.Profile, error)
	Create(ctx context.Context, p *models.Profile) error
	Update(ctx context.Context, uid string, fields map[string]any) error
	Subscribe(ctx context.Context, uid string, onChange func(*models.Profile), onError func(error)) (func(), error)
	AddCollectionItem(ctx context.Context, item *models.CollectionItem) (string, error)
	ListCollections(ctx context.Context, uid string, opts models.ListOptions) ([]*models.CollectionItem, error)
	RecomputeStats(ctx context.Context, uid string) (models.Stats, error)
	DeleteUser(ctx context.Context, uid string) error
	DeletionOps(ctx context.Context, uid string) (*docstore.Batch, error)
}

// AuditLogger is the subset of the audit publisher used by profile flows.
type AuditLogger interface {
	Record(ctx context.Context, userID string, action audit.Action, details map[string]any, opts ...publisher.RecordOption)
	LogUserRegistration(ctx context.Context, userID, method string)
	LogUserLogin(ctx context.Context, userID, method string)
}

// Service owns profile lifecycle and collection bookkeeping. Writes are
// validated before they reach the store; audit failures never fail a call.
type Service struct {
	store   Store
	auditor AuditLogger
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(store Store, auditor AuditLogger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		auditor: auditor,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureProfile creates the profile on first sign-in and otherwise refreshes
// lastLoginAt. Safe to call concurrently for the same identity.
func (s *Service) EnsureProfile(ctx context.Context, id identity.Identity) (*models.Profile, error) {
	if strings.TrimSpace(id.UID) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "identity uid is required")
	}

	_, err := s.store.Get(ctx, id.UID)
	switch {
	case err == nil:
		return s.recordLogin(ctx, id.UID)
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, fmt.Errorf("ensure profile: %w", err)
	}

	p := models.NewProfile(id.UID, id.Email, id.DisplayName, id.EmailVerified,
		requestcontext.Now(ctx).UTC(), requestcontext.ClientIP(ctx))
	if err := validateProfile(p); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a first-login race; the other call created it.
			return s.recordLogin(ctx, id.UID)
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}

	s.logger.InfoContext(ctx, "profile created", "user_id", id.UID)
	s.auditor.LogUserRegistration(ctx, id.UID, registrationMethod)
	return s.GetProfile(ctx, id.UID)
}

func (s *Service) recordLogin(ctx context.Context, uid string) (*models.Profile, error) {
	if err := s.store.Update(ctx, uid, map[string]any{"lastLoginAt": docstore.ServerTimestamp}); err != nil {
		return nil, translate(err, "update last login")
	}
	s.auditor.LogUserLogin(ctx, uid, registrationMethod)
	return s.GetProfile(ctx, uid)
}

func (s *Service) GetProfile(ctx context.Context, uid string) (*models.Profile, error) {
	p, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, translate(err, "get profile")
	}
	return p, nil
}

// UpdateProfile applies a generic field update. Keys may be dotted to address
// nested fields. Protected fields reject the whole update.
func (s *Service) UpdateProfile(ctx context.Context, uid string, fields map[string]any) error {
	if len(fields) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "no fields to update")
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	if protected := models.ProtectedIn(keys); len(protected) > 0 {
		return dErrors.New(dErrors.CodeProtectedField, "cannot update protected fields: "+strings.Join(protected, ", "))
	}

	normalized, err := validation.ToRecord(fields)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid update")
	}
	if err := s.validateMerged(ctx, uid, normalized); err != nil {
		return err
	}
	if err := s.store.Update(ctx, uid, normalized); err != nil {
		return translate(err, "update profile")
	}

	s.auditor.Record(ctx, uid, audit.ActionProfileUpdate, map[string]any{"updatedFields": keys})
	return nil
}

func (s *Service) UpdatePreferences(ctx context.Context, uid string, patch models.PreferencesPatch) (models.Preferences, error) {
	if patch.IsEmpty() {
		return models.Preferences{}, dErrors.New(dErrors.CodeBadRequest, "no preferences to update")
	}
	current, err := s.GetProfile(ctx, uid)
	if err != nil {
		return models.Preferences{}, err
	}
	current.Preferences = patch.Apply(current.Preferences)
	if err := validateProfile(current); err != nil {
		return models.Preferences{}, err
	}
	if err := s.store.Update(ctx, uid, map[string]any{"preferences": current.Preferences}); err != nil {
		return models.Preferences{}, translate(err, "update preferences")
	}
	s.auditor.Record(ctx, uid, audit.ActionProfileUpdate, map[string]any{"updatedFields": []string{"preferences"}})
	return current.Preferences, nil
}

func (s *Service) UpdateStats(ctx context.Context, uid string, patch models.StatsPatch) (models.Stats, error) {
	if patch.IsEmpty() {
		return models.Stats{}, dErrors.New(dErrors.CodeBadRequest, "no stats to update")
	}
	current, err := s.GetProfile(ctx, uid)
	if err != nil {
		return models.Stats{}, err
	}
	current.Stats = patch.Apply(current.Stats)
	if err := validateProfile(current); err != nil {
		return models.Stats{}, err
	}
	if err := s.store.Update(ctx, uid, map[string]any{"stats": current.Stats}); err != nil {
		return models.Stats{}, translate(err, "update stats")
	}
	return current.Stats, nil
}

// UpdateDisplayName trims the name; an empty result clears it.
func (s *Service) UpdateDisplayName(ctx context.Context, uid, name string) error {
	trimmed := strings.TrimSpace(name)
	var value any
	if trimmed != "" {
		if err := validation.Check(map[string]any{"displayName": trimmed}, models.DisplayNameRules); err != nil {
			return err
		}
		value = trimmed
	}
	if err := s.store.Update(ctx, uid, map[string]any{"displayName": value}); err != nil {
		return translate(err, "update display name")
	}
	s.auditor.Record(ctx, uid, audit.ActionProfileUpdate, map[string]any{"updatedFields": []string{"displayName"}})
	return nil
}

func (s *Service) UpdateSubscriptionStatus(ctx context.Context, uid string, status models.SubscriptionStatus) error {
	return s.updateChecked(ctx, uid, "subscriptionStatus", string(status))
}

func (s *Service) UpdateEmailVerified(ctx context.Context, uid string, verified bool) error {
	return s.updateChecked(ctx, uid, "emailVerified", verified)
}

func (s *Service) UpdateLastLogin(ctx context.Context, uid string) error {
	if err := s.store.Update(ctx, uid, map[string]any{"lastLoginAt": docstore.ServerTimestamp}); err != nil {
		return translate(err, "update last login")
	}
	return nil
}

// ArchiveProfile marks the profile as scheduled for deletion.
func (s *Service) ArchiveProfile(ctx context.Context, uid string, scheduledFor time.Time) error {
	err := s.store.Update(ctx, uid, map[string]any{
		"deletionRequested":    true,
		"deletionScheduledFor": scheduledFor.UTC(),
	})
	if err != nil {
		return translate(err, "archive profile")
	}
	return nil
}

func (s *Service) updateChecked(ctx context.Context, uid, field string, value any) error {
	fields := map[string]any{field: value}
	if err := s.validateMerged(ctx, uid, fields); err != nil {
		return err
	}
	if err := s.store.Update(ctx, uid, fields); err != nil {
		return translate(err, "update "+field)
	}
	s.auditor.Record(ctx, uid, audit.ActionProfileUpdate, map[string]any{"updatedFields": []string{field}})
	return nil
}

// ListCollections returns collected items, newest first unless opts say
// otherwise. Limit defaults to 50 and is capped at 500.
func (s *Service) ListCollections(ctx context.Context, uid string, opts models.ListOptions) ([]*models.CollectionItem, error) {
	switch {
	case opts.Limit <= 0:
		opts.Limit = models.DefaultListLimit
	case opts.Limit > models.MaxListLimit:
		opts.Limit = models.MaxListLimit
	}
	if opts.OrderBy == "" {
		opts.OrderBy = "collectedAt"
	}
	if !slices.Contains(models.SortableCollectionFields, opts.OrderBy) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "cannot order collections by "+opts.OrderBy)
	}
	switch strings.ToLower(opts.Direction) {
	case "", "desc":
		opts.Direction = "desc"
	case "asc":
		opts.Direction = "asc"
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "direction must be asc or desc")
	}

	items, err := s.store.ListCollections(ctx, uid, opts)
	if err != nil {
		return nil, translate(err, "list collections")
	}
	return items, nil
}

// AllCollections returns every collected item, newest first. Used by data
// exports, which must not be truncated.
func (s *Service) AllCollections(ctx context.Context, uid string) ([]*models.CollectionItem, error) {
	items, err := s.store.ListCollections(ctx, uid, models.ListOptions{OrderBy: "collectedAt", Direction: "desc"})
	if err != nil {
		return nil, translate(err, "list collections")
	}
	return items, nil
}

// SubscribeToProfile delivers the current profile and then every change,
// including writes from other processes. onError fires at most once.
func (s *Service) SubscribeToProfile(ctx context.Context, uid string, onChange func(*models.Profile), onError func(error)) (func(), error) {
	unsubscribe, err := s.store.Subscribe(ctx, uid, onChange, func(err error) {
		s.logger.ErrorContext(ctx, "profile subscription failed",
			"user_id", uid,
			"error", err,
		)
		if onError != nil {
			onError(err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to profile: %w", err)
	}
	return unsubscribe, nil
}

// AddCollectionItem appends an item and refreshes the profile stats. A stats
// failure is logged; the item stays recorded.
func (s *Service) AddCollectionItem(ctx context.Context, uid string, in models.NewCollectionItem) (string, error) {
	item := &models.CollectionItem{
		UserID:      uid,
		FoodItemID:  strings.TrimSpace(in.FoodItemID),
		Method:      in.Method,
		CollectedAt: requestcontext.Now(ctx).UTC(),
		Notes:       in.Notes,
	}
	record, err := validation.ToRecord(item)
	if err != nil {
		return "", err
	}
	if err := validation.Check(record, models.CollectionItemRules); err != nil {
		return "", err
	}

	id, err := s.store.AddCollectionItem(ctx, item)
	if err != nil {
		return "", translate(err, "add collection item")
	}

	if _, err := s.store.RecomputeStats(ctx, uid); err != nil {
		s.logger.ErrorContext(ctx, "failed to recompute stats",
			"user_id", uid,
			"error", err,
		)
	}

	s.auditor.Record(ctx, uid, audit.ActionCollectionAdd, map[string]any{
		"itemId":     id,
		"foodItemId": item.FoodItemID,
		"method":     string(item.Method),
	})
	return id, nil
}

func (s *Service) RecomputeStats(ctx context.Context, uid string) (models.Stats, error) {
	stats, err := s.store.RecomputeStats(ctx, uid)
	if err != nil {
		return models.Stats{}, translate(err, "recompute stats")
	}
	return stats, nil
}

// DeleteUserCompletely removes the profile and every collection item in one
// batch. Audit entries are kept.
func (s *Service) DeleteUserCompletely(ctx context.Context, uid string) error {
	if err := s.store.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.InfoContext(ctx, "user data deleted", "user_id", uid)
	return nil
}

// DeletionOps exposes the profile deletes for callers building a larger batch.
func (s *Service) DeletionOps(ctx context.Context, uid string) (*docstore.Batch, error) {
	return s.store.DeletionOps(ctx, uid)
}

// validateMerged checks the stored profile with fields applied.
func (s *Service) validateMerged(ctx context.Context, uid string, fields map[string]any) error {
	current, err := s.GetProfile(ctx, uid)
	if err != nil {
		return err
	}
	record, err := validation.ToRecord(current)
	if err != nil {
		return err
	}
	mergeFields(record, fields)
	return validation.Check(record, models.ProfileRules)
}

func validateProfile(p *models.Profile) error {
	record, err := validation.ToRecord(p)
	if err != nil {
		return err
	}
	return validation.Check(record, models.ProfileRules)
}

// mergeFields applies dotted update keys to record the way the store does.
func mergeFields(record map[string]any, fields map[string]any) {
	for key, val := range fields {
		parts := strings.Split(key, ".")
		node := record
		for _, p := range parts[:len(parts)-1] {
			next, ok := node[p].(map[string]any)
			if !ok {
				next = map[string]any{}
				node[p] = next
			}
			node = next
		}
		node[parts[len(parts)-1]] = val
	}
}

func translate(err error, op string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "profile not found")
	}
	return fmt.Errorf("%s: %w", op, err)
}
