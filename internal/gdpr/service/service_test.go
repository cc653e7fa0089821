package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"fooddrop/internal/docstore"
	"fooddrop/internal/gdpr/models"
	"fooddrop/internal/gdpr/service"
	"fooddrop/internal/gdpr/service/mocks"
	gdprstore "fooddrop/internal/gdpr/store"
	"fooddrop/internal/identity"
	"fooddrop/internal/monitor"
	profilemodels "fooddrop/internal/profile/models"
	profileservice "fooddrop/internal/profile/service"
	profilestore "fooddrop/internal/profile/store"
	"fooddrop/internal/validation"
	dErrors "fooddrop/pkg/domain-errors"
	audit "fooddrop/pkg/platform/audit"
	"fooddrop/pkg/platform/audit/publisher"
	auditdoc "fooddrop/pkg/platform/audit/store/document"
	"fooddrop/pkg/platform/sentinel"
	"fooddrop/pkg/requestcontext"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// GDPRSuite runs the workflows against the in-memory document store with the
// real profile service and audit pipeline.
type GDPRSuite struct {
	suite.Suite
	clock     *testClock
	docs      *docstore.MemoryStore
	auditDocs *auditdoc.Store
	auditor   *publisher.Publisher
	profiles  *profileservice.Service
	service   *service.Service
	ctx       context.Context
}

func TestGDPRSuite(t *testing.T) {
	suite.Run(t, new(GDPRSuite))
}

func (s *GDPRSuite) SetupTest() {
	s.clock = &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s.docs = docstore.NewMemoryStore(docstore.WithClock(s.clock.Now))
	mon := monitor.New()
	s.auditDocs = auditdoc.New(s.docs)
	s.auditor = publisher.NewPublisher(s.auditDocs, publisher.WithClock(s.clock.Now))
	s.profiles = profileservice.New(profilestore.New(s.docs, mon), s.auditor)
	s.service = service.New(gdprstore.New(s.docs, mon), s.profiles, s.auditDocs, s.auditor,
		service.WithCodeCost(bcrypt.MinCost))
	s.ctx = s.at(s.clock.Now())

	_, err := s.profiles.EnsureProfile(s.ctx, identity.Identity{UID: "u1", Email: "a@b.com"})
	s.Require().NoError(err)
}

func (s *GDPRSuite) TearDownTest() {
	s.Require().NoError(s.auditor.Close(context.Background()))
	s.Require().NoError(s.docs.Close())
}

func (s *GDPRSuite) at(t time.Time) context.Context {
	ctx := requestcontext.WithTime(context.Background(), t)
	return requestcontext.WithClientMetadata(ctx, "203.0.113.9", "Mozilla/5.0 (X11; Linux x86_64) Firefox/126.0")
}

func (s *GDPRSuite) auditEntries(uid string) []audit.Entry {
	s.Require().NoError(s.auditor.Flush(s.ctx))
	entries, err := s.auditDocs.ListByUser(s.ctx, uid)
	s.Require().NoError(err)
	return entries
}

func (s *GDPRSuite) collect(foods ...string) {
	for _, food := range foods {
		_, err := s.profiles.AddCollectionItem(s.ctx, "u1", profilemodels.NewCollectionItem{FoodItemID: food, Method: profilemodels.MethodScan})
		s.Require().NoError(err)
	}
}

func (s *GDPRSuite) count(collection string) int {
	snaps, err := s.docs.Query(s.ctx, docstore.From(collection))
	s.Require().NoError(err)
	return len(snaps)
}

func (s *GDPRSuite) TestDeletionScenario() {
	s.collect("apple", "kiwi")

	receipt, err := s.service.RequestDeletion(s.ctx, "u1", "gdpr", false)
	s.Require().NoError(err)
	s.NotEmpty(receipt.ConfirmationCode)
	s.True(receipt.ScheduledFor.Equal(s.clock.Now().Add(30 * 24 * time.Hour)))

	requests, err := s.service.ListRequests(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(requests, 1)
	s.Equal(models.KindDeletion, requests[0].Kind)
	s.Equal(string(models.DeletionPending), requests[0].Status)

	p, err := s.profiles.GetProfile(s.ctx, "u1")
	s.Require().NoError(err)
	s.True(p.IsArchived())

	auditBefore := len(s.auditEntries("u1"))
	s.Require().Greater(auditBefore, 0)

	s.Run("wrong code changes nothing", func() {
		err := s.service.ProcessDeletion(s.ctx, "u1", "not-the-code", false)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.ErrorIs(err, sentinel.ErrNotFound)

		_, err = s.profiles.GetProfile(s.ctx, "u1")
		s.NoError(err)
		s.Len(s.auditEntries("u1"), auditBefore)
		s.Equal(2, s.count(profilestore.CollectionsPath("u1")))
	})

	s.Run("matching code erases the user", func() {
		s.clock.Advance(time.Hour)
		s.Require().NoError(s.service.ProcessDeletion(s.at(s.clock.Now()), "u1", receipt.ConfirmationCode, false))

		_, err := s.profiles.GetProfile(s.ctx, "u1")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal(0, s.count(profilestore.CollectionsPath("u1")))
		s.Empty(s.auditEntries("u1"))

		requests, err := s.service.ListRequests(s.ctx, "u1")
		s.Require().NoError(err)
		s.Require().Len(requests, 1)
		s.Equal(receipt.RequestID, requests[0].ID)
		s.Equal(string(models.DeletionCompleted), requests[0].Status)
		s.NotNil(requests[0].CompletedAt)

		system := s.auditEntries(audit.SystemActor)
		s.Require().Len(system, 1)
		s.Equal(audit.ActionDataDeletion, system[0].Action)
		s.NotContains(system[0].Details, "userId")
		s.Len(system[0].Details["userHash"], 64)
	})

	s.Run("the code is single use", func() {
		err := s.service.ProcessDeletion(s.ctx, "u1", receipt.ConfirmationCode, false)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *GDPRSuite) TestDeletionRetainingAnalytics() {
	_, err := s.service.RequestExport(s.ctx, "u1", models.ExportOptions{IncludeProfile: true})
	s.Require().NoError(err)
	_, err = s.service.RecordConsent(s.ctx, "u1", models.ConsentInput{
		Given: true, Version: "2.0", CookiePreferences: profilemodels.CookiePreferences{Necessary: true},
	})
	s.Require().NoError(err)
	older, err := s.service.RequestDeletion(s.ctx, "u1", "", true)
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)
	receipt, err := s.service.RequestDeletion(s.at(s.clock.Now()), "u1", "changed my mind twice", true)
	s.Require().NoError(err)
	auditBefore := len(s.auditEntries("u1"))

	s.Require().NoError(s.service.ProcessDeletion(s.ctx, "u1", receipt.ConfirmationCode, true))

	s.Len(s.auditEntries("u1"), auditBefore, "audit kept when retaining analytics")
	s.Equal(0, s.count(gdprstore.ExportsCollection))
	s.Equal(0, s.count(gdprstore.ConsentsCollection))
	s.Equal(1, s.count(gdprstore.DeletionsCollection), "superseded requests are removed")

	err = s.service.ProcessDeletion(s.ctx, "u1", older.ConfirmationCode, true)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *GDPRSuite) TestProcessDeletionIsAtomic() {
	s.collect("apple")
	receipt, err := s.service.RequestDeletion(s.ctx, "u1", "gdpr", false)
	s.Require().NoError(err)
	auditBefore := len(s.auditEntries("u1"))

	s.docs.FailWrites(func(ref docstore.Ref) error {
		if ref.Collection == gdprstore.DeletionsCollection {
			return errors.New("write rejected")
		}
		return nil
	})
	s.Error(s.service.ProcessDeletion(s.ctx, "u1", receipt.ConfirmationCode, false))
	s.docs.FailWrites(nil)

	_, err = s.profiles.GetProfile(s.ctx, "u1")
	s.NoError(err)
	s.Equal(1, s.count(profilestore.CollectionsPath("u1")))
	s.Len(s.auditEntries("u1"), auditBefore)

	s.Require().NoError(s.service.ProcessDeletion(s.ctx, "u1", receipt.ConfirmationCode, false),
		"request is still pending after a failed attempt")
}

func (s *GDPRSuite) TestConcurrentProcessDeletionRunsOnce() {
	receipt, err := s.service.RequestDeletion(s.ctx, "u1", "gdpr", false)
	s.Require().NoError(err)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 4)
	)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.service.ProcessDeletion(s.ctx, "u1", receipt.ConfirmationCode, false)
		}()
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "unexpected error: %v", err)
	}
	s.Equal(1, succeeded)
	s.Len(s.auditEntries(audit.SystemActor), 1, "one completion entry")
}

func (s *GDPRSuite) TestRequestDeletionUnknownUser() {
	_, err := s.service.RequestDeletion(s.ctx, "ghost", "", false)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal(0, s.count(gdprstore.DeletionsCollection))
}

func (s *GDPRSuite) TestRequestExport() {
	s.collect("apple", "pear")
	_, err := s.service.RecordConsent(s.ctx, "u1", models.ConsentInput{
		Given: true, Version: "1.1", MarketingEmails: true,
		CookiePreferences: profilemodels.CookiePreferences{Necessary: true, Analytics: true},
	})
	s.Require().NoError(err)
	s.auditor.LogPerformanceMetric(s.ctx, audit.PerformanceMetric{Operation: "getUserCollections", DurationMs: 812, UserID: "u1"})
	s.Require().NoError(s.auditor.Flush(s.ctx))

	result, err := s.service.RequestExport(s.ctx, "u1", models.ExportOptions{
		IncludeProfile: true, IncludeCollections: true, IncludePreferences: true,
		IncludeAnalytics: true, IncludeAuditLogs: true,
	})
	s.Require().NoError(err)
	s.Equal(models.ExportCompleted, result.Status)

	export := result.Export
	s.Equal(models.DataTypeOrder, export.Metadata.DataTypes)
	s.Empty(export.Metadata.Incomplete)
	s.Equal("1.0", export.Metadata.Version)
	s.Equal("u1", export.Metadata.UserID)
	s.Require().NotNil(export.Profile)
	s.Equal("a@b.com", export.Profile.Email)
	s.Len(export.Collections, 2)
	s.Require().NotNil(export.Preferences)
	s.True(export.Preferences.UserPreferences.CookiePreferences.Analytics)
	s.Len(export.Preferences.ConsentHistory, 1)
	s.Require().Len(export.Analytics, 1)
	s.Equal("getUserCollections", export.Analytics[0].Operation)
	s.Require().NotEmpty(export.AuditLogs)
	for _, e := range export.AuditLogs {
		s.Equal(models.RedactedIPAddress, e.IPAddress)
		s.Equal(models.RedactedUserAgent, e.Details["userAgent"])
		s.NotContains(e.Details, "device")
	}

	requests, err := s.service.ListRequests(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(requests, 1)
	s.Equal(string(models.ExportCompleted), requests[0].Status)
}

func (s *GDPRSuite) TestEmptyExport() {
	export, err := s.service.GenerateDataExport(s.ctx, "u1", models.ExportOptions{})
	s.Require().NoError(err)
	s.Empty(export.Metadata.DataTypes)
	s.Nil(export.Profile)
	s.Nil(export.Collections)
	s.Nil(export.Preferences)
	s.Nil(export.Analytics)
	s.Nil(export.AuditLogs)
}

func (s *GDPRSuite) TestRequestExportRejectsUnknownFormat() {
	_, err := s.service.RequestExport(s.ctx, "u1", models.ExportOptions{Format: "xml"})
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.Equal(0, s.count(gdprstore.ExportsCollection))
}

func (s *GDPRSuite) TestRecordConsent() {
	_, err := s.service.RecordConsent(s.ctx, "u1", models.ConsentInput{Given: true, Version: "2.0"})
	var verr *validation.Error
	s.Require().ErrorAs(err, &verr)
	s.Equal("cookiePreferences.necessary", verr.FieldName())

	_, err = s.service.RecordConsent(s.ctx, "ghost", models.ConsentInput{
		Given: true, Version: "2.0", CookiePreferences: profilemodels.CookiePreferences{Necessary: true},
	})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	rec, err := s.service.RecordConsent(s.ctx, "u1", models.ConsentInput{
		Given: false, Version: "2.0",
		CookiePreferences: profilemodels.CookiePreferences{Necessary: true, Marketing: true},
	})
	s.Require().NoError(err)
	s.NotEmpty(rec.ID)
	s.Equal("203.0.113.9", rec.IPAddress)

	p, err := s.profiles.GetProfile(s.ctx, "u1")
	s.Require().NoError(err)
	s.False(p.Preferences.DataProcessingConsent)
	s.True(p.Preferences.CookiePreferences.Marketing)
	s.True(p.GDPRConsent.Given, "registration consent is immutable")

	var actions []audit.Action
	for _, e := range s.auditEntries("u1") {
		actions = append(actions, e.Action)
	}
	s.Contains(actions, audit.ActionConsentUpdate)
}

func (s *GDPRSuite) TestListRequestsNewestFirst() {
	_, err := s.service.RequestExport(s.ctx, "u1", models.ExportOptions{IncludeProfile: true})
	s.Require().NoError(err)
	later := s.at(s.clock.Now().Add(time.Hour))
	_, err = s.service.RequestDeletion(later, "u1", "", false)
	s.Require().NoError(err)

	requests, err := s.service.ListRequests(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(requests, 2)
	s.Equal(models.KindDeletion, requests[0].Kind)
	s.Equal(models.KindExport, requests[1].Kind)
}

func TestValidateGDPRCompliance(t *testing.T) {
	svc := service.New(nil, nil, nil, nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(p *profilemodels.Profile)
		issues []string
	}{
		{"compliant", func(*profilemodels.Profile) {}, []string{}},
		{"consent not given", func(p *profilemodels.Profile) { p.GDPRConsent.Given = false },
			[]string{"GDPR consent not properly recorded"}},
		{"missing timestamp and version", func(p *profilemodels.Profile) {
			p.GDPRConsent.Timestamp = time.Time{}
			p.GDPRConsent.Version = ""
		}, []string{"GDPR consent timestamp missing", "Privacy policy version not recorded"}},
		{"malformed email", func(p *profilemodels.Profile) { p.Email = "not-an-email" },
			[]string{"Invalid email format stored"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := profilemodels.NewProfile("u1", "a@b.com", "", true, now, "")
			tt.mutate(p)
			before := *p

			report := svc.ValidateGDPRCompliance(p)
			assert.Equal(t, len(tt.issues) == 0, report.Compliant)
			assert.Equal(t, tt.issues, report.Issues)
			assert.Equal(t, before, *p)
		})
	}
}

func TestGenerateDataExportCategoryFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileService(ctrl)
	records := mocks.NewMockAuditRecords(ctrl)
	svc := service.New(mocks.NewMockStore(ctrl), profiles, records, mocks.NewMockAuditLogger(ctrl))
	ctx := context.Background()

	profile := profilemodels.NewProfile("u1", "a@b.com", "", true, time.Now(), "")
	profiles.EXPECT().GetProfile(gomock.Any(), "u1").Return(profile, nil)
	profiles.EXPECT().AllCollections(gomock.Any(), "u1").Return(nil, errors.New("query timeout"))
	records.EXPECT().ListMetricsByUser(gomock.Any(), "u1").Return([]audit.PerformanceMetric{{Operation: "op"}}, nil)
	records.EXPECT().ListByUser(gomock.Any(), "u1").Return(nil, errors.New("index missing"))

	export, err := svc.GenerateDataExport(ctx, "u1", models.ExportOptions{
		IncludeProfile: true, IncludeCollections: true, IncludeAnalytics: true, IncludeAuditLogs: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{models.DataProfile, models.DataAnalytics}, export.Metadata.DataTypes)
	assert.Equal(t, []string{models.DataCollections, models.DataAuditLogs}, export.Metadata.Incomplete)
	assert.Same(t, profile, export.Profile)
	assert.Nil(t, export.Collections)
	assert.Len(t, export.Analytics, 1)
}

func TestRequestExportMarksFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	profiles := mocks.NewMockProfileService(ctrl)
	auditor := mocks.NewMockAuditLogger(ctrl)
	svc := service.New(store, profiles, mocks.NewMockAuditRecords(ctrl), auditor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var saved []models.ExportStatus
	store.EXPECT().CreateExport(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req *models.ExportRequest) error {
		req.ID = "exp-1"
		return nil
	})
	store.EXPECT().SaveExport(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req *models.ExportRequest) error {
		saved = append(saved, req.Status)
		return nil
	}).Times(2)
	auditor.EXPECT().Record(gomock.Any(), "u1", audit.ActionDataExport, gomock.Any())
	profiles.EXPECT().GetProfile(gomock.Any(), "u1").DoAndReturn(func(context.Context, string) (*profilemodels.Profile, error) {
		cancel()
		return nil, context.Canceled
	})

	_, err := svc.RequestExport(ctx, "u1", models.ExportOptions{IncludeProfile: true})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []models.ExportStatus{models.ExportProcessing, models.ExportFailed}, saved)
}

func (s *GDPRSuite) TestComplianceReport() {
	report, err := s.service.ComplianceReport(s.ctx, "u1")
	s.Require().NoError(err)
	s.True(report.Compliant)
	s.Empty(report.Issues)

	_, err = s.service.ComplianceReport(s.ctx, "ghost")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
