//go:build integration

package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"fooddrop/internal/docstore"
	"fooddrop/internal/gdpr/models"
	"fooddrop/internal/gdpr/service"
	gdprstore "fooddrop/internal/gdpr/store"
	"fooddrop/internal/identity"
	"fooddrop/internal/monitor"
	profileservice "fooddrop/internal/profile/service"
	profilestore "fooddrop/internal/profile/store"
	dErrors "fooddrop/pkg/domain-errors"
	"fooddrop/pkg/platform/audit/publisher"
	auditdoc "fooddrop/pkg/platform/audit/store/document"
	"fooddrop/pkg/requestcontext"
	"fooddrop/pkg/testutil/containers"
)

// PostgresGDPRSuite runs the deletion workflow against a real Postgres so
// row locking is exercised.
type PostgresGDPRSuite struct {
	suite.Suite
	pg       *containers.PostgresContainer
	docs     *docstore.PostgresStore
	auditor  *publisher.Publisher
	profiles *profileservice.Service
	service  *service.Service
	ctx      context.Context
}

func TestPostgresGDPRSuite(t *testing.T) {
	suite.Run(t, new(PostgresGDPRSuite))
}

func (s *PostgresGDPRSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(docstore.EnsureSchema(context.Background(), s.pg.DB))
	s.docs = docstore.NewPostgresStore(s.pg.DB, docstore.WithTxTimeout(10*time.Second))
}

func (s *PostgresGDPRSuite) SetupTest() {
	s.ctx = requestcontext.WithClientMetadata(context.Background(), "203.0.113.9", "test-agent")
	s.Require().NoError(s.pg.Truncate(s.ctx, "documents"))

	mon := monitor.New()
	auditDocs := auditdoc.New(s.docs)
	s.auditor = publisher.NewPublisher(auditDocs)
	s.profiles = profileservice.New(profilestore.New(s.docs, mon), s.auditor)
	s.service = service.New(gdprstore.New(s.docs, mon), s.profiles, auditDocs, s.auditor,
		service.WithCodeCost(bcrypt.MinCost))

	_, err := s.profiles.EnsureProfile(s.ctx, identity.Identity{UID: "u1", Email: "a@b.com"})
	s.Require().NoError(err)
}

func (s *PostgresGDPRSuite) TearDownTest() {
	s.Require().NoError(s.auditor.Close(context.Background()))
}

func (s *PostgresGDPRSuite) TestConcurrentProcessDeletionRunsOnce() {
	receipt, err := s.service.RequestDeletion(s.ctx, "u1", "gdpr", false)
	s.Require().NoError(err)

	const callers = 2
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, callers)
	)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs[i] = s.service.ProcessDeletion(s.ctx, "u1", receipt.ConfirmationCode, false)
		}()
	}
	close(start)
	wg.Wait()

	var succeeded, notFound int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case dErrors.HasCode(err, dErrors.CodeNotFound):
			notFound++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, succeeded)
	s.Equal(1, notFound)

	requests, err := s.service.ListRequests(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(requests, 1)
	s.Equal(string(models.DeletionCompleted), requests[0].Status)
}
