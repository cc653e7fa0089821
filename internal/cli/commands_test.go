package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"fooddrop/internal/gdpr/handler/mocks"
	"fooddrop/internal/gdpr/models"
	dErrors "fooddrop/pkg/domain-errors"
)

type CommandsSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	svc       *mocks.MockService
	released  int
	connected *RootOptions
}

func (s *CommandsSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.svc = mocks.NewMockService(s.ctrl)
	s.released = 0
	s.connected = nil
}

func (s *CommandsSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestCommandsSuite(t *testing.T) {
	suite.Run(t, new(CommandsSuite))
}

func (s *CommandsSuite) run(args ...string) (string, string, error) {
	connect := func(_ context.Context, opts *RootOptions) (Service, func(), error) {
		s.connected = opts
		return s.svc, func() { s.released++ }, nil
	}
	cmd := NewRootCommand(connect)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (s *CommandsSuite) TestExportJSON() {
	s.svc.EXPECT().
		RequestExport(gomock.Any(), "u1", models.ExportOptions{
			IncludeProfile:     true,
			IncludeCollections: true,
			Format:             models.FormatJSON,
		}).
		Return(&models.ExportResult{
			RequestID: "exp-1",
			Status:    models.ExportCompleted,
			Export: &models.UserDataExport{
				Metadata: models.ExportMetadata{UserID: "u1", DataTypes: []string{"profile", "collections"}},
			},
		}, nil)

	stdout, _, err := s.run("export", "u1", "--include", "profile,collections")
	s.Require().NoError(err)
	s.Equal(1, s.released)

	var export models.UserDataExport
	s.Require().NoError(json.Unmarshal([]byte(stdout), &export))
	s.Equal("u1", export.Metadata.UserID)
}

func (s *CommandsSuite) TestExportCSV() {
	s.svc.EXPECT().
		RequestExport(gomock.Any(), "u1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, opts models.ExportOptions) (*models.ExportResult, error) {
			s.Equal(models.FormatCSV, opts.Format)
			s.Equal(models.DataTypeOrder, opts.Requested())
			return &models.ExportResult{Export: &models.UserDataExport{}}, nil
		})

	stdout, _, err := s.run("export", "u1", "-f", "csv")
	s.Require().NoError(err)
	s.Equal("Data Type,Field,Value\n", stdout)
}

func (s *CommandsSuite) TestExportRejectsUnknownCategory() {
	_, _, err := s.run("export", "u1", "--include", "profile,photos")
	s.Require().Error(err)
	s.Equal(ExitCommandError, GetExitCode(err))
	s.Nil(s.connected)
}

func (s *CommandsSuite) TestRequestDeletion() {
	scheduled := time.Date(2026, 11, 14, 0, 0, 0, 0, time.UTC)
	s.svc.EXPECT().
		RequestDeletion(gomock.Any(), "u1", "moving on", true).
		Return(&models.DeletionReceipt{RequestID: "del-1", ConfirmationCode: "ABC123", ScheduledFor: scheduled}, nil)

	stdout, _, err := s.run("request-deletion", "u1", "--reason", "moving on", "--retain-analytics")
	s.Require().NoError(err)
	s.Contains(stdout, "del-1")
	s.Contains(stdout, "ABC123")
	s.Contains(stdout, "2026-11-14T00:00:00Z")
}

func (s *CommandsSuite) TestProcessDeletionJSON() {
	s.svc.EXPECT().ProcessDeletion(gomock.Any(), "u1", "ABC123", false).Return(nil)

	stdout, _, err := s.run("-o", "json", "process-deletion", "u1", "--code", "ABC123")
	s.Require().NoError(err)

	var resp Response
	s.Require().NoError(json.Unmarshal([]byte(stdout), &resp))
	s.Equal("ok", resp.Status)
}

func (s *CommandsSuite) TestProcessDeletionWrongCode() {
	s.svc.EXPECT().
		ProcessDeletion(gomock.Any(), "u1", "nope", false).
		Return(dErrors.New(dErrors.CodeNotFound, "no pending deletion request matches the code"))

	_, stderr, err := s.run("process-deletion", "u1", "--code", "nope")
	s.Require().Error(err)
	s.Equal(ExitFailure, GetExitCode(err))
	s.Contains(stderr, "not_found")
	s.Equal(1, s.released)
}

func (s *CommandsSuite) TestComplianceIssuesExitNonZero() {
	s.svc.EXPECT().
		ComplianceReport(gomock.Any(), "u1").
		Return(models.ComplianceReport{Compliant: false, Issues: []string{"GDPR consent not given"}}, nil)

	stdout, _, err := s.run("compliance", "u1")
	s.Require().Error(err)
	s.Equal(ExitFailure, GetExitCode(err))
	s.Contains(stdout, "- GDPR consent not given")
}

func (s *CommandsSuite) TestCompliant() {
	s.svc.EXPECT().
		ComplianceReport(gomock.Any(), "u1").
		Return(models.ComplianceReport{Compliant: true, Issues: []string{}}, nil)

	stdout, _, err := s.run("compliance", "u1")
	s.Require().NoError(err)
	s.Equal("compliant\n", stdout)
}

func (s *CommandsSuite) TestRequestsTable() {
	requested := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	s.svc.EXPECT().ListRequests(gomock.Any(), "u1").Return([]models.RequestSummary{
		{ID: "del-1", Kind: models.KindDeletion, Status: "pending", RequestedAt: requested},
		{ID: "exp-1", Kind: models.KindExport, Status: "completed", RequestedAt: requested, CompletedAt: &requested},
	}, nil)

	stdout, _, err := s.run("requests", "u1", "--dsn", "postgres://ops@db/fooddrop")
	s.Require().NoError(err)
	s.Equal("postgres://ops@db/fooddrop", s.connected.DSN)
	s.Contains(stdout, "ID")
	s.Contains(stdout, "del-1")
	s.Contains(stdout, "exp-1")
}

func TestConnectFailureIsCommandError(t *testing.T) {
	connect := func(context.Context, *RootOptions) (Service, func(), error) {
		return nil, nil, errors.New("dial tcp: connection refused")
	}
	cmd := NewRootCommand(connect)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"requests", "u1"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "connection refused")
}
