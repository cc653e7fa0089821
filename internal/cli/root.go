// Package cli implements gdprctl, the operator tool for data subject
// requests.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"fooddrop/internal/gdpr/models"
)

// Service is the subset of the GDPR service the commands drive.
type Service interface {
	RequestExport(ctx context.Context, userID string, opts models.ExportOptions) (*models.ExportResult, error)
	RequestDeletion(ctx context.Context, userID, reason string, retainAnalytics bool) (*models.DeletionReceipt, error)
	ProcessDeletion(ctx context.Context, userID, code string, retainAnalytics bool) error
	ListRequests(ctx context.Context, userID string) ([]models.RequestSummary, error)
	ComplianceReport(ctx context.Context, userID string) (models.ComplianceReport, error)
}

// Connector opens the service for one command. The returned func releases
// it and must be called once the command finishes.
type Connector func(ctx context.Context, opts *RootOptions) (Service, func(), error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Output  string // "text" | "json"
	DSN     string
}

// ValidOutputs defines the allowed output formats.
var ValidOutputs = []string{"text", "json"}

// NewRootCommand creates the gdprctl root command.
func NewRootCommand(connect Connector) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gdprctl",
		Short: "Operate fooddrop data subject requests",
		Long: `gdprctl runs exports, deletions and compliance checks against the
fooddrop document store on behalf of a user. Every action is audited.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidOutputs, opts.Output) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid output %q: must be one of %v", opts.Output, ValidOutputs))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "text", "output format (text|json)")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "Postgres DSN (defaults to DATABASE_URL)")

	cmd.AddCommand(newExportCommand(opts, connect))
	cmd.AddCommand(newRequestDeletionCommand(opts, connect))
	cmd.AddCommand(newProcessDeletionCommand(opts, connect))
	cmd.AddCommand(newComplianceCommand(opts, connect))
	cmd.AddCommand(newRequestsCommand(opts, connect))

	return cmd
}

// withService connects, runs fn and releases the connection.
func withService(cmd *cobra.Command, opts *RootOptions, connect Connector, fn func(ctx context.Context, svc Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, release, err := connect(ctx, opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "connect to store", err)
	}
	defer release()
	return fn(ctx, svc)
}
