package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fooddrop/internal/gdpr/models"
	gdprservice "fooddrop/internal/gdpr/service"
	fdstrings "fooddrop/pkg/platform/strings"
)

func formatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Output,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func newExportCommand(rootOpts *RootOptions, connect Connector) *cobra.Command {
	var (
		format  string
		include []string
	)
	cmd := &cobra.Command{
		Use:   "export <uid>",
		Short: "Generate a data export for a user",
		Long: `Generate a data export for a user and record it as a completed export
request. --format csv prints the flattened CSV regardless of --output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exportOpts, err := exportOptions(format, include)
			if err != nil {
				return err
			}
			out := formatter(cmd, rootOpts)
			return withService(cmd, rootOpts, connect, func(ctx context.Context, svc Service) error {
				out.VerboseLog("exporting %v for %s", exportOpts.Requested(), args[0])
				res, err := svc.RequestExport(ctx, args[0], exportOpts)
				if err != nil {
					return out.Fail(ExitFailure, "export failed", err)
				}
				if exportOpts.Format == models.FormatCSV {
					csv, err := gdprservice.FormatDataAsCSV(res.Export)
					if err != nil {
						return out.Fail(ExitFailure, "format csv", err)
					}
					_, err = io.WriteString(out.Writer, csv)
					return err
				}
				return out.Success(res, func(w io.Writer) error {
					enc := json.NewEncoder(w)
					enc.SetIndent("", "  ")
					return enc.Encode(res.Export)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "export format (json|csv)")
	cmd.Flags().StringSliceVar(&include, "include", models.DataTypeOrder, "data categories to include")
	return cmd
}

func exportOptions(format string, include []string) (models.ExportOptions, error) {
	opts := models.ExportOptions{Format: models.ExportFormat(format)}
	if opts.Format != models.FormatJSON && opts.Format != models.FormatCSV {
		return opts, NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be json or csv", format))
	}
	for _, t := range fdstrings.DedupeAndTrim(include) {
		switch t {
		case models.DataProfile:
			opts.IncludeProfile = true
		case models.DataCollections:
			opts.IncludeCollections = true
		case models.DataPreferences:
			opts.IncludePreferences = true
		case models.DataAnalytics:
			opts.IncludeAnalytics = true
		case models.DataAuditLogs:
			opts.IncludeAuditLogs = true
		default:
			return opts, NewExitError(ExitCommandError,
				fmt.Sprintf("unknown data category %q: must be one of %v", t, models.DataTypeOrder))
		}
	}
	return opts, nil
}

func newRequestDeletionCommand(rootOpts *RootOptions, connect Connector) *cobra.Command {
	var (
		reason string
		retain bool
	)
	cmd := &cobra.Command{
		Use:   "request-deletion <uid>",
		Short: "Open a deletion request and print its confirmation code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(cmd, rootOpts)
			return withService(cmd, rootOpts, connect, func(ctx context.Context, svc Service) error {
				receipt, err := svc.RequestDeletion(ctx, args[0], reason, retain)
				if err != nil {
					return out.Fail(ExitFailure, "request deletion failed", err)
				}
				return out.Success(receipt, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "request:       %s\ncode:          %s\nscheduled for: %s\n",
						receipt.RequestID, receipt.ConfirmationCode, receipt.ScheduledFor.Format(time.RFC3339))
					return err
				})
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded on the request")
	cmd.Flags().BoolVar(&retain, "retain-analytics", false, "keep analytics after deletion")
	return cmd
}

func newProcessDeletionCommand(rootOpts *RootOptions, connect Connector) *cobra.Command {
	var (
		code   string
		retain bool
	)
	cmd := &cobra.Command{
		Use:   "process-deletion <uid>",
		Short: "Confirm a pending deletion request and erase the user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(cmd, rootOpts)
			return withService(cmd, rootOpts, connect, func(ctx context.Context, svc Service) error {
				if err := svc.ProcessDeletion(ctx, args[0], code, retain); err != nil {
					return out.Fail(ExitFailure, "process deletion failed", err)
				}
				result := map[string]string{"userId": args[0], "status": string(models.DeletionCompleted)}
				return out.Success(result, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "user %s deleted\n", args[0])
					return err
				})
			})
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "confirmation code from request-deletion")
	cmd.Flags().BoolVar(&retain, "retain-analytics", false, "keep analytics after deletion")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func newComplianceCommand(rootOpts *RootOptions, connect Connector) *cobra.Command {
	return &cobra.Command{
		Use:   "compliance <uid>",
		Short: "Check a stored profile for consent and retention problems",
		Long:  "Check a stored profile. Exits 1 when issues are found.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(cmd, rootOpts)
			return withService(cmd, rootOpts, connect, func(ctx context.Context, svc Service) error {
				report, err := svc.ComplianceReport(ctx, args[0])
				if err != nil {
					return out.Fail(ExitFailure, "compliance check failed", err)
				}
				err = out.Success(report, func(w io.Writer) error {
					if report.Compliant {
						_, err := fmt.Fprintln(w, "compliant")
						return err
					}
					for _, issue := range report.Issues {
						if _, err := fmt.Fprintf(w, "- %s\n", issue); err != nil {
							return err
						}
					}
					return nil
				})
				if err != nil {
					return err
				}
				if !report.Compliant {
					return NewExitError(ExitFailure, fmt.Sprintf("%d compliance issue(s)", len(report.Issues)))
				}
				return nil
			})
		},
	}
}

func newRequestsCommand(rootOpts *RootOptions, connect Connector) *cobra.Command {
	return &cobra.Command{
		Use:   "requests <uid>",
		Short: "List a user's export and deletion requests, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(cmd, rootOpts)
			return withService(cmd, rootOpts, connect, func(ctx context.Context, svc Service) error {
				reqs, err := svc.ListRequests(ctx, args[0])
				if err != nil {
					return out.Fail(ExitFailure, "list requests failed", err)
				}
				return out.Success(reqs, func(w io.Writer) error {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tKIND\tSTATUS\tREQUESTED\tCOMPLETED")
					for _, r := range reqs {
						completed := "-"
						if r.CompletedAt != nil {
							completed = r.CompletedAt.Format(time.RFC3339)
						}
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
							r.ID, r.Kind, r.Status, r.RequestedAt.Format(time.RFC3339), completed)
					}
					return tw.Flush()
				})
			})
		},
	}
}
