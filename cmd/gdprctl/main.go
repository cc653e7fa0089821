package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fooddrop/internal/cli"
	gdprservice "fooddrop/internal/gdpr/service"
	gdprstore "fooddrop/internal/gdpr/store"
	"fooddrop/internal/monitor"
	"fooddrop/internal/platform/config"
	"fooddrop/internal/platform/logger"
	"fooddrop/internal/platform/postgres"
	profileservice "fooddrop/internal/profile/service"
	profilestore "fooddrop/internal/profile/store"
	"fooddrop/pkg/platform/audit/publisher"
	auditdoc "fooddrop/pkg/platform/audit/store/document"
)

const auditDrainLimit = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(connect).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}

// connect builds the GDPR service over the configured document store. Audit
// entries are always persisted, whatever the development settings say.
func connect(ctx context.Context, opts *cli.RootOptions) (cli.Service, func(), error) {
	cfg := config.FromEnv()
	if opts.DSN != "" {
		cfg.Database.DSN = opts.DSN
	}
	if !opts.Verbose {
		cfg.Log.Level = "warn"
	}
	log := logger.New(cfg.Log)

	docs, closeDocs, err := postgres.OpenDocstore(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}

	records := auditdoc.New(docs)
	auditor := publisher.NewPublisher(records,
		publisher.WithPersistence(true),
		publisher.WithLogger(log),
	)
	mon := monitor.New(
		monitor.WithLogger(log),
		monitor.WithReporter(monitor.NewAuditReporter(auditor)),
	)

	profiles := profileservice.New(profilestore.New(docs, mon), auditor, profileservice.WithLogger(log))
	svc := gdprservice.New(gdprstore.New(docs, mon), profiles, records, auditor, gdprservice.WithLogger(log))

	release := func() {
		drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditDrainLimit)
		defer cancel()
		if err := auditor.Close(drainCtx); err != nil {
			log.Error("audit queue did not drain", "error", err)
		}
		closeDocs()
	}
	return svc, release, nil
}
