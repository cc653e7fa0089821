package main

import (
	"context"
	"log/slog"

	"fooddrop/internal/docstore"
	"fooddrop/internal/platform/config"
	"fooddrop/internal/platform/errtrack"
	"fooddrop/internal/platform/metrics"
	redisclient "fooddrop/internal/platform/redis"
	auditmetrics "fooddrop/pkg/platform/audit/metrics"
	"fooddrop/pkg/platform/audit/publisher"
	"fooddrop/pkg/platform/audit/publishers/kafka"
	"fooddrop/pkg/platform/audit/session"
	auditdoc "fooddrop/pkg/platform/audit/store/document"
	"fooddrop/pkg/platform/audit/worker"
	"fooddrop/pkg/platform/circuit"
)

// buildAudit assembles the audit pipeline over the document store. Sessions
// are shared through Redis when rc is set, and entries are streamed to Kafka
// when brokers are configured. The returned func drains the queue and
// releases the stream.
func buildAudit(
	ctx context.Context,
	cfg config.Config,
	docs docstore.Store,
	rc *redisclient.Client,
	m *metrics.Metrics,
	tracker *errtrack.Tracker,
	log *slog.Logger,
) (*publisher.Publisher, *auditdoc.Store, func(), error) {
	records := auditdoc.New(docs)
	auditMetrics := auditmetrics.New(m.Registry)

	workerOpts := []worker.Option{
		worker.WithLogger(log),
		worker.WithMetrics(auditMetrics),
		worker.WithBreaker(circuit.New("audit-store",
			circuit.WithFailureThreshold(cfg.Audit.BreakerFailures),
			circuit.WithCooldown(cfg.Audit.BreakerCooldown),
		)),
	}
	if tracker != nil {
		workerOpts = append(workerOpts, worker.WithReporter(tracker))
	}

	var closers []func()

	if len(cfg.Kafka.Brokers) > 0 {
		stream, err := kafka.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, kafka.WithLogger(log))
		if err != nil {
			return nil, nil, nil, err
		}
		if err := stream.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			log.WarnContext(ctx, "could not ensure audit topic", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
		workerOpts = append(workerOpts, worker.WithTee(stream))
		closers = append(closers, stream.Close)
	}

	pubOpts := []publisher.Option{
		publisher.WithAsyncBuffer(cfg.Audit.BufferSize),
		publisher.WithPersistence(cfg.Audit.PersistenceEnabled()),
		publisher.WithMetrics(auditMetrics),
		publisher.WithLogger(log),
	}

	if rc != nil {
		pubOpts = append(pubOpts, publisher.WithSessionRegistry(
			session.NewRedisRegistry(rc.Client, session.WithRedisTTL(cfg.Redis.SessionTTL)),
		))
	}

	pub := publisher.NewPublisher(records, append(pubOpts, publisher.WithWorkerOptions(workerOpts...))...)

	closeFn := func() {
		drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditDrainLimit)
		defer cancel()
		if err := pub.Close(drainCtx); err != nil {
			log.Error("audit queue did not drain", "error", err)
		}
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return pub, records, closeFn, nil
}
