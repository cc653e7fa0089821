package monitor

import (
	"context"

	audit "fooddrop/pkg/platform/audit"
)

// PerformanceLogger is the audit logger's metric entry point.
type PerformanceLogger interface {
	LogPerformanceMetric(ctx context.Context, metric audit.PerformanceMetric)
}

// AuditReporter forwards slow metrics to the audit performance log.
type AuditReporter struct {
	logger PerformanceLogger
}

func NewAuditReporter(logger PerformanceLogger) *AuditReporter {
	return &AuditReporter{logger: logger}
}

func (r *AuditReporter) ReportSlow(ctx context.Context, m Metric) {
	metadata := map[string]any{
		"cached": m.Meta.Cached,
	}
	if m.Meta.QueryType != "" {
		metadata["queryType"] = m.Meta.QueryType
	}
	if m.Meta.Collection != "" {
		metadata["collection"] = m.Meta.Collection
	}
	if m.Meta.DocumentCount > 0 {
		metadata["documentCount"] = m.Meta.DocumentCount
	}
	r.logger.LogPerformanceMetric(ctx, audit.PerformanceMetric{
		Operation:  m.Operation,
		DurationMs: ms(m.Duration),
		UserID:     m.Meta.UserID,
		Metadata:   metadata,
		Error:      m.ErrorCode,
	})
}
