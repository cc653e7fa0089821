package monitor

import (
	"context"
	"sort"
	"time"
)

const (
	DefaultPruneInterval = 30 * time.Minute
	DefaultMaxAge        = time.Hour
	topOperations        = 5
)

// OperationStats summarizes one operation in a Report.
type OperationStats struct {
	Operation   string        `json:"operation"`
	AvgDuration time.Duration `json:"avgDuration"`
	Count       int           `json:"count"`
}

// Report summarizes every buffered metric.
type Report struct {
	TotalQueries      int              `json:"totalQueries"`
	AverageQueryTime  time.Duration    `json:"averageQueryTime"`
	SlowQueries       int              `json:"slowQueries"`
	ErrorRate         float64          `json:"errorRate"`
	TopSlowOperations []OperationStats `json:"topSlowOperations"`
}

// Metrics returns the buffered metrics for op, oldest first. An empty op
// returns every buffered metric.
func (m *Monitor) Metrics(op string) []Metric {
	m.mu.Lock()
	defer m.mu.Unlock()
	if op != "" {
		return append([]Metric(nil), m.metrics[op]...)
	}
	return m.allLocked()
}

func (m *Monitor) allLocked() []Metric {
	var all []Metric
	for _, buf := range m.metrics {
		all = append(all, buf...)
	}
	return all
}

// AverageDuration averages op's buffered durations. A positive window limits
// the average to metrics recorded within it.
func (m *Monitor) AverageDuration(op string, window time.Duration) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cutoff time.Time
	if window > 0 {
		cutoff = m.now().Add(-window)
	}
	var total time.Duration
	n := 0
	for _, metric := range m.metrics[op] {
		if window > 0 && !metric.Timestamp.After(cutoff) {
			continue
		}
		total += metric.Duration
		n++
	}
	if n == 0 {
		return 0
	}
	return total / time.Duration(n)
}

// SlowQueries returns buffered metrics slower than threshold, or than the
// warn threshold when threshold is zero.
func (m *Monitor) SlowQueries(threshold time.Duration) []Metric {
	m.mu.Lock()
	defer m.mu.Unlock()
	if threshold <= 0 {
		threshold = m.warnThreshold
	}
	var slow []Metric
	for _, metric := range m.allLocked() {
		if metric.Duration > threshold {
			slow = append(slow, metric)
		}
	}
	return slow
}

func (m *Monitor) Report() Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := Report{TopSlowOperations: []OperationStats{}}
	var total time.Duration
	errorsCount := 0
	for op, buf := range m.metrics {
		if len(buf) == 0 {
			continue
		}
		var opTotal time.Duration
		for _, metric := range buf {
			opTotal += metric.Duration
			if metric.Duration > m.warnThreshold {
				r.SlowQueries++
			}
			if metric.ErrorCode != "" {
				errorsCount++
			}
		}
		total += opTotal
		r.TotalQueries += len(buf)
		r.TopSlowOperations = append(r.TopSlowOperations, OperationStats{
			Operation:   op,
			AvgDuration: opTotal / time.Duration(len(buf)),
			Count:       len(buf),
		})
	}
	if r.TotalQueries == 0 {
		return r
	}

	r.AverageQueryTime = total / time.Duration(r.TotalQueries)
	r.ErrorRate = float64(errorsCount) / float64(r.TotalQueries) * 100
	sort.Slice(r.TopSlowOperations, func(i, j int) bool {
		a, b := r.TopSlowOperations[i], r.TopSlowOperations[j]
		if a.AvgDuration != b.AvgDuration {
			return a.AvgDuration > b.AvgDuration
		}
		return a.Operation < b.Operation
	})
	if len(r.TopSlowOperations) > topOperations {
		r.TopSlowOperations = r.TopSlowOperations[:topOperations]
	}
	return r
}

func (m *Monitor) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = make(map[string][]Metric)
}

// PruneOlderThan drops metrics recorded more than age ago. Operations left
// without metrics are removed.
func (m *Monitor) PruneOlderThan(age time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-age)
	for op, buf := range m.metrics {
		kept := buf[:0:0]
		for _, metric := range buf {
			if metric.Timestamp.After(cutoff) {
				kept = append(kept, metric)
			}
		}
		if len(kept) == 0 {
			delete(m.metrics, op)
			continue
		}
		m.metrics[op] = kept
	}
}

// Run prunes metrics older than maxAge every interval until ctx is done.
// Zero values use DefaultPruneInterval and DefaultMaxAge.
func (m *Monitor) Run(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 {
		interval = DefaultPruneInterval
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.PruneOlderThan(maxAge)
			if r := m.Report(); r.TotalQueries > 0 {
				m.logger.DebugContext(ctx, "store performance report",
					"total_queries", r.TotalQueries,
					"average_ms", ms(r.AverageQueryTime),
					"slow_queries", r.SlowQueries,
					"error_rate", r.ErrorRate,
				)
			}
		}
	}
}
