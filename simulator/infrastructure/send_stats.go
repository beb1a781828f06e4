package infrastructure

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	simDomain "github.com/samoilenko/home_sensors/simulator/domain"
)

// SendStats counts send outcomes over the life of the process.
type SendStats struct {
	mu           sync.RWMutex
	delivered    uint64
	rejected     uint64
	unreachable  uint64
	unencodable  uint64
	lastDelivery time.Time
}

// Record accounts for one send result.
func (s *SendStats) Record(result simDomain.SendResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch result.Reason {
	case "":
		s.delivered++
		s.lastDelivery = result.SentAt
	case simDomain.ReasonRejected:
		s.rejected++
	case simDomain.ReasonUnencodable:
		s.unencodable++
	default:
		s.unreachable++
	}
}

// LastDelivery returns when a payload was last accepted, or the zero time.
func (s *SendStats) LastDelivery() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastDelivery
}

// Summary describes the totals in one line.
func (s *SendStats) Summary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := s.delivered + s.rejected + s.unreachable + s.unencodable
	summary := fmt.Sprintf("%s sends: %s delivered, %s rejected, %s unreachable",
		humanize.Comma(int64(total)),
		humanize.Comma(int64(s.delivered)),
		humanize.Comma(int64(s.rejected)),
		humanize.Comma(int64(s.unreachable)),
	)
	if s.unencodable > 0 {
		summary += fmt.Sprintf(", %s unencodable", humanize.Comma(int64(s.unencodable)))
	}
	return summary
}

// StatsReporter records the outcome of every send of the wrapped reporter.
type StatsReporter struct {
	inner simDomain.Reporter
	stats *SendStats
}

// Send implements domain.Reporter.
func (r *StatsReporter) Send(ctx context.Context, state simDomain.SensorState) simDomain.SendResult {
	result := r.inner.Send(ctx, state)
	r.stats.Record(result)
	return result
}

// NewStatsReporter wraps inner so its results are counted in stats.
func NewStatsReporter(inner simDomain.Reporter, stats *SendStats) *StatsReporter {
	return &StatsReporter{inner: inner, stats: stats}
}
