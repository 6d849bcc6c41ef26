package reql

import (
	"sync/atomic"

	"github.com/pior/reql/ql2"
)

// ConnStats contains statistics about connection operations.
// All fields are safe for concurrent access.
//
// For Prometheus integration, expose these as counters.
type ConnStats struct {
	Starts    uint64 // START queries submitted
	Continues uint64 // CONTINUE queries submitted
	Stops     uint64 // STOP queries submitted
	Timeouts  uint64 // submissions that hit the per-request deadline
	Orphans   uint64 // responses dropped because no slot was pending
	Errors    uint64 // failed submissions, including server errors
}

// connStatsCollector provides internal methods for updating stats.
// Not exported - the connection updates its own stats.
type connStatsCollector struct {
	stats *ConnStats
}

func newConnStatsCollector() *connStatsCollector {
	return &connStatsCollector{stats: &ConnStats{}}
}

func (c *connStatsCollector) recordQuery(t ql2.QueryType) {
	switch t {
	case ql2.QueryStart:
		atomic.AddUint64(&c.stats.Starts, 1)
	case ql2.QueryContinue:
		atomic.AddUint64(&c.stats.Continues, 1)
	case ql2.QueryStop:
		atomic.AddUint64(&c.stats.Stops, 1)
	}
}

func (c *connStatsCollector) recordTimeout() {
	atomic.AddUint64(&c.stats.Timeouts, 1)
}

func (c *connStatsCollector) recordOrphan() {
	atomic.AddUint64(&c.stats.Orphans, 1)
}

func (c *connStatsCollector) recordError() {
	atomic.AddUint64(&c.stats.Errors, 1)
}

func (c *connStatsCollector) snapshot() ConnStats {
	return ConnStats{
		Starts:    atomic.LoadUint64(&c.stats.Starts),
		Continues: atomic.LoadUint64(&c.stats.Continues),
		Stops:     atomic.LoadUint64(&c.stats.Stops),
		Timeouts:  atomic.LoadUint64(&c.stats.Timeouts),
		Orphans:   atomic.LoadUint64(&c.stats.Orphans),
		Errors:    atomic.LoadUint64(&c.stats.Errors),
	}
}
