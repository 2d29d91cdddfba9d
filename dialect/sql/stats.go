package sql

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultSlowThreshold is the slow statement threshold of a new Driver.
const DefaultSlowThreshold = 100 * time.Millisecond

// Stats is a point-in-time view of the statements executed by a Driver.
type Stats struct {
	Queries  int64
	Execs    int64
	Duration time.Duration
	// Slow counts statements slower than the driver threshold.
	Slow   int64
	Errors int64
}

// Avg returns the average statement duration.
func (s Stats) Avg() time.Duration {
	if n := s.Queries + s.Execs; n > 0 {
		return s.Duration / time.Duration(n)
	}
	return 0
}

func (s Stats) String() string {
	return fmt.Sprintf("queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.Queries, s.Execs, s.Duration, s.Avg(), s.Slow, s.Errors)
}

type counters struct {
	queries, execs, nanos, slow, errors atomic.Int64
}

func (c *counters) load() Stats {
	return Stats{
		Queries:  c.queries.Load(),
		Execs:    c.execs.Load(),
		Duration: time.Duration(c.nanos.Load()),
		Slow:     c.slow.Load(),
		Errors:   c.errors.Load(),
	}
}

// record counts one statement started at start and logs it.
func (d *Driver) record(query string, start time.Time, err error, isQuery bool) {
	elapsed := time.Since(start)
	if isQuery {
		d.stats.queries.Add(1)
	} else {
		d.stats.execs.Add(1)
	}
	d.stats.nanos.Add(int64(elapsed))
	if err != nil {
		d.stats.errors.Add(1)
	}
	if elapsed > d.slow {
		d.stats.slow.Add(1)
		d.log.Warn("slow statement", zap.Duration("duration", elapsed), zap.String("query", query))
		return
	}
	d.log.Debug("statement", zap.Duration("duration", elapsed), zap.String("query", query), zap.Error(err))
}
