package progress

import (
	"sync/atomic"
)

// Counters aggregates run totals from the event stream. The scrape is
// single-threaded, but atomics keep the counters safe for a concurrent
// reader (metrics endpoint, progress UI).
type Counters struct {
	ClicksPerformed atomic.Int64
	ItemsSeen       atomic.Int64
	ItemsExtracted  atomic.Int64
	ItemsSkipped    atomic.Int64
	PolicySkips     atomic.Int64
}

// NewCounters creates an empty counter set.
func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) Report(ev Event) {
	switch ev.Stage {
	case StageReveal:
		c.ClicksPerformed.Store(int64(ev.Clicks))
	case StageExtract:
		c.ItemsSeen.Add(1)
		switch {
		case ev.PolicySkip:
			c.PolicySkips.Add(1)
		case ev.Err != nil:
			c.ItemsSkipped.Add(1)
		default:
			c.ItemsExtracted.Add(1)
		}
	}
}

// Snapshot returns all counters as a map.
func (c *Counters) Snapshot() map[string]int64 {
	return map[string]int64{
		"clicks_performed": c.ClicksPerformed.Load(),
		"items_seen":       c.ItemsSeen.Load(),
		"items_extracted":  c.ItemsExtracted.Load(),
		"items_skipped":    c.ItemsSkipped.Load(),
		"policy_skips":     c.PolicySkips.Load(),
	}
}
