// Package stats tracks process-wide service counters for the stats surfaces.
package stats

import (
	"sync/atomic"
	"time"
)

// Tracker records service activity. The zero value is not usable; create one
// with NewTracker. All methods are safe for concurrent use.
type Tracker struct {
	start          time.Time
	lastRebuild    atomic.Int64
	totalQueries   atomic.Int64
	articlesPulled atomic.Int64
	rebuilds       atomic.Int64
	failedRebuilds atomic.Int64
}

// Snapshot is a point-in-time copy of a Tracker.
type Snapshot struct {
	StartTime      time.Time  `json:"start_time"`
	Uptime         string     `json:"uptime"`
	LastRebuild    *time.Time `json:"last_rebuild,omitempty"`
	TotalQueries   int64      `json:"total_queries"`
	ArticlesPulled int64      `json:"articles_pulled"`
	Rebuilds       int64      `json:"rebuilds"`
	FailedRebuilds int64      `json:"failed_rebuilds"`
}

// NewTracker creates a tracker whose start time is now.
func NewTracker() *Tracker {
	return &Tracker{start: time.Now()}
}

// RecordQuery counts one answered question.
func (t *Tracker) RecordQuery() {
	t.totalQueries.Add(1)
}

// RecordFetch stores the number of articles pulled by the latest fetch.
func (t *Tracker) RecordFetch(n int) {
	t.articlesPulled.Store(int64(n))
}

// RecordRebuild counts a finished rebuild. Only successful rebuilds move
// LastRebuild.
func (t *Tracker) RecordRebuild(at time.Time, ok bool) {
	if !ok {
		t.failedRebuilds.Add(1)
		return
	}
	t.rebuilds.Add(1)
	t.lastRebuild.Store(at.UnixNano())
}

// Snapshot returns the current counters.
func (t *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		StartTime:      t.start,
		Uptime:         time.Since(t.start).Round(time.Second).String(),
		TotalQueries:   t.totalQueries.Load(),
		ArticlesPulled: t.articlesPulled.Load(),
		Rebuilds:       t.rebuilds.Load(),
		FailedRebuilds: t.failedRebuilds.Load(),
	}
	if ns := t.lastRebuild.Load(); ns != 0 {
		last := time.Unix(0, ns)
		s.LastRebuild = &last
	}
	return s
}
