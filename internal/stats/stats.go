package stats

import (
	"context"
	"sync"
	"time"

	"github.com/dam4rus/logan/internal/hub"
)

// rateWindow is how far back the annotation rate looks.
const rateWindow = 5 * time.Second

// Snapshot holds a point-in-time view of the annotation stream.
type Snapshot struct {
	Uptime      string           `json:"uptime"`
	Lines       int64            `json:"lines"`
	Annotations int64            `json:"annotations"`
	Rate        float64          `json:"rate"` // annotations per second over the window
	KindCounts  map[string]int64 `json:"kind_counts"`
	Dropped     int64            `json:"dropped"`
	Files       int              `json:"files_watched"`
}

// Collector subscribes to the hub and keeps time-windowed counters for the
// dashboard.
type Collector struct {
	mu         sync.RWMutex
	start      time.Time
	total      int64
	kindCounts map[string]int64
	window     []time.Time // annotation timestamps inside the rate window

	lines   func() int64
	dropped func() int64
	files   func() int
	anns    <-chan hub.Annotation
}

// New creates a Collector reading from the given hub subscription. The
// linesFn, droppedFn and filesFn callbacks provide live values from the hub
// and the follower.
func New(anns <-chan hub.Annotation, linesFn func() int64, droppedFn func() int64, filesFn func() int) *Collector {
	return &Collector{
		start:      time.Now(),
		kindCounts: make(map[string]int64),
		lines:      linesFn,
		dropped:    droppedFn,
		files:      filesFn,
		anns:       anns,
	}
}

// Snapshot returns the current counters.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[string]int64, len(c.kindCounts))
	for k, v := range c.kindCounts {
		counts[k] = v
	}

	cutoff := time.Now().Add(-rateWindow)
	var recent int
	for _, t := range c.window {
		if t.After(cutoff) {
			recent++
		}
	}

	return Snapshot{
		Uptime:      time.Since(c.start).Truncate(time.Second).String(),
		Lines:       c.lines(),
		Annotations: c.total,
		Rate:        float64(recent) / rateWindow.Seconds(),
		KindCounts:  counts,
		Dropped:     c.dropped(),
		Files:       c.files(),
	}
}

// Run consumes annotations and updates counters until the context is
// cancelled or the subscription closes.
func (c *Collector) Run(ctx context.Context) {
	// The window is pruned on a timer so idle streams decay to zero.
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ann, ok := <-c.anns:
			if !ok {
				return
			}
			c.record(ann)
		case <-ticker.C:
			c.prune()
		}
	}
}

func (c *Collector) record(ann hub.Annotation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	c.kindCounts[ann.Kind]++
	c.window = append(c.window, time.Now())
}

// prune drops timestamps that have left the rate window.
func (c *Collector) prune() {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-rateWindow)
	i := 0
	for _, t := range c.window {
		if t.After(cutoff) {
			c.window[i] = t
			i++
		}
	}
	c.window = c.window[:i]
}
