package stats

import (
	"context"
	"testing"
	"time"

	"github.com/dam4rus/logan/internal/hub"
)

func TestRateCalculation(t *testing.T) {
	ch := make(chan hub.Annotation, 100)
	c := New(ch, func() int64 { return 42 }, func() int64 { return 0 }, func() int { return 2 })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go c.Run(ctx)

	for i := 0; i < 10; i++ {
		ch <- hub.Annotation{Kind: "line", Text: "test"}
	}

	// Wait for processing.
	time.Sleep(200 * time.Millisecond)

	snap := c.Snapshot()
	if snap.Annotations != 10 {
		t.Errorf("expected 10 annotations, got %d", snap.Annotations)
	}
	if snap.Rate <= 0 {
		t.Errorf("expected positive rate, got %f", snap.Rate)
	}
	if snap.Lines != 42 {
		t.Errorf("expected 42 lines from the hub callback, got %d", snap.Lines)
	}
}

func TestKindCounts(t *testing.T) {
	ch := make(chan hub.Annotation, 100)
	c := New(ch, func() int64 { return 0 }, func() int64 { return 7 }, func() int { return 1 })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go c.Run(ctx)

	ch <- hub.Annotation{Kind: "line"}
	ch <- hub.Annotation{Kind: "line"}
	ch <- hub.Annotation{Kind: "event"}
	ch <- hub.Annotation{Kind: "state"}
	ch <- hub.Annotation{Kind: "event"}

	time.Sleep(200 * time.Millisecond)

	snap := c.Snapshot()
	if snap.KindCounts["line"] != 2 {
		t.Errorf("expected 2 line annotations, got %d", snap.KindCounts["line"])
	}
	if snap.KindCounts["event"] != 2 {
		t.Errorf("expected 2 event annotations, got %d", snap.KindCounts["event"])
	}
	if snap.KindCounts["state"] != 1 {
		t.Errorf("expected 1 state annotation, got %d", snap.KindCounts["state"])
	}
	if snap.Dropped != 7 {
		t.Errorf("expected dropped=7 from the hub callback, got %d", snap.Dropped)
	}
	if snap.Files != 1 {
		t.Errorf("expected 1 file watched, got %d", snap.Files)
	}
}
