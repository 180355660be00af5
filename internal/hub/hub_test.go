package hub

import (
	"context"
	"testing"
	"time"

	"github.com/dam4rus/logan/internal/follow"
	"github.com/dam4rus/logan/internal/rules"
)

func errorRules(t *testing.T) *rules.Set {
	t.Helper()
	set, err := rules.Parse([]byte(`{"pattern_colors": [{"pattern": "ERROR", "color": "196"}]}`), rules.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestHubBroadcast(t *testing.T) {
	input := make(chan follow.Line, 10)
	h := New(input, errorRules(t))

	sub1 := h.Subscribe()
	sub2 := h.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)

	input <- follow.Line{Text: "ERROR disk full", Source: "test.log"}

	for i, sub := range []<-chan Annotation{sub1, sub2} {
		select {
		case ann := <-sub:
			if ann.Kind != "line" {
				t.Errorf("sub%d: expected kind line, got %s", i+1, ann.Kind)
			}
			if ann.Text != "ERROR disk full" {
				t.Errorf("sub%d: expected the raw line, got %q", i+1, ann.Text)
			}
			if ann.Color != "#ff0000" {
				t.Errorf("sub%d: expected #ff0000, got %q", i+1, ann.Color)
			}
			if ann.Source != "test.log" {
				t.Errorf("sub%d: expected source test.log, got %q", i+1, ann.Source)
			}
			if ann.Time.IsZero() {
				t.Errorf("sub%d: annotation time not set", i+1)
			}
		case <-time.After(1 * time.Second):
			t.Fatalf("sub%d: timed out", i+1)
		}
	}

	if h.Lines() != 1 {
		t.Errorf("expected 1 consumed line, got %d", h.Lines())
	}
}

func TestHubPerSourceSpans(t *testing.T) {
	set, err := rules.Parse([]byte(`{"event_patterns": [{"start_pattern": "BEGIN", "end_pattern": "END"}]}`), rules.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}

	input := make(chan follow.Line, 10)
	h := New(input, set)
	sub := h.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)

	// b.log's END must not close the span a.log opened.
	input <- follow.Line{Text: "BEGIN tx", Source: "a.log"}
	input <- follow.Line{Text: "END tx", Source: "b.log"}
	input <- follow.Line{Text: "END tx", Source: "a.log"}

	select {
	case ann := <-sub:
		if ann.Source != "a.log" {
			t.Errorf("expected source a.log, got %q", ann.Source)
		}
		if want := "Event:\nBEGIN tx\nEND tx\n"; ann.Text != want {
			t.Errorf("expected %q, got %q", want, ann.Text)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for the event annotation")
	}

	select {
	case ann := <-sub:
		t.Errorf("unexpected extra annotation %+v", ann)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestHubSlowConsumer(t *testing.T) {
	input := make(chan follow.Line, 10)
	h := New(input, errorRules(t))

	// Subscribe but never read — simulates a slow consumer.
	_ = h.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)

	// Fill beyond the subscriber buffer.
	for i := 0; i < subscriberBuffer+100; i++ {
		input <- follow.Line{Text: "ERROR line", Source: "test.log"}
	}

	// Give the hub time to process.
	time.Sleep(500 * time.Millisecond)

	if h.Dropped() == 0 {
		t.Error("expected dropped annotations for slow consumer, got 0")
	}
}

func TestHubUnsubscribe(t *testing.T) {
	input := make(chan follow.Line, 10)
	h := New(input, errorRules(t))

	gone := h.Subscribe()
	kept := h.Subscribe()
	h.Unsubscribe(gone)

	if _, ok := <-gone; ok {
		t.Error("unsubscribed channel should be closed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Run(ctx)

	input <- follow.Line{Text: "ERROR disk full", Source: "test.log"}

	select {
	case ann := <-kept:
		if ann.Text != "ERROR disk full" {
			t.Errorf("remaining subscriber got %q", ann.Text)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("remaining subscriber timed out")
	}

	// The departed subscriber no longer counts toward drops.
	if h.Dropped() != 0 {
		t.Errorf("expected no drops after unsubscribe, got %d", h.Dropped())
	}

	// On shutdown the hub closes the survivors itself; a late Unsubscribe
	// stays a no-op instead of closing twice.
	cancel()
	if _, ok := <-kept; ok {
		t.Error("expected the hub to close remaining subscribers on shutdown")
	}
	h.Unsubscribe(kept)
}
