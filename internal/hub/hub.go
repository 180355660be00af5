package hub

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dam4rus/logan/internal/follow"
	"github.com/dam4rus/logan/internal/paint"
	"github.com/dam4rus/logan/internal/processor"
	"github.com/dam4rus/logan/internal/rules"
)

const subscriberBuffer = 1024

// Annotation is one processor emission tagged with where and when it
// happened, ready for broadcast.
type Annotation struct {
	Source string    `json:"source"`
	Kind   string    `json:"kind"`
	Text   string    `json:"text"`
	Color  string    `json:"color,omitempty"` // "#rrggbb", empty when unpainted
	Time   time.Time `json:"time"`
}

// Hub runs followed lines through the rule set's processors and broadcasts
// every emission to all subscribers. Each source gets its own processor
// instances, so a span opened in one file cannot be closed by another.
type Hub struct {
	set   *rules.Set
	input <-chan follow.Line
	procs map[string][]processor.Processor // touched only by Run

	mu          sync.RWMutex
	subscribers []chan Annotation

	lines   atomic.Int64
	dropped atomic.Int64
}

// New creates a Hub that reads from the input channel and annotates with the
// given rule set.
func New(input <-chan follow.Line, set *rules.Set) *Hub {
	return &Hub{
		set:   set,
		input: input,
		procs: make(map[string][]processor.Processor),
	}
}

// Subscribe returns a buffered channel that will receive annotations.
// Multiple consumers can subscribe; each gets a copy of every annotation.
func (h *Hub) Subscribe() <-chan Annotation {
	ch := make(chan Annotation, subscriberBuffer)
	h.mu.Lock()
	h.subscribers = append(h.subscribers, ch)
	h.mu.Unlock()
	return ch
}

// Unsubscribe drops a subscriber obtained from Subscribe and closes its
// channel, so a departed consumer stops accruing drops. Unsubscribing a
// channel the hub has already closed is a no-op.
func (h *Hub) Unsubscribe(sub <-chan Annotation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, ch := range h.subscribers {
		if ch == sub {
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

// Lines returns how many input lines the hub has consumed.
func (h *Hub) Lines() int64 {
	return h.lines.Load()
}

// Dropped returns the total number of annotations dropped on slow consumers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Run reads, annotates, and broadcasts until the context is cancelled or the
// input channel is closed.
func (h *Hub) Run(ctx context.Context) {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-h.input:
			if !ok {
				return
			}
			h.process(line)
		}
	}
}

// process offers one line to its source's processors in configured order.
func (h *Hub) process(line follow.Line) {
	h.lines.Add(1)

	procs, ok := h.procs[line.Source]
	if !ok {
		procs = processor.FromRules(h.set)
		h.procs[line.Source] = procs
	}

	for _, proc := range procs {
		out, emitted := proc.ProcessLine(line.Text)
		if !emitted {
			continue
		}
		ann := Annotation{
			Source: line.Source,
			Kind:   string(out.Kind),
			Text:   out.Text,
			Time:   time.Now(),
		}
		if out.Color != nil {
			ann.Color = paint.Hex(*out.Color)
		}
		h.broadcast(ann)
	}
}

// broadcast sends an annotation to all subscribers. A subscriber with a full
// channel loses the annotation rather than stalling the stream.
func (h *Hub) broadcast(ann Annotation) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- ann:
		default:
			if n := h.dropped.Add(1); n == 1 || n%1000 == 0 {
				log.Printf("hub: dropping annotations for slow consumer (total %d)", n)
			}
		}
	}
}

// closeAll closes all subscriber channels.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = nil
}
