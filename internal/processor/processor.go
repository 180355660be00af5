package processor

import (
	"strings"

	"github.com/dam4rus/logan/internal/paint"
	"github.com/dam4rus/logan/internal/rules"
)

// Kind labels which annotation behavior produced an Output.
type Kind string

const (
	KindLine  Kind = "line"
	KindEvent Kind = "event"
	KindState Kind = "state"
)

// Output is one annotated emission. Text is written as-is; Color is nil when
// no rule claimed the output. Separate asks the writer to fence the output
// off from ordinary lines.
type Output struct {
	Kind     Kind
	Text     string
	Color    *paint.Color
	Separate bool
}

// Processor consumes a line stream one line at a time, in input order, and
// emits at most one Output per line. Implementations may keep state between
// lines, so each must see every line exactly once.
type Processor interface {
	ProcessLine(line string) (Output, bool)
}

// Summarizer is implemented by processors that have something to report
// after the last line.
type Summarizer interface {
	Result() (string, bool)
}

// FromRules instantiates the processors a rule set describes: one Colorizer
// for all color rules, then one extractor per event and state rule, in
// configured order. An empty set yields no processors.
func FromRules(set *rules.Set) []Processor {
	var procs []Processor
	if len(set.Colors) > 0 {
		procs = append(procs, NewColorizer(ColorSet(set.Colors)))
	}
	for _, rule := range set.Events {
		procs = append(procs, NewEventExtractor(rule))
	}
	for _, rule := range set.States {
		procs = append(procs, NewStateExtractor(rule))
	}
	return procs
}

// ---------------------------------------------------------------------------
// Colorizer
// ---------------------------------------------------------------------------

// ColorSet is an ordered list of color rules. The first matching rule wins,
// so more specific patterns belong before catch-alls.
type ColorSet []rules.ColorRule

// FindColor returns the color of the first rule matching the line.
func (s ColorSet) FindColor(line string) (paint.Color, bool) {
	for _, r := range s {
		if r.Pattern.Match(line) {
			return r.Color, true
		}
	}
	return 0, false
}

// Colorizer repeats every line, tagged with the color of the most recently
// matched rule. Lines between matches inherit the previous match's color, so
// a multi-line error stays red until the next level marker. Before the first
// match everything is white.
type Colorizer struct {
	set     ColorSet
	current paint.Color
	matched bool
}

func NewColorizer(set ColorSet) *Colorizer {
	return &Colorizer{set: set}
}

func (c *Colorizer) ProcessLine(line string) (Output, bool) {
	if color, ok := c.set.FindColor(line); ok {
		c.current = color
		c.matched = true
	}
	color := paint.White
	if c.matched {
		color = c.current
	}
	return Output{Kind: KindLine, Text: line, Color: &color}, true
}

// ---------------------------------------------------------------------------
// Event extraction
// ---------------------------------------------------------------------------

// EventExtractor collects the lines between a start match and an end match
// and emits them as one block headed "Event:". A span still open when the
// input ends is dropped.
type EventExtractor struct {
	rule    rules.EventRule
	pending strings.Builder
}

func NewEventExtractor(rule rules.EventRule) *EventExtractor {
	return &EventExtractor{rule: rule}
}

func (e *EventExtractor) ProcessLine(line string) (Output, bool) {
	if e.pending.Len() == 0 {
		// Idle. Only a start match opens a span; a line matching both
		// start and end still just opens it.
		if e.rule.Start.Match(line) {
			e.pending.WriteString(line)
			e.pending.WriteByte('\n')
		}
		return Output{}, false
	}

	// Accumulating. Every line joins the span, end match included, and
	// further start matches are ordinary content.
	e.pending.WriteString(line)
	e.pending.WriteByte('\n')
	if !e.rule.End.Match(line) {
		return Output{}, false
	}

	text := "Event:\n" + e.pending.String()
	e.pending.Reset()
	return Output{Kind: KindEvent, Text: text, Color: e.rule.Color, Separate: true}, true
}

// ---------------------------------------------------------------------------
// State extraction
// ---------------------------------------------------------------------------

// StateExtractor reports a "State: " marker for every line matching its
// pattern. With a capture group configured only that group's text is
// reported; group 0 reports the whole match. Markers carry their own
// trailing newline, like event blocks.
type StateExtractor struct {
	rule rules.StateRule
}

func NewStateExtractor(rule rules.StateRule) *StateExtractor {
	return &StateExtractor{rule: rule}
}

func (s *StateExtractor) ProcessLine(line string) (Output, bool) {
	idx := s.rule.Pattern.SubmatchIndex(line)
	if idx == nil {
		return Output{}, false
	}
	// The group index was range-checked when the rule was built, but an
	// alternation can leave a valid group out of a particular match.
	g := s.rule.Group
	if 2*g+1 >= len(idx) || idx[2*g] < 0 {
		return Output{}, false
	}
	return Output{
		Kind:  KindState,
		Text:  "State: " + line[idx[2*g]:idx[2*g+1]] + "\n",
		Color: s.rule.Color,
	}, true
}
