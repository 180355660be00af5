package rules

import (
	"fmt"

	"github.com/dam4rus/logan/internal/paint"
)

// ColorRule assigns a color to lines matching its pattern. Rules are
// consulted in configured order and the first match wins.
type ColorRule struct {
	Pattern Pattern
	Color   paint.Color
}

// EventRule brackets a multi-line span between a start and an end match.
// A nil color leaves the span unpainted.
type EventRule struct {
	Start Pattern
	End   Pattern
	Color *paint.Color
}

// StateRule extracts a state marker from every matching line. Group selects
// which capture group to report; group 0 is the whole match.
type StateRule struct {
	Pattern Pattern
	Group   int
	Color   *paint.Color
}

// Validate rejects capture group references the pattern cannot satisfy.
// Whether a valid group participates in a given match is decided per line.
func (r StateRule) Validate() error {
	if r.Group < 0 {
		return fmt.Errorf("capture group must not be negative, got %d", r.Group)
	}
	if n := r.Pattern.Groups(); r.Group > n {
		return fmt.Errorf("capture group %d out of range: pattern %q has %d group(s)", r.Group, r.Pattern, n)
	}
	return nil
}

// Set is a validated collection of annotation rules sharing one prefix.
type Set struct {
	Prefix string
	Colors []ColorRule
	Events []EventRule
	States []StateRule
}

// Empty reports whether the set holds no rules at all. An empty set is
// valid; it annotates nothing.
func (s *Set) Empty() bool {
	return len(s.Colors) == 0 && len(s.Events) == 0 && len(s.States) == 0
}
