package paint

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color is an index into the 256-entry terminal palette. It carries no
// meaning beyond identity; rendering is the Painter's concern.
type Color uint8

// White is the neutral color used for lines no rule has claimed yet.
const White Color = 7

// Parse converts a decimal palette index ("0" through "255") into a Color.
func Parse(s string) (Color, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) {
			err = ne.Err
		}
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color(n), nil
}

// Hex returns the color as a "#rrggbb" string for non-terminal consumers.
func Hex(c Color) string {
	return termenv.ConvertToRGB(termenv.ANSI256Color(c)).Hex()
}

// Painter applies an already-resolved color to a piece of text.
type Painter interface {
	Paint(text string, c Color) string
}

// Term is a Painter backed by lipgloss. Styles are built once per color and
// reused.
type Term struct {
	mu     sync.Mutex
	styles map[Color]lipgloss.Style
}

// NewTerm returns a Painter for the current terminal color profile.
func NewTerm() *Term {
	return &Term{styles: make(map[Color]lipgloss.Style)}
}

func (t *Term) Paint(text string, c Color) string {
	t.mu.Lock()
	style, ok := t.styles[c]
	if !ok {
		style = lipgloss.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(int(c))))
		t.styles[c] = style
	}
	t.mu.Unlock()
	return style.Render(text)
}

// SetProfile forces how colors are rendered for the whole process.
// "auto" keeps lipgloss's terminal detection, "always" emits 256-color
// sequences even when not attached to a terminal, "never" strips color.
func SetProfile(mode string) error {
	switch mode {
	case "auto", "":
	case "always":
		lipgloss.SetColorProfile(termenv.ANSI256)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	default:
		return fmt.Errorf("invalid color mode %q (use auto, always or never)", mode)
	}
	return nil
}
