package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dam4rus/logan/internal/paint"
	"github.com/dam4rus/logan/internal/processor"
)

// Writer renders processor emissions to an output stream.
type Writer interface {
	// Write renders one emission.
	Write(out processor.Output) error
	// Finish is called once after the last line, with the aggregate
	// results the processors reported.
	Finish(results []string) error
}

// ---------------------------------------------------------------------------
// Text writer (colorized terminal output)
// ---------------------------------------------------------------------------

var separator = strings.Repeat("-", 50)

// TextWriter prints annotated text. Emissions that demand separation are
// fenced off from their neighbors by a dashed line, on both sides, but never
// before the first emission and never doubled.
type TextWriter struct {
	w        io.Writer
	painter  paint.Painter
	wrote    bool
	separate bool
}

// NewTextWriter returns a Writer that paints colors with p.
func NewTextWriter(w io.Writer, p paint.Painter) *TextWriter {
	return &TextWriter{w: w, painter: p}
}

func (t *TextWriter) Write(out processor.Output) error {
	if t.wrote && (t.separate || out.Separate) {
		if _, err := fmt.Fprintln(t.w, separator); err != nil {
			return err
		}
	}

	text := out.Text
	if out.Color != nil {
		text = t.painter.Paint(text, *out.Color)
	}
	if _, err := fmt.Fprintln(t.w, text); err != nil {
		return err
	}

	t.wrote = true
	t.separate = out.Separate
	return nil
}

func (t *TextWriter) Finish(results []string) error {
	if _, err := fmt.Fprintln(t.w); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintln(t.w, r); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// JSON writer (structured output for piping)
// ---------------------------------------------------------------------------

// record is the wire shape of one emission: one JSON object per line.
type record struct {
	Kind  string       `json:"kind"`
	Text  string       `json:"text"`
	Color *paint.Color `json:"color,omitempty"`
}

// JSONWriter prints each emission as a single JSON object per line. Colors
// stay palette indexes; separators are the consumer's business.
type JSONWriter struct {
	enc *json.Encoder
}

func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{enc: json.NewEncoder(w)}
}

func (j *JSONWriter) Write(out processor.Output) error {
	return j.enc.Encode(record{
		Kind:  string(out.Kind),
		Text:  out.Text,
		Color: out.Color,
	})
}

func (j *JSONWriter) Finish(results []string) error {
	for _, r := range results {
		if err := j.enc.Encode(record{Kind: "result", Text: r}); err != nil {
			return err
		}
	}
	return nil
}
