package pipeline

import (
	"bufio"
	"io"
	"strings"

	"github.com/dam4rus/logan/internal/output"
	"github.com/dam4rus/logan/internal/processor"
)

// Pipeline drives an ordered set of processors over a line stream and hands
// their emissions to a Writer in arrival order. The input is read exactly
// once; every processor sees every line.
type Pipeline struct {
	procs []processor.Processor
	out   output.Writer
}

func New(procs []processor.Processor, out output.Writer) *Pipeline {
	return &Pipeline{procs: procs, out: out}
}

// Line offers one line, without its terminator, to every processor in
// configured order.
func (p *Pipeline) Line(line string) error {
	for _, proc := range p.procs {
		out, ok := proc.ProcessLine(line)
		if !ok {
			continue
		}
		if err := p.out.Write(out); err != nil {
			return err
		}
	}
	return nil
}

// Finish collects aggregate results from processors that report one and
// closes out the writer. Call it once, after the last line.
func (p *Pipeline) Finish() error {
	var results []string
	for _, proc := range p.procs {
		s, ok := proc.(processor.Summarizer)
		if !ok {
			continue
		}
		if r, ok := s.Result(); ok {
			results = append(results, r)
		}
	}
	return p.out.Finish(results)
}

// Run streams r through the pipeline line by line, then finishes. Lines may
// be arbitrarily long; a missing newline on the last line is tolerated and
// Windows line endings are stripped.
func (p *Pipeline) Run(r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		line, readErr := br.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			if err := p.Line(line); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}
	}
	return p.Finish()
}
