package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dam4rus/logan/internal/paint"
	"github.com/dam4rus/logan/internal/pipeline"
	"github.com/dam4rus/logan/internal/processor"
	"github.com/dam4rus/logan/internal/rules"
)

var (
	colorizePrefix   string
	colorizePatterns []string
	colorizeColors   []string
)

var colorizeCmd = &cobra.Command{
	Use:   "colorize INPUT",
	Short: "Color lines by the most recently matched pattern",
	Long: `Print every input line, colored by the last pattern that matched. Lines
between matches keep the previous match's color, so a stack trace stays
in its error's color until the next level marker.

Patterns and colors pair up in the order given; the first matching
pattern decides a line's color.

Examples:
  logan colorize -p "<error>" -c 196 -p "<warn>" -c 3 app.log
  logan colorize -P "^\[[0-9:]+\] " -p ERROR -c 1 app.log`,
	Args: cobra.ExactArgs(1),
	RunE: runColorize,
}

func init() {
	colorizeCmd.Flags().StringVarP(&colorizePrefix, "prefix", "P", "", "regex prefix applied to every pattern")
	colorizeCmd.Flags().StringArrayVarP(&colorizePatterns, "pattern", "p", nil, "pattern to color (repeatable, pairs with --color)")
	colorizeCmd.Flags().StringArrayVarP(&colorizeColors, "color", "c", nil, "palette index 0-255 for the paired pattern (repeatable)")
	colorizeCmd.MarkFlagRequired("pattern")
	colorizeCmd.MarkFlagRequired("color")
	rootCmd.AddCommand(colorizeCmd)
}

func runColorize(cmd *cobra.Command, args []string) error {
	set, err := pairColorRules(colorizePrefix, colorizePatterns, colorizeColors)
	if err != nil {
		return err
	}

	in, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := newWriter(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	procs := []processor.Processor{processor.NewColorizer(set)}
	return pipeline.New(procs, w).Run(in)
}

// pairColorRules zips repeated --pattern and --color flags into ordered color
// rules.
func pairColorRules(prefix string, patterns, colors []string) (processor.ColorSet, error) {
	if len(patterns) != len(colors) {
		return nil, fmt.Errorf("every --pattern needs a --color: got %d pattern(s) and %d color(s)", len(patterns), len(colors))
	}

	set := make(processor.ColorSet, 0, len(patterns))
	for i, expr := range patterns {
		pat, err := rules.Compile(prefix, expr)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", expr, err)
		}
		color, err := paint.Parse(colors[i])
		if err != nil {
			return nil, err
		}
		set = append(set, rules.ColorRule{Pattern: pat, Color: color})
	}
	return set, nil
}
