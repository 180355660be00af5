package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dam4rus/logan/internal/pipeline"
	"github.com/dam4rus/logan/internal/processor"
	"github.com/dam4rus/logan/internal/rules"
)

var (
	statesPrefix  string
	statesPattern string
	statesGroup   int
)

var statesCmd = &cobra.Command{
	Use:   "states INPUT",
	Short: "Report state changes matching a pattern",
	Long: `Print a "State:" marker for every line the pattern matches. With
--group the marker carries only that capture group's text; group 0 is
the whole match.

Examples:
  logan states -p "Set state to \w+" app.log
  logan states -p "Set state to (\w+)" -g 1 -c 2 app.log`,
	Args: cobra.ExactArgs(1),
	RunE: runStates,
}

func init() {
	statesCmd.Flags().StringVarP(&statesPrefix, "prefix", "P", "", "regex prefix applied to the pattern")
	statesCmd.Flags().StringVarP(&statesPattern, "pattern", "p", "", "pattern marking a state change")
	statesCmd.Flags().IntVarP(&statesGroup, "group", "g", 0, "capture group to report (0 = whole match)")
	statesCmd.Flags().StringP("color", "c", "", "palette index 0-255 for the marker")
	statesCmd.MarkFlagRequired("pattern")
	rootCmd.AddCommand(statesCmd)
}

func runStates(cmd *cobra.Command, args []string) error {
	pat, err := rules.Compile(statesPrefix, statesPattern)
	if err != nil {
		return fmt.Errorf("invalid pattern %q: %w", statesPattern, err)
	}
	color, err := optionalColor(cmd)
	if err != nil {
		return err
	}

	rule := rules.StateRule{Pattern: pat, Group: statesGroup, Color: color}
	if err := rule.Validate(); err != nil {
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

	procs := []processor.Processor{processor.NewStateExtractor(rule)}
	return pipeline.New(procs, w).Run(in)
}
