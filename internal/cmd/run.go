package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dam4rus/logan/internal/pipeline"
	"github.com/dam4rus/logan/internal/processor"
)

var runCmd = &cobra.Command{
	Use:   "run INPUT",
	Short: "Annotate a log file with a rules file",
	Long: `Run every processor described by the rules file over the input in one
pass. Colorized lines print in input order; extracted events and state
markers are interleaved where they complete. Pass "-" as INPUT to read
from stdin.

Example rules file:
  {
    "prefix": "[0-9]{4}-[0-9]{2}-[0-9]{2} [0-9]{2}:[0-9]{2}:[0-9]{2} ",
    "pattern_colors": [
      {"pattern": "<warn>", "color": "3"},
      {"pattern": "<error>", "color": "196"}
    ],
    "event_patterns": [
      {"start_pattern": "session opened", "end_pattern": "session closed", "color": "28"}
    ],
    "state_patterns": [
      {"pattern": "state change: (\\w+)", "group": 1, "color": "2"}
    ]
  }

The same document is accepted as YAML when the file ends in .yaml or .yml.

Examples:
  logan run -r rules.json app.log
  logan run -r rules.yaml --output json app.log
  journalctl -f | logan run -r rules.json -`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	set, err := loadRules()
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

	return pipeline.New(processor.FromRules(set), w).Run(in)
}
