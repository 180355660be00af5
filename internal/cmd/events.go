package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dam4rus/logan/internal/pipeline"
	"github.com/dam4rus/logan/internal/processor"
	"github.com/dam4rus/logan/internal/rules"
)

var (
	eventsPrefix string
	eventsStart  string
	eventsEnd    string
)

var eventsCmd = &cobra.Command{
	Use:   "events INPUT",
	Short: "Extract multi-line events between start and end patterns",
	Long: `Collect the lines from a start-pattern match through the next
end-pattern match and print them as one block. A span the end pattern
never closes is dropped.

Examples:
  logan events --start "session opened" --end "session closed" app.log
  logan events --start BEGIN --end END -c 28 app.log`,
	Args: cobra.ExactArgs(1),
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVarP(&eventsPrefix, "prefix", "P", "", "regex prefix applied to both patterns")
	eventsCmd.Flags().StringVar(&eventsStart, "start", "", "pattern opening an event span")
	eventsCmd.Flags().StringVar(&eventsEnd, "end", "", "pattern closing an event span")
	eventsCmd.Flags().StringP("color", "c", "", "palette index 0-255 for the event block")
	eventsCmd.MarkFlagRequired("start")
	eventsCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	start, err := rules.Compile(eventsPrefix, eventsStart)
	if err != nil {
		return fmt.Errorf("invalid start pattern %q: %w", eventsStart, err)
	}
	end, err := rules.Compile(eventsPrefix, eventsEnd)
	if err != nil {
		return fmt.Errorf("invalid end pattern %q: %w", eventsEnd, err)
	}
	color, err := optionalColor(cmd)
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

	procs := []processor.Processor{
		processor.NewEventExtractor(rules.EventRule{Start: start, End: end, Color: color}),
	}
	return pipeline.New(procs, w).Run(in)
}
