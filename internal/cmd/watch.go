package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dam4rus/logan/internal/follow"
	"github.com/dam4rus/logan/internal/processor"
)

var watchCheckpoint string

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Follow log files and annotate new lines in real time",
	Long: `Watch one or more files (or doublestar globs) and run the rules file
over every appended line, like an annotating tail -f. Each file gets its
own processor instances, so an event span opened in one file is never
closed by a line from another.

Read offsets are checkpointed periodically and a restarted watch resumes
where the previous one stopped.

Examples:
  logan watch -r rules.json /var/log/app.log
  logan watch -r rules.yaml "/var/log/**/*.log"
  logan watch -r rules.json app.log server.log --output json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchCheckpoint, "checkpoint", ".logan-state.json", "file for persisted read offsets")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	set, err := loadRules()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	f, err := newFollower(args, watchCheckpoint)
	if err != nil {
		return err
	}

	w, err := newWriter(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	go f.Run(ctx)

	// One processor set per source, so per-file state like open spans and
	// sticky colors never crosses files.
	procs := make(map[string][]processor.Processor)

	// tail-style source headers, only for interleaved text output.
	headers := textOutput() && len(f.Paths()) > 1
	var lastSource string

	for line := range f.Lines() {
		ps, ok := procs[line.Source]
		if !ok {
			ps = processor.FromRules(set)
			procs[line.Source] = ps
		}

		for _, proc := range ps {
			out, emitted := proc.ProcessLine(line.Text)
			if !emitted {
				continue
			}
			if headers && line.Source != lastSource {
				if lastSource != "" {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "==> %s <==\n", line.Source)
				lastSource = line.Source
			}
			if err := w.Write(out); err != nil {
				return err
			}
		}
	}

	return nil
}

// newFollower builds a Follower for the given patterns and announces what it
// matched on stderr.
func newFollower(patterns []string, checkpoint string) (*follow.Follower, error) {
	ckpt := follow.LoadCheckpoint(checkpoint)

	f, err := follow.New(patterns, ckpt)
	if err != nil {
		return nil, fmt.Errorf("failed to create follower: %w", err)
	}
	if len(f.Paths()) == 0 {
		return nil, fmt.Errorf("no files matched the given patterns: %v", patterns)
	}

	fmt.Fprintf(os.Stderr, "logan: following %d file(s)\n", len(f.Paths()))
	for _, p := range f.Paths() {
		fmt.Fprintf(os.Stderr, "  %s\n", p)
	}
	return f, nil
}
