package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dam4rus/logan/internal/hub"
	"github.com/dam4rus/logan/internal/server"
	"github.com/dam4rus/logan/internal/stats"
)

var (
	serveAddr       string
	serveCheckpoint string
)

var serveCmd = &cobra.Command{
	Use:   "serve [paths...]",
	Short: "Follow log files and stream annotations to a web dashboard",
	Long: `Follow files like watch, but broadcast every annotation over a
websocket to the embedded dashboard instead of printing it. /api/stats
and /healthz expose live counters.

Examples:
  logan serve -r rules.json /var/log/app.log
  logan serve -r rules.yaml --addr :8080 "/var/log/**/*.log"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":7333", "dashboard listen address")
	serveCmd.Flags().StringVar(&serveCheckpoint, "checkpoint", ".logan-state.json", "file for persisted read offsets")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	set, err := loadRules()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	f, err := newFollower(args, serveCheckpoint)
	if err != nil {
		return err
	}

	h := hub.New(f.Lines(), set)
	collector := stats.New(h.Subscribe(), h.Lines, h.Dropped, func() int { return len(f.Paths()) })

	go f.Run(ctx)
	go h.Run(ctx)
	go collector.Run(ctx)

	fmt.Fprintf(os.Stderr, "logan: dashboard listening on %s\n", serveAddr)
	return server.New(h, collector, serveAddr).Run(ctx)
}
