package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dam4rus/logan/internal/output"
	"github.com/dam4rus/logan/internal/paint"
	"github.com/dam4rus/logan/internal/rules"
)

var (
	cfgFile   string
	rulesFile string
	outputFmt string
	colorMode string
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "logan",
	Short: "Logan — regex-driven log annotator",
	Long: `Logan reads log files line by line and annotates them with regular
expression rules: lines are colorized by the most recently matched level
pattern, multi-line events are extracted between start/end patterns, and
state changes are reported as one-line markers.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.logan.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rulesFile, "rules", "r", "", "annotation rules file (JSON or YAML)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "output format: text, json")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "color mode: auto, always, never")

	// Flags win over LOGAN_* environment variables, which win over the
	// config file.
	viper.BindPFlag("rules", rootCmd.PersistentFlags().Lookup("rules"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".logan")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("logan")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// loadRules reads the rules file named by --rules, the LOGAN_RULES
// environment variable or the config file, in that order.
func loadRules() (*rules.Set, error) {
	path := viper.GetString("rules")
	if path == "" {
		return nil, fmt.Errorf("no rules file given (use --rules or set rules in $HOME/.logan.yaml)")
	}
	set, err := rules.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules file %s: %w", path, err)
	}
	return set, nil
}

// newWriter builds the configured output writer and applies the color mode
// for the whole process.
func newWriter(w io.Writer) (output.Writer, error) {
	if err := paint.SetProfile(viper.GetString("color")); err != nil {
		return nil, err
	}

	switch format := strings.ToLower(viper.GetString("output")); format {
	case "", "text":
		return output.NewTextWriter(w, paint.NewTerm()), nil
	case "json":
		return output.NewJSONWriter(w), nil
	default:
		return nil, fmt.Errorf("invalid output format %q (use text or json)", format)
	}
}

// textOutput reports whether the writer prints human-oriented text. Source
// headers and similar chrome are suppressed for machine formats.
func textOutput() bool {
	return strings.ToLower(viper.GetString("output")) != "json"
}

// openInput opens the INPUT argument, with "-" meaning stdin.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return f, nil
}

// optionalColor parses the command's --color flag when it was given, keeping
// the rule unpainted otherwise.
func optionalColor(cmd *cobra.Command) (*paint.Color, error) {
	if !cmd.Flags().Changed("color") {
		return nil, nil
	}
	raw, err := cmd.Flags().GetString("color")
	if err != nil {
		return nil, err
	}
	c, err := paint.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nlogan: shutting down")
		cancel()
	}()

	return ctx, cancel
}
