package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/commitvm/internal/config"
	"github.com/aledsdavies/commitvm/internal/engine"
	"github.com/aledsdavies/commitvm/internal/store"
	"github.com/aledsdavies/commitvm/internal/trace"
	"github.com/aledsdavies/commitvm/internal/vmerrors"
)

var (
	configPath string
	seedFlag   int64
	seedSet    bool
	debugFlag  string
	telFlag    string
	traceOut   string
	startTag   string
	endTag     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "commitvm <repo-path>",
	Short: "Execute a git commit graph as a program",
	Long: `commitvm interprets a git repository as a program: each commit's message
is one instruction, parent edges are control flow, and tags mark branch
targets. Execution starts at the _start tag and runs until it reaches _end.`,
	Args: cobra.ExactArgs(1),
	RunE: run,
	// main prints the one diagnostic line itself.
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a YAML run configuration file")
	rootCmd.Flags().Int64Var(&seedFlag, "seed", 0, "RNG seed for random successor selection (overrides config)")
	rootCmd.Flags().StringVar(&debugFlag, "debug", "", "debug level: off, paths, detailed (overrides config)")
	rootCmd.Flags().StringVar(&telFlag, "telemetry", "", "telemetry level: off, basic, timing (overrides config)")
	rootCmd.Flags().StringVar(&traceOut, "trace-out", "", "write a CBOR execution trace to this path (overrides config)")
	rootCmd.Flags().StringVar(&startTag, "start", "_start", "tag naming the first commit to execute")
	rootCmd.Flags().StringVar(&endTag, "end", "_end", "tag naming the final commit to execute")
}

func run(cmd *cobra.Command, args []string) error {
	repoPath := args[0]
	seedSet = cmd.Flags().Changed("seed")

	cfg := &config.Config{MaxRedirectHops: 1000}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return vmerrors.New(vmerrors.MissingRef, "reading config %s: %w", configPath, err)
		}
		loaded, err := config.Load(data)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if debugFlag != "" {
		lvl, ok := engine.ParseDebugLevel(debugFlag)
		if !ok {
			return vmerrors.New(vmerrors.MissingRef, "invalid --debug level %q", debugFlag)
		}
		cfg.Debug = lvl
	}
	if telFlag != "" {
		lvl, ok := engine.ParseTelemetryLevel(telFlag)
		if !ok {
			return vmerrors.New(vmerrors.MissingRef, "invalid --telemetry level %q", telFlag)
		}
		cfg.Telemetry = lvl
	}
	if traceOut != "" {
		cfg.TraceOut = traceOut
	}

	s, err := store.Open(repoPath)
	if err != nil {
		return err
	}

	startID, err := s.ResolveTag(startTag)
	if err != nil {
		return err
	}

	seed := cfg.ResolveSeed(startID.String())
	if seedSet {
		seed = seedFlag
	}

	var collector trace.Collector
	var debugFn func(engine.DebugEvent)
	if cfg.Debug != engine.DebugOff || cfg.TraceOut != "" {
		debugFn = collector.Observe
	}

	eng := engine.New(s, engine.Config{
		RNG:             engine.NewSeededRNG(seed),
		Stdout:          os.Stdout,
		Stdin:           os.Stdin,
		DebugFn:         debugFn,
		Telemetry:       cfg.Telemetry,
		MaxRedirectHops: cfg.MaxRedirectHops,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, runErr := eng.Run(ctx, startTag, endTag)

	if cfg.TraceOut != "" {
		t := trace.Trace{Events: collector.Events()}
		if result != nil {
			t.Telemetry = result.Telemetry
		}
		if err := trace.Write(cfg.TraceOut, t); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	return runErr
}
