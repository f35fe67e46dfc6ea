package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/remap/pkg/remap"
	"github.com/randalmurphal/remap/pkg/remap/config"
	"github.com/randalmurphal/remap/pkg/remap/diag"
	"github.com/randalmurphal/remap/pkg/remap/drop"
	"github.com/randalmurphal/remap/pkg/remap/event"
	"github.com/randalmurphal/remap/pkg/remap/observability"
	"github.com/randalmurphal/remap/pkg/remap/runtime"
)

// runFlags holds the run command's flags.
type runFlags struct {
	configPath   string
	input        string
	output       string
	batchSize    int
	batchTimeout time.Duration
	dropStore    string
	dropPath     string
	dropLimit    int
	metrics      bool
}

// newRunCommand creates the run command.
func newRunCommand(opts *rootOptions) *cobra.Command {
	rf := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [program]",
		Short: "Run a program over an NDJSON event stream",
		Long: `run streams NDJSON events through a compiled program. Events that
resolve are written back out as NDJSON; events that fault are removed
from the stream and recorded in the drop store.

Settings come from --config when given. A positional program argument
overrides the configured program path, and explicit flags override
individual settings.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := rf.settings(cmd, args)
			if err != nil {
				return err
			}
			return runPipeline(cmd, opts, settings, rf.input, rf.output)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&rf.configPath, "config", "c", "", "pipeline settings file (yaml or json)")
	flags.StringVarP(&rf.input, "input", "i", "-", `event source, "-" for stdin`)
	flags.StringVarP(&rf.output, "output", "o", "-", `event sink, "-" for stdout`)
	flags.IntVar(&rf.batchSize, "batch-size", config.DefaultBatchSize, "events per evaluation batch")
	flags.DurationVar(&rf.batchTimeout, "batch-timeout", 0, "deadline per batch, 0 for none")
	flags.StringVar(&rf.dropStore, "drop-store", config.DefaultDropStore, "dropped-event store, memory or sqlite")
	flags.StringVar(&rf.dropPath, "drop-path", config.DefaultDropPath, "database path for the sqlite drop store")
	flags.IntVar(&rf.dropLimit, "drop-limit", 0, "memory drop store cap, 0 for the default")
	flags.BoolVar(&rf.metrics, "metrics", false, "record OpenTelemetry metrics")

	return cmd
}

// settings merges the config file, the positional program argument, and
// explicit flags, in that order of increasing precedence.
func (rf *runFlags) settings(cmd *cobra.Command, args []string) (config.Runner, error) {
	settings := config.Runner{
		BatchSize: config.DefaultBatchSize,
		DropStore: config.DefaultDropStore,
		DropPath:  config.DefaultDropPath,
	}
	if rf.configPath != "" {
		loaded, err := config.RunnerFromFile(rf.configPath)
		if err != nil {
			return config.Runner{}, err
		}
		settings = loaded
	}
	if len(args) == 1 {
		settings.Program = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("batch-size") {
		settings.BatchSize = rf.batchSize
	}
	if flags.Changed("batch-timeout") {
		settings.BatchTimeout = rf.batchTimeout
	}
	if flags.Changed("drop-store") {
		settings.DropStore = rf.dropStore
	}
	if flags.Changed("drop-path") {
		settings.DropPath = rf.dropPath
	}
	if flags.Changed("drop-limit") {
		settings.DropLimit = rf.dropLimit
	}
	if flags.Changed("metrics") {
		settings.Metrics = rf.metrics
	}

	if settings.Program == "" {
		return config.Runner{}, errors.New("no program: pass one as an argument or set program in --config")
	}
	if err := settings.Validate(); err != nil {
		return config.Runner{}, err
	}
	return settings, nil
}

func runPipeline(cmd *cobra.Command, opts *rootOptions, settings config.Runner, input, output string) error {
	ctx := cmd.Context()
	logger := opts.logger(cmd.ErrOrStderr())

	recorder := observability.MetricsRecorder(observability.NoopMetrics{})
	if settings.Metrics {
		recorder = observability.NewMetricsRecorder()
	}

	name := programName(settings.Program)
	src, err := os.ReadFile(settings.Program)
	if err != nil {
		return fmt.Errorf("read program: %w", err)
	}
	program, diags := remap.Compile(src)
	if len(diags) > 0 {
		if err := diag.Render(cmd.ErrOrStderr(), settings.Program, string(src), diags); err != nil {
			return err
		}
	}
	if diags.HasErrors() {
		recorder.RecordCompile(ctx, false)
		return fmt.Errorf("%s failed to compile", settings.Program)
	}
	recorder.RecordCompile(ctx, true)
	observability.LogCompile(logger, name, len(program.Variables()), len(diags))

	drops, err := openDropStore(settings)
	if err != nil {
		return err
	}
	defer drops.Close()

	logger = observability.EnrichLogger(logger, name, settings.BatchSize)
	runner, err := runtime.NewRunner(program,
		runtime.WithName(name),
		runtime.WithLogger(logger),
		runtime.WithMetrics(recorder),
		runtime.WithSpans(observability.NewSpanManager()),
		runtime.WithDropStore(drops),
	)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	out := cmd.OutOrStdout()
	var outFile *os.File
	if output != "-" {
		outFile, err = os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		out = outFile
	}

	stats, streamErr := stream(ctx, runner, in, out, settings, logger)
	if outFile != nil {
		if err := outFile.Close(); streamErr == nil && err != nil {
			streamErr = fmt.Errorf("close output: %w", err)
		}
	}

	logger.Info("stream complete",
		slog.Int("events_read", stats.read),
		slog.Int("events_written", stats.written),
		slog.Int("events_dropped", stats.dropped),
		slog.Int("malformed_lines", stats.malformed),
	)
	return streamErr
}

// programName derives the log and span name from the program path.
func programName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// openDropStore builds the store named by the settings.
func openDropStore(settings config.Runner) (drop.Store, error) {
	if settings.DropStore == "sqlite" {
		s, err := drop.NewSQLiteStore(settings.DropPath)
		if err != nil {
			return nil, fmt.Errorf("open drop store: %w", err)
		}
		return s, nil
	}
	return drop.NewMemoryStore(settings.DropLimit), nil
}

// streamStats counts stream outcomes for the completion log line.
type streamStats struct {
	read      int
	written   int
	dropped   int
	malformed int
}

// stream decodes events, evaluates them in batches, and encodes the
// survivors. Undecodable lines are skipped; any other failure aborts.
func stream(ctx context.Context, runner *runtime.Runner, in io.Reader, out io.Writer, settings config.Runner, logger *slog.Logger) (streamStats, error) {
	var stats streamStats
	dec := event.NewDecoder(in)
	enc := event.NewEncoder(out)
	batch := make([]*event.Event, 0, settings.BatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		batchCtx := ctx
		var cancel context.CancelFunc
		if settings.BatchTimeout > 0 {
			batchCtx, cancel = context.WithTimeout(ctx, settings.BatchTimeout)
		}
		survivors, err := runner.ProcessBatch(batchCtx, batch)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			return err
		}
		for _, evt := range survivors {
			if err := enc.Encode(evt); err != nil {
				return fmt.Errorf("write event: %w", err)
			}
		}
		stats.read += len(batch)
		stats.written += len(survivors)
		stats.dropped += len(batch) - len(survivors)
		batch = batch[:0]
		return nil
	}

	for {
		evt, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var lineErr *event.LineError
			if errors.As(err, &lineErr) {
				stats.malformed++
				logger.Warn("skipping malformed line",
					slog.Int("line", lineErr.Line),
					slog.String("error", lineErr.Err.Error()),
				)
				continue
			}
			return stats, fmt.Errorf("read events: %w", err)
		}
		batch = append(batch, evt)
		if len(batch) == settings.BatchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	return stats, flush()
}
