package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// rootOptions holds global flags shared by all subcommands.
type rootOptions struct {
	verbose bool
}

// logger builds the CLI logger writing to w. Logs go to stderr so
// transformed events on stdout stay machine-readable.
func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newRootCommand creates the root command for the remap CLI.
func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "remap",
		Short: "Typed transforms for structured event streams",
		Long: `remap compiles small typed programs and runs them over event records.

A program is a YAML or JSON document declaring its variables and one
expression. check reports compile diagnostics, run streams NDJSON
events through a program, and repl evaluates events interactively.`,
		SilenceUsage: true, // Don't print usage on runtime errors
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newCheckCommand(opts))
	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newReplCommand(opts))

	return cmd
}
