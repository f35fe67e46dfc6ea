package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/remap/pkg/remap"
	"github.com/randalmurphal/remap/pkg/remap/diag"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

const (
	replPrompt  = "remap> "
	historyFile = ".remap_history"
	replHelp    = `An input line is one event's fields as a JSON object, e.g. {"count": 150}.

Commands:
  :help      show this help
  :program   print the compiled expression
  :type      print the result type
  :vars      list declared variables
  :quit      exit (also Ctrl+D)
`
)

// newReplCommand creates the repl command.
func newReplCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl <program>",
		Short: "Evaluate a program against events typed as JSON",
		Long: `repl compiles a program and evaluates it against events entered one per
line as JSON objects. Use :help inside the session for commands.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd, args[0])
		},
	}
}

func runRepl(cmd *cobra.Command, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read program: %w", err)
	}
	program, diags := remap.Compile(src)
	if len(diags) > 0 {
		if err := diag.Render(cmd.ErrOrStderr(), path, string(src), diags); err != nil {
			return err
		}
	}
	if diags.HasErrors() {
		return fmt.Errorf("%s failed to compile", path)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s compiled, result %s. Type :help for commands, Ctrl+D to exit.\n", path, program.TypeDef())

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath()
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		line, err := ln.Prompt(replPrompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			break
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl+C clears the current input, not the session.
			continue
		}
		if err != nil {
			return err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		ln.AppendHistory(input)

		if strings.HasPrefix(input, ":") {
			if replCommand(out, program, input) {
				break
			}
			continue
		}

		evalLine(out, program, input)
	}

	// Persist history, best effort.
	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return nil
}

// historyPath returns the per-user REPL history file.
func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}

// replCommand handles a ':' command. Returns true to end the session.
func replCommand(out io.Writer, program *remap.Program, input string) bool {
	switch strings.Fields(input)[0] {
	case ":help":
		fmt.Fprint(out, replHelp)
	case ":quit", ":exit":
		return true
	case ":program":
		fmt.Fprintln(out, program)
	case ":type":
		fmt.Fprintln(out, program.TypeDef())
	case ":vars":
		for _, ident := range program.Variables() {
			def, _ := program.VariableType(ident)
			if c, ok := program.Constant(ident); ok {
				fmt.Fprintf(out, "  %s %s = %s\n", ident, def, c)
			} else {
				fmt.Fprintf(out, "  %s %s\n", ident, def)
			}
		}
	default:
		fmt.Fprintln(out, "unknown command, :help lists them")
	}
	return false
}

// evalLine decodes one JSON event and prints the program's result.
func evalLine(out io.Writer, program *remap.Program, input string) {
	decoded, err := value.FromJSON([]byte(input))
	if err != nil {
		fmt.Fprintf(out, "input: %v\n", err)
		return
	}
	fields, ok := decoded.(value.Object)
	if !ok {
		fmt.Fprintln(out, "input: an event is a JSON object of fields")
		return
	}

	result, err := program.Resolve(fields)
	if err != nil {
		fmt.Fprintf(out, "fault: %v\n", err)
		return
	}
	fmt.Fprintln(out, result)
}
