package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/remap/pkg/remap"
	"github.com/randalmurphal/remap/pkg/remap/diag"
)

// newCheckCommand creates the check command.
func newCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <program>",
		Short: "Compile a program and report its diagnostics",
		Long: `check compiles a program document and prints every diagnostic with its
source context. On success it prints the result type and the declared
variables.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0])
		},
	}
}

func runCheck(cmd *cobra.Command, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read program: %w", err)
	}

	out := cmd.OutOrStdout()
	program, diags := remap.Compile(src)
	if len(diags) > 0 {
		if err := diag.Render(out, path, string(src), diags); err != nil {
			return err
		}
	}
	if diags.HasErrors() {
		errs := 0
		for _, d := range diags {
			if d.Severity == diag.SeverityError {
				errs++
			}
		}
		return fmt.Errorf("%s: %d error(s)", path, errs)
	}

	fmt.Fprintf(out, "%s: ok\n", path)
	fmt.Fprintf(out, "  result %s\n", program.TypeDef())
	for _, ident := range program.Variables() {
		def, _ := program.VariableType(ident)
		if c, ok := program.Constant(ident); ok {
			fmt.Fprintf(out, "  var %s %s = %s\n", ident, def, c)
		} else {
			fmt.Fprintf(out, "  var %s %s\n", ident, def)
		}
	}
	return nil
}
