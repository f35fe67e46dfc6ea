package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	gutterColor  = color.New(color.FgBlue)
	primaryColor = color.New(color.FgRed)
	contextColor = color.New(color.FgBlue)
)

// Render writes a readable report for each diagnostic against the source it
// was produced from. file is the display name for the source, typically its
// path. Output follows the compiler convention of a header line, a location
// line, and the offending source lines with markers:
//
//	error[E701]: call to undefined variable
//	  --> program.yaml:6:15
//	  |
//	6 |   expr: {var: foo}
//	  |               ^^^ undefined variable
//	  |               --- did you mean "food"?
//
// Colors are controlled by the color package; set color.NoColor to disable.
func Render(w io.Writer, file, src string, diags List) error {
	lines := strings.Split(src, "\n")
	for i, d := range diags {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := renderOne(w, file, lines, d); err != nil {
			return err
		}
	}
	return nil
}

func renderOne(w io.Writer, file string, lines []string, d *Diagnostic) error {
	sev := errorColor
	if d.Severity == SeverityWarning {
		sev = warningColor
	}

	header := sev.Sprintf("%s[E%03d]", d.Severity, d.Code)
	if _, err := fmt.Fprintf(w, "%s: %s\n", header, d.Message); err != nil {
		return err
	}

	span := d.Span()
	if span.IsZero() {
		return renderNotes(w, 0, d.Notes)
	}

	// Gutter sized for the widest line number among the labels.
	width := 0
	for _, l := range d.Labels {
		if n := len(fmt.Sprint(l.Span.Start.Line)); n > width {
			width = n
		}
	}

	if _, err := fmt.Fprintf(w, "%s %s %s:%d:%d\n",
		strings.Repeat(" ", width), gutterColor.Sprint("-->"),
		file, span.Start.Line, span.Start.Column); err != nil {
		return err
	}
	if err := gutterLine(w, width); err != nil {
		return err
	}

	lastLine := 0
	for _, l := range d.Labels {
		line := l.Span.Start.Line
		if line < 1 || line > len(lines) {
			continue
		}
		if line != lastLine {
			if _, err := fmt.Fprintf(w, "%s %s\n",
				gutterColor.Sprintf("%*d |", width, line), lines[line-1]); err != nil {
				return err
			}
			lastLine = line
		}
		if err := markerLine(w, width, lines[line-1], l); err != nil {
			return err
		}
	}

	return renderNotes(w, width, d.Notes)
}

// markerLine writes the caret or dash markers under one label's span.
func markerLine(w io.Writer, width int, srcLine string, l Label) error {
	start := l.Span.Start.Column
	if start < 1 {
		start = 1
	}
	end := l.Span.End.Column
	if l.Span.End.Line != l.Span.Start.Line || end < start {
		end = len(srcLine) + 1
	}
	n := end - start
	if n < 1 {
		n = 1
	}

	marker, paint := "^", primaryColor
	if !l.Primary {
		marker, paint = "-", contextColor
	}

	_, err := fmt.Fprintf(w, "%s %s%s %s\n",
		gutterColor.Sprintf("%s |", strings.Repeat(" ", width)),
		strings.Repeat(" ", start-1),
		paint.Sprint(strings.Repeat(marker, n)),
		paint.Sprint(l.Message))
	return err
}

func gutterLine(w io.Writer, width int) error {
	_, err := fmt.Fprintf(w, "%s\n", gutterColor.Sprintf("%s |", strings.Repeat(" ", width)))
	return err
}

func renderNotes(w io.Writer, width int, notes []string) error {
	for _, note := range notes {
		if _, err := fmt.Fprintf(w, "%s %s %s\n",
			strings.Repeat(" ", width), gutterColor.Sprint("="), note); err != nil {
			return err
		}
	}
	return nil
}
