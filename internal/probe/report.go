package probe

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var rule = strings.Repeat("=", 60)

// reporter writes the human-readable trace. Markers are coloured only when
// color decides the output is a terminal.
type reporter struct {
	w io.Writer
}

func (r reporter) mark(c color.Attribute, m, format string, args ...any) {
	fmt.Fprintln(r.w, color.New(c).Sprint(m), fmt.Sprintf(format, args...))
}

func (r reporter) ok(format string, args ...any)   { r.mark(color.FgGreen, "✔", format, args...) }
func (r reporter) fail(format string, args ...any) { r.mark(color.FgRed, "✖", format, args...) }
func (r reporter) warn(format string, args ...any) { r.mark(color.FgYellow, "⚠", format, args...) }
func (r reporter) info(format string, args ...any) { r.mark(color.FgCyan, "ℹ", format, args...) }
func (r reporter) step(format string, args ...any) { r.mark(color.FgBlue, "→", format, args...) }

func (r reporter) line(format string, args ...any) {
	fmt.Fprintf(r.w, format+"\n", args...)
}

func (r reporter) blank() { fmt.Fprintln(r.w) }

// banner prints a headline between two rules.
func (r reporter) banner(print func()) {
	fmt.Fprintln(r.w, rule)
	print()
	fmt.Fprintln(r.w, rule)
}
