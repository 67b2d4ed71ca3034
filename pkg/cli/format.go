// Package cli provides shared formatting helpers for the cfgnet CLI.
package cli

import (
	"os"
	"strings"
)

// colorEnabled starts false when NO_COLOR is set (see no-color.org).
var colorEnabled = os.Getenv("NO_COLOR") == ""

// SetColor turns ANSI colour on or off for every helper in this package.
func SetColor(enabled bool) {
	colorEnabled = enabled
}

func paint(code, s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// Green marks success.
func Green(s string) string { return paint("32", s) }

// Yellow highlights commands in examples.
func Yellow(s string) string { return paint("33", s) }

// Red marks failures and remote stderr.
func Red(s string) string { return paint("31", s) }

// Dim de-emphasises placeholders and comments.
func Dim(s string) string { return paint("2", s) }

// DotPad pads name with dots to the given width.
// Example: DotPad("root@10.0.0.5:22", 24) → "root@10.0.0.5:22 ......."
func DotPad(name string, width int) string {
	if width <= 0 || len(name) >= width-1 {
		return name
	}
	dots := width - len(name) - 1
	return name + " " + strings.Repeat(".", dots)
}

// Status renders a pass/fail word in colour.
func Status(ok bool) string {
	if ok {
		return Green("OK")
	}
	return Red("FAILED")
}

// Indent prefixes every non-empty line of s with prefix. Trailing newlines
// are dropped.
func Indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
