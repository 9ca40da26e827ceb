package core

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ColorMode selects when diagnostics are colored.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode parses the WHEN argument of --color. An empty value means
// always, matching ls and grep.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "always", "yes", "force":
		return ColorAlways, nil
	case "auto", "tty", "if-tty":
		return ColorAuto, nil
	case "never", "no", "none":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("invalid argument '%s' for '--color'", s)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// ErrorPrefix returns the applet name used to prefix stderr lines, in bold
// red when mode allows it for s.Err.
func (s *Stdio) ErrorPrefix(applet string, mode ColorMode) string {
	c := color.New(color.FgRed, color.Bold)
	switch {
	case mode == ColorAlways:
		c.EnableColor()
	case mode == ColorAuto && os.Getenv("NO_COLOR") == "" && IsTerminal(s.Err):
		c.EnableColor()
	default:
		c.DisableColor()
	}
	return c.Sprint(applet)
}
