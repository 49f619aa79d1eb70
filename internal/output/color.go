package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/bimmerbailey/recase/internal/preserve"
)

// ANSI color codes
const (
	colorReset     = "\033[0m"
	colorRed       = "\033[31m"
	colorYellow    = "\033[33m"
	colorCyan      = "\033[36m"
	colorGray      = "\033[90m"
	colorBold      = "\033[1m"
	colorUnderline = "\033[4m"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // Auto-detect based on TTY
	ColorAlways                  // Always use colors
	ColorNever                   // Never use colors
)

// ParseColorMode converts "auto", "always" or "never" to a ColorMode,
// defaulting to auto.
func ParseColorMode(s string) ColorMode {
	switch strings.ToLower(s) {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ShouldColorize determines if output to w should be colorized based on
// mode and TTY detection.
func ShouldColorize(mode ColorMode, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	case ColorAuto:
		if f, ok := w.(*os.File); ok {
			return isTerminal(f)
		}
		return false
	}
	return false
}

// colorizeCategory picks a color for a preserved span by its category.
func colorizeCategory(c preserve.Category, text string) string {
	switch c {
	case preserve.CategoryURL, preserve.CategoryEmail, preserve.CategoryFilePath:
		return colorUnderline + colorCyan + text + colorReset
	case preserve.CategoryCodeBlock, preserve.CategoryMarkdown:
		return colorGray + text + colorReset
	case preserve.CategoryBrand:
		return colorBold + text + colorReset
	default:
		return colorCyan + text + colorReset
	}
}

// Highlighter returns a render function for restored spans, or nil when
// colors are off. Pass it as pipeline.Request.Highlight.
func Highlighter(colorize bool) func(preserve.Span) string {
	if !colorize {
		return nil
	}
	return func(s preserve.Span) string {
		return colorizeCategory(s.Category, s.Original)
	}
}

// FormatWarning formats a single preservation warning with optional
// coloring.
func FormatWarning(w preserve.MissingPlaceholderWarning, colorize bool) string {
	line := "warning: " + w.String()
	if colorize {
		return colorYellow + line + colorReset
	}
	return line
}

// FormatError formats a failure line with optional coloring.
func FormatError(err error, colorize bool) string {
	line := "error: " + err.Error()
	if colorize {
		return colorBold + colorRed + line + colorReset
	}
	return line
}

// WriteWarnings writes one line per warning, colored according to mode.
func WriteWarnings(w io.Writer, warnings []preserve.MissingPlaceholderWarning, mode ColorMode) error {
	colorize := ShouldColorize(mode, w)
	for _, warn := range warnings {
		if _, err := fmt.Fprintln(w, FormatWarning(warn, colorize)); err != nil {
			return err
		}
	}
	return nil
}
