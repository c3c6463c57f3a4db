// Package cli provides status output for the command-line tools.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

// Success prints a success line to w.
func Success(w io.Writer, message string) {
	line(w, ColorGreen, "✓", message)
}

// Error prints an error line to w.
func Error(w io.Writer, message string) {
	line(w, ColorRed, "✗", message)
}

// Warning prints a warning line to w.
func Warning(w io.Writer, message string) {
	line(w, ColorYellow, "⚠", message)
}

// Info prints an informational line to w.
func Info(w io.Writer, message string) {
	line(w, ColorBlue, "ℹ", message)
}

func line(w io.Writer, color, symbol, message string) {
	if isTerminal(w) {
		fmt.Fprintf(w, "%s%s%s %s\n", color, symbol, ColorReset, message)
		return
	}
	fmt.Fprintf(w, "%s %s\n", symbol, message)
}

// isTerminal reports whether w is a character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// FormatDuration renders d for humans.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "< 1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
