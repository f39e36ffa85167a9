package main

import (
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// terminalWidth returns the current terminal width, or a conservative
// default when stdout is not a terminal (pipes, CI).
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 120
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w < 40 {
		return 120
	}
	return w
}

// truncate shortens s to at most max runes, appending an ellipsis.
func truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// titleWidth is how many columns of the terminal a title cell may take.
func titleWidth() int {
	w := terminalWidth() / 2
	if w < 20 {
		w = 20
	}
	return w
}

// formatDate renders a date cell, blank for nil.
func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

// formatStrPtr renders an optional string cell.
func formatStrPtr(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// joinOrDash renders a list cell.
func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ",")
}
