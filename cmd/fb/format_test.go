package main

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"short", 20, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a much longer title that overflows", 12, "a much lo..."},
		{"snug", 4, "snug"},
		{"tight fit", 2, "t..."}, // clamped to a floor of 4
		{"", 10, ""},
		{"héllo wörld ünïcode", 10, "héllo w..."},
	}

	for _, tt := range tests {
		got := truncate(tt.input, tt.max)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := formatDate(nil); got != "-" {
		t.Errorf("formatDate(nil) = %q, want -", got)
	}
	d := time.Date(2026, 9, 14, 13, 45, 0, 0, time.UTC)
	if got := formatDate(&d); got != "2026-09-14" {
		t.Errorf("formatDate = %q, want 2026-09-14", got)
	}
}

func TestFormatStrPtr(t *testing.T) {
	if got := formatStrPtr(nil); got != "-" {
		t.Errorf("formatStrPtr(nil) = %q, want -", got)
	}
	empty := ""
	if got := formatStrPtr(&empty); got != "-" {
		t.Errorf("formatStrPtr(empty) = %q, want -", got)
	}
	v := "u-alice"
	if got := formatStrPtr(&v); got != "u-alice" {
		t.Errorf("formatStrPtr = %q, want u-alice", got)
	}
}

func TestJoinOrDash(t *testing.T) {
	if got := joinOrDash(nil); got != "-" {
		t.Errorf("joinOrDash(nil) = %q, want -", got)
	}
	if got := joinOrDash([]string{"bug", "needs-qa"}); got != "bug,needs-qa" {
		t.Errorf("joinOrDash = %q", got)
	}
}

func TestTitleWidthFloor(t *testing.T) {
	// Not a terminal under test, so the width comes from the 120 default.
	if got := titleWidth(); got < 20 {
		t.Errorf("titleWidth = %d, want at least 20", got)
	}
}
