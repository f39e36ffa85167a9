package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "fb dev") {
		t.Errorf("expected output to contain 'fb dev', got: %s", out)
	}
	if !strings.Contains(out, "commit: none") {
		t.Errorf("expected output to contain 'commit: none', got: %s", out)
	}
}

func TestVersionCmdWithCustomValues(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	Version, Commit, Date = "1.0.0", "abc123", "2026-01-01"
	defer func() { Version, Commit, Date = origVersion, origCommit, origDate }()

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "fb 1.0.0") {
		t.Errorf("expected output to contain 'fb 1.0.0', got: %s", out)
	}
	if !strings.Contains(out, "built: 2026-01-01") {
		t.Errorf("expected output to contain 'built: 2026-01-01', got: %s", out)
	}
}

func TestRootCmdHelp(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("help command failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Flowboard") {
		t.Errorf("expected help output to contain 'Flowboard', got: %s", out)
	}
	for _, sub := range []string{"version", "serve", "project", "board", "issue", "sprint", "rule", "time", "notify", "activity"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected help output to list %q subcommand, got: %s", sub, out)
		}
	}
}

func TestRootCmdNoArgs(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	// Root command with no args should print help (not error)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("root command with no args failed: %v", err)
	}
}

func TestExecuteError(t *testing.T) {
	cmd := &cobra.Command{
		Use:           "failing",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("intentional error")
		},
	}
	code := execute(cmd)
	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestNewVersionCmdOutput(t *testing.T) {
	cmd := newVersionCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)

	cmd.Run(cmd, nil)

	out := buf.String()
	expected := "fb dev (commit: none, built: unknown)\n"
	if out != expected {
		t.Errorf("expected %q, got %q", expected, out)
	}
}

func TestActorFrom(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--actor", "u-cli"}); err != nil {
		t.Fatalf("set actor flag: %v", err)
	}
	actor, err := actorFrom(cmd)
	if err != nil {
		t.Fatalf("actorFrom failed: %v", err)
	}
	if actor != "u-cli" {
		t.Errorf("expected actor 'u-cli', got %q", actor)
	}
}

func TestActorFromMissing(t *testing.T) {
	cmd := &cobra.Command{Use: "bare"}
	cmd.Flags().String("actor", "", "")
	_, err := actorFrom(cmd)
	if err == nil || !strings.Contains(err.Error(), "FB_ACTOR") {
		t.Errorf("expected missing-actor error mentioning FB_ACTOR, got %v", err)
	}
}

func TestParseDateFlag(t *testing.T) {
	d, err := parseDateFlag("2026-09-14", "start")
	if err != nil {
		t.Fatalf("parseDateFlag failed: %v", err)
	}
	if d == nil || d.Format("2006-01-02") != "2026-09-14" {
		t.Errorf("expected 2026-09-14, got %v", d)
	}

	d, err = parseDateFlag("", "start")
	if err != nil || d != nil {
		t.Errorf("expected nil date for empty value, got %v, %v", d, err)
	}

	if _, err := parseDateFlag("14/09/2026", "start"); err == nil || !strings.Contains(err.Error(), "start") {
		t.Errorf("expected format error naming the flag, got %v", err)
	}
}
