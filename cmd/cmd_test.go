package cmd

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

// captureStdout runs fn and returns what it printed.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()
	_ = w.Close()

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func TestRunVersion(t *testing.T) {
	origVersion, origBuildTime, origCommit := Version, BuildTime, GitCommit
	defer func() {
		Version, BuildTime, GitCommit = origVersion, origBuildTime, origCommit
	}()

	Version = "1.2.3"
	BuildTime = "2026-01-02T00:00:00Z"
	GitCommit = "abc123"

	out := captureStdout(t, runVersion)

	for _, want := range []string{
		"Scout 1.2.3",
		"Build Time: 2026-01-02T00:00:00Z",
		"Git Commit: abc123",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("version output missing %q:\n%s", want, out)
		}
	}
}

func TestRunHelp(t *testing.T) {
	out := captureStdout(t, runHelp)

	for _, want := range []string{"serve", "--version", "--help"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	os.Args = []string{"scout", "frobnicate"}
	if err := Execute(); err == nil {
		t.Error("Execute() with unknown command: error = nil, want error")
	}
}

func TestExecuteVersion(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	os.Args = []string{"scout", "version"}
	out := captureStdout(t, func() {
		if err := Execute(); err != nil {
			t.Errorf("Execute() error = %v", err)
		}
	})
	if !strings.Contains(out, "Scout") {
		t.Errorf("version output missing product name:\n%s", out)
	}
}

func TestExecuteNoArgsShowsHelp(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	os.Args = []string{"scout"}
	out := captureStdout(t, func() {
		if err := Execute(); err != nil {
			t.Errorf("Execute() error = %v", err)
		}
	})
	if !strings.Contains(out, "Usage:") {
		t.Errorf("expected help output, got:\n%s", out)
	}
}
