package main

import (
	"errors"
	"testing"
)

func TestParseSteps(t *testing.T) {
	t.Parallel()

	if got, err := parseSteps(nil); err != nil || got != 1 {
		t.Fatalf("default steps: got %d, %v", got, err)
	}
	if got, err := parseSteps([]string{" 3 "}); err != nil || got != 3 {
		t.Fatalf("explicit steps: got %d, %v", got, err)
	}
	for _, bad := range []string{"0", "-2", "x"} {
		if _, err := parseSteps([]string{bad}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseVersion(t *testing.T) {
	t.Parallel()

	if got, err := parseVersion("-1"); err != nil || got != -1 {
		t.Fatalf("nil version: got %d, %v", got, err)
	}
	if _, err := parseVersion("-5"); err == nil {
		t.Fatalf("expected error below -1")
	}
	if _, err := parseTarget("abc"); err == nil {
		t.Fatalf("expected error for non-numeric target")
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	t.Parallel()

	if err := run("sideways", nil); !errors.Is(err, errUsage) {
		t.Fatalf("got %v, want usage error", err)
	}
}
