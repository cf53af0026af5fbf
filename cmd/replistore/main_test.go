package main

import (
	"bytes"
	"strings"
	"testing"
)

// runCommand executes the root command with args and captures its
// combined output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := newRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "replistore") {
		t.Errorf("version output = %q", out)
	}
}

func TestUnknownStorePath(t *testing.T) {
	if _, err := runCommand(t, "status", "--store", "/no/such/store"); err == nil {
		t.Error("status on a missing store path should fail")
	}
}
