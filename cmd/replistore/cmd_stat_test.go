package main

import (
	"strings"
	"testing"

	"github.com/WANdisco/replistore/pkg/object"
)

func TestStatCmdKnownObject(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("seven b")
	file := writeTempFile(t, "blob.bin", payload)
	id := object.Sum(payload)

	if out, err := runCommand(t, "put", "--store", dir, file); err != nil {
		t.Fatalf("put: %v\noutput:\n%s", err, out)
	}

	out, err := runCommand(t, "stat", "--store", dir, string(id))
	if err != nil {
		t.Fatalf("stat: %v\noutput:\n%s", err, out)
	}
	for _, want := range []string{
		"object: " + string(id),
		"size: 7 B (7 bytes)",
		"replicated: true",
		"download: ",
		"path: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stat output missing %q:\n%s", want, out)
		}
	}
}

func TestStatCmdUnknownObject(t *testing.T) {
	dir := t.TempDir()
	id := object.Sum([]byte("never stored"))

	out, err := runCommand(t, "stat", "--store", dir, string(id))
	if err != nil {
		t.Fatalf("stat: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(out, "size: unknown") {
		t.Errorf("stat output missing unknown size:\n%s", out)
	}
	if !strings.Contains(out, "replicated: false") {
		t.Errorf("stat output missing replication answer:\n%s", out)
	}
}
