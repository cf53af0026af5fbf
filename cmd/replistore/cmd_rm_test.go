package main

import (
	"strings"
	"testing"

	"github.com/WANdisco/replistore/pkg/object"
	"github.com/WANdisco/replistore/pkg/storage"
)

func TestRmCmdRemovesObject(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("short lived")
	file := writeTempFile(t, "blob.bin", payload)
	id := object.Sum(payload)

	if out, err := runCommand(t, "put", "--store", dir, file); err != nil {
		t.Fatalf("put: %v\noutput:\n%s", err, out)
	}

	out, err := runCommand(t, "rm", "--store", dir, string(id))
	if err != nil {
		t.Fatalf("rm: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(out, "removed "+string(id)) {
		t.Errorf("rm output = %q", out)
	}
	if storage.NewContentStore(dir).Has(id) {
		t.Error("object still in store after rm")
	}
}

func TestRmCmdMissingObject(t *testing.T) {
	dir := t.TempDir()
	id := object.Sum([]byte("never stored"))
	if _, err := runCommand(t, "rm", "--store", dir, string(id)); err == nil {
		t.Error("rm of a missing object should fail")
	}
}
