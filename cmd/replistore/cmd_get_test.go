package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/WANdisco/replistore/pkg/object"
)

func TestGetCmdWritesObject(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("round trip payload")
	file := writeTempFile(t, "blob.bin", payload)
	id := object.Sum(payload)

	if out, err := runCommand(t, "put", "--store", dir, file); err != nil {
		t.Fatalf("put: %v\noutput:\n%s", err, out)
	}

	out, err := runCommand(t, "get", "--store", dir, string(id))
	if err != nil {
		t.Fatalf("get: %v\noutput:\n%s", err, out)
	}
	if out != string(payload) {
		t.Errorf("get output = %q, want %q", out, payload)
	}
}

func TestGetCmdOutputFile(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("file destination")
	file := writeTempFile(t, "blob.bin", payload)
	id := object.Sum(payload)

	if out, err := runCommand(t, "put", "--store", dir, file); err != nil {
		t.Fatalf("put: %v\noutput:\n%s", err, out)
	}

	dest := filepath.Join(t.TempDir(), "restored.bin")
	if out, err := runCommand(t, "get", "--store", dir, string(id), "-o", dest); err != nil {
		t.Fatalf("get: %v\noutput:\n%s", err, out)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("restored content = %q, want %q", got, payload)
	}
}

func TestGetCmdMissingObject(t *testing.T) {
	dir := t.TempDir()
	id := object.Sum([]byte("never stored"))
	if _, err := runCommand(t, "get", "--store", dir, string(id)); err == nil {
		t.Error("get of a missing object should fail")
	}
}

func TestGetCmdRejectsBadID(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCommand(t, "get", "--store", dir, "not-an-id"); err == nil {
		t.Error("get with a malformed id should fail")
	}
}
