package main

import (
	"strings"
	"testing"

	"github.com/WANdisco/replistore/pkg/object"
	"github.com/WANdisco/replistore/pkg/storage"
)

func TestReceiveCmdAppliesOnce(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("delivered object")
	file := writeTempFile(t, "delivery.bin", payload)
	id := object.Sum(payload)

	out, err := runCommand(t, "receive", "--store", dir, string(id), file)
	if err != nil {
		t.Fatalf("receive: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(out, "applied "+string(id)) {
		t.Errorf("receive output = %q", out)
	}
	if !storage.NewContentStore(dir).Has(id) {
		t.Error("delivered object missing from store")
	}

	// The applied window is persisted, so a replayed delivery is
	// skipped even by a fresh process.
	again, err := runCommand(t, "receive", "--store", dir, string(id), file)
	if err != nil {
		t.Fatalf("second receive: %v\noutput:\n%s", err, again)
	}
	if !strings.Contains(again, "already applied "+string(id)) {
		t.Errorf("second receive output = %q", again)
	}
}

func TestReceiveCmdRejectsCorruptDelivery(t *testing.T) {
	dir := t.TempDir()
	declared := object.Sum([]byte("what the replicator promised"))
	file := writeTempFile(t, "delivery.bin", []byte("something else entirely"))

	if _, err := runCommand(t, "receive", "--store", dir, string(declared), file); err == nil {
		t.Fatal("receive of corrupt content should fail")
	}
	if storage.NewContentStore(dir).Has(declared) {
		t.Error("corrupt delivery became visible in the store")
	}

	// A failed delivery is not recorded, so the fixed delivery applies.
	good := writeTempFile(t, "fixed.bin", []byte("what the replicator promised"))
	out, err := runCommand(t, "receive", "--store", dir, string(declared), good)
	if err != nil {
		t.Fatalf("retried receive: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(out, "applied "+string(declared)) {
		t.Errorf("retried receive output = %q", out)
	}
}
