package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/WANdisco/replistore/pkg/lfs"
	"github.com/WANdisco/replistore/pkg/storage"
)

// openStore resolves the --store flag to an existing directory.
func openStore(path string) (*storage.ContentStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve store path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("no object store at %s", abs)
	}
	return storage.NewContentStore(abs), nil
}

// openRepository opens the repository facade for the store, named
// after the store directory.
func openRepository(path string) (*lfs.FileRepository, error) {
	store, err := openStore(path)
	if err != nil {
		return nil, err
	}
	return lfs.Open(filepath.Base(store.Root()), store)
}
