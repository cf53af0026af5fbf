// Package storage implements the on-disk side of the replicated object
// store: a fan-out content-addressed blob store with hash-verified atomic
// writes, and a change guard that spares callers from re-enumerating a
// pack directory that did not change.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/glog"

	"github.com/WANdisco/replistore/pkg/object"
)

// ErrObjectNotFound reports a lookup of an object the store does not hold.
var ErrObjectNotFound = errors.New("object not found")

// CorruptObjectError reports content whose digest does not match the id it
// was stored under.
type CorruptObjectError struct {
	ID     object.ID // declared id
	Actual object.ID // digest of the bytes received
}

func (e *CorruptObjectError) Error() string {
	return fmt.Sprintf("corrupt object %s: content hashes to %s", e.ID.Short(), e.Actual.Short())
}

// ContentStore is a content-addressed blob store with a two-level fan-out
// layout: <root>/ab/cd/<hex>. Writes are staged to a temp file while their
// digest is computed and only renamed into place when the digest matches
// the declared id, so a torn or corrupted transfer never becomes visible
// under a valid name.
type ContentStore struct {
	root string
}

// NewContentStore returns a store rooted at dir. Fan-out directories are
// created lazily on first write.
func NewContentStore(dir string) *ContentStore {
	return &ContentStore{root: dir}
}

// Root returns the store's base directory.
func (s *ContentStore) Root() string { return s.root }

// Path returns the filesystem location the content for id lives at.
func (s *ContentStore) Path(id object.ID) string {
	return filepath.Join(s.root, string(id[0:2]), string(id[2:4]), string(id))
}

// PackDirectory returns a change guard over the store's pack directory.
func (s *ContentStore) PackDirectory(trustStat bool) *PackDirectory {
	return NewPackDirectory(filepath.Join(s.root, "pack"), trustStat)
}

// Has reports whether the store holds content for id.
func (s *ContentStore) Has(id object.ID) bool {
	_, err := os.Stat(s.Path(id))
	return err == nil
}

// Size returns the byte length of the content stored for id.
func (s *ContentStore) Size(id object.ID) (int64, error) {
	fi, err := os.Stat(s.Path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("size %s: %w", id.Short(), ErrObjectNotFound)
		}
		return 0, fmt.Errorf("size %s: %w", id.Short(), err)
	}
	return fi.Size(), nil
}

// Open returns a reader over the content stored for id.
func (s *ContentStore) Open(id object.ID) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", id.Short(), ErrObjectNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", id.Short(), err)
	}
	return f, nil
}

// Put streams r into the store as the content of id. The content is
// digested and verified even when id is already present, and the write
// stays invisible until it passes verification.
func (s *ContentStore) Put(id object.ID, r io.Reader) error {
	w, err := s.NewWriter(id)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Abort()
		return fmt.Errorf("put %s: %w", id.Short(), err)
	}
	return w.Commit()
}

// Remove deletes the stored content for id. Removing an absent object is
// not an error.
func (s *ContentStore) Remove(id object.ID) error {
	err := os.Remove(s.Path(id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", id.Short(), err)
	}
	return nil
}

// AtomicWriter stages the content for one object id. Bytes are digested as
// they arrive; Commit publishes the staged file only when the digest
// matches the declared id.
type AtomicWriter struct {
	id     object.ID
	tmp    *os.File
	digest hash.Hash
	dest   string
	done   bool
}

// NewWriter stages a write of the content for id.
func (s *ContentStore) NewWriter(id object.ID) (*AtomicWriter, error) {
	dest := s.Path(id)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("stage %s: mkdir: %w", id.Short(), err)
	}
	tmp, err := os.CreateTemp(s.root, ".stage-*")
	if err != nil {
		return nil, fmt.Errorf("stage %s: tmpfile: %w", id.Short(), err)
	}
	return &AtomicWriter{id: id, tmp: tmp, digest: sha256.New(), dest: dest}, nil
}

// Write digests and stages p.
func (w *AtomicWriter) Write(p []byte) (int, error) {
	if w.done {
		return 0, fmt.Errorf("stage %s: write after commit or abort", w.id.Short())
	}
	n, err := w.tmp.Write(p)
	w.digest.Write(p[:n])
	return n, err
}

// Commit verifies the staged content and renames it into place. A digest
// mismatch discards the staged file and reports a *CorruptObjectError.
// Committing content that is already present succeeds; the rename simply
// replaces one byte-identical file with another.
func (w *AtomicWriter) Commit() error {
	if w.done {
		return fmt.Errorf("commit %s: already finished", w.id.Short())
	}
	w.done = true

	name := w.tmp.Name()
	if err := w.tmp.Sync(); err != nil {
		w.tmp.Close()
		os.Remove(name)
		return fmt.Errorf("commit %s: sync: %w", w.id.Short(), err)
	}
	if err := w.tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("commit %s: close: %w", w.id.Short(), err)
	}

	actual := object.ID(hex.EncodeToString(w.digest.Sum(nil)))
	if actual != w.id {
		os.Remove(name)
		glog.Errorf("rejecting corrupt object: declared %s, received %s", w.id.Short(), actual.Short())
		return &CorruptObjectError{ID: w.id, Actual: actual}
	}

	if err := os.Rename(name, w.dest); err != nil {
		os.Remove(name)
		return fmt.Errorf("commit %s: rename: %w", w.id.Short(), err)
	}
	return nil
}

// Abort discards the staged content. Abort after Commit is a no-op.
func (w *AtomicWriter) Abort() {
	if w.done {
		return
	}
	w.done = true
	name := w.tmp.Name()
	w.tmp.Close()
	os.Remove(name)
}
