package storage

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/golang/glog"
)

// PackExt is the filename suffix of pack files.
const PackExt = ".pack"

// PackDirectory guards a directory of pack files against needless
// re-enumeration. SearchPacksAgain answers "could the pack set have
// changed since the last check?" from directory metadata alone, so callers
// walk the directory only when the answer is yes. Spurious rescans are
// acceptable; missing a real change is not.
//
// All methods are safe for concurrent use.
type PackDirectory struct {
	dir       string
	trustStat bool

	mu      sync.Mutex
	last    *dirStamp
	scanned bool
	packs   []string
}

// NewPackDirectory returns a guard over dir. With trustStat true, the
// normal mode, directory metadata gates rescans; with trustStat false
// every freshness check reports stale, for filesystems whose directory
// metadata cannot be trusted.
func NewPackDirectory(dir string, trustStat bool) *PackDirectory {
	return &PackDirectory{dir: dir, trustStat: trustStat}
}

// Dir returns the guarded directory.
func (p *PackDirectory) Dir() string { return p.dir }

// SearchPacksAgain reports whether the pack listing must be rebuilt. The
// first call, and any call observing a directory change, stores the fresh
// signature and returns true; a repeated call with no intervening change
// returns false. The signature comparison and update happen atomically, so
// of two racing callers across one change at least one observes true and
// two sequential callers never both do.
func (p *PackDirectory) SearchPacksAgain() bool {
	if !p.trustStat {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshLocked()
}

func (p *PackDirectory) refreshLocked() bool {
	fresh, err := stampDir(p.dir)
	if err != nil {
		// A directory we cannot stat cannot be declared unchanged.
		glog.V(2).Infof("stat %s: %v, treating as changed", p.dir, err)
		p.last = nil
		return true
	}
	if p.last != nil && *p.last == fresh {
		return false
	}
	p.last = &fresh
	return true
}

// Packs returns the pack file names in the guarded directory, sorted,
// re-reading the listing only when the directory may have changed. A
// missing directory yields an empty listing.
func (p *PackDirectory) Packs() ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stale := true
	if p.trustStat {
		stale = p.refreshLocked()
	}
	if !stale && p.scanned {
		return append([]string(nil), p.packs...), nil
	}

	names, err := listPacks(p.dir)
	if err != nil {
		return nil, err
	}
	p.packs = names
	p.scanned = true
	return append([]string(nil), names...), nil
}

// Rescan drops the stored signature and cached listing so the next
// freshness check reports stale regardless of directory metadata.
func (p *PackDirectory) Rescan() {
	p.mu.Lock()
	p.last = nil
	p.scanned = false
	p.packs = nil
	p.mu.Unlock()
}

func listPacks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read pack dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), PackExt) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
