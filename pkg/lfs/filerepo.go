package lfs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/glog"

	"github.com/WANdisco/replistore/pkg/authority"
	"github.com/WANdisco/replistore/pkg/object"
	"github.com/WANdisco/replistore/pkg/replication"
	"github.com/WANdisco/replistore/pkg/storage"
)

// Options configure a FileRepository beyond its name and store.
// The zero value yields a standalone, non-replica repository.
type Options struct {
	// BaseURL is the URL prefix transfer actions are built under.
	// Defaults to "/<name>".
	BaseURL string

	// Info is the initial replication identity. Defaults to a
	// non-replica identity carrying only the repository name.
	Info *replication.Info

	// Authority answers replication lookups for replicas. May be nil.
	Authority *authority.Client

	// Tombstone tracks recently applied object ids. Defaults to a
	// fresh tombstone sized from the environment.
	Tombstone *replication.Tombstone
}

// FileRepository serves transfer metadata for objects kept in a local
// content store. On a replica it defers replication questions to the
// authority and remembers positive answers.
type FileRepository struct {
	name  string
	store *storage.ContentStore
	base  string

	mu   sync.RWMutex
	info *replication.Info

	authority *authority.Client
	tombstone *replication.Tombstone

	downloads *replication.Cache[object.ID, *Action]
	uploads   *replication.Cache[object.ID, *Action]
	sizes     *replication.Cache[object.ID, int64]
	status    *replication.Cache[object.ID, bool]
}

var _ Repository = (*FileRepository)(nil)

// NewFileRepository builds a repository facade over store.
func NewFileRepository(name string, store *storage.ContentStore, opts Options) *FileRepository {
	info := opts.Info
	if info == nil {
		info = replication.NewInfo(name, "", "", false)
	}
	tomb := opts.Tombstone
	if tomb == nil {
		tomb = replication.NewTombstone(replication.CapacityFromEnv())
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "/" + name
	}
	return &FileRepository{
		name:      name,
		store:     store,
		base:      base,
		info:      info,
		authority: opts.Authority,
		tombstone: tomb,
		downloads: replication.NewCache[object.ID, *Action](),
		uploads:   replication.NewCache[object.ID, *Action](),
		sizes:     replication.NewCache[object.ID, int64](),
		status:    replication.NewCache[object.ID, bool](),
	}
}

// tombstoneFile is the store-relative file the applied-id window is
// persisted in, in the comma-separated form NewTombstoneFromList reads.
const tombstoneFile = "tombstones"

// Open builds the repository facade for a store by reading the store's
// replication settings. A store marked replicated gets its node
// configuration loaded from the configured replicator file; a group
// membership there makes the repository a replica. The applied-id
// window is seeded from the store's persisted tombstone list.
func Open(name string, store *storage.ContentStore) (*FileRepository, error) {
	cfg, err := store.ReadConfig()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	opts := Options{}
	capacity := replication.CapacityFromEnv()
	if cfg.Replicated && cfg.ReplicatorConfig != "" {
		node, err := replication.NewLoader(cfg.ReplicatorConfig).Load()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		group := node.GroupID()
		capacity = node.TombstoneCapacity()
		opts.Info = replication.NewInfo(name, "", group, group != "")
		opts.BaseURL = fmt.Sprintf("http://127.0.0.1:%d/%s", node.Port(), name)
		if endpoint := node.Authority(); endpoint != "" {
			client, err := authority.NewClient(endpoint)
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", name, err)
			}
			opts.Authority = client
		}
	}
	opts.Tombstone = replication.NewTombstoneFromList(capacity, readPersistedTombstones(store))
	return NewFileRepository(name, store, opts), nil
}

func readPersistedTombstones(store *storage.ContentStore) string {
	b, err := os.ReadFile(filepath.Join(store.Root(), tombstoneFile))
	if err != nil {
		return ""
	}
	return string(b)
}

// Name returns the repository name.
func (r *FileRepository) Name() string { return r.name }

// Store returns the content store backing the repository.
func (r *FileRepository) Store() *storage.ContentStore { return r.store }

// Tombstone returns the recently-applied id window.
func (r *FileRepository) Tombstone() *replication.Tombstone { return r.tombstone }

// ReplicationInfo returns the current replication identity.
func (r *FileRepository) ReplicationInfo() *replication.Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info
}

// SetReplicationInfo replaces the replication identity. It panics on
// nil: a repository always has an identity, even a standalone one.
func (r *FileRepository) SetReplicationInfo(info *replication.Info) {
	if info == nil {
		panic("lfs: nil replication info")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info = info
}

// IsReplica reports whether this node holds a replica of the
// repository.
func (r *FileRepository) IsReplica() bool {
	return r.ReplicationInfo().IsReplica()
}

// DownloadAction returns the transfer step for fetching an object.
// Actions are immutable and shared between callers.
func (r *FileRepository) DownloadAction(id object.ID) *Action {
	if a, ok := r.downloads.Get(id); ok {
		return a
	}
	a := &Action{
		HRef:   r.base + "/objects/" + string(id),
		Header: map[string]string{"Accept": "application/octet-stream"},
	}
	actual, _ := r.downloads.PutIfAbsent(id, a)
	return actual
}

// UploadAction returns the transfer step for storing an object of the
// given size. It panics if size is negative.
func (r *FileRepository) UploadAction(id object.ID, size int64) *Action {
	if size < 0 {
		panic(fmt.Sprintf("lfs: negative upload size %d for object %s", size, id.Short()))
	}
	if a, ok := r.uploads.Get(id); ok {
		return a
	}
	a := &Action{
		HRef:   r.base + "/objects/" + string(id),
		Header: map[string]string{"Content-Type": "application/octet-stream"},
	}
	actual, _ := r.uploads.PutIfAbsent(id, a)
	return actual
}

// VerifyAction returns the post-upload verify step. Objects are
// checked against their id as they are written, so there is none.
func (r *FileRepository) VerifyAction(id object.ID) *Action { return nil }

// Size returns the byte size of an object. It answers SizeUnknown for
// objects that are absent, unreadable, or not yet replicated to this
// node. Known sizes are remembered.
func (r *FileRepository) Size(ctx context.Context, id object.ID) int64 {
	if n, ok := r.sizes.Get(id); ok {
		return n
	}
	if r.IsReplica() && !r.IsReplicated(ctx, id) {
		return SizeUnknown
	}
	n, err := r.store.Size(id)
	if err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			glog.Errorf("sizing %s in %s: %v", id.Short(), r.name, err)
		}
		return SizeUnknown
	}
	r.sizes.Put(id, n)
	return n
}

// IsReplicated reports whether an object may be served from this node.
// Nothing absent from the local store qualifies. The origin answers
// from disk alone; a replica also needs the authority to confirm the
// object within its group. Positive group answers are remembered,
// negative ones re-checked, since replication may complete at any time.
func (r *FileRepository) IsReplicated(ctx context.Context, id object.ID) bool {
	if !r.store.Has(id) {
		return false
	}
	if !r.IsReplica() {
		return true
	}
	if ok, hit := r.status.Get(id); hit && ok {
		return true
	}
	if r.authority == nil {
		glog.V(2).Infof("no authority for replica %s, answering from disk", r.name)
		return true
	}
	key, kt := r.lookupKey()
	info, err := r.authority.LookupObject(ctx, key, kt, id)
	if err != nil {
		glog.Errorf("replication lookup for %s in %s: %v", id.Short(), r.name, err)
		return false
	}
	if info == nil || !info.Replicated {
		return false
	}
	r.status.Put(id, true)
	r.learnIdentity(info.RepositoryID, info.GroupID)
	return true
}

// SaveTombstones persists the applied-id window next to the store
// content so a later Open seeds from it.
func (r *FileRepository) SaveTombstones() error {
	tmp, err := os.CreateTemp(r.store.Root(), ".tombstones-*")
	if err != nil {
		return fmt.Errorf("save tombstones: %w", err)
	}
	if _, err := tmp.WriteString(r.tombstone.PersistedList()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save tombstones: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save tombstones: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(r.store.Root(), tombstoneFile)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save tombstones: %w", err)
	}
	return nil
}

// Apply runs fn unless id was recently applied, then records it.
// Repeated deliveries of the same object become no-ops while the id
// stays inside the tombstone window. fn must be idempotent: two
// first-time deliveries racing past the window check may both run it.
func (r *FileRepository) Apply(id object.ID, fn func() error) (bool, error) {
	if r.tombstone.Touch(id) {
		glog.V(2).Infof("skipping %s in %s: already applied", id.Short(), r.name)
		return false, nil
	}
	if err := fn(); err != nil {
		return false, err
	}
	r.tombstone.Add(id)
	return true, nil
}

// lookupKey picks the strongest key the authority can resolve: the
// repository id once learned, otherwise the name.
func (r *FileRepository) lookupKey() (string, authority.KeyType) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rid := r.info.RepositoryID(); rid != "" {
		return rid, authority.KeyRepositoryID
	}
	return r.name, authority.KeyRepositoryName
}

// learnIdentity fills identity fields the authority knows but the
// local configuration did not. Already-set fields are kept.
func (r *FileRepository) learnIdentity(repoID, groupID string) {
	if repoID == "" && groupID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rid, gid := r.info.RepositoryID(), r.info.GroupID()
	changed := false
	if repoID != "" && rid == "" {
		rid, changed = repoID, true
	}
	if groupID != "" && gid == "" {
		gid, changed = groupID, true
	}
	if changed {
		r.info = r.info.WithIdentity(rid, gid)
		glog.V(2).Infof("learned identity for %s: repository %s, group %s", r.name, rid, gid)
	}
}
