// Package lfs serves large object transfer metadata for repositories
// whose content lives in a local store and may be replicated across
// nodes.
package lfs

import (
	"context"

	"github.com/WANdisco/replistore/pkg/object"
	"github.com/WANdisco/replistore/pkg/replication"
)

// SizeUnknown is returned by Size when the byte size of an object
// cannot be determined, for example on a replica that has not yet
// received the object.
const SizeUnknown int64 = -1

// Repository answers transfer and replication questions about the
// large objects of a single repository.
type Repository interface {
	// Name returns the repository name objects are served under.
	Name() string

	// DownloadAction returns the transfer step a client follows to
	// fetch the object.
	DownloadAction(id object.ID) *Action

	// UploadAction returns the transfer step a client follows to
	// store an object of the given size. It panics if size is
	// negative: callers own validating sizes before asking for an
	// upload slot.
	UploadAction(id object.ID, size int64) *Action

	// VerifyAction returns the post-upload verify step, or nil when
	// the repository needs none.
	VerifyAction(id object.ID) *Action

	// Size returns the byte size of an object, or SizeUnknown.
	Size(ctx context.Context, id object.ID) int64

	// IsReplicated reports whether the object has been safely
	// replicated and may be served from this node.
	IsReplicated(ctx context.Context, id object.ID) bool

	// IsReplica reports whether this node holds a replica of the
	// repository rather than the origin copy.
	IsReplica() bool

	// ReplicationInfo returns the current replication identity.
	ReplicationInfo() *replication.Info

	// SetReplicationInfo replaces the replication identity.
	SetReplicationInfo(info *replication.Info)
}
