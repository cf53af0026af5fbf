package replication

// Info describes a repository's replication identity: the name it serves
// under, the id the replicator knows it by, the replica group holding
// copies of it, and whether this node serves it as a replica.
//
// An Info is immutable; rebinding identity means constructing a new value.
// The nil Info is valid and behaves as "not a replica".
type Info struct {
	name    string
	repoID  string
	groupID string
	replica bool
}

// NewInfo constructs a replication identity.
func NewInfo(name, repoID, groupID string, replica bool) *Info {
	return &Info{name: name, repoID: repoID, groupID: groupID, replica: replica}
}

// Name returns the repository name.
func (i *Info) Name() string {
	if i == nil {
		return ""
	}
	return i.name
}

// RepositoryID returns the id the replicator assigned this repository.
func (i *Info) RepositoryID() string {
	if i == nil {
		return ""
	}
	return i.repoID
}

// GroupID returns the replica group identifier.
func (i *Info) GroupID() string {
	if i == nil {
		return ""
	}
	return i.groupID
}

// IsReplica reports whether this node serves the repository as a replica.
func (i *Info) IsReplica() bool {
	return i != nil && i.replica
}

// WithIdentity returns a copy of i carrying the given repository and
// replica-group ids. The receiver is unchanged.
func (i *Info) WithIdentity(repoID, groupID string) *Info {
	return &Info{name: i.Name(), repoID: repoID, groupID: groupID, replica: i.IsReplica()}
}
