package cache

import (
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/jmgilman/go/tags/repo"
)

// Artifact names inside the cache directory.
const (
	FileNodesArtifact   = "tagsfnodes1"
	VisibleTagsArtifact = "tags2-visible"
)

// State is the outcome of reading the file-node artifact.
type State int

const (
	// StateValid means the artifact was read and verified.
	StateValid State = iota
	// StateAbsent means the artifact does not exist.
	StateAbsent
	// StateCorrupt means the artifact exists but failed verification.
	StateCorrupt
)

func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateAbsent:
		return "absent"
	case StateCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// FileNodes maps revision hashes to the file node of the tags file at that
// revision. plumbing.ZeroHash records that the file is absent.
type FileNodes map[plumbing.Hash]plumbing.Hash

// FileNodesResult is returned by ReadFileNodes. Nodes is never nil.
type FileNodesResult struct {
	State State
	Nodes FileNodes
	// Err describes the corruption when State is StateCorrupt.
	Err error
}

// VisibleTags maps tag names to the revisions they resolve to.
type VisibleTags map[string]plumbing.Hash

// MissReason explains a visible-tags cache miss.
type MissReason string

const (
	MissNone    MissReason = ""
	MissAbsent  MissReason = "absent"
	MissCorrupt MissReason = "corrupt"
	// MissStale means the artifact was written for a different head set.
	MissStale MissReason = "stale"
)

// VisibleResult is returned by ReadVisibleTags.
type VisibleResult struct {
	Hit    bool
	Reason MissReason
	// Tags is set on a hit.
	Tags VisibleTags
	// Heads is the head set the artifact was written for, when readable.
	Heads repo.HeadSet
}

// ArtifactStats describes one artifact on disk.
type ArtifactStats struct {
	Name    string
	Present bool
	Size    int64
	State   State
	// Entries is the number of records in a valid artifact.
	Entries int
}

// Stats describes the cache directory.
type Stats struct {
	FileNodes   ArtifactStats
	VisibleTags ArtifactStats
	TempFiles   int
}
