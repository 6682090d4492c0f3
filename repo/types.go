package repo

import (
	"time"

	"github.com/go-git/go-billy/v5"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repository wraps a go-git repository with platform conventions.
// It stores both the underlying go-git repository and a billy filesystem
// for all I/O operations, providing escape hatches for advanced use cases.
type Repository struct {
	path   string
	gitDir string
	repo   *gogit.Repository
	fs     billy.Filesystem
	bare   bool
}

// Revision is an immutable node of the commit graph.
//
// Generation, When and Hash form the ordering key of a revision. The key only
// depends on the commit itself and its ancestry, so the relative order of two
// revisions never changes as the graph grows. Rank is the position of the
// revision in that order within a loaded Graph; a higher rank is newer.
type Revision struct {
	Hash       plumbing.Hash
	Parents    []plumbing.Hash
	Generation int
	When       time.Time
	Rank       int
}

// Branch is a simple value type representing a local branch.
type Branch struct {
	Name string
	Hash plumbing.Hash
}

// CommitOptions configures commit creation.
//
// Files is a complete snapshot of the tree: paths not listed are absent from
// the commit regardless of the parents' contents.
type CommitOptions struct {
	Author  string
	Email   string
	Message string
	When    time.Time
	Parents []plumbing.Hash
	Files   map[string]string
}

// RepositoryOption configures repository creation operations (Init, Open).
type RepositoryOption func(*repositoryOptions)

// repositoryOptions holds the configuration for repository creation.
type repositoryOptions struct {
	fs   billy.Filesystem
	bare bool
}

// WithFilesystem sets the billy filesystem to use for repository operations.
// If not provided, defaults to the local OS filesystem.
//
// Example:
//
//	repo, err := repo.Init("/path/to/repo", repo.WithFilesystem(memfs.New()))
func WithFilesystem(fs billy.Filesystem) RepositoryOption {
	return func(opts *repositoryOptions) {
		opts.fs = fs
	}
}

// WithBare creates a bare repository (no working tree).
// Only applicable to Init operations.
func WithBare() RepositoryOption {
	return func(opts *repositoryOptions) {
		opts.bare = true
	}
}
