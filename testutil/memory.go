// Package testutil provides in-memory testing utilities for the tag engine.
// It includes helpers for creating in-memory repositories and commit graphs,
// enabling tests to run quickly without external dependencies.
package testutil

import (
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/jmgilman/go/tags/repo"
)

// NewMemoryRepo creates a new in-memory Git repository for testing.
// It uses billy's memory filesystem (memfs) to provide a fully functional
// repository without touching the actual filesystem.
//
// Example:
//
//	r, fs, err := testutil.NewMemoryRepo()
//	if err != nil {
//	    t.Fatal(err)
//	}
func NewMemoryRepo() (*repo.Repository, billy.Filesystem, error) {
	fs := memfs.New()

	r, err := repo.Init("/", repo.WithFilesystem(fs))
	if err != nil {
		//nolint:wrapcheck // Test utility - errors from repo package are already wrapped
		return nil, nil, err
	}

	return r, fs, nil
}

// Builder writes commits with strictly increasing timestamps, so the order
// in which a test creates commits is also their committer-time order.
type Builder struct {
	Repo *repo.Repository
	next time.Time
}

// NewBuilder creates a Builder over a fresh in-memory repository.
//
// Example:
//
//	b, err := testutil.NewBuilder()
//	rev0, err := b.Commit(testutil.TagsFile(testutil.Tag("foo", plumbing.ZeroHash)))
//	rev1, err := b.Commit(nil, rev0)
//	err = b.Branch("master", rev1)
func NewBuilder() (*Builder, error) {
	r, _, err := NewMemoryRepo()
	if err != nil {
		return nil, err
	}
	return NewBuilderFor(r), nil
}

// NewBuilderFor creates a Builder over an existing repository.
func NewBuilderFor(r *repo.Repository) *Builder {
	return &Builder{Repo: r, next: TestEpoch}
}

// Commit writes a commit whose tree is exactly files, with the given
// parents, one minute after the previous commit of this Builder.
func (b *Builder) Commit(files map[string]string, parents ...plumbing.Hash) (plumbing.Hash, error) {
	when := b.next
	b.next = b.next.Add(time.Minute)
	return b.CommitAt(when, files, parents...)
}

// CommitAt writes a commit with an explicit committer time.
func (b *Builder) CommitAt(when time.Time, files map[string]string, parents ...plumbing.Hash) (plumbing.Hash, error) {
	//nolint:wrapcheck // Test utility - errors from repo package are already wrapped
	return b.Repo.WriteCommit(repo.CommitOptions{
		Author:  TestAuthor,
		Email:   TestEmail,
		Message: "test commit",
		When:    when,
		Parents: parents,
		Files:   files,
	})
}

// Branch points the local branch name at rev.
func (b *Builder) Branch(name string, rev plumbing.Hash) error {
	//nolint:wrapcheck // Test utility - errors from repo package are already wrapped
	return b.Repo.SetBranch(name, rev)
}

// CreateTestCommit creates a commit with an empty tree and the standard test
// author on top of parents.
//
// Example:
//
//	hash, err := testutil.CreateTestCommit(r, "Initial commit")
func CreateTestCommit(r *repo.Repository, message string, parents ...plumbing.Hash) (plumbing.Hash, error) {
	//nolint:wrapcheck // Test utility - errors from repo package are already wrapped
	return r.WriteCommit(repo.CommitOptions{
		Author:  TestAuthor,
		Email:   TestEmail,
		Message: message,
		When:    TestEpoch,
		Parents: parents,
	})
}
