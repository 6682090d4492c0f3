package repo

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5/plumbing"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// newTestRepo initializes an empty repository on a memory filesystem.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	r, err := Init("/test-repo", WithFilesystem(memfs.New()))
	require.NoError(t, err)

	return r
}

// commitAt writes a commit with the given parents and files, timestamped
// minutes after baseTime.
func commitAt(t *testing.T, r *Repository, minutes int, files map[string]string, parents ...plumbing.Hash) plumbing.Hash {
	t.Helper()

	hash, err := r.WriteCommit(CommitOptions{
		Author:  "Test User",
		Email:   "test@example.com",
		Message: "test commit",
		When:    baseTime.Add(time.Duration(minutes) * time.Minute),
		Parents: parents,
		Files:   files,
	})
	require.NoError(t, err)

	return hash
}

func TestInit_StandardRepository(t *testing.T) {
	fs := memfs.New()

	r, err := Init("/test-repo", WithFilesystem(fs))
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.NotNil(t, r.Underlying())
	assert.NotNil(t, r.Filesystem())
	assert.Equal(t, "/test-repo", r.Path())
	assert.Equal(t, "/test-repo/.git", r.GitDir())
	assert.False(t, r.IsBare())
	assert.True(t, r.IsMemory())

	stat, err := fs.Stat("/test-repo/.git")
	require.NoError(t, err)
	assert.True(t, stat.IsDir())
}

func TestInit_BareRepository(t *testing.T) {
	fs := memfs.New()

	r, err := Init("/bare-repo", WithFilesystem(fs), WithBare())
	require.NoError(t, err)

	assert.True(t, r.IsBare())
	assert.Equal(t, "/bare-repo", r.GitDir())

	stat, err := fs.Stat("/bare-repo/refs")
	require.NoError(t, err)
	assert.True(t, stat.IsDir())
}

func TestInit_AlreadyExists(t *testing.T) {
	fs := memfs.New()

	_, err := Init("/test-repo", WithFilesystem(fs))
	require.NoError(t, err)

	_, err = Init("/test-repo", WithFilesystem(fs))
	require.Error(t, err)
	assert.Equal(t, platformerrors.CodeAlreadyExists, platformerrors.GetCode(err))
}

func TestOpen_ExistingRepository(t *testing.T) {
	fs := memfs.New()

	r, err := Init("/test-repo", WithFilesystem(fs))
	require.NoError(t, err)
	hash := commitAt(t, r, 0, map[string]string{"a.txt": "a"})
	require.NoError(t, r.SetBranch("master", hash))

	opened, err := Open("/test-repo", WithFilesystem(fs))
	require.NoError(t, err)
	assert.False(t, opened.IsBare())

	head, err := opened.HeadRevision()
	require.NoError(t, err)
	assert.Equal(t, hash, head)
}

func TestOpen_BareRepository(t *testing.T) {
	fs := memfs.New()

	_, err := Init("/bare-repo", WithFilesystem(fs), WithBare())
	require.NoError(t, err)

	opened, err := Open("/bare-repo", WithFilesystem(fs))
	require.NoError(t, err)
	assert.True(t, opened.IsBare())
}

func TestOpen_NotFound(t *testing.T) {
	_, err := Open("/missing", WithFilesystem(memfs.New()))
	require.Error(t, err)
	assert.Equal(t, platformerrors.CodeNotFound, platformerrors.GetCode(err))
}

func TestInit_LocalFilesystem(t *testing.T) {
	dir := t.TempDir()

	r, err := Init(dir)
	require.NoError(t, err)
	assert.False(t, r.IsMemory())

	_, err = Open(dir)
	require.NoError(t, err)
}
