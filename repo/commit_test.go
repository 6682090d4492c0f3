package repo

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCommit(t *testing.T) {
	r := newTestRepo(t)

	parent := commitAt(t, r, 0, map[string]string{"a.txt": "a"})
	hash := commitAt(t, r, 5, map[string]string{
		"a.txt":         "a",
		"dir/b.txt":     "b",
		"dir/sub/c.txt": "c",
		"dir.txt":       "sorted before dir/",
	}, parent)

	commit, err := r.Underlying().CommitObject(hash)
	require.NoError(t, err)
	assert.Equal(t, []plumbing.Hash{parent}, commit.ParentHashes)
	assert.Equal(t, "Test User", commit.Author.Name)
	assert.True(t, commit.Committer.When.Equal(baseTime.Add(5*time.Minute)))

	file, err := commit.File("dir/sub/c.txt")
	require.NoError(t, err)
	content, err := file.Contents()
	require.NoError(t, err)
	assert.Equal(t, "c", content)

	_, err = commit.File("dir.txt")
	require.NoError(t, err)
}

func TestWriteCommit_Deterministic(t *testing.T) {
	r := newTestRepo(t)
	files := map[string]string{"x": "1", "y/z": "2"}

	first := commitAt(t, r, 0, files)
	second := commitAt(t, r, 0, files)
	assert.Equal(t, first, second)
}

func TestWriteCommit_Validation(t *testing.T) {
	r := newTestRepo(t)

	tests := []struct {
		name string
		opts CommitOptions
	}{
		{name: "missing author", opts: CommitOptions{Email: "e", Message: "m"}},
		{name: "missing email", opts: CommitOptions{Author: "a", Message: "m"}},
		{name: "missing message", opts: CommitOptions{Author: "a", Email: "e"}},
		{name: "unknown parent", opts: CommitOptions{
			Author:  "a",
			Email:   "e",
			Message: "m",
			Parents: []plumbing.Hash{plumbing.NewHash("2222222222222222222222222222222222222222")},
		}},
		{name: "empty path", opts: CommitOptions{
			Author:  "a",
			Email:   "e",
			Message: "m",
			Files:   map[string]string{"/": "x"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.WriteCommit(tt.opts)
			require.Error(t, err)
		})
	}
}
