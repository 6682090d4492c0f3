package repo

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetBranch(t *testing.T) {
	r := newTestRepo(t)
	hash := commitAt(t, r, 0, map[string]string{"a.txt": "a"})

	require.NoError(t, r.SetBranch("feature", hash))
	require.NoError(t, r.SetBranch("main", hash))

	branches, err := r.ListBranches()
	require.NoError(t, err)
	assert.Equal(t, []Branch{
		{Name: "feature", Hash: hash},
		{Name: "main", Hash: hash},
	}, branches)
}

func TestSetBranch_Errors(t *testing.T) {
	r := newTestRepo(t)

	err := r.SetBranch("", plumbing.ZeroHash)
	require.Error(t, err)

	err = r.SetBranch("main", plumbing.NewHash("1111111111111111111111111111111111111111"))
	require.Error(t, err)
	assert.Equal(t, platformerrors.CodeNotFound, platformerrors.GetCode(err))
}

func TestDeleteBranch(t *testing.T) {
	r := newTestRepo(t)
	hash := commitAt(t, r, 0, map[string]string{"a.txt": "a"})
	require.NoError(t, r.SetBranch("feature", hash))

	require.NoError(t, r.DeleteBranch("feature"))

	branches, err := r.ListBranches()
	require.NoError(t, err)
	assert.Empty(t, branches)

	err = r.DeleteBranch("feature")
	require.Error(t, err)
	assert.Equal(t, platformerrors.CodeNotFound, platformerrors.GetCode(err))
}

func TestHeadRevision(t *testing.T) {
	r := newTestRepo(t)

	// HEAD points at the unborn master branch after Init.
	head, err := r.HeadRevision()
	require.NoError(t, err)
	assert.Equal(t, plumbing.ZeroHash, head)

	first := commitAt(t, r, 0, map[string]string{"a.txt": "a"})
	require.NoError(t, r.SetBranch("master", first))

	head, err = r.HeadRevision()
	require.NoError(t, err)
	assert.Equal(t, first, head)

	second := commitAt(t, r, 1, map[string]string{"a.txt": "b"}, first)
	require.NoError(t, r.SetBranch("other", second))
	require.NoError(t, r.SetHEAD("other"))

	head, err = r.HeadRevision()
	require.NoError(t, err)
	assert.Equal(t, second, head)
}

func TestResolveRevision(t *testing.T) {
	r := newTestRepo(t)
	first := commitAt(t, r, 0, nil)
	require.NoError(t, r.SetBranch("master", first))

	hash, err := r.ResolveRevision("master")
	require.NoError(t, err)
	assert.Equal(t, first, hash)

	hash, err = r.ResolveRevision(first.String())
	require.NoError(t, err)
	assert.Equal(t, first, hash)

	_, err = r.ResolveRevision("missing")
	require.Error(t, err)

	_, err = r.ResolveRevision("")
	require.Error(t, err)
}
