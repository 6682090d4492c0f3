package repo

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileNode(t *testing.T) {
	r := newTestRepo(t)
	with := commitAt(t, r, 0, map[string]string{".hgtags": "content\n", "dir/file": "x"})
	same := commitAt(t, r, 1, map[string]string{".hgtags": "content\n", "other": "y"}, with)
	without := commitAt(t, r, 2, map[string]string{"other": "y"}, same)

	first, err := r.FileNode(with, ".hgtags")
	require.NoError(t, err)
	assert.NotEqual(t, plumbing.ZeroHash, first)

	second, err := r.FileNode(same, ".hgtags")
	require.NoError(t, err)
	assert.Equal(t, first, second, "identical content yields the same file node")

	_, err = r.FileNode(without, ".hgtags")
	require.ErrorIs(t, err, ErrFileNotFound)
	assert.Equal(t, platformerrors.CodeNotFound, platformerrors.GetCode(err))

	_, err = r.FileNode(with, "dir")
	require.ErrorIs(t, err, ErrFileNotFound)

	_, err = r.FileNode(with, "missing/file")
	require.ErrorIs(t, err, ErrFileNotFound)

	nested, err := r.FileNode(with, "dir/file")
	require.NoError(t, err)
	content, err := r.ReadBlob(nested)
	require.NoError(t, err)
	assert.Equal(t, "x", string(content))
}

func TestFileNode_UnknownRevision(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.FileNode(plumbing.NewHash("5555555555555555555555555555555555555555"), ".hgtags")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrFileNotFound)
}

func TestReadBlob(t *testing.T) {
	r := newTestRepo(t)
	rev := commitAt(t, r, 0, map[string]string{".hgtags": "abc\n"})

	fnode, err := r.FileNode(rev, ".hgtags")
	require.NoError(t, err)

	content, err := r.ReadBlob(fnode)
	require.NoError(t, err)
	assert.Equal(t, "abc\n", string(content))

	_, err = r.ReadBlob(plumbing.NewHash("6666666666666666666666666666666666666666"))
	require.Error(t, err)
	assert.Equal(t, platformerrors.CodeNotFound, platformerrors.GetCode(err))
}

func TestConfigValue(t *testing.T) {
	r := newTestRepo(t)

	_, ok, err := r.ConfigValue("tags", "disabled")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.SetConfigValue("tags", "disabled", "true"))

	value, ok, err := r.ConfigValue("tags", "disabled")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", value)

	_, ok, err = r.ConfigValue("tags", "other")
	require.NoError(t, err)
	assert.False(t, ok)
}
