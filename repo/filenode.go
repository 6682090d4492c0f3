package repo

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// FileNode returns the blob hash of path in the tree of rev.
//
// It returns ErrFileNotFound when path is not committed at rev (or names a
// directory). Any other error means the commit or its tree could not be read.
//
// Example:
//
//	fnode, err := r.FileNode(rev, ".hgtags")
//	if errors.Is(err, repo.ErrFileNotFound) {
//	    // no tags file at rev
//	}
func (r *Repository) FileNode(rev plumbing.Hash, path string) (plumbing.Hash, error) {
	commit, err := r.repo.CommitObject(rev)
	if err != nil {
		return plumbing.ZeroHash, wrapError(err, fmt.Sprintf("failed to read commit %s", rev))
	}

	tree, err := commit.Tree()
	if err != nil {
		return plumbing.ZeroHash, wrapError(err, fmt.Sprintf("failed to read tree of %s", rev))
	}

	entry, err := tree.FindEntry(path)
	if err != nil {
		if errors.Is(err, object.ErrEntryNotFound) || errors.Is(err, object.ErrDirectoryNotFound) {
			return plumbing.ZeroHash, ErrFileNotFound
		}
		return plumbing.ZeroHash, wrapError(err, fmt.Sprintf("failed to look up %s at %s", path, rev))
	}
	if !entry.Mode.IsFile() {
		return plumbing.ZeroHash, ErrFileNotFound
	}

	return entry.Hash, nil
}

// ReadBlob returns the content of the blob with the given hash.
func (r *Repository) ReadBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := r.repo.BlobObject(hash)
	if err != nil {
		return nil, wrapError(err, fmt.Sprintf("failed to read blob %s", hash))
	}

	reader, err := blob.Reader()
	if err != nil {
		return nil, wrapError(err, fmt.Sprintf("failed to open blob %s", hash))
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, wrapError(err, fmt.Sprintf("failed to read blob %s", hash))
	}

	return content, nil
}
