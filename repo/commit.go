package repo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// WriteCommit stores a commit built from opts directly in the object database
// and returns its hash. No reference is moved; use SetBranch to publish it.
//
// Unlike a worktree commit, WriteCommit takes explicit parents, which makes it
// possible to build merges and divergent heads without checking anything out.
//
// Example:
//
//	hash, err := r.WriteCommit(repo.CommitOptions{
//	    Author:  "John Doe",
//	    Email:   "john@example.com",
//	    Message: "Tag release",
//	    Parents: []plumbing.Hash{parent},
//	    Files:   map[string]string{".hgtags": content},
//	})
func (r *Repository) WriteCommit(opts CommitOptions) (plumbing.Hash, error) {
	if opts.Author == "" {
		return plumbing.ZeroHash, wrapError(fmt.Errorf("author is required"), "failed to create commit")
	}
	if opts.Email == "" {
		return plumbing.ZeroHash, wrapError(fmt.Errorf("email is required"), "failed to create commit")
	}
	if opts.Message == "" {
		return plumbing.ZeroHash, wrapError(fmt.Errorf("message is required"), "failed to create commit")
	}

	for _, parent := range opts.Parents {
		if _, err := r.repo.CommitObject(parent); err != nil {
			return plumbing.ZeroHash, wrapError(err, fmt.Sprintf("failed to find parent %s", parent))
		}
	}

	treeHash, err := r.writeTree(opts.Files)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	sig := object.Signature{Name: opts.Author, Email: opts.Email, When: opts.When}
	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      opts.Message,
		TreeHash:     treeHash,
		ParentHashes: opts.Parents,
	}

	obj := r.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return plumbing.ZeroHash, wrapError(err, "failed to encode commit object")
	}

	hash, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, wrapError(err, "failed to store commit object")
	}

	return hash, nil
}

// writeTree stores the blobs and trees for a flat path → content map and
// returns the root tree hash.
func (r *Repository) writeTree(files map[string]string) (plumbing.Hash, error) {
	var entries []object.TreeEntry
	subdirs := make(map[string]map[string]string)

	for path, content := range files {
		path = strings.Trim(path, "/")
		if path == "" {
			return plumbing.ZeroHash, wrapError(fmt.Errorf("empty file path"), "failed to build tree")
		}

		if dir, rest, nested := strings.Cut(path, "/"); nested {
			if subdirs[dir] == nil {
				subdirs[dir] = make(map[string]string)
			}
			subdirs[dir][rest] = content
			continue
		}

		blobHash, err := r.writeBlob([]byte(content))
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries = append(entries, object.TreeEntry{Name: path, Mode: filemode.Regular, Hash: blobHash})
	}

	for dir, contents := range subdirs {
		subHash, err := r.writeTree(contents)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries = append(entries, object.TreeEntry{Name: dir, Mode: filemode.Dir, Hash: subHash})
	}

	// Git orders tree entries by name, with directories compared as "name/".
	sort.Slice(entries, func(i, j int) bool {
		return treeSortKey(entries[i]) < treeSortKey(entries[j])
	})

	tree := &object.Tree{Entries: entries}
	obj := r.repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, wrapError(err, "failed to encode tree object")
	}

	hash, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, wrapError(err, "failed to store tree object")
	}

	return hash, nil
}

func (r *Repository) writeBlob(content []byte) (plumbing.Hash, error) {
	obj := r.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(content)))

	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, wrapError(err, "failed to open blob writer")
	}
	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return plumbing.ZeroHash, wrapError(err, "failed to write blob")
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, wrapError(err, "failed to close blob writer")
	}

	hash, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, wrapError(err, "failed to store blob object")
	}

	return hash, nil
}

func treeSortKey(e object.TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}
