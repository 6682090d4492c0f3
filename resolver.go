package tags

import (
	"context"
	"errors"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/jmgilman/go/tags/cache"
	"github.com/jmgilman/go/tags/repo"
	"github.com/jmgilman/go/tags/tagfile"
)

// fileNodeResolver memoises FileNode lookups through the file-node artifact.
// The artifact is loaded on first use and written back by flush only when a
// lookup learned something new.
type fileNodeResolver struct {
	repo  *repo.Repository
	store *cache.Store
	path  string

	nodes  cache.FileNodes
	state  cache.State
	loaded bool
	dirty  bool

	parsed map[plumbing.Hash]tagfile.Result
}

func newFileNodeResolver(r *repo.Repository, store *cache.Store, path string) *fileNodeResolver {
	return &fileNodeResolver{
		repo:   r,
		store:  store,
		path:   path,
		parsed: make(map[plumbing.Hash]tagfile.Result),
	}
}

// resolve returns the file node of the tags file at rev, or the zero hash when
// the file is absent there.
func (f *fileNodeResolver) resolve(ctx context.Context, rev plumbing.Hash) (plumbing.Hash, error) {
	if !f.loaded {
		res := f.store.ReadFileNodes(ctx)
		f.nodes = res.Nodes
		f.state = res.State
		f.loaded = true
		// A damaged artifact is replaced even if every lookup is a hit.
		f.dirty = res.State == cache.StateCorrupt
	}

	if fnode, ok := f.nodes[rev]; ok {
		return fnode, nil
	}

	fnode, err := f.repo.FileNode(rev, f.path)
	if errors.Is(err, repo.ErrFileNotFound) {
		fnode, err = plumbing.ZeroHash, nil
	}
	if err != nil {
		return plumbing.ZeroHash, err
	}

	f.nodes[rev] = fnode
	f.dirty = true

	return fnode, nil
}

// parse reads and parses the tags file with the given file node. Results are
// kept per file node, so identical content is parsed once. The boolean is
// true the first time a file node is parsed.
func (f *fileNodeResolver) parse(fnode plumbing.Hash) (tagfile.Result, bool, error) {
	if res, ok := f.parsed[fnode]; ok {
		return res, false, nil
	}

	content, err := f.repo.ReadBlob(fnode)
	if err != nil {
		return tagfile.Result{}, false, err
	}

	res := tagfile.Parse(content)
	f.parsed[fnode] = res

	return res, true, nil
}

// flush writes the artifact back if it changed.
func (f *fileNodeResolver) flush(ctx context.Context) error {
	if !f.dirty {
		return nil
	}
	if err := f.store.WriteFileNodes(ctx, f.nodes); err != nil {
		return err
	}
	f.dirty = false
	return nil
}
