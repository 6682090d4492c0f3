package repo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// obsoleteRefPrefix is the namespace holding obsolescence markers. A marker
// named refs/obsolete/<hex> records that the commit it points at was
// superseded and should disappear once nothing visible builds on it.
const obsoleteRefPrefix = "refs/obsolete/"

// MarkObsolete records rev as obsolete. The commit stays visible while any
// visible commit descends from it, and while HEAD points at it.
func (r *Repository) MarkObsolete(rev plumbing.Hash) error {
	if _, err := r.repo.CommitObject(rev); err != nil {
		return wrapError(err, fmt.Sprintf("failed to find commit %s", rev))
	}

	ref := plumbing.NewHashReference(obsoleteRefName(rev), rev)
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return wrapError(err, fmt.Sprintf("failed to mark %s obsolete", rev))
	}

	return nil
}

// ClearObsolete removes the obsolescence marker for rev, if any.
func (r *Repository) ClearObsolete(rev plumbing.Hash) error {
	if err := r.repo.Storer.RemoveReference(obsoleteRefName(rev)); err != nil {
		return wrapError(err, fmt.Sprintf("failed to clear obsolete marker for %s", rev))
	}
	return nil
}

// Obsolete returns every revision carrying an obsolescence marker, sorted by
// hash.
func (r *Repository) Obsolete() ([]plumbing.Hash, error) {
	refs, err := r.repo.References()
	if err != nil {
		return nil, wrapError(err, "failed to list references")
	}

	var marked []plumbing.Hash
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() == plumbing.HashReference && strings.HasPrefix(ref.Name().String(), obsoleteRefPrefix) {
			marked = append(marked, ref.Hash())
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err, "failed to iterate references")
	}

	sort.Slice(marked, func(i, j int) bool {
		return marked[i].String() < marked[j].String()
	})

	return marked, nil
}

func obsoleteRefName(rev plumbing.Hash) plumbing.ReferenceName {
	return plumbing.ReferenceName(obsoleteRefPrefix + rev.String())
}

// applyVisibility hides obsolete revisions whose children are all hidden.
// Walking in descending rank settles every child before its parents. The
// pinned revision (HEAD) is never hidden, which keeps its ancestry visible too.
func (g *Graph) applyVisibility(obsolete []plumbing.Hash, pinned plumbing.Hash) {
	marked := make(map[plumbing.Hash]bool, len(obsolete))
	for _, h := range obsolete {
		marked[h] = true
	}

	for i := len(g.order) - 1; i >= 0; i-- {
		h := g.order[i].Hash
		if !marked[h] || h == pinned {
			continue
		}

		hide := true
		for _, child := range g.children[h] {
			if !g.hidden[child] {
				hide = false
				break
			}
		}
		if hide {
			g.hidden[h] = true
		}
	}

	g.visible = make([]*Revision, 0, len(g.order))
	var heads []plumbing.Hash
	for _, rev := range g.order {
		if g.hidden[rev.Hash] {
			continue
		}
		g.visible = append(g.visible, rev)

		head := true
		for _, child := range g.children[rev.Hash] {
			if !g.hidden[child] {
				head = false
				break
			}
		}
		if head {
			heads = append(heads, rev.Hash)
		}
	}

	g.heads = NewHeadSet(heads...)
}
