package repo

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
)

// Graph is a snapshot of the commit graph reachable from the local branches
// and HEAD, with the visibility policy applied.
//
// A Graph is cheap enough to rebuild on every query and is never mutated after
// LoadGraph returns.
type Graph struct {
	revs     map[plumbing.Hash]*Revision
	order    []*Revision
	children map[plumbing.Hash][]plumbing.Hash
	hidden   map[plumbing.Hash]bool
	visible  []*Revision
	heads    HeadSet
}

// LoadGraph walks the repository's commit graph and applies the visibility
// policy.
//
// Any commit that cannot be read is fatal: the object database is broken and
// no partial graph would be trustworthy. Commits recorded as shallow
// boundaries are kept without their parents.
//
// Example:
//
//	g, err := r.LoadGraph(ctx)
//	for _, rev := range g.Visible() {
//	    fmt.Println(rev.Rank, rev.Hash)
//	}
func (r *Repository) LoadGraph(ctx context.Context) (*Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	roots, err := r.graphRoots()
	if err != nil {
		return nil, err
	}

	shallow, err := r.repo.Storer.Shallow()
	if err != nil {
		return nil, wrapError(err, "failed to read shallow boundaries")
	}
	boundary := make(map[plumbing.Hash]bool, len(shallow))
	for _, h := range shallow {
		boundary[h] = true
	}

	g := &Graph{
		revs:     make(map[plumbing.Hash]*Revision),
		children: make(map[plumbing.Hash][]plumbing.Hash),
		hidden:   make(map[plumbing.Hash]bool),
	}

	stack := append([]plumbing.Hash(nil), roots...)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := g.revs[h]; seen {
			continue
		}

		commit, err := r.repo.CommitObject(h)
		if err != nil {
			return nil, wrapError(err, fmt.Sprintf("failed to read commit %s", h))
		}

		rev := &Revision{Hash: h, When: commit.Committer.When}
		if !boundary[h] {
			rev.Parents = append([]plumbing.Hash(nil), commit.ParentHashes...)
			stack = append(stack, rev.Parents...)
		}
		g.revs[h] = rev
	}

	g.computeGenerations()
	g.assignRanks()

	obsolete, err := r.Obsolete()
	if err != nil {
		return nil, err
	}
	pinned, _, err := r.headRevision()
	if err != nil {
		return nil, err
	}
	g.applyVisibility(obsolete, pinned)

	return g, nil
}

// graphRoots returns the revisions the graph walk starts from: every local
// branch and HEAD.
func (r *Repository) graphRoots() ([]plumbing.Hash, error) {
	branches, err := r.ListBranches()
	if err != nil {
		return nil, err
	}

	roots := make([]plumbing.Hash, 0, len(branches)+1)
	for _, b := range branches {
		roots = append(roots, b.Hash)
	}

	head, ok, err := r.headRevision()
	if err != nil {
		return nil, err
	}
	if ok {
		roots = append(roots, head)
	}

	return roots, nil
}

// computeGenerations sets Generation to 1 + the highest parent generation,
// so every revision has a strictly higher generation than its ancestors.
func (g *Graph) computeGenerations() {
	for _, rev := range g.revs {
		if rev.Generation > 0 {
			continue
		}

		stack := []*Revision{rev}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.Generation > 0 {
				stack = stack[:len(stack)-1]
				continue
			}

			pending := false
			highest := 0
			for _, p := range top.Parents {
				parent := g.revs[p]
				if parent.Generation == 0 {
					stack = append(stack, parent)
					pending = true
					continue
				}
				if parent.Generation > highest {
					highest = parent.Generation
				}
			}

			if !pending {
				top.Generation = highest + 1
				stack = stack[:len(stack)-1]
			}
		}
	}
}

func (g *Graph) assignRanks() {
	g.order = make([]*Revision, 0, len(g.revs))
	for _, rev := range g.revs {
		g.order = append(g.order, rev)
		for _, p := range rev.Parents {
			g.children[p] = append(g.children[p], rev.Hash)
		}
	}

	sort.Slice(g.order, func(i, j int) bool {
		return revisionLess(g.order[i], g.order[j])
	})

	for i, rev := range g.order {
		rev.Rank = i
	}
}

// revisionLess orders revisions by generation, then committer time, then hash.
func revisionLess(a, b *Revision) bool {
	if a.Generation != b.Generation {
		return a.Generation < b.Generation
	}
	if !a.When.Equal(b.When) {
		return a.When.Before(b.When)
	}
	return bytes.Compare(a.Hash[:], b.Hash[:]) < 0
}

// Lookup returns a loaded revision, visible or hidden.
func (g *Graph) Lookup(h plumbing.Hash) (*Revision, bool) {
	rev, ok := g.revs[h]
	return rev, ok
}

// IsVisible reports whether h is a loaded, non-hidden revision.
func (g *Graph) IsVisible(h plumbing.Hash) bool {
	_, ok := g.revs[h]
	return ok && !g.hidden[h]
}

// Visible returns the visible revisions in ascending rank order, so every
// revision appears after all of its ancestors.
func (g *Graph) Visible() []*Revision {
	return g.visible
}

// Hidden returns the hidden revisions in ascending rank order.
func (g *Graph) Hidden() []*Revision {
	var hidden []*Revision
	for _, rev := range g.order {
		if g.hidden[rev.Hash] {
			hidden = append(hidden, rev)
		}
	}
	return hidden
}

// Heads returns the visible revisions with no visible descendant.
func (g *Graph) Heads() HeadSet {
	return g.heads
}

// Tip returns the highest-rank visible revision, or nil for an empty graph.
func (g *Graph) Tip() *Revision {
	if len(g.visible) == 0 {
		return nil
	}
	return g.visible[len(g.visible)-1]
}

// Len returns the number of visible revisions.
func (g *Graph) Len() int {
	return len(g.visible)
}

// IsAncestor reports whether a is a proper ancestor of b.
func (g *Graph) IsAncestor(a, b plumbing.Hash) bool {
	ra, ok := g.revs[a]
	if !ok {
		return false
	}
	rb, ok := g.revs[b]
	if !ok || a == b || ra.Generation >= rb.Generation {
		return false
	}

	seen := map[plumbing.Hash]bool{b: true}
	stack := []plumbing.Hash{b}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, p := range g.revs[h].Parents {
			if p == a {
				return true
			}
			// Descendants of a always have a higher generation than a.
			if seen[p] || g.revs[p].Generation <= ra.Generation {
				continue
			}
			seen[p] = true
			stack = append(stack, p)
		}
	}

	return false
}
