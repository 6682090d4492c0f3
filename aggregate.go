package tags

import (
	"context"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/jmgilman/go/tags/cache"
	"github.com/jmgilman/go/tags/internal/logging"
	"github.com/jmgilman/go/tags/repo"
	"github.com/jmgilman/go/tags/tagfile"
)

// lineageEntry is the value of one tag name as seen from a revision, along
// with the revision that introduced that value.
type lineageEntry struct {
	target plumbing.Hash
	kind   tagfile.Kind
	source plumbing.Hash
}

func (e lineageEntry) sameValue(other lineageEntry) bool {
	return e.target == other.target && e.kind == other.kind
}

// lineage maps tag names to their entry. Lineages are shared between
// revisions and never modified once built.
type lineage map[string]lineageEntry

type revisionState struct {
	fnode   plumbing.Hash
	lineage lineage
}

// aggregator computes the tag mapping of a loaded graph.
type aggregator struct {
	graph    *repo.Graph
	resolver *fileNodeResolver
	logger   *logging.Logger
	diag     *Diagnostics
}

// aggregate walks the visible revisions from oldest to newest, tracking the
// tag lineage at each one, then merges the lineages of the heads.
//
// Revisions whose tags file cannot be resolved contribute nothing of their
// own and inherit their first parent's lineage.
func (a *aggregator) aggregate(ctx context.Context) cache.VisibleTags {
	states := make(map[plumbing.Hash]*revisionState, a.graph.Len())

	for _, rev := range a.graph.Visible() {
		parents := make([]*revisionState, 0, len(rev.Parents))
		for _, p := range rev.Parents {
			if st, ok := states[p]; ok {
				parents = append(parents, st)
			}
		}

		st, err := a.visit(ctx, rev, parents)
		if err != nil {
			a.diag.UnresolvedRevisions++
			logging.LogUnresolvedRevision(ctx, a.logger, rev.Hash.String(), err)
			st = inherit(parents)
		}
		states[rev.Hash] = st
	}

	return a.merge(states)
}

// visit computes the state of rev from its parents' states.
func (a *aggregator) visit(ctx context.Context, rev *repo.Revision, parents []*revisionState) (*revisionState, error) {
	fnode, err := a.resolver.resolve(ctx, rev.Hash)
	if err != nil {
		return nil, err
	}

	for _, p := range parents {
		if p.fnode == fnode {
			return &revisionState{fnode: fnode, lineage: a.rebase(rev.Hash, p.lineage, parents)}, nil
		}
	}

	if fnode.IsZero() {
		return &revisionState{fnode: fnode, lineage: lineage{}}, nil
	}

	parsed, first, err := a.resolver.parse(fnode)
	if err != nil {
		return nil, err
	}
	if first && parsed.Skipped > 0 {
		a.diag.SkippedLines += parsed.Skipped
		logging.LogSkippedLines(ctx, a.logger, fnode.String(), parsed.Skipped)
	}

	lin := make(lineage)
	for _, e := range parsed.Effective() {
		entry := lineageEntry{target: e.Target, kind: e.Kind}
		entry.source = a.sourceOf(rev.Hash, e.Name, entry, parents)
		lin[e.Name] = entry
	}

	return &revisionState{fnode: fnode, lineage: lin}, nil
}

// rebase returns the lineage of a revision whose tags file is identical to
// the one behind lin. With a single parent, or parents that agree on every
// name, lin is shared as is.
func (a *aggregator) rebase(rev plumbing.Hash, lin lineage, parents []*revisionState) lineage {
	agree := true
	for _, p := range parents {
		if !sameLineage(p.lineage, lin) {
			agree = false
			break
		}
	}
	if agree {
		return lin
	}

	out := make(lineage, len(lin))
	for name, entry := range lin {
		entry.source = a.sourceOf(rev, name, entry, parents)
		out[name] = entry
	}
	return out
}

// sourceOf returns the revision that introduced entry's value for name as
// seen from rev. The value is inherited only when every parent carries the
// same value for name; otherwise rev itself committed it.
func (a *aggregator) sourceOf(rev plumbing.Hash, name string, entry lineageEntry, parents []*revisionState) plumbing.Hash {
	if len(parents) == 0 {
		return rev
	}

	var source plumbing.Hash
	for i, p := range parents {
		prev, ok := p.lineage[name]
		if !ok || !prev.sameValue(entry) {
			return rev
		}
		if i == 0 || a.rank(prev.source) > a.rank(source) {
			source = prev.source
		}
	}
	return source
}

func sameLineage(x, y lineage) bool {
	if len(x) != len(y) {
		return false
	}
	for name, ex := range x {
		ey, ok := y[name]
		if !ok || ex != ey {
			return false
		}
	}
	return true
}

func inherit(parents []*revisionState) *revisionState {
	if len(parents) == 0 {
		return &revisionState{lineage: lineage{}}
	}
	return &revisionState{fnode: parents[0].fnode, lineage: parents[0].lineage}
}

// merge combines the head lineages. When heads disagree on a name, the entry
// whose source descends from the other's source wins. Unrelated sources fall
// back to the higher rank.
func (a *aggregator) merge(states map[plumbing.Hash]*revisionState) cache.VisibleTags {
	heads := a.graph.Heads().Hashes()
	sort.Slice(heads, func(i, j int) bool {
		return a.rank(heads[i]) < a.rank(heads[j])
	})

	merged := make(lineage)
	for _, h := range heads {
		st, ok := states[h]
		if !ok {
			continue
		}
		for name, entry := range st.lineage {
			current, seen := merged[name]
			if !seen || a.supersedes(entry, current) {
				merged[name] = entry
			}
		}
	}

	tags := make(cache.VisibleTags, len(merged))
	for name, entry := range merged {
		if entry.kind == tagfile.Deleted || !a.graph.IsVisible(entry.target) {
			continue
		}
		tags[name] = entry.target
	}

	return tags
}

func (a *aggregator) supersedes(entry, current lineageEntry) bool {
	switch {
	case entry.source == current.source:
		return false
	case a.graph.IsAncestor(current.source, entry.source):
		return true
	case a.graph.IsAncestor(entry.source, current.source):
		return false
	default:
		return a.rank(entry.source) > a.rank(current.source)
	}
}

func (a *aggregator) rank(h plumbing.Hash) int {
	if rev, ok := a.graph.Lookup(h); ok {
		return rev.Rank
	}
	return -1
}
