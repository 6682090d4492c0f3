package tags

import (
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/jmgilman/go/tags/cache"
	"github.com/jmgilman/go/tags/repo"
	"github.com/jmgilman/go/tags/tagfile"
)

// TipName is the synthetic tag naming the newest visible revision.
const TipName = tagfile.ReservedName

// Outcome is the terminal state of a query.
type Outcome int

const (
	// ReturnedTipOnly means the feature gate was disabled and only tip was
	// computed.
	ReturnedTipOnly Outcome = iota + 1
	// ReturnedCached means the visible-tags artifact matched the head set.
	ReturnedCached
	// ReturnedAggregated means the mapping was recomputed and persisted.
	ReturnedAggregated
)

func (o Outcome) String() string {
	switch o {
	case ReturnedTipOnly:
		return "tip-only"
	case ReturnedCached:
		return "cached"
	case ReturnedAggregated:
		return "aggregated"
	default:
		return "unknown"
	}
}

// Diagnostics counts the recoverable problems met during a query.
type Diagnostics struct {
	// UnresolvedRevisions counts revisions whose tags file could not be
	// read. Their own contribution was dropped.
	UnresolvedRevisions int
	// SkippedLines counts malformed tags-file lines.
	SkippedLines int
	// CacheWriteErrors counts artifacts that could not be persisted.
	CacheWriteErrors int
	// VisibleTagsMiss is why the visible-tags artifact was not used.
	VisibleTagsMiss cache.MissReason
	// InvalidConfig is set when the gate value could not be parsed and the
	// default was used instead.
	InvalidConfig bool
}

// Tag is one resolved tag.
type Tag struct {
	Name   string
	Target plumbing.Hash
}

// Result is the outcome of Engine.Tags.
type Result struct {
	// Tags maps every resolved name, including tip, to its revision.
	Tags map[string]plumbing.Hash
	// Tip is the newest visible revision, or the zero hash in an empty
	// repository.
	Tip plumbing.Hash
	// Heads is the head set the mapping was computed for. It is empty for
	// tip-only results.
	Heads       repo.HeadSet
	Outcome     Outcome
	Diagnostics Diagnostics

	ranks map[plumbing.Hash]int
}

func newResult(tags cache.VisibleTags, tip plumbing.Hash, graph *repo.Graph) *Result {
	res := &Result{
		Tags:  make(map[string]plumbing.Hash, len(tags)+1),
		Tip:   tip,
		ranks: make(map[plumbing.Hash]int),
	}
	for name, target := range tags {
		res.Tags[name] = target
		if graph != nil {
			if rev, ok := graph.Lookup(target); ok {
				res.ranks[target] = rev.Rank
			}
		}
	}
	res.Tags[TipName] = tip

	return res
}

// Lookup returns the revision a tag resolves to.
func (r *Result) Lookup(name string) (plumbing.Hash, bool) {
	target, ok := r.Tags[name]
	return target, ok
}

// List returns the tags with tip first, then newest target first, then by
// name.
func (r *Result) List() []Tag {
	list := make([]Tag, 0, len(r.Tags))
	for name, target := range r.Tags {
		if name != TipName {
			list = append(list, Tag{Name: name, Target: target})
		}
	}

	sort.Slice(list, func(i, j int) bool {
		ri, rj := r.ranks[list[i].Target], r.ranks[list[j].Target]
		if ri != rj {
			return ri > rj
		}
		return list[i].Name < list[j].Name
	})

	return append([]Tag{{Name: TipName, Target: r.Tip}}, list...)
}
