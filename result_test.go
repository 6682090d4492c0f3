package tags

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/jmgilman/go/tags/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "tip-only", ReturnedTipOnly.String())
	assert.Equal(t, "cached", ReturnedCached.String())
	assert.Equal(t, "aggregated", ReturnedAggregated.String())
	assert.Equal(t, "unknown", Outcome(0).String())
}

func TestResult_List(t *testing.T) {
	env := newTestEnv(t)
	rev0 := env.commit(t, nil)
	rev1 := env.commit(t, nil, rev0)
	rev2 := env.commit(t, testutil.TagsFile(
		testutil.Tag("old", rev0),
		testutil.Tag("new-b", rev1),
		testutil.Tag("new-a", rev1),
	), rev1)
	env.branch(t, "master", rev2)

	// Cached results keep the same order.
	for i := 0; i < 2; i++ {
		res := env.tags(t)

		assert.Equal(t, []Tag{
			{Name: "tip", Target: rev2},
			{Name: "new-a", Target: rev1},
			{Name: "new-b", Target: rev1},
			{Name: "old", Target: rev0},
		}, res.List())
	}
}

func TestResult_Lookup(t *testing.T) {
	res := newResult(map[string]plumbing.Hash{"v1": plumbing.ZeroHash}, plumbing.ZeroHash, nil)

	target, ok := res.Lookup("v1")
	assert.True(t, ok)
	assert.True(t, target.IsZero())

	_, ok = res.Lookup("missing")
	assert.False(t, ok)

	_, ok = res.Lookup(TipName)
	assert.True(t, ok)
}
