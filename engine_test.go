package tags

import (
	"context"
	"log/slog"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	platformerrors "github.com/jmgilman/go/errors"
	fsbilly "github.com/jmgilman/go/fs/billy"
	"github.com/jmgilman/go/fs/core"
	"github.com/jmgilman/go/tags/cache"
	"github.com/jmgilman/go/tags/internal/logging"
	"github.com/jmgilman/go/tags/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv bundles a repository builder with an engine whose cache and
// events are observable.
type testEnv struct {
	b      *testutil.Builder
	fsys   core.FS
	rec    *logging.Recorder
	engine *Engine
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	b, err := testutil.NewBuilder()
	require.NoError(t, err)

	return newTestEnvFor(t, b, opts...)
}

func newTestEnvFor(t *testing.T, b *testutil.Builder, opts ...Option) *testEnv {
	t.Helper()

	env := &testEnv{
		b:    b,
		fsys: fsbilly.NewMemory(),
		rec:  logging.NewRecorder(),
	}

	all := append([]Option{WithCacheFS(env.fsys), WithLogHandler(env.rec)}, opts...)
	engine, err := New(b.Repo, all...)
	require.NoError(t, err)
	env.engine = engine

	return env
}

func (e *testEnv) commit(t *testing.T, files map[string]string, parents ...plumbing.Hash) plumbing.Hash {
	t.Helper()

	rev, err := e.b.Commit(files, parents...)
	require.NoError(t, err)
	return rev
}

func (e *testEnv) branch(t *testing.T, name string, rev plumbing.Hash) {
	t.Helper()
	require.NoError(t, e.b.Branch(name, rev))
}

func (e *testEnv) tags(t *testing.T) *Result {
	t.Helper()

	res, err := e.engine.Tags(context.Background())
	require.NoError(t, err)
	return res
}

func (e *testEnv) artifact(t *testing.T, name string) []byte {
	t.Helper()

	data, err := e.fsys.ReadFile(cache.DefaultDir + "/" + name)
	require.NoError(t, err)
	return data
}

func (e *testEnv) exitStatus(t *testing.T) any {
	t.Helper()

	exits := e.rec.Filter(logging.EventCommandExited)
	require.NotEmpty(t, exits)
	return exits[len(exits)-1].Attrs["status"]
}

func countArtifact(events []logging.Event, artifact string) int {
	n := 0
	for _, ev := range events {
		if ev.Attrs["artifact"] == artifact {
			n++
		}
	}
	return n
}

// tagOnFirstRevision builds rev0 and a rev1 that tags rev0 as foo.
func tagOnFirstRevision(t *testing.T, env *testEnv) (rev0, rev1 plumbing.Hash) {
	t.Helper()

	rev0 = env.commit(t, nil)
	rev1 = env.commit(t, testutil.TagsFile(testutil.Tag("foo", rev0)), rev0)
	env.branch(t, "master", rev1)

	return rev0, rev1
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestNew_DefaultsToMemoryCacheForMemoryRepos(t *testing.T) {
	b, err := testutil.NewBuilder()
	require.NoError(t, err)

	engine, err := New(b.Repo)
	require.NoError(t, err)
	require.NotNil(t, engine.Store())
	assert.Same(t, b.Repo, engine.Repository())

	res, err := engine.Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReturnedAggregated, res.Outcome)
}

func TestTags_TagOnFirstRevision(t *testing.T) {
	env := newTestEnv(t)
	rev0, rev1 := tagOnFirstRevision(t, env)

	res := env.tags(t)

	assert.Equal(t, map[string]plumbing.Hash{
		"tip": rev1,
		"foo": rev0,
	}, res.Tags)
	assert.Equal(t, rev1, res.Tip)
	assert.Equal(t, ReturnedAggregated, res.Outcome)
	assert.Equal(t, cache.MissAbsent, res.Diagnostics.VisibleTagsMiss)

	writes := env.rec.Filter(logging.EventCacheWrite)
	assert.Equal(t, 1, countArtifact(writes, cache.FileNodesArtifact))
	assert.Equal(t, 1, countArtifact(writes, cache.VisibleTagsArtifact))
	assert.Equal(t, int64(0), env.exitStatus(t))
	assert.Equal(t, 1, env.rec.Count(logging.EventCommand))
}

func TestTags_CachedRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	tagOnFirstRevision(t, env)

	first := env.tags(t)
	env.rec.Reset()

	second := env.tags(t)

	assert.Equal(t, ReturnedCached, second.Outcome)
	assert.Equal(t, first.Tags, second.Tags)
	assert.True(t, first.Heads.Equal(second.Heads))

	reads := env.rec.Filter(logging.EventCacheRead)
	require.Len(t, reads, 1)
	assert.Equal(t, cache.VisibleTagsArtifact, reads[0].Attrs["artifact"])
	assert.Equal(t, logging.ResultHit, reads[0].Attrs["result"])
	assert.Zero(t, env.rec.Count(logging.EventCacheWrite))
}

func TestTags_NewHeadInvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	rev0, rev1 := tagOnFirstRevision(t, env)
	env.tags(t)

	rev2 := env.commit(t, testutil.TagsFile(testutil.Tag("foo", rev0), testutil.Tag("bar", rev1)), rev1)
	env.branch(t, "master", rev2)
	env.rec.Reset()

	res := env.tags(t)

	assert.Equal(t, ReturnedAggregated, res.Outcome)
	assert.Equal(t, cache.MissStale, res.Diagnostics.VisibleTagsMiss)
	assert.Equal(t, map[string]plumbing.Hash{
		"tip": rev2,
		"foo": rev0,
		"bar": rev1,
	}, res.Tags)

	// Known revisions come from the file-node artifact; only rev2 is new.
	reads := env.rec.Filter(logging.EventCacheRead)
	require.Len(t, reads, 2)
	assert.Equal(t, logging.ResultMiss, reads[0].Attrs["result"])
	assert.Equal(t, cache.FileNodesArtifact, reads[1].Attrs["artifact"])
	assert.Equal(t, logging.ResultHit, reads[1].Attrs["result"])
	assert.Equal(t, 1, countArtifact(env.rec.Filter(logging.EventCacheWrite), cache.FileNodesArtifact))
}

func TestTags_UnchangedFileNodesAreNotRewritten(t *testing.T) {
	env := newTestEnv(t)
	tagOnFirstRevision(t, env)
	env.tags(t)

	require.NoError(t, env.fsys.Remove(cache.DefaultDir+"/"+cache.VisibleTagsArtifact))
	env.rec.Reset()

	res := env.tags(t)

	assert.Equal(t, ReturnedAggregated, res.Outcome)
	assert.Equal(t, cache.MissAbsent, res.Diagnostics.VisibleTagsMiss)
	writes := env.rec.Filter(logging.EventCacheWrite)
	assert.Zero(t, countArtifact(writes, cache.FileNodesArtifact))
	assert.Equal(t, 1, countArtifact(writes, cache.VisibleTagsArtifact))
}

func TestTags_DeletedCacheIsRebuiltIdentically(t *testing.T) {
	env := newTestEnv(t)
	tagOnFirstRevision(t, env)

	first := env.tags(t)
	fnodes := env.artifact(t, cache.FileNodesArtifact)
	visible := env.artifact(t, cache.VisibleTagsArtifact)

	require.NoError(t, env.fsys.RemoveAll(cache.DefaultDir))

	second := env.tags(t)

	assert.Equal(t, ReturnedAggregated, second.Outcome)
	assert.Equal(t, cache.MissAbsent, second.Diagnostics.VisibleTagsMiss)
	assert.Equal(t, first.Tags, second.Tags)
	assert.Equal(t, fnodes, env.artifact(t, cache.FileNodesArtifact))
	assert.Equal(t, visible, env.artifact(t, cache.VisibleTagsArtifact))
}

func TestTags_TruncatedVisibleTagsRecomputes(t *testing.T) {
	env := newTestEnv(t)
	tagOnFirstRevision(t, env)

	first := env.tags(t)
	visible := env.artifact(t, cache.VisibleTagsArtifact)
	require.NoError(t, env.fsys.WriteFile(cache.DefaultDir+"/"+cache.VisibleTagsArtifact, visible[:len(visible)/2], 0o644))

	second := env.tags(t)

	assert.Equal(t, ReturnedAggregated, second.Outcome)
	assert.Equal(t, cache.MissCorrupt, second.Diagnostics.VisibleTagsMiss)
	assert.Equal(t, first.Tags, second.Tags)
	assert.Equal(t, visible, env.artifact(t, cache.VisibleTagsArtifact))
	assert.Equal(t, int64(0), env.exitStatus(t))
}

func TestTags_CorruptFileNodesAreReplaced(t *testing.T) {
	env := newTestEnv(t)
	rev0, _ := tagOnFirstRevision(t, env)
	env.tags(t)

	require.NoError(t, env.fsys.WriteFile(cache.DefaultDir+"/"+cache.FileNodesArtifact, []byte("garbage"), 0o644))
	require.NoError(t, env.fsys.Remove(cache.DefaultDir+"/"+cache.VisibleTagsArtifact))
	env.rec.Reset()

	res := env.tags(t)

	assert.Equal(t, rev0, res.Tags["foo"])
	assert.Equal(t, 1, countArtifact(env.rec.Filter(logging.EventCacheWrite), cache.FileNodesArtifact))
	assert.Equal(t, cache.StateValid, env.engine.Store().ReadFileNodes(context.Background()).State)
}

func TestTags_EmptyRepository(t *testing.T) {
	env := newTestEnv(t)

	res := env.tags(t)

	assert.Equal(t, map[string]plumbing.Hash{"tip": plumbing.ZeroHash}, res.Tags)
	assert.True(t, res.Tip.IsZero())
	assert.Zero(t, res.Heads.Len())

	again := env.tags(t)
	assert.Equal(t, ReturnedCached, again.Outcome)
}

func TestTags_CanceledContext(t *testing.T) {
	env := newTestEnv(t)
	tagOnFirstRevision(t, env)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.engine.Tags(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(255), env.exitStatus(t))
	assert.Zero(t, env.rec.Count(logging.EventCacheRead))
}

func TestTags_CustomTagsFile(t *testing.T) {
	env := newTestEnv(t, WithTagsFile("meta/tags"))

	rev0 := env.commit(t, nil)
	rev1 := env.commit(t, map[string]string{
		"meta/tags":           rev0.String() + " custom\n",
		testutil.TagsFilePath: rev0.String() + " ignored\n",
	}, rev0)
	env.branch(t, "master", rev1)

	res := env.tags(t)

	assert.Equal(t, map[string]plumbing.Hash{"tip": rev1, "custom": rev0}, res.Tags)

	exists, err := env.fsys.Exists(cacheDir("meta/tags") + "/" + cache.VisibleTagsArtifact)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCacheDir(t *testing.T) {
	assert.Equal(t, cache.DefaultDir, cacheDir(DefaultTagsFile))
	assert.NotEqual(t, cacheDir("a"), cacheDir("b"))
	assert.Equal(t, cacheDir("a"), cacheDir("a"))
}

func TestTags_GateDisabled(t *testing.T) {
	env := newTestEnv(t, WithConfig(StaticConfig{Disabled: true}))
	_, rev1 := tagOnFirstRevision(t, env)

	res := env.tags(t)

	assert.Equal(t, ReturnedTipOnly, res.Outcome)
	assert.Equal(t, map[string]plumbing.Hash{"tip": rev1}, res.Tags)
	assert.Zero(t, env.rec.Count(logging.EventCacheRead))
	assert.Zero(t, env.rec.Count(logging.EventCacheWrite))
	assert.Equal(t, int64(0), env.exitStatus(t))

	exists, err := env.fsys.Exists(cache.DefaultDir)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTags_GateFromGitConfig(t *testing.T) {
	env := newTestEnv(t)
	rev0, rev1 := tagOnFirstRevision(t, env)

	require.NoError(t, env.b.Repo.SetConfigValue(ConfigSection, ConfigKeyDisabled, "yes"))
	res := env.tags(t)
	assert.Equal(t, ReturnedTipOnly, res.Outcome)
	assert.Equal(t, map[string]plumbing.Hash{"tip": rev1}, res.Tags)

	// The gate is read on every query.
	require.NoError(t, env.b.Repo.SetConfigValue(ConfigSection, ConfigKeyDisabled, "false"))
	res = env.tags(t)
	assert.Equal(t, ReturnedAggregated, res.Outcome)
	assert.Equal(t, rev0, res.Tags["foo"])
}

func TestTags_InvalidGateValue(t *testing.T) {
	env := newTestEnv(t)
	tagOnFirstRevision(t, env)
	require.NoError(t, env.b.Repo.SetConfigValue(ConfigSection, ConfigKeyDisabled, "maybe"))

	res := env.tags(t)

	assert.Equal(t, ReturnedAggregated, res.Outcome)
	assert.Contains(t, res.Tags, "foo")
	assert.True(t, res.Diagnostics.InvalidConfig)
	assert.Equal(t, int64(0), env.exitStatus(t))

	warnings := env.rec.Filter(logging.EventInvalidConfig)
	require.Len(t, warnings, 1)
	assert.Equal(t, slog.LevelWarn, warnings[0].Level)
	assert.Equal(t, "tags.disabled", warnings[0].Attrs["key"])
}

func TestTags_ConfigReadFailure(t *testing.T) {
	env := newTestEnv(t, WithConfig(failingConfig{}))

	_, err := env.engine.Tags(context.Background())

	require.Error(t, err)
	assert.Equal(t, int64(255), env.exitStatus(t))
}

type failingConfig struct{}

func (failingConfig) DisableTags() (bool, error) {
	return false, platformerrors.New(platformerrors.CodeUnavailable, "config unreadable")
}

func TestExitStatus(t *testing.T) {
	assert.Equal(t, StatusOK, ExitStatus(nil))
	assert.Equal(t, StatusFatal, ExitStatus(context.Canceled))
}
