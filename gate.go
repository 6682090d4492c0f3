package tags

import (
	"context"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/tags/cache"
	"github.com/jmgilman/go/tags/internal/logging"
)

// strategy produces the tag mapping for one query. The feature gate picks
// one strategy per query.
type strategy interface {
	tags(ctx context.Context, logger *logging.Logger) (*Result, error)
}

// selectStrategy reads the feature gate. An unparsable gate value is logged
// and treated as unset, so tags stay enabled; the boolean result reports it.
func (e *Engine) selectStrategy(ctx context.Context, logger *logging.Logger) (strategy, bool, error) {
	disabled, err := e.config.DisableTags()
	invalid := false
	if err != nil {
		if platformerrors.GetCode(err) != platformerrors.CodeInvalidConfig {
			return nil, false, err
		}
		logging.LogInvalidConfig(ctx, logger, ConfigSection+"."+ConfigKeyDisabled, err)
		disabled, invalid = false, true
	}
	if disabled {
		return tipOnlyStrategy{engine: e}, invalid, nil
	}
	return cachedStrategy{engine: e}, invalid, nil
}

// tipOnlyStrategy answers with tip alone, resolved from HEAD. It walks no
// history and never touches the cache.
type tipOnlyStrategy struct {
	engine *Engine
}

func (s tipOnlyStrategy) tags(context.Context, *logging.Logger) (*Result, error) {
	head, err := s.engine.repo.HeadRevision()
	if err != nil {
		return nil, err
	}

	res := newResult(nil, head, nil)
	res.Outcome = ReturnedTipOnly
	return res, nil
}

// cachedStrategy serves the visible-tags artifact when it matches the current
// head set and otherwise aggregates and persists the mapping.
type cachedStrategy struct {
	engine *Engine
}

func (s cachedStrategy) tags(ctx context.Context, logger *logging.Logger) (*Result, error) {
	e := s.engine

	graph, err := e.repo.LoadGraph(ctx)
	if err != nil {
		return nil, err
	}

	heads := graph.Heads()
	tip := graph.Tip()
	tipHash := zeroTip
	if tip != nil {
		tipHash = tip.Hash
	}

	cached := e.store.ReadVisibleTags(ctx, heads)
	if cached.Hit {
		res := newResult(cached.Tags, tipHash, graph)
		res.Heads = heads
		res.Outcome = ReturnedCached
		return res, nil
	}

	var diag Diagnostics
	diag.VisibleTagsMiss = cached.Reason

	resolver := newFileNodeResolver(e.repo, e.store, e.tagsFile)
	agg := &aggregator{graph: graph, resolver: resolver, logger: logger, diag: &diag}
	mapping := agg.aggregate(ctx)

	if err := resolver.flush(ctx); err != nil {
		diag.CacheWriteErrors++
		logger.Warn(ctx, "failed to persist cache", "artifact", cache.FileNodesArtifact, "error", err.Error())
	}
	if err := e.store.WriteVisibleTags(ctx, heads, mapping); err != nil {
		diag.CacheWriteErrors++
		logger.Warn(ctx, "failed to persist cache", "artifact", cache.VisibleTagsArtifact, "error", err.Error())
	}

	res := newResult(mapping, tipHash, graph)
	res.Heads = heads
	res.Outcome = ReturnedAggregated
	res.Diagnostics = diag
	return res, nil
}
