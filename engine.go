package tags

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-git/go-git/v5/plumbing"
	fsbilly "github.com/jmgilman/go/fs/billy"
	"github.com/jmgilman/go/fs/core"
	"github.com/jmgilman/go/tags/cache"
	"github.com/jmgilman/go/tags/internal/logging"
	"github.com/jmgilman/go/tags/repo"
)

// Exit statuses recorded by the command exited event.
const (
	StatusOK    = 0
	StatusFatal = 255
)

var zeroTip = plumbing.ZeroHash

// Engine resolves tags for one repository. An Engine holds no per-query
// state; every call to Tags re-reads the gate, the refs and the cache.
type Engine struct {
	repo     *repo.Repository
	store    *cache.Store
	config   ConfigSource
	tagsFile string
	logger   *logging.Logger
}

// New creates an Engine for r.
//
// By default the cache artifacts live under cache/ in the repository's Git
// directory (in memory for in-memory repositories), the gate is read from
// the repository's Git config and events are discarded.
//
// Example:
//
//	r, err := repo.Open(".")
//	engine, err := tags.New(r)
//	res, err := engine.Tags(ctx)
//	for _, tag := range res.List() {
//	    fmt.Println(tag.Target, tag.Name)
//	}
func New(r *repo.Repository, opts ...Option) (*Engine, error) {
	if r == nil {
		return nil, fmt.Errorf("repository cannot be nil")
	}

	o := options{tagsFile: DefaultTagsFile}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NewNopLogger()
	}
	if o.config == nil {
		o.config = RepoConfig{Repo: r}
	}

	store := o.store
	if store == nil {
		fsys, err := cacheFilesystem(r, o.cacheFS)
		if err != nil {
			return nil, err
		}
		store, err = cache.NewStore(fsys,
			cache.WithDir(cacheDir(o.tagsFile)),
			cache.WithLogger(o.logger.WithOperation(logging.OpTags)))
		if err != nil {
			return nil, err
		}
	}

	return &Engine{
		repo:     r,
		store:    store,
		config:   o.config,
		tagsFile: o.tagsFile,
		logger:   o.logger,
	}, nil
}

func cacheFilesystem(r *repo.Repository, fsys core.FS) (core.FS, error) {
	if fsys != nil {
		return fsys, nil
	}
	if r.IsMemory() {
		return fsbilly.NewMemory(), nil
	}

	gitFS, err := fsbilly.NewLocal().Chroot(r.GitDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open git directory %q: %w", r.GitDir(), err)
	}
	return gitFS, nil
}

// cacheDir keeps the artifacts of a non-default tags file apart from the
// default ones.
func cacheDir(tagsFile string) string {
	if tagsFile == DefaultTagsFile {
		return cache.DefaultDir
	}
	return path.Join(cache.DefaultDir, fmt.Sprintf("tags-%016x", xxhash.Sum64String(tagsFile)))
}

// Store returns the cache store the engine reads and writes.
func (e *Engine) Store() *cache.Store {
	return e.store
}

// Repository returns the repository the engine reads.
func (e *Engine) Repository() *repo.Repository {
	return e.repo
}

// Tags returns the current tag mapping, including the synthetic tip.
//
// Unreadable tags files, malformed lines and damaged cache artifacts are
// absorbed and reported in Result.Diagnostics. An error is returned only when
// the repository itself cannot be read. An unparsable gate value is treated as
// unset and reported in Result.Diagnostics.
func (e *Engine) Tags(ctx context.Context) (res *Result, err error) {
	start := time.Now()
	logger := e.logger.WithOperation(logging.OpTags)

	logging.LogCommand(ctx, logger, logging.OpTags)
	defer func() {
		logging.LogCommandExited(ctx, logger, logging.OpTags, ExitStatus(err), time.Since(start))
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s, invalidConfig, err := e.selectStrategy(ctx, logger)
	if err != nil {
		return nil, err
	}

	res, err = s.tags(ctx, logger)
	if err != nil {
		return nil, err
	}
	res.Diagnostics.InvalidConfig = invalidConfig
	return res, nil
}

// ExitStatus maps a query error to the status reported in the command exited
// event.
func ExitStatus(err error) int {
	if err != nil {
		return StatusFatal
	}
	return StatusOK
}
