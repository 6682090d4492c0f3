package tags

import (
	"log/slog"

	"github.com/jmgilman/go/fs/core"
	"github.com/jmgilman/go/tags/cache"
	"github.com/jmgilman/go/tags/internal/logging"
)

// DefaultTagsFile is the tags-definition file read from each commit.
const DefaultTagsFile = ".hgtags"

// Option configures an Engine.
type Option func(*options)

type options struct {
	logger   *logging.Logger
	cacheFS  core.FS
	store    *cache.Store
	config   ConfigSource
	tagsFile string
}

// WithLogHandler sends the engine's diagnostic events to handler.
//
// Example:
//
//	engine, err := tags.New(r, tags.WithLogHandler(slog.NewTextHandler(os.Stderr, nil)))
func WithLogHandler(handler slog.Handler) Option {
	return func(o *options) {
		o.logger = logging.NewLoggerWithHandler(handler)
	}
}

// WithCacheFS places the cache artifacts on fsys instead of the repository's
// Git directory. The artifacts live under cache/ inside fsys.
func WithCacheFS(fsys core.FS) Option {
	return func(o *options) {
		o.cacheFS = fsys
	}
}

// WithStore uses an existing cache store. It takes precedence over
// WithCacheFS.
func WithStore(store *cache.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithConfig overrides where the feature gate is read from. By default it is
// read from the repository's Git config.
func WithConfig(source ConfigSource) Option {
	return func(o *options) {
		o.config = source
	}
}

// WithTagsFile sets the path of the tags-definition file.
func WithTagsFile(path string) Option {
	return func(o *options) {
		o.tagsFile = path
	}
}
