package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmgilman/go/fs/core"
	"github.com/jmgilman/go/tags/internal/logging"
)

// DefaultDir is the cache directory relative to the filesystem root handed
// to NewStore, normally the repository's Git directory.
const DefaultDir = "cache"

// Store owns the tag cache artifacts. It is the only writer of both files;
// every read result is advisory and a damaged artifact degrades to a miss.
//
// A Store is safe for concurrent use. Separate processes sharing a cache
// directory rely on atomic renames: the last writer wins and readers never
// observe a partial file.
type Store struct {
	storage *storage
	logger  *logging.Logger
	mu      sync.Mutex
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	dir    string
	logger *logging.Logger
}

// WithDir sets the cache directory inside the filesystem.
func WithDir(dir string) Option {
	return func(o *storeOptions) {
		o.dir = dir
	}
}

// WithLogger sets the logger that receives cache read and write events.
func WithLogger(logger *logging.Logger) Option {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// NewStore creates a Store on fsys. Nothing is created on disk until the
// first write.
//
// Example:
//
//	gitFS, err := fsbilly.NewLocal().Chroot(r.GitDir())
//	store, err := cache.NewStore(gitFS)
func NewStore(fsys core.FS, opts ...Option) (*Store, error) {
	options := storeOptions{dir: DefaultDir}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = logging.NewNopLogger()
	}

	s, err := newStorage(fsys, options.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache store: %w", err)
	}

	return &Store{storage: s, logger: options.logger}, nil
}

// Clear removes both artifacts.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range []string{FileNodesArtifact, VisibleTagsArtifact} {
		if err := s.storage.remove(ctx, name); err != nil {
			return err
		}
	}

	return nil
}

// CleanupTempFiles removes temporary files left behind by interrupted writers
// and returns how many were removed.
func (s *Store) CleanupTempFiles(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.storage.cleanupTempFiles(ctx)
}

// Stats reports presence, size and validity of both artifacts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats Stats
	var err error

	stats.FileNodes, err = s.artifactStats(ctx, FileNodesArtifact, func(data []byte) (int, error) {
		nodes, err := decodeFileNodes(data)
		return len(nodes), err
	})
	if err != nil {
		return Stats{}, err
	}

	stats.VisibleTags, err = s.artifactStats(ctx, VisibleTagsArtifact, func(data []byte) (int, error) {
		_, tags, err := decodeVisibleTags(data)
		return len(tags), err
	})
	if err != nil {
		return Stats{}, err
	}

	temps, err := s.storage.tempFiles()
	if err != nil {
		return Stats{}, err
	}
	stats.TempFiles = len(temps)

	return stats, nil
}

func (s *Store) artifactStats(ctx context.Context, name string, decode func([]byte) (int, error)) (ArtifactStats, error) {
	st := ArtifactStats{Name: name, State: StateAbsent}

	data, ok, err := s.storage.read(ctx, name)
	if err != nil {
		return st, err
	}
	if !ok {
		return st, nil
	}

	st.Present = true
	st.Size = int64(len(data))
	n, err := decode(data)
	if err != nil {
		st.State = StateCorrupt
		return st, nil
	}
	st.State = StateValid
	st.Entries = n

	return st, nil
}
