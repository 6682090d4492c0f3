package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync/atomic"

	"github.com/jmgilman/go/fs/core"
)

// tempSuffix marks files written by writeAtomically before they are renamed
// into place. Leftovers come from writers that died mid-write.
const tempSuffix = ".tmp"

var tempCounter atomic.Uint64

// storage provides atomic file operations for the cache directory.
// It uses core.FS for filesystem abstraction, supporting both OS and in-memory
// filesystems.
type storage struct {
	fs  core.FS
	dir string
}

func newStorage(fsys core.FS, dir string) (*storage, error) {
	if fsys == nil {
		return nil, fmt.Errorf("filesystem cannot be nil")
	}
	if dir == "" {
		return nil, fmt.Errorf("cache directory cannot be empty")
	}

	return &storage{fs: fsys, dir: dir}, nil
}

func (s *storage) path(name string) string {
	return path.Join(s.dir, name)
}

// read returns the content of the named artifact. The boolean is false when
// the artifact does not exist.
func (s *storage) read(ctx context.Context, name string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("context cancelled: %w", err)
	}

	data, err := s.fs.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %q: %w", name, err)
	}

	return data, true, nil
}

// writeAtomically writes data to a temporary file next to the artifact and
// renames it into place, so readers see either the old or the new content.
func (s *storage) writeAtomically(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	// Reads never create the directory, and it may be removed between writes.
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory %q: %w", s.dir, err)
	}

	tempName := fmt.Sprintf("%s.%d.%d%s", s.path(name), os.Getpid(), tempCounter.Add(1), tempSuffix)
	if err := s.fs.WriteFile(tempName, data, 0o644); err != nil {
		_ = s.fs.Remove(tempName)
		return fmt.Errorf("failed to write temp file for %q: %w", name, err)
	}

	if err := s.fs.Rename(tempName, s.path(name)); err != nil {
		_ = s.fs.Remove(tempName)
		return fmt.Errorf("failed to rename temp file to %q: %w", name, err)
	}

	return nil
}

// remove deletes the named artifact. A missing artifact is not an error.
func (s *storage) remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	if err := s.fs.Remove(s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %q: %w", name, err)
	}

	return nil
}

// size returns the size of the named artifact, or -1 if it does not exist.
func (s *storage) size(name string) (int64, error) {
	info, err := s.fs.Stat(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return -1, nil
		}
		return 0, fmt.Errorf("failed to stat %q: %w", name, err)
	}
	return info.Size(), nil
}

// tempFiles lists leftover temporary files in the cache directory.
func (s *storage) tempFiles() ([]string, error) {
	entries, err := s.fs.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var temps []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), tempSuffix) {
			temps = append(temps, entry.Name())
		}
	}

	return temps, nil
}

// cleanupTempFiles removes leftover temporary files and returns how many were
// removed.
func (s *storage) cleanupTempFiles(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled: %w", err)
	}

	temps, err := s.tempFiles()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range temps {
		if err := s.fs.Remove(s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("failed to remove temp file %q: %w", name, err)
		}
		removed++
	}

	return removed, nil
}
