package repo

import (
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// Init creates a new Git repository at the specified path.
//
// By default, Init creates a standard (non-bare) repository using the local
// filesystem. This behavior can be customized using RepositoryOption functions.
//
// Returns ErrAlreadyExists if a repository already exists at the path.
//
// Examples:
//
//	// Create a standard repository
//	r, err := repo.Init("/path/to/repo")
//
//	// Create repository with custom filesystem (for testing)
//	r, err := repo.Init("/path/to/repo", repo.WithFilesystem(memfs.New()))
func Init(path string, opts ...RepositoryOption) (*Repository, error) {
	options, path, err := applyOptions(path, opts)
	if err != nil {
		return nil, err
	}

	fs := options.fs
	if err := fs.MkdirAll(path, 0o755); err != nil {
		return nil, wrapError(err, "failed to create repository directory")
	}

	scopedFs, err := fs.Chroot(path)
	if err != nil {
		return nil, wrapError(err, "failed to scope filesystem to path")
	}

	if options.bare {
		storage := filesystem.NewStorage(scopedFs, cache.NewObjectLRUDefault())
		repo, err := gogit.Init(storage, nil)
		if err != nil {
			return nil, wrapError(err, "failed to initialize bare repository")
		}
		return &Repository{path: path, gitDir: path, repo: repo, fs: scopedFs, bare: true}, nil
	}

	dotGitFs, err := scopedFs.Chroot(gogit.GitDirName)
	if err != nil {
		return nil, wrapError(err, "failed to create .git filesystem")
	}

	storage := filesystem.NewStorage(dotGitFs, cache.NewObjectLRUDefault())
	repo, err := gogit.Init(storage, scopedFs)
	if err != nil {
		return nil, wrapError(err, "failed to initialize repository")
	}

	return &Repository{
		path:   path,
		gitDir: filepath.Join(path, gogit.GitDirName),
		repo:   repo,
		fs:     scopedFs,
	}, nil
}

// Open opens an existing Git repository at the specified path.
//
// Both standard repositories (with a .git directory) and bare repositories
// are supported. Returns ErrNotFound if no repository exists at the path.
//
// Examples:
//
//	r, err := repo.Open("/path/to/repo")
//	r, err := repo.Open("/path/to/repo", repo.WithFilesystem(fs))
func Open(path string, opts ...RepositoryOption) (*Repository, error) {
	options, path, err := applyOptions(path, opts)
	if err != nil {
		return nil, err
	}

	scopedFs, err := options.fs.Chroot(path)
	if err != nil {
		return nil, wrapError(err, "failed to scope filesystem to path")
	}

	dotGitStat, dotGitErr := scopedFs.Stat(gogit.GitDirName)
	if dotGitErr == nil && dotGitStat.IsDir() {
		dotGitFs, err := scopedFs.Chroot(gogit.GitDirName)
		if err != nil {
			return nil, wrapError(err, "failed to scope filesystem to .git")
		}

		storage := filesystem.NewStorage(dotGitFs, cache.NewObjectLRUDefault())
		repo, err := gogit.Open(storage, scopedFs)
		if err != nil {
			return nil, wrapError(err, "failed to open repository")
		}

		return &Repository{
			path:   path,
			gitDir: filepath.Join(path, gogit.GitDirName),
			repo:   repo,
			fs:     scopedFs,
		}, nil
	}

	storage := filesystem.NewStorage(scopedFs, cache.NewObjectLRUDefault())
	repo, err := gogit.Open(storage, nil)
	if err != nil {
		return nil, wrapError(err, "failed to open repository")
	}

	return &Repository{path: path, gitDir: path, repo: repo, fs: scopedFs, bare: true}, nil
}

// applyOptions resolves the options and the path they apply to. Paths on the
// local filesystem are made absolute so the default root-scoped osfs can be
// chrooted to them.
func applyOptions(path string, opts []RepositoryOption) (*repositoryOptions, string, error) {
	options := &repositoryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.fs == nil {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, "", wrapError(err, "failed to resolve repository path")
		}
		options.fs = osfs.New("/")
		path = abs
	}

	return options, path, nil
}

// Underlying returns the underlying go-git Repository for advanced operations
// not covered by this wrapper.
func (r *Repository) Underlying() *gogit.Repository {
	return r.repo
}

// Filesystem returns the billy.Filesystem associated with this repository.
//
// For standard repositories this is scoped to the working tree. For bare
// repositories it is scoped to the repository directory itself.
func (r *Repository) Filesystem() billy.Filesystem {
	return r.fs
}

// Path returns the path the repository was opened or initialized at.
func (r *Repository) Path() string {
	return r.path
}

// GitDir returns the path of the Git directory: the .git subdirectory for
// standard repositories and the repository path for bare ones.
func (r *Repository) GitDir() string {
	return r.gitDir
}

// IsBare reports whether the repository has no working tree.
func (r *Repository) IsBare() bool {
	return r.bare
}

// IsMemory reports whether the repository lives on an in-memory filesystem.
func (r *Repository) IsMemory() bool {
	return isMemoryFilesystem(r.fs)
}
