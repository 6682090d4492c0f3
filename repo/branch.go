package repo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
)

// SetBranch points the local branch name at rev, creating the branch if needed.
//
// Example:
//
//	err := r.SetBranch("main", hash)
func (r *Repository) SetBranch(name string, rev plumbing.Hash) error {
	if name == "" {
		return wrapError(fmt.Errorf("branch name is required"), "failed to set branch")
	}

	if _, err := r.repo.CommitObject(rev); err != nil {
		return wrapError(err, fmt.Sprintf("failed to find commit %s", rev))
	}

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), rev)
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return wrapError(err, fmt.Sprintf("failed to set branch %q", name))
	}

	return nil
}

// SetHEAD makes HEAD a symbolic reference to the local branch name.
// The branch does not need to exist yet (an unborn branch).
func (r *Repository) SetHEAD(name string) error {
	if name == "" {
		return wrapError(fmt.Errorf("branch name is required"), "failed to set HEAD")
	}

	ref := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(name))
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return wrapError(err, "failed to set HEAD")
	}

	return nil
}

// DeleteBranch removes a local branch. Commits only reachable from it drop
// out of the visible graph on the next query.
func (r *Repository) DeleteBranch(name string) error {
	if name == "" {
		return wrapError(fmt.Errorf("branch name is required"), "failed to delete branch")
	}

	branchRef := plumbing.NewBranchReferenceName(name)
	if _, err := r.repo.Reference(branchRef, false); err != nil {
		return wrapError(err, fmt.Sprintf("failed to find branch %q", name))
	}

	if err := r.repo.Storer.RemoveReference(branchRef); err != nil {
		return wrapError(err, fmt.Sprintf("failed to delete branch %q", name))
	}

	return nil
}

// ListBranches returns all local branches sorted by name.
func (r *Repository) ListBranches() ([]Branch, error) {
	var branches []Branch

	refs, err := r.repo.References()
	if err != nil {
		return nil, wrapError(err, "failed to list references")
	}

	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsBranch() && ref.Type() == plumbing.HashReference {
			branches = append(branches, Branch{
				Name: ref.Name().Short(),
				Hash: ref.Hash(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err, "failed to iterate references")
	}

	sort.Slice(branches, func(i, j int) bool {
		return branches[i].Name < branches[j].Name
	})

	return branches, nil
}

// headRevision returns the commit HEAD resolves to. The boolean is false when
// HEAD points at an unborn branch.
func (r *Repository) headRevision() (plumbing.Hash, bool, error) {
	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, false, nil
		}
		return plumbing.ZeroHash, false, wrapError(err, "failed to resolve HEAD")
	}
	return head.Hash(), true, nil
}

// HeadRevision returns the revision HEAD points at, or the zero hash when HEAD
// is unborn.
func (r *Repository) HeadRevision() (plumbing.Hash, error) {
	hash, _, err := r.headRevision()
	return hash, err
}

// ResolveRevision resolves a branch name, a full hash or another revision
// expression understood by go-git to a commit.
func (r *Repository) ResolveRevision(expr string) (plumbing.Hash, error) {
	if expr == "" {
		return plumbing.ZeroHash, wrapError(fmt.Errorf("empty revision"), "failed to resolve revision")
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(expr))
	if err != nil {
		return plumbing.ZeroHash, wrapError(err, fmt.Sprintf("failed to resolve revision %q", expr))
	}
	return *hash, nil
}
