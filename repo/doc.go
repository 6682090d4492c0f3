// Package repo provides a go-git backed view of a repository's commit graph
// for tag resolution.
//
// The package wraps go-git with platform conventions: all I/O goes through a
// billy filesystem, errors are classified as platform errors, and Underlying()
// is available as an escape hatch for anything not covered here.
//
// # Commit graph
//
// LoadGraph walks every commit reachable from the local branches and HEAD and
// orders them by an intrinsic key (generation, committer time, hash). The
// position in that order is the revision's Rank: ancestors always have a lower
// rank than their descendants, and a higher rank is newer.
//
//	g, err := r.LoadGraph(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println("tip:", g.Tip().Hash)
//	fmt.Println("heads:", g.Heads())
//
// # Visibility
//
// A commit can be marked obsolete with MarkObsolete, which records a reference
// under refs/obsolete/. An obsolete commit is hidden once nothing visible
// descends from it. The commit HEAD points at is never hidden. Hidden commits
// stay loaded in the Graph but are excluded from Visible, Heads and Tip.
//
// # Head sets
//
// HeadSet is the set of visible commits with no visible descendant. It is
// compared as a set, so two head sets with the same members are equal however
// they were enumerated, and Key gives a canonical byte form for cache keys.
//
// # File nodes
//
// FileNode returns the blob hash of a path at a revision. Two revisions whose
// files have the same content share a file node, which lets callers detect
// whether a commit changed a file without reading it.
//
// # Building graphs
//
// WriteCommit stores a commit with explicit parents, timestamp and a full file
// snapshot directly in the object database. Together with SetBranch it builds
// merges and divergent heads without a working tree, which is how the tests in
// this module construct their fixtures.
package repo
