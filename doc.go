// Package tags resolves repository tags and caches the result.
//
// Tags are defined by a versioned file (.hgtags by default) committed to the
// repository. Each line maps a name to a commit; a zero target deletes the
// name. Because the file is versioned, different branches may disagree. The
// engine walks every visible revision reachable from the branch heads, tracks
// which revision introduced each tag value and merges the head lineages: a
// redefinition on a descendant beats the original and unrelated definitions
// resolve to the newer source. The synthetic tag "tip" always names the newest
// visible revision.
//
// Two artifacts under the Git directory make repeated queries cheap:
//
//   - cache/tagsfnodes1 memoises the tags-file blob of each revision.
//   - cache/tags2-visible stores the final mapping keyed by the head set.
//
// A query whose head set matches the stored one is answered without reading
// history. Damaged or missing artifacts only cost a recomputation.
//
// Basic usage:
//
//	r, err := repo.Open(".")
//	if err != nil {
//	    return err
//	}
//	engine, err := tags.New(r)
//	if err != nil {
//	    return err
//	}
//	res, err := engine.Tags(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, tag := range res.List() {
//	    fmt.Printf("%s %s\n", tag.Target, tag.Name)
//	}
//
// Setting "[tags] disabled = true" in the repository's Git config, or passing
// WithConfig(StaticConfig{Disabled: true}), reduces every query to tip alone.
package tags
