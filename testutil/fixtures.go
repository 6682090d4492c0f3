package testutil

import (
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/jmgilman/go/tags/tagfile"
)

// Test user information used across all test helpers.
const (
	// TestAuthor is the default author name for test commits.
	TestAuthor = "Test User"

	// TestEmail is the default email for test commits.
	TestEmail = "test@example.com"
)

// TagsFilePath is the tags-definition file the helpers write.
const TagsFilePath = ".hgtags"

// TestEpoch is the committer time of the first commit a Builder writes.
var TestEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Tag returns a tags-file line mapping name to target.
func Tag(name string, target plumbing.Hash) tagfile.Entry {
	return tagfile.Entry{Name: name, Target: target, Kind: tagfile.Normal}
}

// DeleteTag returns a tags-file line deleting name.
func DeleteTag(name string) tagfile.Entry {
	return tagfile.Entry{Name: name, Target: plumbing.ZeroHash, Kind: tagfile.Deleted}
}

// TagsFile returns a commit snapshot holding only a tags file with entries.
func TagsFile(entries ...tagfile.Entry) map[string]string {
	return map[string]string{TagsFilePath: string(tagfile.Format(entries))}
}

// RawTagsFile returns a commit snapshot holding only a tags file with the
// given literal content, for malformed-input tests.
func RawTagsFile(content string) map[string]string {
	return map[string]string{TagsFilePath: content}
}
