// Package tagfile parses tags-definition files.
//
// A tags-definition file holds one tag per line:
//
//	<40-hex revision> <tag name>
//
// A line whose revision is all zeros deletes the name. Blank lines and lines
// starting with '#' are ignored. Lines are independent: a malformed line is
// skipped and counted without affecting the rest of the file.
package tagfile

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// ReservedName is the synthetic tag naming the newest visible revision. It can
// never be defined in a tags file.
const ReservedName = "tip"

// Kind distinguishes definitions from deletions.
type Kind int

const (
	// Normal maps the name to Target.
	Normal Kind = iota
	// Deleted suppresses the name.
	Deleted
)

func (k Kind) String() string {
	if k == Deleted {
		return "deleted"
	}
	return "normal"
}

// Entry is a single parsed line.
type Entry struct {
	Name   string
	Target plumbing.Hash
	Kind   Kind
	// Line is the 1-based line number in the file.
	Line int
}

// Result is the outcome of parsing one file.
type Result struct {
	// Entries in file order, including overridden ones.
	Entries []Entry
	// Skipped counts malformed lines.
	Skipped int
}

// Parse reads a tags-definition file. It never fails.
func Parse(content []byte) Result {
	var res Result

	for i, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, ok := parseLine(line)
		if !ok {
			res.Skipped++
			continue
		}
		entry.Line = i + 1
		res.Entries = append(res.Entries, entry)
	}

	return res
}

func parseLine(line string) (Entry, bool) {
	hex, name, found := strings.Cut(line, " ")
	if !found {
		return Entry{}, false
	}

	name = strings.TrimSpace(name)
	if name == "" || name == ReservedName || !isHex40(hex) {
		return Entry{}, false
	}

	target := plumbing.NewHash(hex)
	kind := Normal
	if target.IsZero() {
		kind = Deleted
	}

	return Entry{Name: name, Target: target, Kind: kind}, true
}

func isHex40(s string) bool {
	if len(s) != 40 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// Effective collapses the entries so each name appears once with the value of
// its last line. Names keep the position of their first appearance.
func (r Result) Effective() []Entry {
	index := make(map[string]int, len(r.Entries))
	var out []Entry

	for _, e := range r.Entries {
		if i, ok := index[e.Name]; ok {
			out[i] = e
			continue
		}
		index[e.Name] = len(out)
		out = append(out, e)
	}

	return out
}

// Format renders entries as tags-definition file content, one line each.
func Format(entries []Entry) []byte {
	var b strings.Builder
	for _, e := range entries {
		target := e.Target
		if e.Kind == Deleted {
			target = plumbing.ZeroHash
		}
		b.WriteString(target.String())
		b.WriteByte(' ')
		b.WriteString(e.Name)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
