package repo

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// HeadSet is a sorted, duplicate-free set of head revisions. Two HeadSets with
// the same members are equal regardless of the order they were built in.
type HeadSet struct {
	hashes []plumbing.Hash
}

// NewHeadSet builds a HeadSet from hashes in any order.
func NewHeadSet(hashes ...plumbing.Hash) HeadSet {
	sorted := append([]plumbing.Hash(nil), hashes...)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})

	out := sorted[:0]
	for i, h := range sorted {
		if i > 0 && h == sorted[i-1] {
			continue
		}
		out = append(out, h)
	}

	return HeadSet{hashes: out}
}

// Hashes returns a copy of the members in ascending byte order.
func (s HeadSet) Hashes() []plumbing.Hash {
	return append([]plumbing.Hash(nil), s.hashes...)
}

// Len returns the number of heads.
func (s HeadSet) Len() int {
	return len(s.hashes)
}

// Contains reports whether h is a member.
func (s HeadSet) Contains(h plumbing.Hash) bool {
	i := sort.Search(len(s.hashes), func(i int) bool {
		return bytes.Compare(s.hashes[i][:], h[:]) >= 0
	})
	return i < len(s.hashes) && s.hashes[i] == h
}

// Equal reports whether both sets have the same members.
func (s HeadSet) Equal(other HeadSet) bool {
	if len(s.hashes) != len(other.hashes) {
		return false
	}
	for i := range s.hashes {
		if s.hashes[i] != other.hashes[i] {
			return false
		}
	}
	return true
}

// Key returns the canonical byte form of the set: the member hashes
// concatenated in sorted order.
func (s HeadSet) Key() []byte {
	key := make([]byte, 0, len(s.hashes)*len(plumbing.ZeroHash))
	for _, h := range s.hashes {
		key = append(key, h[:]...)
	}
	return key
}

// String renders the set as comma-separated hex hashes.
func (s HeadSet) String() string {
	parts := make([]string, len(s.hashes))
	for i, h := range s.hashes {
		parts[i] = h.String()
	}
	return strings.Join(parts, ",")
}

// Heads returns the current visible head set.
func (r *Repository) Heads(ctx context.Context) (HeadSet, error) {
	g, err := r.LoadGraph(ctx)
	if err != nil {
		return HeadSet{}, err
	}
	return g.Heads(), nil
}
