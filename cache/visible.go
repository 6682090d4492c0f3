package cache

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/jmgilman/go/tags/internal/logging"
	"github.com/jmgilman/go/tags/repo"
	"github.com/jmgilman/go/tags/tagfile"
)

const (
	visibleTagsMagic   = "TGVS"
	visibleTagsVersion = 1
)

// ReadVisibleTags returns the cached mapping if it was written for exactly
// heads. Any other state is a miss with a reason.
func (s *Store) ReadVisibleTags(ctx context.Context, heads repo.HeadSet) VisibleResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.readVisibleTags(ctx, heads)
	result := logging.ResultHit
	switch res.Reason {
	case MissAbsent:
		result = logging.ResultAbsent
	case MissCorrupt:
		result = logging.ResultCorrupt
	case MissStale:
		result = logging.ResultMiss
	}
	logging.LogCacheRead(ctx, s.logger, VisibleTagsArtifact, result)

	return res
}

func (s *Store) readVisibleTags(ctx context.Context, heads repo.HeadSet) VisibleResult {
	data, ok, err := s.storage.read(ctx, VisibleTagsArtifact)
	if err != nil {
		return VisibleResult{Reason: MissCorrupt}
	}
	if !ok {
		return VisibleResult{Reason: MissAbsent}
	}

	cachedHeads, tags, err := decodeVisibleTags(data)
	if err != nil {
		return VisibleResult{Reason: MissCorrupt}
	}
	if !cachedHeads.Equal(heads) {
		return VisibleResult{Reason: MissStale, Heads: cachedHeads}
	}

	return VisibleResult{Hit: true, Tags: tags, Heads: cachedHeads}
}

// WriteVisibleTags replaces the visible-tags artifact with tags, recorded
// against heads. The synthetic tip entry is never persisted.
func (s *Store) WriteVisibleTags(ctx context.Context, heads repo.HeadSet, tags VisibleTags) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, count, err := encodeVisibleTags(heads, tags)
	if err != nil {
		return err
	}
	if err := s.storage.writeAtomically(ctx, VisibleTagsArtifact, data); err != nil {
		return err
	}

	logging.LogCacheWrite(ctx, s.logger, VisibleTagsArtifact, len(data), "tags", count)
	return nil
}

func encodeVisibleTags(heads repo.HeadSet, tags VisibleTags) ([]byte, int, error) {
	names := make([]string, 0, len(tags))
	for name := range tags {
		if name == tagfile.ReservedName {
			continue
		}
		if len(name) > math.MaxUint16 {
			return nil, 0, fmt.Errorf("tag name too long: %d bytes", len(name))
		}
		names = append(names, name)
	}
	sort.Strings(names)

	e := newEncoder(visibleTagsMagic, visibleTagsVersion)

	hashes := heads.Hashes()
	e.uint32(uint32(len(hashes)))
	for _, h := range hashes {
		e.hash(h)
	}

	e.uint32(uint32(len(names)))
	for _, name := range names {
		e.uint16(uint16(len(name)))
		e.bytes([]byte(name))
		e.hash(tags[name])
	}

	return e.finish(), len(names), nil
}

func decodeVisibleTags(data []byte) (repo.HeadSet, VisibleTags, error) {
	d, err := newDecoder(data, visibleTagsMagic, visibleTagsVersion)
	if err != nil {
		return repo.HeadSet{}, nil, err
	}

	headCount, err := d.uint32()
	if err != nil {
		return repo.HeadSet{}, nil, err
	}
	if err := d.need(int(headCount) * hashSize); err != nil {
		return repo.HeadSet{}, nil, err
	}

	hashes := make([]plumbing.Hash, 0, headCount)
	for i := uint32(0); i < headCount; i++ {
		h, err := d.hash()
		if err != nil {
			return repo.HeadSet{}, nil, err
		}
		hashes = append(hashes, h)
	}

	tagCount, err := d.uint32()
	if err != nil {
		return repo.HeadSet{}, nil, err
	}

	tags := make(VisibleTags)
	for i := uint32(0); i < tagCount; i++ {
		n, err := d.uint16()
		if err != nil {
			return repo.HeadSet{}, nil, err
		}
		name, err := d.bytes(int(n))
		if err != nil {
			return repo.HeadSet{}, nil, err
		}
		target, err := d.hash()
		if err != nil {
			return repo.HeadSet{}, nil, err
		}
		tags[string(name)] = target
	}

	if err := d.done(); err != nil {
		return repo.HeadSet{}, nil, err
	}

	return repo.NewHeadSet(hashes...), tags, nil
}
