package cache

import (
	"bytes"
	"context"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/jmgilman/go/tags/internal/logging"
)

const (
	fileNodesMagic   = "TGFN"
	fileNodesVersion = 1
)

// ReadFileNodes loads the file-node artifact. It never fails: a missing file
// is StateAbsent and anything unreadable is StateCorrupt.
func (s *Store) ReadFileNodes(ctx context.Context) FileNodesResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.readFileNodes(ctx)
	result := logging.ResultHit
	switch res.State {
	case StateAbsent:
		result = logging.ResultAbsent
	case StateCorrupt:
		result = logging.ResultCorrupt
	}
	logging.LogCacheRead(ctx, s.logger, FileNodesArtifact, result)

	return res
}

func (s *Store) readFileNodes(ctx context.Context) FileNodesResult {
	data, ok, err := s.storage.read(ctx, FileNodesArtifact)
	if err != nil {
		return FileNodesResult{State: StateCorrupt, Nodes: FileNodes{}, Err: err}
	}
	if !ok {
		return FileNodesResult{State: StateAbsent, Nodes: FileNodes{}}
	}

	nodes, err := decodeFileNodes(data)
	if err != nil {
		return FileNodesResult{State: StateCorrupt, Nodes: FileNodes{}, Err: err}
	}

	return FileNodesResult{State: StateValid, Nodes: nodes}
}

// WriteFileNodes replaces the file-node artifact with nodes.
func (s *Store) WriteFileNodes(ctx context.Context, nodes FileNodes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := encodeFileNodes(nodes)
	if err := s.storage.writeAtomically(ctx, FileNodesArtifact, data); err != nil {
		return err
	}

	logging.LogCacheWrite(ctx, s.logger, FileNodesArtifact, len(data), "entries", len(nodes))
	return nil
}

// encodeFileNodes writes records sorted by revision so equal maps produce
// identical bytes.
func encodeFileNodes(nodes FileNodes) []byte {
	revs := make([]plumbing.Hash, 0, len(nodes))
	for rev := range nodes {
		revs = append(revs, rev)
	}
	sort.Slice(revs, func(i, j int) bool {
		return bytes.Compare(revs[i][:], revs[j][:]) < 0
	})

	e := newEncoder(fileNodesMagic, fileNodesVersion)
	e.uint32(uint32(len(revs)))
	for _, rev := range revs {
		e.hash(rev)
		e.hash(nodes[rev])
	}

	return e.finish()
}

func decodeFileNodes(data []byte) (FileNodes, error) {
	d, err := newDecoder(data, fileNodesMagic, fileNodesVersion)
	if err != nil {
		return nil, err
	}

	count, err := d.uint32()
	if err != nil {
		return nil, err
	}
	if err := d.need(int(count) * 2 * hashSize); err != nil {
		return nil, err
	}

	nodes := make(FileNodes, count)
	for i := uint32(0); i < count; i++ {
		rev, err := d.hash()
		if err != nil {
			return nil, err
		}
		fnode, err := d.hash()
		if err != nil {
			return nil, err
		}
		nodes[rev] = fnode
	}

	if err := d.done(); err != nil {
		return nil, err
	}

	return nodes, nil
}
