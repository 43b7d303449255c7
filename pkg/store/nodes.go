package store

import (
	"sync"

	"github.com/kabili207/mesh-byos-daemon/pkg/models"
)

// NodeStore is the in-memory registry of mesh nodes, keyed by node number.
// Entries are replaced wholesale and never deleted; the event-processing
// path writes, the snapshot path reads, so access is mutex-guarded to keep
// every entry internally consistent.
type NodeStore struct {
	mu    sync.RWMutex
	nodes map[uint32]models.NodeInfo
}

// NewNodeStore creates an empty node registry.
func NewNodeStore() *NodeStore {
	return &NodeStore{nodes: make(map[uint32]models.NodeInfo)}
}

// Put replaces the entry for the node's number with the given profile.
func (s *NodeStore) Put(n models.NodeInfo) {
	s.mu.Lock()
	s.nodes[n.Num] = n
	s.mu.Unlock()
}

// Get returns the profile for a node number, if known.
func (s *NodeStore) Get(num uint32) (models.NodeInfo, bool) {
	s.mu.RLock()
	n, ok := s.nodes[num]
	s.mu.RUnlock()
	return n, ok
}

// Len returns the number of distinct nodes in the registry.
func (s *NodeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// All returns a copy of every registered node profile.
func (s *NodeStore) All() []models.NodeInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes := make([]models.NodeInfo, 0, len(s.nodes))
	for _, n := range s.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// DisplayName resolves a node number to its short display name, returning
// fallback when the node is unknown.
func (s *NodeStore) DisplayName(num uint32, fallback string) string {
	s.mu.RLock()
	n, ok := s.nodes[num]
	s.mu.RUnlock()
	if !ok || n.ShortName == "" {
		return fallback
	}
	return n.ShortName
}
