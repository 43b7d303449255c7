package store

import (
	"sort"
	"sync"

	"github.com/kabili207/mesh-byos-daemon/pkg/models"
)

// ChannelStore holds the channel metadata reported by the transport.
// The set is replaced wholesale on every resync.
type ChannelStore struct {
	mu       sync.RWMutex
	channels []models.ChannelInfo
}

// NewChannelStore creates an empty channel registry.
func NewChannelStore() *ChannelStore {
	return &ChannelStore{}
}

// Replace swaps in a new channel set, keeping only entries with a non-empty
// name, ordered by index.
func (s *ChannelStore) Replace(channels []models.ChannelInfo) {
	kept := make([]models.ChannelInfo, 0, len(channels))
	for _, ch := range channels {
		if ch.Name != "" {
			kept = append(kept, ch)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Index < kept[j].Index })

	s.mu.Lock()
	s.channels = kept
	s.mu.Unlock()
}

// All returns a copy of the channel set. An empty registry yields the single
// synthetic default channel so callers never observe zero channels.
func (s *ChannelStore) All() []models.ChannelInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.channels) == 0 {
		return []models.ChannelInfo{models.DefaultChannel()}
	}
	channels := make([]models.ChannelInfo, len(s.channels))
	copy(channels, s.channels)
	return channels
}
