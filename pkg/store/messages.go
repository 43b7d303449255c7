package store

import (
	"sync"

	"github.com/kabili207/mesh-byos-daemon/pkg/models"
)

// DefaultHistorySize is the number of recent messages kept in memory.
const DefaultHistorySize = 10

// MessageHistory is a bounded FIFO of recent text messages plus per-sender
// and total counters. Counters grow for the process lifetime; only the
// message ring evicts, oldest first.
type MessageHistory struct {
	mu       sync.RWMutex
	capacity int
	messages []models.Message
	counts   map[string]int
	total    int
}

// NewMessageHistory creates a history bounded to the given capacity.
// A non-positive capacity falls back to DefaultHistorySize.
func NewMessageHistory(capacity int) *MessageHistory {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &MessageHistory{
		capacity: capacity,
		counts:   make(map[string]int),
	}
}

// Append records a message, evicting the oldest entry once the ring is full,
// and increments the sender's counter and the total.
func (h *MessageHistory) Append(m models.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, m)
	if len(h.messages) > h.capacity {
		h.messages = h.messages[len(h.messages)-h.capacity:]
	}
	h.counts[m.FromID]++
	h.total++
}

// Recent returns up to limit messages, newest first.
func (h *MessageHistory) Recent(limit int) []models.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := len(h.messages)
	if limit > 0 && limit < n {
		n = limit
	}
	recent := make([]models.Message, 0, n)
	for i := len(h.messages) - 1; i >= 0 && len(recent) < n; i-- {
		recent = append(recent, h.messages[i])
	}
	return recent
}

// Len returns the number of messages currently retained.
func (h *MessageHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// Total returns the number of messages seen since process start.
func (h *MessageHistory) Total() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

// CountFor returns the number of messages seen from a sender identity.
func (h *MessageHistory) CountFor(fromID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.counts[fromID]
}

// ActiveSenders returns the number of distinct senders seen since start.
func (h *MessageHistory) ActiveSenders() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.counts)
}
