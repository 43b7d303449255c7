package store

import (
	"math"
	"sort"
	"time"

	"github.com/kabili207/mesh-byos-daemon/pkg/models"
)

// DefaultOnlineThreshold is the recency window used to classify a node as
// currently reachable.
const DefaultOnlineThreshold = 30 * time.Minute

// Online returns display projections of the nodes whose last-heard time is
// strictly newer than now minus the threshold, most recently heard first.
// Ordering is by the raw timestamp, with ties broken by node number, so
// nodes heard either side of midnight sort correctly.
func (s *NodeStore) Online(now time.Time, threshold time.Duration) []models.OnlineNode {
	cutoff := now.Add(-threshold).Unix()

	s.mu.RLock()
	recent := make([]models.NodeInfo, 0, len(s.nodes))
	for _, n := range s.nodes {
		if n.LastHeard > cutoff {
			recent = append(recent, n)
		}
	}
	s.mu.RUnlock()

	sort.Slice(recent, func(i, j int) bool {
		if recent[i].LastHeard != recent[j].LastHeard {
			return recent[i].LastHeard > recent[j].LastHeard
		}
		return recent[i].Num < recent[j].Num
	})

	online := make([]models.OnlineNode, 0, len(recent))
	for i := range recent {
		n := &recent[i]
		online = append(online, models.OnlineNode{
			Name:      n.DisplayName(),
			LongName:  n.LongName,
			LastHeard: time.Unix(n.LastHeard, 0).Format("15:04"),
			SNR:       math.Round(float64(n.SNR)*10) / 10,
			ID:        n.Num,
		})
	}
	return online
}
