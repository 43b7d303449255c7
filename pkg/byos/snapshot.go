package byos

import (
	"time"

	"github.com/kabili207/mesh-byos-daemon/pkg/models"
	"github.com/kabili207/mesh-byos-daemon/pkg/store"
)

// Display caps. The stores may hold more; these bound the published
// document, not the storage.
const (
	maxOnlineNodes = 12
	maxMessages    = 10
	maxChannels    = 6
)

// BuildSnapshot composes the stores into a publishable snapshot. It is a
// pure function of its inputs: no side effects, no I/O. Network stats are
// computed over the full registries before the display caps are applied.
func BuildSnapshot(nodes *store.NodeStore, history *store.MessageHistory, channels *store.ChannelStore, connected bool, now time.Time, device models.DeviceInfo) models.Snapshot {
	online := nodes.Online(now, store.DefaultOnlineThreshold)
	allChannels := channels.All()

	status := models.StatusDisconnected
	if connected {
		status = models.StatusConnected
	}

	return models.Snapshot{
		NetworkStats: models.NetworkStats{
			OnlineNodes: len(online),
			TotalNodes:  nodes.Len(),
			Channels:    len(allChannels),
			LastUpdate:  now.Format("15:04:05"),
		},
		OnlineNodes:    truncate(online, maxOnlineNodes),
		RecentMessages: history.Recent(maxMessages),
		MessageStats:   models.MessageStats{Total: history.Total()},
		Channels:       truncate(allChannels, maxChannels),
		Status:         status,
		Timestamp:      now.Format(time.RFC3339),
		DeviceInfo:     device,
	}
}

func truncate[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
