package radio

import (
	"context"

	"github.com/kabili207/mesh-byos-daemon/pkg/models"
)

// Transport is the mesh radio driver: it delivers decoded packet and node
// events asynchronously and answers synchronous node/channel queries.
// Implementations own all frame-level decoding; consumers only ever see
// structured events.
type Transport interface {
	// Connect opens the transport link. On failure the transport remains
	// disconnected and Connect may be called again.
	Connect(ctx context.Context) error
	// Close releases the transport link. Safe to call when disconnected.
	Close() error
	// Connected reports whether the link is currently up.
	Connected() bool
	// Nodes returns the transport's current node table.
	Nodes() []models.NodeInfo
	// Channels returns the configured channel set. May be empty.
	Channels() []models.ChannelInfo
	// Subscribe registers the single consumer of transport events for the
	// lifetime of the connection. Must be called before Connect.
	Subscribe(h Handler)
}
