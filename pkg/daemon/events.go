package daemon

import (
	"log/slog"
	"time"

	"github.com/kabili207/mesh-byos-daemon/pkg/models"
	"github.com/kabili207/mesh-byos-daemon/pkg/radio"
	"github.com/kabili207/mesh-byos-daemon/pkg/store"
)

// EventProcessor consumes transport events and mutates the data stores.
// It is the only writer of the node, message, and channel registries.
// Handlers are invoked from the transport's goroutine and never block on
// network calls; a malformed event loses at most itself.
type EventProcessor struct {
	nodes    *store.NodeStore
	history  *store.MessageHistory
	channels *store.ChannelStore
	log      *slog.Logger
}

// NewEventProcessor creates a processor bound to the given stores.
func NewEventProcessor(nodes *store.NodeStore, history *store.MessageHistory, channels *store.ChannelStore, log *slog.Logger) *EventProcessor {
	if log == nil {
		log = slog.Default()
	}
	return &EventProcessor{
		nodes:    nodes,
		history:  history,
		channels: channels,
		log:      log.With("component", "events"),
	}
}

// HandlePacket extracts message text from a packet event. Packets without
// non-empty decodable text are a no-op.
func (p *EventProcessor) HandlePacket(ev radio.PacketEvent) {
	text, ok := radio.ExtractText(ev.Payload)
	if !ok {
		return
	}

	fromID := ev.FromID
	if fromID == "" {
		fromID = radio.NodeID(ev.From).String()
	}
	name := p.nodes.DisplayName(ev.From, fromID)

	rx := ev.RxTime
	if rx == 0 {
		rx = time.Now().Unix()
	}
	received := time.Unix(rx, 0)

	p.history.Append(models.Message{
		Text:      text,
		From:      name,
		FromID:    fromID,
		Channel:   ev.Channel,
		Time:      received.Format("15:04"),
		Timestamp: received.Format(time.RFC3339),
	})

	p.log.Info("message received",
		"from", name, "channel", ev.Channel, "length", len(text))
}

// HandleNodeUpdated replaces the registry entry for the node. Profiles with
// a zero node number are ignored.
func (p *EventProcessor) HandleNodeUpdated(n models.NodeInfo) {
	if n.Num == 0 {
		return
	}
	if n.LongName == "" {
		n.LongName = "Unknown"
	}
	if n.ShortName == "" {
		n.ShortName = "UNK"
	}
	p.nodes.Put(n)
	p.log.Debug("node updated", "node", n.IDString(), "name", n.ShortName)
}

// ResyncNodes refreshes the node registry from the transport's node table.
// Idempotent; safe to call on every connection event and cycle.
func (p *EventProcessor) ResyncNodes(t radio.Transport) {
	nodes := t.Nodes()
	for _, n := range nodes {
		p.HandleNodeUpdated(n)
	}
	p.log.Info("node registry refreshed", "count", len(nodes))
}

// ResyncChannels replaces the channel registry from the transport's channel
// set. An empty set leaves the registry serving the synthetic default.
func (p *EventProcessor) ResyncChannels(t radio.Transport) {
	channels := t.Channels()
	p.channels.Replace(channels)
	count := len(channels)
	if count == 0 {
		count = 1 // synthetic default
	}
	p.log.Info("channel registry refreshed", "count", count)
}
