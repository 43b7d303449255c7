package daemon

import (
	"testing"
	"time"

	"github.com/kabili207/mesh-byos-daemon/pkg/models"
	"github.com/kabili207/mesh-byos-daemon/pkg/radio"
	"github.com/kabili207/mesh-byos-daemon/pkg/store"
)

func newTestProcessor() (*EventProcessor, *store.NodeStore, *store.MessageHistory, *store.ChannelStore) {
	nodes := store.NewNodeStore()
	history := store.NewMessageHistory(store.DefaultHistorySize)
	channels := store.NewChannelStore()
	return NewEventProcessor(nodes, history, channels, nil), nodes, history, channels
}

func TestHandlePacketRecordsMessage(t *testing.T) {
	p, nodes, history, _ := newTestProcessor()
	nodes.Put(models.NodeInfo{Num: 0xAA, ShortName: "GW1", LongName: "Gateway"})

	rx := time.Date(2026, 8, 30, 14, 30, 0, 0, time.Local)
	p.HandlePacket(radio.PacketEvent{
		From:    0xAA,
		FromID:  "!000000aa",
		Channel: 1,
		RxTime:  rx.Unix(),
		Payload: radio.TextPayload{Text: "status check"},
	})

	msgs := history.Recent(0)
	if len(msgs) != 1 {
		t.Fatalf("history holds %d messages, want 1", len(msgs))
	}
	m := msgs[0]
	if m.Text != "status check" {
		t.Errorf("text = %q", m.Text)
	}
	if m.From != "GW1" {
		t.Errorf("from = %q, want resolved short name GW1", m.From)
	}
	if m.FromID != "!000000aa" {
		t.Errorf("from_id = %q", m.FromID)
	}
	if m.Channel != 1 {
		t.Errorf("channel = %d, want 1", m.Channel)
	}
	if m.Time != "14:30" {
		t.Errorf("time = %q, want 14:30", m.Time)
	}
}

func TestHandlePacketUnknownSender(t *testing.T) {
	p, _, history, _ := newTestProcessor()

	p.HandlePacket(radio.PacketEvent{
		From:    0xDEADBEEF,
		RxTime:  time.Now().Unix(),
		Payload: radio.TextPayload{Text: "who dis"},
	})

	msgs := history.Recent(0)
	if len(msgs) != 1 {
		t.Fatalf("history holds %d messages, want 1", len(msgs))
	}
	// Unknown senders fall back to the wire-format node id.
	if msgs[0].From != "!deadbeef" || msgs[0].FromID != "!deadbeef" {
		t.Errorf("sender = (%q, %q), want (!deadbeef, !deadbeef)", msgs[0].From, msgs[0].FromID)
	}
}

func TestHandlePacketNoText(t *testing.T) {
	p, _, history, _ := newTestProcessor()

	p.HandlePacket(radio.PacketEvent{From: 1, Payload: radio.TextPayload{Text: "   "}})
	p.HandlePacket(radio.PacketEvent{From: 1, Payload: radio.FieldsPayload{Fields: map[string]any{"battery": 12}}})
	p.HandlePacket(radio.PacketEvent{From: 1})

	if got := history.Len(); got != 0 {
		t.Errorf("history holds %d messages, want 0 for textless packets", got)
	}
}

func TestHandleNodeUpdated(t *testing.T) {
	p, nodes, _, _ := newTestProcessor()

	p.HandleNodeUpdated(models.NodeInfo{Num: 5, LongName: "Relay", ShortName: "RLY"})
	p.HandleNodeUpdated(models.NodeInfo{Num: 6})
	p.HandleNodeUpdated(models.NodeInfo{Num: 0, LongName: "Ghost"})

	if got := nodes.Len(); got != 2 {
		t.Fatalf("registry holds %d nodes, want 2 (zero id dropped)", got)
	}
	n, ok := nodes.Get(6)
	if !ok {
		t.Fatal("node 6 missing")
	}
	if n.LongName != "Unknown" || n.ShortName != "UNK" {
		t.Errorf("nameless node = (%q, %q), want placeholder names", n.LongName, n.ShortName)
	}
}

func TestResync(t *testing.T) {
	p, nodes, _, channels := newTestProcessor()
	transport := &fakeTransport{
		nodes: []models.NodeInfo{
			{Num: 1, ShortName: "N1"},
			{Num: 2, ShortName: "N2"},
		},
		channels: []models.ChannelInfo{
			{Index: 0, Name: "LongFast", Role: models.ChannelRolePrimary},
		},
	}

	p.ResyncNodes(transport)
	p.ResyncChannels(transport)

	if got := nodes.Len(); got != 2 {
		t.Errorf("registry holds %d nodes, want 2", got)
	}
	chs := channels.All()
	if len(chs) != 1 || chs[0].Name != "LongFast" {
		t.Errorf("channels = %+v, want [LongFast]", chs)
	}

	// An empty channel resync leaves the synthetic default in service.
	transport.channels = nil
	p.ResyncChannels(transport)
	chs = channels.All()
	if len(chs) != 1 || chs[0].Name != "Default" {
		t.Errorf("channels after empty resync = %+v, want synthetic default", chs)
	}
}
