package radio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jellydator/ttlcache/v3"
	"github.com/kabili207/meshtastic-go/core/crypto"

	"github.com/kabili207/mesh-byos-daemon/pkg/models"
)

const (
	// DefaultBrokerURL is the gateway address used when none is configured.
	DefaultBrokerURL = "tcp://localhost:1883"
	// DefaultTopicRoot is the default Meshtastic MQTT topic root.
	DefaultTopicRoot = "msh/US"

	connectTimeout = 30 * time.Second

	// Duplicate suppression window. The same packet arrives once per
	// uplinking gateway, typically within a few seconds.
	dedupTTL = 60 * time.Second
)

// ChannelDef configures one mesh channel the transport listens on.
// An empty Key means the well-known default PSK.
type ChannelDef struct {
	Name string
	Key  string
	Role string
}

// MQTTOptions configures the MQTT gateway transport.
type MQTTOptions struct {
	// BrokerURL is the gateway broker address. Empty falls back to
	// DefaultBrokerURL.
	BrokerURL string
	Username  string
	Password  string
	// TopicRoot is the mesh topic root, e.g. "msh/US".
	TopicRoot string
	ClientID  string
	Channels  []ChannelDef
	Logger    *slog.Logger
}

// channelKey is a configured channel with its parsed PSK.
type channelKey struct {
	index int
	name  string
	key   []byte
	psk   bool
	role  string
}

// MQTTTransport consumes a Meshtastic MQTT gateway feed. It decrypts
// ServiceEnvelope payloads with the configured channel keys, maintains its
// own node table, and delivers structured events to the subscribed handler.
type MQTTTransport struct {
	opts     MQTTOptions
	log      *slog.Logger
	channels []channelKey
	handler  Handler

	client    mqtt.Client
	connected atomic.Bool
	seen      *ttlcache.Cache[uint64, struct{}]

	mu    sync.RWMutex
	nodes map[uint32]models.NodeInfo
}

var _ Transport = (*MQTTTransport)(nil)

// NewMQTTTransport creates a transport for the given gateway options.
// Channels with unparseable keys are skipped with a log line.
func NewMQTTTransport(opts MQTTOptions) *MQTTTransport {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "radio")

	if opts.BrokerURL == "" {
		opts.BrokerURL = DefaultBrokerURL
	}
	if opts.TopicRoot == "" {
		opts.TopicRoot = DefaultTopicRoot
	}
	if opts.ClientID == "" {
		opts.ClientID = "mesh-byos-daemon"
	}

	t := &MQTTTransport{
		opts:  opts,
		log:   log,
		nodes: make(map[uint32]models.NodeInfo),
		seen: ttlcache.New[uint64, struct{}](
			ttlcache.WithTTL[uint64, struct{}](dedupTTL),
		),
	}

	for i, def := range opts.Channels {
		ck := channelKey{index: i, name: def.Name, role: def.Role}
		if ck.role == "" {
			ck.role = models.ChannelRoleSecondary
			if i == 0 {
				ck.role = models.ChannelRolePrimary
			}
		}
		if def.Key == "" {
			ck.key = crypto.DefaultKey
		} else {
			key, err := crypto.ParseKey(def.Key)
			if err != nil {
				log.Error("invalid channel key, skipping channel",
					"channel", def.Name, "error", err)
				continue
			}
			ck.key = key
			ck.psk = true
		}
		t.channels = append(t.channels, ck)
	}

	go t.seen.Start()
	return t
}

// Subscribe registers the event handler. Must be called before Connect.
func (t *MQTTTransport) Subscribe(h Handler) {
	t.handler = h
}

// Connect dials the gateway broker and subscribes to the mesh packet feed.
func (t *MQTTTransport) Connect(ctx context.Context) error {
	copts := mqtt.NewClientOptions().
		AddBroker(t.opts.BrokerURL).
		SetClientID(t.opts.ClientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true).
		SetOrderMatters(false).
		SetOnConnectHandler(t.onConnect).
		SetConnectionLostHandler(t.onConnectionLost)
	if t.opts.Username != "" {
		copts.SetUsername(t.opts.Username)
		copts.SetPassword(t.opts.Password)
	}

	t.log.Info("connecting to mesh gateway", "broker", t.opts.BrokerURL)
	client := mqtt.NewClient(copts)
	token := client.Connect()

	select {
	case <-ctx.Done():
		client.Disconnect(0)
		return ctx.Err()
	case <-token.Done():
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connecting to %s: %w", t.opts.BrokerURL, err)
	}

	t.client = client
	return nil
}

// onConnect runs on every (re)connect: paho invokes it from its own
// goroutine, so subscriptions survive broker reconnects.
func (t *MQTTTransport) onConnect(client mqtt.Client) {
	filter := t.opts.TopicRoot + "/2/e/+/+"
	token := client.Subscribe(filter, 0, t.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		t.log.Error("subscribing to mesh feed", "filter", filter, "error", err)
		return
	}

	t.connected.Store(true)
	t.log.Info("mesh gateway connection established", "filter", filter)
	if t.handler.OnConnectionEstablished != nil {
		t.handler.OnConnectionEstablished()
	}
}

func (t *MQTTTransport) onConnectionLost(_ mqtt.Client, err error) {
	t.connected.Store(false)
	t.log.Warn("mesh gateway connection lost", "error", err)
}

// Close disconnects from the broker. Tolerant of being called when the
// transport never connected.
func (t *MQTTTransport) Close() error {
	t.seen.Stop()
	t.connected.Store(false)
	if t.client != nil {
		t.client.Disconnect(250)
		t.client = nil
		t.log.Info("disconnected from mesh gateway")
	}
	return nil
}

// Connected reports whether the gateway link is up.
func (t *MQTTTransport) Connected() bool {
	return t.connected.Load()
}

// Nodes returns a copy of the transport's node table.
func (t *MQTTTransport) Nodes() []models.NodeInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	nodes := make([]models.NodeInfo, 0, len(t.nodes))
	for _, n := range t.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// Channels returns the configured channel set.
func (t *MQTTTransport) Channels() []models.ChannelInfo {
	channels := make([]models.ChannelInfo, 0, len(t.channels))
	for _, ck := range t.channels {
		channels = append(channels, models.ChannelInfo{
			Index: ck.index,
			Name:  ck.name,
			PSK:   ck.psk,
			Role:  ck.role,
		})
	}
	return channels
}

// channelIndex maps a channel name from the topic to its local index.
func (t *MQTTTransport) channelIndex(name string) uint32 {
	for _, ck := range t.channels {
		if ck.name == name {
			return uint32(ck.index)
		}
	}
	return 0
}

func (t *MQTTTransport) emitNode(n models.NodeInfo) {
	if t.handler.OnNodeUpdated != nil {
		t.handler.OnNodeUpdated(n)
	}
}

func (t *MQTTTransport) emitPacket(ev PacketEvent) {
	if t.handler.OnPacketReceived != nil {
		t.handler.OnPacketReceived(ev)
	}
}
