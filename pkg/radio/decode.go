package radio

import (
	"errors"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/kabili207/meshtastic-go/core/crypto"
	pb "github.com/kabili207/meshtastic-go/core/proto"
	"google.golang.org/protobuf/proto"

	"github.com/kabili207/mesh-byos-daemon/pkg/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

var errNoMatchingKey = errors.New("no configured key decodes packet")

// handleMessage is the paho message callback for the mesh packet feed.
// A malformed message loses at most itself; processing always continues.
func (t *MQTTTransport) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var env pb.ServiceEnvelope
	if err := proto.Unmarshal(msg.Payload(), &env); err != nil {
		t.log.Debug("non-mesh payload on mesh topic", "topic", msg.Topic(), "error", err)
		return
	}
	t.processEnvelope(&env)
}

// processEnvelope decodes one ServiceEnvelope into transport events.
func (t *MQTTTransport) processEnvelope(env *pb.ServiceEnvelope) {
	pkt := env.GetPacket()
	if pkt == nil || pkt.GetFrom() == 0 || pkt.GetFrom() == BroadcastID {
		return
	}
	if t.isDuplicate(pkt) {
		return
	}

	data, err := t.decodePacket(env.GetChannelId(), pkt)
	if err != nil {
		// Still a sign of life from the node, even if we can't read it.
		t.log.Debug("undecodable packet",
			"from", NodeID(pkt.GetFrom()).String(), "error", err)
		t.emitNode(t.touchNode(pkt, nil, nil, nil))
		return
	}

	var user *pb.User
	var position *pb.Position
	var metrics *pb.DeviceMetrics

	switch data.GetPortnum() {
	case pb.PortNum_NODEINFO_APP:
		var u pb.User
		if err := proto.Unmarshal(data.GetPayload(), &u); err != nil {
			t.log.Debug("malformed NODEINFO payload", "error", err)
		} else {
			user = &u
		}
	case pb.PortNum_POSITION_APP:
		var p pb.Position
		if err := proto.Unmarshal(data.GetPayload(), &p); err != nil {
			t.log.Debug("malformed POSITION payload", "error", err)
		} else {
			position = &p
		}
	case pb.PortNum_TELEMETRY_APP:
		var tel pb.Telemetry
		if err := proto.Unmarshal(data.GetPayload(), &tel); err != nil {
			t.log.Debug("malformed TELEMETRY payload", "error", err)
		} else {
			metrics = tel.GetDeviceMetrics()
		}
	}

	t.emitNode(t.touchNode(pkt, user, position, metrics))

	if data.GetPortnum() == pb.PortNum_TEXT_MESSAGE_APP {
		t.emitPacket(PacketEvent{
			From:    pkt.GetFrom(),
			FromID:  NodeID(pkt.GetFrom()).String(),
			Channel: t.channelIndex(env.GetChannelId()),
			RxTime:  rxTime(pkt),
			SNR:     pkt.GetRxSnr(),
			Payload: DataPayload{Data: data},
		})
	}
}

// isDuplicate suppresses rebroadcasts of the same packet uplinked by
// multiple gateways.
func (t *MQTTTransport) isDuplicate(pkt *pb.MeshPacket) bool {
	if pkt.GetId() == 0 {
		return false
	}
	key := uint64(pkt.GetFrom())<<32 | uint64(pkt.GetId())
	if t.seen.Has(key) {
		return true
	}
	t.seen.Set(key, struct{}{}, ttlcache.DefaultTTL)
	return false
}

// decodePacket decrypts a mesh packet, preferring the key of the channel
// named in the envelope and falling back to every other configured key.
func (t *MQTTTransport) decodePacket(channelName string, pkt *pb.MeshPacket) (*pb.Data, error) {
	keys := make([][]byte, 0, len(t.channels)+1)
	for _, ck := range t.channels {
		if ck.name == channelName {
			keys = append([][]byte{ck.key}, keys...)
		} else {
			keys = append(keys, ck.key)
		}
	}
	if len(keys) == 0 {
		keys = append(keys, crypto.DefaultKey)
	}

	var lastErr error
	for _, key := range keys {
		data, err := crypto.TryDecode(pkt, key)
		if err == nil && data != nil {
			return data, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errNoMatchingKey
}

// touchNode merges packet-derived facts into the node table and returns the
// updated profile. The returned copy is a full replacement entry.
func (t *MQTTTransport) touchNode(pkt *pb.MeshPacket, user *pb.User, position *pb.Position, metrics *pb.DeviceMetrics) models.NodeInfo {
	heard := rxTime(pkt)

	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[pkt.GetFrom()]
	if !ok {
		n = models.NodeInfo{Num: pkt.GetFrom()}
	}
	if heard > n.LastHeard {
		n.LastHeard = heard
	}
	if snr := pkt.GetRxSnr(); snr != 0 {
		n.SNR = snr
	}
	if user != nil {
		n.LongName = user.GetLongName()
		n.ShortName = user.GetShortName()
	}
	if position != nil {
		n.Position = &models.Position{
			Latitude:  float64(position.GetLatitudeI()) * 1e-7,
			Longitude: float64(position.GetLongitudeI()) * 1e-7,
			Altitude:  position.GetAltitude(),
		}
	}
	if metrics != nil {
		n.Metrics = &models.DeviceMetrics{
			BatteryLevel:       metrics.GetBatteryLevel(),
			Voltage:            metrics.GetVoltage(),
			ChannelUtilization: metrics.GetChannelUtilization(),
			AirUtilTx:          metrics.GetAirUtilTx(),
		}
	}

	t.nodes[pkt.GetFrom()] = n
	return n
}

func rxTime(pkt *pb.MeshPacket) int64 {
	if rx := pkt.GetRxTime(); rx != 0 {
		return int64(rx)
	}
	return time.Now().Unix()
}
