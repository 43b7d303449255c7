package radio

import (
	"strings"

	pb "github.com/kabili207/meshtastic-go/core/proto"

	"github.com/kabili207/mesh-byos-daemon/pkg/models"
)

// Payload is the variant carried by a packet event. Gateway feeds have
// historically delivered text in three shapes: a plain text field, a decoded
// protobuf Data, and a generic key/value document. ExtractText handles all
// three with an explicit no-text fallback.
type Payload interface {
	isPayload()
}

// TextPayload carries already-extracted message text.
type TextPayload struct {
	Text string
}

// DataPayload carries a decoded Meshtastic application payload.
type DataPayload struct {
	Data *pb.Data
}

// FieldsPayload carries a generic key/value document, as produced by JSON
// gateway feeds. Text may live under "text" or nested under "data".
type FieldsPayload struct {
	Fields map[string]any
}

func (TextPayload) isPayload()   {}
func (DataPayload) isPayload()   {}
func (FieldsPayload) isPayload() {}

// PacketEvent is delivered for every packet received from the mesh.
type PacketEvent struct {
	// From is the sending node's number.
	From uint32
	// FromID is the sender in "!deadbeef" notation.
	FromID string
	// Channel is the local channel index the packet arrived on.
	Channel uint32
	// RxTime is the receive time in seconds since epoch (0 if unreported).
	RxTime int64
	// SNR is the signal-to-noise ratio of the received packet.
	SNR float32
	// Payload is the packet's payload variant; may carry no text at all.
	Payload Payload
}

// Handler receives transport events. Handlers are invoked from the
// transport's own goroutine and must not block on network calls.
type Handler struct {
	// OnConnectionEstablished fires once the transport link is up.
	OnConnectionEstablished func()
	// OnPacketReceived fires for every packet delivered by the mesh.
	OnPacketReceived func(PacketEvent)
	// OnNodeUpdated fires with a full replacement profile for a node.
	OnNodeUpdated func(models.NodeInfo)
}

// ExtractText pulls non-empty message text out of a payload variant.
// It returns false when the payload carries no decodable text, in which
// case the event should be treated as a no-op by chat consumers.
func ExtractText(p Payload) (string, bool) {
	switch v := p.(type) {
	case TextPayload:
		return nonEmpty(v.Text)
	case DataPayload:
		if v.Data == nil || v.Data.GetPortnum() != pb.PortNum_TEXT_MESSAGE_APP {
			return "", false
		}
		return nonEmpty(string(v.Data.GetPayload()))
	case FieldsPayload:
		if s, ok := v.Fields["text"].(string); ok {
			return nonEmpty(s)
		}
		if data, ok := v.Fields["data"].(map[string]any); ok {
			if s, ok := data["text"].(string); ok {
				return nonEmpty(s)
			}
		}
	}
	return "", false
}

func nonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
