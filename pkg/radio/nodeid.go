package radio

import (
	"fmt"
	"strconv"
	"strings"
)

// BroadcastID is the node number used for mesh-wide broadcasts.
const BroadcastID uint32 = 0xFFFFFFFF

// NodeID is a Meshtastic node number, rendered as "!deadbeef" on the wire.
type NodeID uint32

func (n NodeID) String() string {
	return fmt.Sprintf("!%08x", uint32(n))
}

// ParseNodeID parses the "!deadbeef" notation back into a node number.
func ParseNodeID(s string) (NodeID, error) {
	raw := strings.TrimPrefix(s, "!")
	if len(raw) != 8 {
		return 0, fmt.Errorf("invalid node id %q", s)
	}
	v, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid node id %q: %w", s, err)
	}
	return NodeID(v), nil
}
