package models

import "fmt"

// NodeInfo is the last-known profile of a mesh node, keyed by the numeric
// node number assigned by the mesh. Entries are replaced wholesale on every
// node update and are never deleted; staleness only affects the online view.
type NodeInfo struct {
	// Num is the stable numeric node id.
	Num uint32
	// LongName is the user-configured full display name.
	LongName string
	// ShortName is the user-configured short (up to 4 char) display name.
	ShortName string
	// LastHeard is the last time the node was heard, in seconds since epoch.
	LastHeard int64
	// SNR is the signal-to-noise ratio of the last received packet.
	SNR float32
	// Position is the node's last reported position, if any.
	Position *Position
	// Metrics is the node's last reported device telemetry, if any.
	Metrics *DeviceMetrics
}

// IDString returns the node number in Meshtastic "!deadbeef" notation.
func (n *NodeInfo) IDString() string {
	return fmt.Sprintf("!%08x", n.Num)
}

// DisplayName returns the short name, falling back to the id notation.
func (n *NodeInfo) DisplayName() string {
	if n.ShortName != "" {
		return n.ShortName
	}
	return n.IDString()
}

// Position is a reported node location in degrees and meters.
type Position struct {
	Latitude  float64
	Longitude float64
	Altitude  int32
}

// DeviceMetrics is the device telemetry reported by a node.
type DeviceMetrics struct {
	BatteryLevel       uint32
	Voltage            float32
	ChannelUtilization float32
	AirUtilTx          float32
}
