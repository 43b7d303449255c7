package models

// Connection status values published in a snapshot.
const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// Snapshot is the immutable point-in-time document published to the display
// sink. It carries no references back to the live stores; every slice is an
// owned copy truncated to its display cap.
type Snapshot struct {
	NetworkStats   NetworkStats  `json:"network_stats"`
	OnlineNodes    []OnlineNode  `json:"online_nodes"`
	RecentMessages []Message     `json:"recent_messages"`
	MessageStats   MessageStats  `json:"message_stats"`
	Channels       []ChannelInfo `json:"channels"`
	Status         string        `json:"status"`
	Timestamp      string        `json:"timestamp"`
	DeviceInfo     DeviceInfo    `json:"device_info"`
}

// NetworkStats summarizes the whole registry, not just the displayed subset.
type NetworkStats struct {
	OnlineNodes int    `json:"online_nodes"`
	TotalNodes  int    `json:"total_nodes"`
	Channels    int    `json:"channels"`
	LastUpdate  string `json:"last_update"`
}

// OnlineNode is the display projection of a recently heard node.
type OnlineNode struct {
	Name     string `json:"name"`
	LongName string `json:"longName"`
	// LastHeard is formatted as HH:MM for the display.
	LastHeard string `json:"lastHeard"`
	// SNR is rounded to one decimal place.
	SNR float64 `json:"snr"`
	ID  uint32  `json:"id"`
}

// MessageStats carries the monotonically increasing message total.
type MessageStats struct {
	Total int `json:"total"`
}

// DeviceInfo is the static platform metadata included with every snapshot.
type DeviceInfo struct {
	Platform         string `json:"platform"`
	MeshtasticDevice string `json:"meshtastic_device"`
}
