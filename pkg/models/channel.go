package models

// Channel role values as published to the display sink.
const (
	ChannelRolePrimary   = "primary"
	ChannelRoleSecondary = "secondary"
)

// ChannelInfo describes a logical communication lane within the mesh.
type ChannelInfo struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	// PSK reports whether a pre-shared key is configured for the channel.
	PSK  bool   `json:"psk"`
	Role string `json:"role"`
}

// DefaultChannel is the synthetic channel substituted when the transport
// reports no configured channels, so a snapshot is never channel-empty.
func DefaultChannel() ChannelInfo {
	return ChannelInfo{
		Index: 0,
		Name:  "Default",
		PSK:   true,
		Role:  ChannelRolePrimary,
	}
}
