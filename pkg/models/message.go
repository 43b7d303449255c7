package models

// Message is a decoded text message received from the mesh. The JSON field
// names follow the wire contract of the BYOS display sink.
type Message struct {
	// Text is the decoded message body. Only non-empty texts are retained.
	Text string `json:"text"`
	// From is the sender's resolved display name.
	From string `json:"from"`
	// FromID is the sender's raw identity ("!deadbeef").
	FromID string `json:"from_id"`
	// Channel is the channel index the message arrived on.
	Channel uint32 `json:"channel"`
	// Time is the receive time formatted as HH:MM.
	Time string `json:"time"`
	// Timestamp is the receive time in RFC 3339 form.
	Timestamp string `json:"timestamp"`
}
