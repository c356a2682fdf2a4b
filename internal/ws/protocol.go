package ws

import "meme-hunter/internal/events"

const ProtocolVersion = "1.0"

// SubscribeMessage starts the feed. An empty Player receives every hunt.
type SubscribeMessage struct {
	Type   string `json:"type"`
	Player string `json:"player,omitempty"`
}

type SubscribeResult struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Ok              bool   `json:"ok"`
	Error           string `json:"error,omitempty"`
	Player          string `json:"player,omitempty"`
}

type HuntResult struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	events.HuntEvent
}
