// Package models contains the data types and constants shared by pulsechat.
package models

// Endpoint paths, relative to the configured API base.
const (
	EndpointChat    = "/api/chat"
	EndpointLog     = "/api/log"
	EndpointMessage = "/message"
	EndpointRelay   = "/ws"
)

// Persisted storage keys and schema version.
const (
	DataKey    = "pulse-chat-data"
	VersionKey = "pulse-chat-version"

	// DataVersion is bumped whenever the snapshot layout changes. Stored
	// snapshots carrying any other version are discarded.
	DataVersion = 2
)

// Fixed user-facing texts.
const (
	NoMessagesText = "No messages yet"
	FallbackReply  = "Sorry, I got disconnected for a sec. What were you saying?"
)

// TimeLayout is the display format used for message timestamps.
const TimeLayout = "3:04 PM"

// PreviewWidth is the number of runes shown in a conversation list preview.
const PreviewWidth = 50
