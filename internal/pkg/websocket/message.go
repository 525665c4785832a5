package websocket

import (
	"time"

	"github.com/yigit/swimdesk/internal/domain"
)

// Message types pushed to subscribers
const (
	MessageTypeUsage = "usage"
)

// Message represents a message sent over WebSocket
type Message struct {
	// Type of message, currently always "usage"
	Type string `json:"type"`

	// Session this message belongs to
	SessionID int64 `json:"sessionId"`

	// Capacity snapshot after the change
	Usage domain.CapacityResult `json:"usage"`

	// Timestamp when the snapshot was taken
	Timestamp time.Time `json:"timestamp"`
}

// NewUsageMessage builds a usage snapshot message for a session
func NewUsageMessage(sessionID int64, usage domain.CapacityResult) *Message {
	return &Message{
		Type:      MessageTypeUsage,
		SessionID: sessionID,
		Usage:     usage,
		Timestamp: time.Now().UTC(),
	}
}
