package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage represents a message for a neighborhood channel, used for
// JetStream payloads, websocket frames and the HTTP history endpoint.
// A nil NeighborhoodID means the message belongs to the global channel.
type ChatMessage struct {
	ID             uuid.UUID  `json:"id"`
	NeighborhoodID *uuid.UUID `json:"neighborhood_id"`
	UserID         uuid.UUID  `json:"user_id"`
	Username       string     `json:"user_name"`
	UserRole       Role       `json:"user_role"`
	Content        string     `json:"text"`
	CreatedAt      time.Time  `json:"timestamp"`
	IsSystemAlert  bool       `json:"is_system_alert,omitempty"`
	AlertType      AlertType  `json:"alert_type,omitempty"`
	Image          string     `json:"image,omitempty"`

	// ClientMsgID is the idempotency token chosen by the sender. The
	// confirmed copy of an optimistic message carries the same token.
	ClientMsgID string `json:"client_msg_id,omitempty"`

	// Pending is only set on optimistic entries that the store has not
	// confirmed yet. It is never persisted.
	Pending bool `json:"pending,omitempty"`
}

// InNeighborhood reports whether m is scoped to hood. Two absent
// associations match each other.
func (m ChatMessage) InNeighborhood(hood *uuid.UUID) bool {
	return SameNeighborhood(m.NeighborhoodID, hood)
}

// SameNeighborhood compares two optional neighborhood associations.
func SameNeighborhood(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
