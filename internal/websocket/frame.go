package websocket

import (
	"github.com/google/uuid"

	"github.com/johndosdos/atalaia/internal/model"
)

// Outbound frame types.
const (
	FrameMessage     = "message"
	FrameConfirm     = "confirm"
	FramePresence    = "presence"
	FrameRateLimited = "rate_limited"
	FrameHistory     = "history"
)

// Inbound frame types.
const (
	FrameAlert = "alert"
)

// Frame is a JSON message written to the websocket.
type Frame struct {
	Type     string              `json:"type"`
	Message  *model.ChatMessage  `json:"message,omitempty"`
	Messages []model.ChatMessage `json:"messages,omitempty"`
	TempID   *uuid.UUID          `json:"temp_id,omitempty"`
	Count    *int                `json:"count,omitempty"`
	RetryIn  int                 `json:"retry_in,omitempty"`
}

// Inbound is a JSON message read from the websocket.
type Inbound struct {
	Type        string          `json:"type"`
	Content     string          `json:"content"`
	ClientMsgID string          `json:"client_msg_id,omitempty"`
	AlertType   model.AlertType `json:"alert_type,omitempty"`
	Image       string          `json:"image,omitempty"`
}

// event is what the hub and the read loop hand to the write loop. Feed events
// go through the session's synchronizer first, frames are written as is.
type event struct {
	feed  *model.ChatMessage
	frame *Frame
}
