package ws

import (
	"time"

	"amoria/internal/domain"
)

// Server-to-client event types.
const (
	EventMessageSent     = "message.sent"
	EventMessageReceived = "message.received"
	EventMessageSeen     = "message.seen"
	EventTyping          = "presence.typing"
	EventError           = "error"
)

// Rejection reason codes, reported only to the originating connection.
const (
	ReasonBlocked        = "blocked"
	ReasonInvalidBody    = "invalid-body"
	ReasonTargetNotFound = "target-not-found"
	ReasonForbidden      = "forbidden"
	ReasonInternal       = "internal"
)

type messageEvent struct {
	Type    string          `json:"type"`
	Message *domain.Message `json:"message"`
}

type seenEvent struct {
	Type      string    `json:"type"`
	MessageID int64     `json:"message_id"`
	SeenAt    time.Time `json:"seen_at"`
}

type typingEvent struct {
	Type     string `json:"type"`
	UserID   int64  `json:"user_id"`
	IsTyping bool   `json:"is_typing"`
}

type errorEvent struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
