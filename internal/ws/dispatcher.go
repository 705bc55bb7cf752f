package ws

import (
	"context"
	"errors"
	"log/slog"

	"amoria/internal/domain"
)

// ChatProvider is the persistence half of the dispatcher, implemented by
// service.ChatService.
type ChatProvider interface {
	SendMessage(ctx context.Context, senderID, receiverID int64, body string) (*domain.Message, error)
	MarkSeen(ctx context.Context, readerID, messageID int64) (*domain.Message, bool, error)
	CanExchange(ctx context.Context, a, b int64) (bool, error)
}

// Dispatcher routes chat operations between live connections. Each send
// runs gate → persist → route-to-receiver → echo-to-sender; failures are
// reported to the originating connection only.
type Dispatcher struct {
	hub  *Hub
	chat ChatProvider
	log  *slog.Logger
}

func NewDispatcher(hub *Hub, chat ChatProvider, log *slog.Logger) *Dispatcher {
	return &Dispatcher{hub: hub, chat: chat, log: log}
}

// Send persists a message and routes it. Persistence is the commit point:
// once the store append succeeds, the message is delivered durably even
// if neither live push lands.
func (d *Dispatcher) Send(ctx context.Context, sender *Client, targetID int64, body string) {
	msg, err := d.chat.SendMessage(ctx, sender.UserID(), targetID, body)
	if err != nil {
		d.reject(sender, err)
		return
	}

	// Live push to the receiver, if online; absence is not an error.
	d.push(targetID, messageEvent{Type: EventMessageReceived, Message: msg})

	// Echo the canonical stored form back to the sender.
	if err := sender.Send(messageEvent{Type: EventMessageSent, Message: msg}); err != nil {
		d.dropStale(sender)
	}
}

// Typing relays an ephemeral typing indicator. The block gate applies so
// a blocked party never sees the signal; the indicator is dropped
// silently when the target is offline or the gate denies.
func (d *Dispatcher) Typing(ctx context.Context, sender *Client, targetID int64, isTyping bool) {
	if targetID <= 0 || targetID == sender.UserID() {
		return
	}
	ok, err := d.chat.CanExchange(ctx, sender.UserID(), targetID)
	if err != nil {
		d.log.Warn("typing gate check failed", "error", err)
		return
	}
	if !ok {
		return
	}
	d.push(targetID, typingEvent{Type: EventTyping, UserID: sender.UserID(), IsTyping: isTyping})
}

// MarkSeen acknowledges a message on behalf of its receiver. Only the
// first transition notifies the original sender.
func (d *Dispatcher) MarkSeen(ctx context.Context, reader *Client, messageID int64) {
	msg, first, err := d.chat.MarkSeen(ctx, reader.UserID(), messageID)
	if err != nil {
		d.reject(reader, err)
		return
	}
	if first && msg.SeenAt != nil {
		d.push(msg.SenderID, seenEvent{Type: EventMessageSeen, MessageID: msg.ID, SeenAt: *msg.SeenAt})
	}
}

// Deliver routes an already-persisted message to the receiver's live
// connection, if any. Used by the REST send path so online receivers get
// the same push as over the socket.
func (d *Dispatcher) Deliver(msg *domain.Message) {
	d.push(msg.ReceiverID, messageEvent{Type: EventMessageReceived, Message: msg})
}

// NotifySeen pushes a seen notification to the message's original sender.
func (d *Dispatcher) NotifySeen(msg *domain.Message) {
	if msg.SeenAt == nil {
		return
	}
	d.push(msg.SenderID, seenEvent{Type: EventMessageSeen, MessageID: msg.ID, SeenAt: *msg.SeenAt})
}

// push delivers an event to the user's live connection if one exists. A
// failed write means the connection is gone: the stale entry is removed
// and the target is treated as offline.
func (d *Dispatcher) push(userID int64, v any) {
	c, ok := d.hub.Lookup(userID)
	if !ok {
		return
	}
	if err := c.Send(v); err != nil {
		d.dropStale(c)
	}
}

func (d *Dispatcher) dropStale(c *Client) {
	if d.hub.Unregister(c.UserID(), c) {
		d.log.Debug("dropped stale connection", "user_id", c.UserID())
	}
	_ = c.Close()
}

func (d *Dispatcher) reject(c *Client, err error) {
	reason := ReasonInternal
	switch {
	case errors.Is(err, domain.ErrBlocked):
		reason = ReasonBlocked
	case errors.Is(err, domain.ErrInvalidInput):
		reason = ReasonInvalidBody
	case errors.Is(err, domain.ErrNotFound):
		reason = ReasonTargetNotFound
	case errors.Is(err, domain.ErrForbidden):
		reason = ReasonForbidden
	default:
		d.log.Error("chat operation failed", "user_id", c.UserID(), "error", err)
	}
	if err := c.Send(errorEvent{Type: EventError, Reason: reason}); err != nil {
		d.dropStale(c)
	}
}
