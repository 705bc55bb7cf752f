package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"amoria/internal/domain"
	"amoria/internal/security"
)

// ChatService implements the persistence half of the message dispatcher:
// gating, validation, the append to the message store, seen transitions,
// history retrieval, and the conversation aggregator.
type ChatService struct {
	messages  domain.MessageRepository
	blocks    domain.BlockRepository
	users     domain.UserRepository
	encryptor *security.Encryptor

	maxMessageChars  int
	historyPageLimit int
}

func NewChatService(
	messages domain.MessageRepository,
	blocks domain.BlockRepository,
	users domain.UserRepository,
	encryptor *security.Encryptor,
	maxMessageChars int,
	historyPageLimit int,
) *ChatService {
	if maxMessageChars <= 0 {
		maxMessageChars = 1000
	}
	if historyPageLimit <= 0 {
		historyPageLimit = 50
	}
	return &ChatService{
		messages:         messages,
		blocks:           blocks,
		users:            users,
		encryptor:        encryptor,
		maxMessageChars:  maxMessageChars,
		historyPageLimit: historyPageLimit,
	}
}

// CanExchange reports whether a and b may exchange messages. A block in
// either direction denies both directions.
func (s *ChatService) CanExchange(ctx context.Context, a, b int64) (bool, error) {
	blocked, err := s.blocks.Exists(ctx, a, b)
	if err != nil {
		return false, fmt.Errorf("check block: %w", err)
	}
	return !blocked, nil
}

// SendMessage validates and gates a send, then appends exactly one message
// row. The returned message carries the store-assigned ID and timestamp and
// a plaintext body ready to echo back or push to the receiver.
func (s *ChatService) SendMessage(ctx context.Context, senderID, receiverID int64, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" || len([]rune(body)) > s.maxMessageChars {
		return nil, domain.ErrInvalidInput
	}
	if senderID == receiverID {
		return nil, domain.ErrInvalidInput
	}

	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("get receiver: %w", err)
	}
	if receiver == nil || receiver.Status != domain.StatusActive {
		return nil, domain.ErrNotFound
	}

	ok, err := s.CanExchange(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrBlocked
	}

	encrypted, err := s.encryptor.Encrypt(body)
	if err != nil {
		return nil, fmt.Errorf("encrypt body: %w", err)
	}

	msg := &domain.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       encrypted,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	msg.Body = body
	return msg, nil
}

// MarkSeen flips a message to seen on behalf of its receiver. The call is
// idempotent; the returned bool reports whether this call performed the
// first transition (and the sender should therefore be notified).
func (s *ChatService) MarkSeen(ctx context.Context, readerID, messageID int64) (*domain.Message, bool, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, false, fmt.Errorf("get message: %w", err)
	}
	if msg == nil {
		return nil, false, domain.ErrNotFound
	}
	if msg.ReceiverID != readerID {
		return nil, false, domain.ErrForbidden
	}

	if msg.Seen {
		return s.decrypted(msg), false, nil
	}

	now := time.Now().UTC()
	transitioned, err := s.messages.MarkSeen(ctx, messageID, now)
	if err != nil {
		return nil, false, err
	}
	if transitioned {
		msg.Seen = true
		msg.SeenAt = &now
	} else {
		// Lost a race with a concurrent mark; re-read for the real seen_at.
		msg, err = s.messages.GetByID(ctx, messageID)
		if err != nil || msg == nil {
			return nil, false, fmt.Errorf("reload message: %w", err)
		}
	}
	return s.decrypted(msg), transitioned, nil
}

// MarkConversationSeen marks every unseen message from partner to reader.
// Bulk form of MarkSeen over the same flag.
func (s *ChatService) MarkConversationSeen(ctx context.Context, readerID, partnerID int64) error {
	return s.messages.MarkAllSeenFrom(ctx, partnerID, readerID, time.Now().UTC())
}

// History returns messages between the user and a partner in chronological
// order. Retrieval for a blocked pair is denied exactly like a send.
func (s *ChatService) History(ctx context.Context, userID, partnerID int64, before time.Time, limit int) ([]*domain.Message, error) {
	ok, err := s.CanExchange(ctx, userID, partnerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrBlocked
	}

	if limit <= 0 || limit > s.historyPageLimit {
		limit = s.historyPageLimit
	}
	msgs, err := s.messages.ListBetween(ctx, userID, partnerID, before, limit)
	if err != nil {
		return nil, err
	}

	// Store returns newest first; flip to chronological for the client.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	for i, m := range msgs {
		msgs[i] = s.decrypted(m)
	}
	return msgs, nil
}

// ListConversations builds the inbox view: one entry per partner, newest
// first. One time-descending scan of the user's messages determines each
// partner's last message in a single pass, and one grouped query fills in
// unread counts, regardless of how many partners the user has. Blocked
// partners are dropped from the view; the same gate that denies send and
// history hides the conversation entirely.
func (s *ChatService) ListConversations(ctx context.Context, userID int64) ([]*domain.ConversationView, error) {
	msgs, err := s.messages.ListInvolving(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	unseen, err := s.messages.CountUnseenBySender(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count unseen: %w", err)
	}

	blockedIDs, err := s.blocks.ListBlockedUserIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list blocked: %w", err)
	}
	blocked := make(map[int64]struct{}, len(blockedIDs))
	for _, id := range blockedIDs {
		blocked[id] = struct{}{}
	}

	seen := make(map[int64]struct{})
	var views []*domain.ConversationView
	for _, m := range msgs {
		partnerID := m.SenderID
		if partnerID == userID {
			partnerID = m.ReceiverID
		}
		if _, ok := blocked[partnerID]; ok {
			continue
		}
		if _, ok := seen[partnerID]; ok {
			continue
		}
		seen[partnerID] = struct{}{}
		// First occurrence in the descending stream is the latest message.
		views = append(views, &domain.ConversationView{
			PartnerID:   partnerID,
			LastMessage: s.decrypted(m),
			UnreadCount: unseen[partnerID],
		})
	}
	return views, nil
}

// decrypted returns a copy of the message with the body decrypted. On
// decrypt failure the raw body is kept rather than failing the request.
func (s *ChatService) decrypted(m *domain.Message) *domain.Message {
	out := *m
	if plain, err := s.encryptor.Decrypt(m.Body); err == nil {
		out.Body = plain
	}
	return &out
}
