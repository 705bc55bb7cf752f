package ws_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"amoria/internal/domain"
	"amoria/internal/ws"
)

// fakeConn records every event written to it.
type fakeConn struct {
	mu         sync.Mutex
	events     []any
	closed     bool
	failWrites bool
}

func (f *fakeConn) WriteJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errors.New("write failed")
	}
	f.events = append(f.events, v)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) eventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// eventAt round-trips the recorded event through JSON so assertions see
// exactly what a client would.
func (f *fakeConn) eventAt(t *testing.T, i int) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Less(t, i, len(f.events))
	raw, err := json.Marshal(f.events[i])
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

type mockChat struct {
	mock.Mock
}

func (m *mockChat) SendMessage(ctx context.Context, senderID, receiverID int64, body string) (*domain.Message, error) {
	args := m.Called(ctx, senderID, receiverID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *mockChat) MarkSeen(ctx context.Context, readerID, messageID int64) (*domain.Message, bool, error) {
	args := m.Called(ctx, readerID, messageID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Message), args.Bool(1), args.Error(2)
}

func (m *mockChat) CanExchange(ctx context.Context, a, b int64) (bool, error) {
	args := m.Called(ctx, a, b)
	return args.Bool(0), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcherSendDeliversAndEchoes(t *testing.T) {
	hub := ws.NewHub()
	chat := new(mockChat)
	d := ws.NewDispatcher(hub, chat, testLogger())

	senderConn := &fakeConn{}
	receiverConn := &fakeConn{}
	sender := ws.NewClient(1, senderConn)
	receiver := ws.NewClient(2, receiverConn)
	hub.Register(1, sender)
	hub.Register(2, receiver)

	stored := &domain.Message{ID: 10, SenderID: 1, ReceiverID: 2, Body: "hi", CreatedAt: time.Now().UTC()}
	chat.On("SendMessage", mock.Anything, int64(1), int64(2), "hi").Return(stored, nil)

	d.Send(context.Background(), sender, 2, "hi")

	require.Equal(t, 1, receiverConn.eventCount())
	ev := receiverConn.eventAt(t, 0)
	assert.Equal(t, "message.received", ev["type"])
	assert.Equal(t, float64(10), ev["message"].(map[string]any)["id"])

	require.Equal(t, 1, senderConn.eventCount())
	ev = senderConn.eventAt(t, 0)
	assert.Equal(t, "message.sent", ev["type"])

	chat.AssertExpectations(t)
}

func TestDispatcherSendOfflineReceiver(t *testing.T) {
	hub := ws.NewHub()
	chat := new(mockChat)
	d := ws.NewDispatcher(hub, chat, testLogger())

	senderConn := &fakeConn{}
	sender := ws.NewClient(1, senderConn)
	hub.Register(1, sender)

	stored := &domain.Message{ID: 11, SenderID: 1, ReceiverID: 2, Body: "hey", CreatedAt: time.Now().UTC()}
	chat.On("SendMessage", mock.Anything, int64(1), int64(2), "hey").Return(stored, nil)

	d.Send(context.Background(), sender, 2, "hey")

	// The sender still gets the echo; the message waits in the store for
	// the receiver.
	require.Equal(t, 1, senderConn.eventCount())
	assert.Equal(t, "message.sent", senderConn.eventAt(t, 0)["type"])
}

func TestDispatcherSendRejections(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		reason string
	}{
		{"Blocked", domain.ErrBlocked, "blocked"},
		{"InvalidBody", domain.ErrInvalidInput, "invalid-body"},
		{"TargetNotFound", domain.ErrNotFound, "target-not-found"},
		{"Internal", errors.New("db down"), "internal"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hub := ws.NewHub()
			chat := new(mockChat)
			d := ws.NewDispatcher(hub, chat, testLogger())

			senderConn := &fakeConn{}
			receiverConn := &fakeConn{}
			sender := ws.NewClient(1, senderConn)
			hub.Register(1, sender)
			hub.Register(2, ws.NewClient(2, receiverConn))

			chat.On("SendMessage", mock.Anything, int64(1), int64(2), "x").Return(nil, tc.err)

			d.Send(context.Background(), sender, 2, "x")

			// The rejection goes to the sender only.
			require.Equal(t, 1, senderConn.eventCount())
			ev := senderConn.eventAt(t, 0)
			assert.Equal(t, "error", ev["type"])
			assert.Equal(t, tc.reason, ev["reason"])
			assert.Equal(t, 0, receiverConn.eventCount())
		})
	}
}

func TestDispatcherTypingGated(t *testing.T) {
	hub := ws.NewHub()
	chat := new(mockChat)
	d := ws.NewDispatcher(hub, chat, testLogger())

	senderConn := &fakeConn{}
	targetConn := &fakeConn{}
	sender := ws.NewClient(1, senderConn)
	hub.Register(1, sender)
	hub.Register(2, ws.NewClient(2, targetConn))

	chat.On("CanExchange", mock.Anything, int64(1), int64(2)).Return(false, nil).Once()
	d.Typing(context.Background(), sender, 2, true)
	assert.Equal(t, 0, targetConn.eventCount())

	chat.On("CanExchange", mock.Anything, int64(1), int64(2)).Return(true, nil).Once()
	d.Typing(context.Background(), sender, 2, true)
	require.Equal(t, 1, targetConn.eventCount())
	ev := targetConn.eventAt(t, 0)
	assert.Equal(t, "presence.typing", ev["type"])
	assert.Equal(t, float64(1), ev["user_id"])
	assert.Equal(t, true, ev["is_typing"])

	// No error event reaches the sender either way.
	assert.Equal(t, 0, senderConn.eventCount())
}

func TestDispatcherTypingSelfDropped(t *testing.T) {
	hub := ws.NewHub()
	chat := new(mockChat)
	d := ws.NewDispatcher(hub, chat, testLogger())

	senderConn := &fakeConn{}
	sender := ws.NewClient(1, senderConn)
	hub.Register(1, sender)

	d.Typing(context.Background(), sender, 1, true)
	assert.Equal(t, 0, senderConn.eventCount())
	chat.AssertNotCalled(t, "CanExchange", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcherMarkSeenNotifiesOnFirstTransition(t *testing.T) {
	hub := ws.NewHub()
	chat := new(mockChat)
	d := ws.NewDispatcher(hub, chat, testLogger())

	readerConn := &fakeConn{}
	senderConn := &fakeConn{}
	reader := ws.NewClient(2, readerConn)
	hub.Register(2, reader)
	hub.Register(1, ws.NewClient(1, senderConn))

	seenAt := time.Now().UTC()
	seen := &domain.Message{ID: 5, SenderID: 1, ReceiverID: 2, Seen: true, SeenAt: &seenAt}

	chat.On("MarkSeen", mock.Anything, int64(2), int64(5)).Return(seen, true, nil).Once()
	d.MarkSeen(context.Background(), reader, 5)

	require.Equal(t, 1, senderConn.eventCount())
	ev := senderConn.eventAt(t, 0)
	assert.Equal(t, "message.seen", ev["type"])
	assert.Equal(t, float64(5), ev["message_id"])

	// A repeat mark is a no-op for the original sender.
	chat.On("MarkSeen", mock.Anything, int64(2), int64(5)).Return(seen, false, nil).Once()
	d.MarkSeen(context.Background(), reader, 5)
	assert.Equal(t, 1, senderConn.eventCount())

	assert.Equal(t, 0, readerConn.eventCount())
}

func TestDispatcherDropsStaleConnectionOnWriteFailure(t *testing.T) {
	hub := ws.NewHub()
	chat := new(mockChat)
	d := ws.NewDispatcher(hub, chat, testLogger())

	senderConn := &fakeConn{}
	deadConn := &fakeConn{failWrites: true}
	sender := ws.NewClient(1, senderConn)
	receiver := ws.NewClient(2, deadConn)
	hub.Register(1, sender)
	hub.Register(2, receiver)

	stored := &domain.Message{ID: 12, SenderID: 1, ReceiverID: 2, Body: "ping", CreatedAt: time.Now().UTC()}
	chat.On("SendMessage", mock.Anything, int64(1), int64(2), "ping").Return(stored, nil)

	d.Send(context.Background(), sender, 2, "ping")

	_, ok := hub.Lookup(2)
	assert.False(t, ok)
	assert.True(t, deadConn.closed)

	// Delivery failure does not fail the send; the sender still gets the echo.
	require.Equal(t, 1, senderConn.eventCount())
	assert.Equal(t, "message.sent", senderConn.eventAt(t, 0)["type"])
}
