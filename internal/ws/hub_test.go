package ws_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"amoria/internal/ws"
)

func TestHubRegisterSupersedes(t *testing.T) {
	hub := ws.NewHub()

	first := ws.NewClient(1, &fakeConn{})
	assert.Nil(t, hub.Register(1, first))

	got, ok := hub.Lookup(1)
	assert.True(t, ok)
	assert.Same(t, first, got)

	second := ws.NewClient(1, &fakeConn{})
	prev := hub.Register(1, second)
	assert.Same(t, first, prev)

	got, ok = hub.Lookup(1)
	assert.True(t, ok)
	assert.Same(t, second, got)
}

func TestHubUnregisterOnlyCurrent(t *testing.T) {
	hub := ws.NewHub()

	first := ws.NewClient(7, &fakeConn{})
	hub.Register(7, first)
	second := ws.NewClient(7, &fakeConn{})
	hub.Register(7, second)

	// The superseded connection's deferred unregister must not evict the
	// replacement.
	assert.False(t, hub.Unregister(7, first))
	got, ok := hub.Lookup(7)
	assert.True(t, ok)
	assert.Same(t, second, got)

	assert.True(t, hub.Unregister(7, second))
	_, ok = hub.Lookup(7)
	assert.False(t, ok)
}

func TestHubLookupUnknownUser(t *testing.T) {
	hub := ws.NewHub()
	_, ok := hub.Lookup(42)
	assert.False(t, ok)
	assert.False(t, hub.Unregister(42, ws.NewClient(42, &fakeConn{})))
}
