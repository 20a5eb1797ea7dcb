package websocket

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return &Client{
		send:   make(chan []byte, 8),
		id:     "test-client",
		logger: slog.Default(),
	}
}

func receive(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case raw := <-c.send:
		var msg map[string]any
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()
	defer hub.Stop()

	client := newTestClient()
	client.hub = hub
	hub.Register(client)

	welcome := receive(t, client)
	assert.Equal(t, TypeConnection, welcome["type"])

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	t.Run("vault change carries no payload", func(t *testing.T) {
		hub.BroadcastVaultChanged()
		msg := receive(t, client)
		assert.Equal(t, TypeVaultChanged, msg["type"])
		assert.NotContains(t, msg, "data", "signal only, views re-read the store")
		assert.NotEmpty(t, msg["timestamp"])
	})

	t.Run("notification carries the message", func(t *testing.T) {
		hub.BroadcastNotification("ELON FLASH PRO synchronized.")
		msg := receive(t, client)
		assert.Equal(t, TypeNotification, msg["type"])
		data, ok := msg["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "ELON FLASH PRO synchronized.", data["message"])
	})
}

func TestHub_SlowConsumerDropped(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()
	defer hub.Stop()

	client := &Client{send: make(chan []byte), id: "slow", logger: slog.Default(), hub: hub}
	hub.Register(client)
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	// Nobody drains the unbuffered channel, so the first broadcast evicts it.
	hub.BroadcastVaultChanged()

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestHub_UnregisterAfterStopReturns(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()

	client := newTestClient()
	client.hub = hub
	hub.Register(client)
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	hub.Stop()

	done := make(chan struct{})
	go func() {
		hub.Unregister(client)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked after Stop")
	}
}

func TestHub_StopIsIdempotent(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Start()
	hub.Stop()
	hub.Stop()
	assert.Zero(t, hub.ClientCount())
}
