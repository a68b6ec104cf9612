// internal/events/hub_test.go
package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHubDeliversToRegisteredClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &Client{hub: hub, send: make(chan Event, 1), userID: 7}
	require.True(t, hub.Register(client))

	hub.Publish(Event{Type: EventSubscriptionActivated, SubscriptionID: 42, UserID: 7})

	select {
	case ev := <-client.send:
		require.Equal(t, EventSubscriptionActivated, ev.Type)
		require.Equal(t, int64(42), ev.SubscriptionID)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestHubAdminReceivesOtherUsersEvents(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	admin := &Client{hub: hub, send: make(chan Event, 1), userID: 1, isAdmin: true}
	require.True(t, hub.Register(admin))

	hub.Publish(Event{Type: EventSubscriptionCancelled, SubscriptionID: 9, UserID: 7})

	select {
	case ev := <-admin.send:
		require.Equal(t, int64(9), ev.SubscriptionID)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered to admin")
	}
}

func TestHubRejectsRegistrationAfterShutdown(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	ran := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(ran)
	}()

	cancel()
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	client := &Client{hub: hub, send: make(chan Event, 1), userID: 7}
	require.False(t, hub.Register(client))

	// Must return immediately instead of blocking on a dead hub.
	finished := make(chan struct{})
	go func() {
		hub.Unregister(client)
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked after shutdown")
	}
}
