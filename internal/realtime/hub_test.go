package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	return hub, cancel
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestHubDeliversToEverySessionOfUser(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	hub, cancel := startHub(t)

	user := uuid.New()
	a, b := NewClient(user, nil), NewClient(user, nil)
	other := NewClient(uuid.New(), nil)
	for _, c := range []*Client{a, b, other} {
		require.True(t, hub.RegisterClient(c))
	}
	assert.Equal(t, 2, hub.Connected(user))

	hub.Notify(context.Background(), Event{Type: EventNewMessage, JobID: uuid.New(), Data: "hi"}, user)

	for _, c := range []*Client{a, b} {
		var ev Event
		require.NoError(t, json.Unmarshal(receive(t, c), &ev))
		assert.Equal(t, EventNewMessage, ev.Type)
	}
	assert.Empty(t, other.Send)

	cancel()
	<-hub.done
}

func TestHubUnregisterClosesSend(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	hub, cancel := startHub(t)
	defer func() {
		cancel()
		<-hub.done
	}()

	c := NewClient(uuid.New(), nil)
	require.True(t, hub.RegisterClient(c))
	hub.UnregisterClient(c)

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.Zero(t, hub.Connected(c.UserID))
	assert.Zero(t, hub.SendToUser(c.UserID, []byte("x")))
}

func TestHubStopClosesSessions(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	hub, cancel := startHub(t)

	c := NewClient(uuid.New(), nil)
	require.True(t, hub.RegisterClient(c))
	cancel()
	<-hub.done

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.False(t, hub.RegisterClient(NewClient(uuid.New(), nil)), "stopped hub refuses clients")
	hub.UnregisterClient(c)
}

func TestHubSkipsFullBuffers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	hub, cancel := startHub(t)
	defer func() {
		cancel()
		<-hub.done
	}()

	c := &Client{ID: "slow", UserID: uuid.New(), Send: make(chan []byte, 1)}
	require.True(t, hub.RegisterClient(c))

	assert.Equal(t, 1, hub.SendToUser(c.UserID, []byte("1")))
	assert.Equal(t, 0, hub.SendToUser(c.UserID, []byte("2")))
}
