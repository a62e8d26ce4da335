package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"family_hub_server/internal/infrastructure/mq"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, hub.ServeWS(w, r, userID))
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.Online(userID) > 0 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestHubDeliversToRecipientsOnly(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	alice := dial(t, hub, "alice")
	bob := dial(t, hub, "bob")

	hub.Deliver(&mq.Activity{Type: mq.ActivityPostCreated, ActorID: "carol", Recipients: []string{"alice"}})

	_ = alice.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := alice.ReadMessage()
	require.NoError(t, err)

	var got mq.Activity
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, mq.ActivityPostCreated, got.Type)
	assert.Equal(t, "carol", got.ActorID)

	_ = bob.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = bob.ReadMessage()
	assert.Error(t, err)
}

func TestHubUnregistersClosedConnection(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	conn := dial(t, hub, "dave")
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hub.Online("dave") == 0 }, 2*time.Second, 10*time.Millisecond)
}
