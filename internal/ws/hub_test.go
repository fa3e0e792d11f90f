package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConnPair upgrades a real websocket over an httptest server and returns
// both ends: the client side for reading, the server side for the hub.
func newConnPair(t *testing.T) (client, server *websocket.Conn) {
	t.Helper()

	serverConns := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-serverConns:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server connection")
	}
	return client, server
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestBroadcastDeliversPerDocument(t *testing.T) {
	hub := NewHub()

	clientA1, serverA1 := newConnPair(t)
	clientA2, serverA2 := newConnPair(t)
	clientB, serverB := newConnPair(t)
	hub.AddConnection("doc-a", serverA1)
	hub.AddConnection("doc-a", serverA2)
	hub.AddConnection("doc-b", serverB)

	hub.Broadcast("doc-a", WSMessage{
		Type: "score_submitted",
		Data: map[string]interface{}{"score": 100.0},
	})

	for _, client := range []*websocket.Conn{clientA1, clientA2} {
		msg := readMessage(t, client)
		assert.Equal(t, "score_submitted", msg.Type)
		data, ok := msg.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, 100.0, data["score"])
	}

	// the other document's viewer gets nothing
	require.NoError(t, clientB.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	var msg WSMessage
	assert.Error(t, clientB.ReadJSON(&msg))
}

func TestBroadcastConcurrentSubmissions(t *testing.T) {
	hub := NewHub()
	client, server := newConnPair(t)
	hub.AddConnection("doc-1", server)

	const submissions = 20
	var wg sync.WaitGroup
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Broadcast("doc-1", WSMessage{Type: "score_submitted"})
		}()
	}
	wg.Wait()

	for i := 0; i < submissions; i++ {
		msg := readMessage(t, client)
		assert.Equal(t, "score_submitted", msg.Type)
	}
}

func TestBroadcastDropsClosedConnections(t *testing.T) {
	hub := NewHub()
	_, server := newConnPair(t)
	hub.AddConnection("doc-1", server)
	require.NoError(t, server.Close())

	hub.Broadcast("doc-1", WSMessage{Type: "score_submitted"})

	assert.Equal(t, 0, hub.ConnectionCount("doc-1"), "closed connection should be dropped from the registry")
}

func TestRemoveConnection(t *testing.T) {
	hub := NewHub()
	_, server1 := newConnPair(t)
	_, server2 := newConnPair(t)
	hub.AddConnection("doc-1", server1)
	hub.AddConnection("doc-1", server2)

	hub.RemoveConnection("doc-1", server1)
	assert.Equal(t, 1, hub.ConnectionCount("doc-1"))

	hub.RemoveConnection("doc-1", server2)
	assert.Equal(t, 0, hub.ConnectionCount("doc-1"), "empty document entry should be removed")
}
