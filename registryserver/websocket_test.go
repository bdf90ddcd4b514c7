package registryserver

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusWebsocketReceivesReload(t *testing.T) {
	svc, _ := newTestService()

	server := httptest.NewServer(svc.Router())
	defer server.Close()
	defer svc.Shutdown()

	wsurl := "ws://" + strings.TrimPrefix(server.URL, "http://") + "/controller/ws/status"
	conn, _, err := websocket.DefaultDialer.Dial(wsurl, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the handler goroutine time to register the watcher.
	time.Sleep(50 * time.Millisecond)

	// A position ingest must reach the watcher as a reload push.
	body := map[string]interface{}{"x": 0.5, "y": 0.5}
	recorder := doRequest(t, svc, "PUT", "/controller/dotbots/ABCDEF01020304/position", body)
	require.Equal(t, 200, recorder.Code)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var notification Notification
	require.NoError(t, json.Unmarshal(data, &notification))
	assert.Equal(t, "reload", notification.Cmd)
}

func TestSubscribeUpdates(t *testing.T) {
	svc, _ := newTestService()
	stream := svc.SubscribeUpdates()

	body := map[string]interface{}{"x": 0.5, "y": 0.5}
	doRequest(t, svc, "PUT", "/controller/dotbots/ABCDEF01020304/position", body)

	select {
	case raw := <-stream:
		notification, ok := raw.(Notification)
		require.True(t, ok)
		assert.Equal(t, "reload", notification.Cmd)
	case <-time.After(2 * time.Second):
		t.Fatal("no update on the subscription stream")
	}
}
