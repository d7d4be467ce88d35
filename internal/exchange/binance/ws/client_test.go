package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trailingbot/internal/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEchoServer(t *testing.T, messages []string) *httptest.Server {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, m := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientDeliversMessagesAndCloses(t *testing.T) {
	srv := newEchoServer(t, []string{`{"n":1}`, `{"n":2}`})
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	received := make(chan string, 2)
	client := New("test", func(context.Context) (string, error) { return url, nil }, func(data []byte) {
		received <- string(data)
	}, logger.Discard())

	require.NoError(t, client.Connect(context.Background()))

	for _, want := range []string{`{"n":1}`, `{"n":2}`} {
		select {
		case got := <-received:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatal("message not delivered")
		}
	}

	done := make(chan struct{})
	go func() {
		_ = client.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("close did not return")
	}

	assert.NoError(t, client.Close())
}

func TestClientConnectFailure(t *testing.T) {
	client := New("test", func(context.Context) (string, error) { return "ws://127.0.0.1:1/none", nil }, func([]byte) {}, logger.Discard())

	assert.Error(t, client.Connect(context.Background()))
	assert.NoError(t, client.Close())
}
