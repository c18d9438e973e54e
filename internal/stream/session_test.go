package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSession_DeliversPackets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		// Hello, a heartbeat, and one data packet in a single frame.
		frame := Encode(`{"session_id":"srv"}`) +
			Encode("~h~1") +
			Encode(`{"m":"qsd","p":["qs_x",{"n":"THYAO","v":{"lp":312.5}}]}`)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))

		// The heartbeat must come back verbatim before anything else.
		_, echo, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, Encode("~h~1"), string(echo))
	}))
	defer srv.Close()

	s, err := Dial(context.Background(), wsURL(srv), "https://example.com", nil)
	require.NoError(t, err)
	defer s.Close()

	select {
	case p := <-s.Packets():
		assert.Equal(t, "qsd", p.Method)
	case <-time.After(2 * time.Second):
		t.Fatal("no packet delivered")
	}
}

func TestSession_SendFrames(t *testing.T) {
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		got <- string(data)
	}))
	defer srv.Close()

	s, err := Dial(context.Background(), wsURL(srv), "", nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Send("quote_create_session", "qs_test"))

	select {
	case frame := <-got:
		payloads := Decode(frame)
		require.Len(t, payloads, 1)
		p, ok := ParsePacket(payloads[0])
		require.True(t, ok)
		assert.Equal(t, "quote_create_session", p.Method)
	case <-time.After(2 * time.Second):
		t.Fatal("server received nothing")
	}
}

func TestSession_CloseEndsPacketStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		// Hold the socket open until the client hangs up.
		conn.ReadMessage()
	}))
	defer srv.Close()

	s, err := Dial(context.Background(), wsURL(srv), "", nil)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.NoError(t, s.Close(), "idempotent")

	select {
	case _, open := <-s.Packets():
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("packet channel never closed")
	}
}
