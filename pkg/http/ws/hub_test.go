package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(TypePing, nil)
	require.NoError(t, err)
	assert.Equal(t, TypePing, msg.Type)
	assert.Nil(t, msg.Payload)

	msg, err = NewMessage(TypeQuestionTick, QuestionTickPayload{QuestionIndex: 2, RemainingSeconds: 7})
	require.NoError(t, err)
	assert.JSONEq(t, `{"question_index":2,"remaining_seconds":7}`, string(msg.Payload))
}

func TestConnectionSendQueue(t *testing.T) {
	c := NewConnection(nil, zerolog.Nop(), ConnectionOptions{SendBuffer: 1})

	require.NoError(t, c.Send(Message{Type: TypePong}))
	assert.ErrorIs(t, c.Send(Message{Type: TypePong}), ErrSendQueueFull)

	c.Close()
	c.Close()
	assert.ErrorIs(t, c.Send(Message{Type: TypePong}), ErrConnectionClosed)
}

func TestHubSendToUnknownSession(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	err := hub.SendToSession(uuid.New(), Message{Type: TypePong})
	assert.ErrorIs(t, err, ErrConnectionNotFound)
}

// hubServer upgrades each request, registers it with hub and echoes ping as pong.
func hubServer(t *testing.T, hub *Hub, registered chan<- uuid.UUID) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		id := uuid.New()
		c := NewConnection(conn, zerolog.Nop(), ConnectionOptions{})
		hub.RegisterSession(id, c)
		go c.WritePump()
		registered <- id

		c.ReadPump(func(msg Message) error {
			if msg.Type != TypePing {
				return nil
			}
			reply, err := NewMessage(TypePong, nil)
			if err != nil {
				return err
			}
			reply.RequestID = msg.RequestID
			return c.Send(reply)
		})
		hub.UnregisterSession(id)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	return conn
}

func TestHubRoutesMessages(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	registered := make(chan uuid.UUID, 1)
	srv := hubServer(t, hub, registered)

	conn := dialHub(t, srv)
	id := <-registered
	assert.Equal(t, 1, hub.Count())

	require.NoError(t, conn.WriteJSON(Message{Type: TypePing, RequestID: "abc"}))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, TypePong, msg.Type)
	assert.Equal(t, "abc", msg.RequestID)

	notice, err := NewMessage(TypeError, ErrorPayload{Code: "test", Message: "hello"})
	require.NoError(t, err)
	require.NoError(t, hub.SendToSession(id, notice))

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, TypeError, msg.Type)
	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "hello", payload.Message)
}

func TestHubCloseAllFlushesAndCloses(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	registered := make(chan uuid.UUID, 2)
	srv := hubServer(t, hub, registered)

	first := dialHub(t, srv)
	second := dialHub(t, srv)
	<-registered
	<-registered
	require.Equal(t, 2, hub.Count())

	shutdown, err := NewMessage(TypeServerShutdown, ServerShutdownPayload{Reason: "bye"})
	require.NoError(t, err)
	require.NoError(t, hub.BroadcastAll(shutdown))
	hub.CloseAll()
	assert.Zero(t, hub.Count())

	for _, conn := range []*websocket.Conn{first, second} {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, TypeServerShutdown, msg.Type)

		_, _, err := conn.ReadMessage()
		assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	}
}
