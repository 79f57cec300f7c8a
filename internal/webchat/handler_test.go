package webchat

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/dentalcareconnect/chatbot-backend/internal/chat"
	"github.com/dentalcareconnect/chatbot-backend/internal/intent"
	"github.com/dentalcareconnect/chatbot-backend/internal/store"
	"github.com/dentalcareconnect/chatbot-backend/pkg/logging"
)

type mockConversationalist struct {
	reply *chat.Reply
	err   error

	lastUserID  string
	lastMessage string
}

func (m *mockConversationalist) HandleMessage(_ context.Context, userID, message string) (*chat.Reply, error) {
	m.lastUserID = userID
	m.lastMessage = message
	if m.err != nil {
		return nil, m.err
	}
	return m.reply, nil
}

func dialWS(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat" + query
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestWebSocket_MessageRoundTrip(t *testing.T) {
	svc := &mockConversationalist{reply: &chat.Reply{
		Text:       "Hello Alice!",
		UserName:   "Alice",
		Intent:     intent.LabelGeneralQuery,
		Confidence: 0.9,
		Timestamp:  time.Now().UTC(),
	}}
	h := NewHandler(svc, logging.New("error"))

	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, conn.Request())
	}))
	defer srv.Close()

	conn := dialWS(t, srv, "?user_id=u1")

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", UserID: "u1", Text: "hi"}))

	var typing OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &typing))
	assert.Equal(t, "typing", typing.Type)

	var reply OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &reply))
	assert.Equal(t, "message", reply.Type)
	assert.Equal(t, "assistant", reply.Role)
	assert.Equal(t, "Hello Alice!", reply.Text)
	assert.Equal(t, "general_query", reply.Intent)

	assert.Equal(t, "u1", svc.lastUserID)
	assert.Equal(t, "hi", svc.lastMessage)
}

func TestWebSocket_PingPong(t *testing.T) {
	h := NewHandler(&mockConversationalist{}, logging.New("error"))

	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, conn.Request())
	}))
	defer srv.Close()

	conn := dialWS(t, srv, "?user_id=u1")

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "ping"}))

	var pong OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &pong))
	assert.Equal(t, "pong", pong.Type)
}

func TestWebSocket_MissingUserID(t *testing.T) {
	h := NewHandler(&mockConversationalist{}, logging.New("error"))

	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, conn.Request())
	}))
	defer srv.Close()

	conn := dialWS(t, srv, "")

	var msg OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &msg))
	assert.Equal(t, "error", msg.Type)
}

func TestWebSocket_UnknownUser(t *testing.T) {
	svc := &mockConversationalist{err: store.ErrNotFound}
	h := NewHandler(svc, logging.New("error"))

	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, conn.Request())
	}))
	defer srv.Close()

	conn := dialWS(t, srv, "?user_id=ghost")

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "hi"}))

	var typing OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &typing))
	assert.Equal(t, "typing", typing.Type)

	var errMsg OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &errMsg))
	assert.Equal(t, "error", errMsg.Type)
	assert.Contains(t, errMsg.Text, "account")
}
