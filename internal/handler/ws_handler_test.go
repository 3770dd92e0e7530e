package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamoverlay/relay/internal/config"
	"github.com/streamoverlay/relay/internal/domain"
	"github.com/streamoverlay/relay/internal/hub"
	"github.com/streamoverlay/relay/internal/relay"
)

type fakeSubscriber struct {
	mu       sync.Mutex
	channels []string
}

func (s *fakeSubscriber) Subscribe(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels = append(s.channels, channel)
}

func (s *fakeSubscriber) subscribed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.channels...)
}

type testRelay struct {
	srv *httptest.Server
	hub *hub.Hub
	sub *fakeSubscriber
}

func newTestRelay(t *testing.T) *testRelay {
	t.Helper()
	cfg := config.WebSocketConfig{
		PingInterval:   time.Minute,
		WriteWait:      time.Second,
		MaxMessageSize: 4096,
		SendBuffer:     16,
	}

	h := hub.NewHub(cfg)
	sub := &fakeSubscriber{}
	r := relay.New(h, map[string]relay.Subscriber{
		domain.PlatformTwitch: sub,
		domain.PlatformKick:   sub,
	})

	mux := http.NewServeMux()
	NewWSHandler(h, r, cfg).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &testRelay{srv: srv, hub: h, sub: sub}
}

func (tr *testRelay) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(tr.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, out interface{}) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func TestJoinAckAndMembership(t *testing.T) {
	tr := newTestRelay(t)
	conn := tr.dial(t)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"action": "join", "platform": "twitch", "channel": "Foo",
	}))

	var ack domain.JoinAck
	readJSON(t, conn, &ack)
	assert.Equal(t, "joined", ack.Status)
	assert.Equal(t, "twitch-foo", ack.Room)

	key := domain.NewRoomKey(domain.PlatformTwitch, "foo")
	assert.Equal(t, 1, tr.hub.MemberCount(key))

	require.Eventually(t, func() bool {
		return len(tr.sub.subscribed()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"foo"}, tr.sub.subscribed())
}

func TestMalformedFramesAreIgnored(t *testing.T) {
	tr := newTestRelay(t)
	conn := tr.dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(map[string]string{"action": "join", "platform": "twitch"}))
	require.NoError(t, conn.WriteJSON(map[string]string{"action": "join", "channel": "foo"}))
	require.NoError(t, conn.WriteJSON(map[string]string{"action": "dance"}))

	// connection survives all of the above; a valid join still works
	require.NoError(t, conn.WriteJSON(map[string]string{
		"action": "join", "platform": "kick", "channel": "bar",
	}))

	var ack domain.JoinAck
	readJSON(t, conn, &ack)
	assert.Equal(t, "kick-bar", ack.Room)
	assert.Equal(t, 1, tr.hub.RoomCount())
}

func TestEventDeliveryToJoinedViewer(t *testing.T) {
	tr := newTestRelay(t)
	conn := tr.dial(t)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"action": "join", "platform": "twitch", "channel": "foo",
	}))
	var ack domain.JoinAck
	readJSON(t, conn, &ack)

	key := domain.NewRoomKey(domain.PlatformTwitch, "foo")
	tr.hub.Dispatch(key, &domain.ChatMessage{
		User: "someone", Text: "hi", Platform: domain.PlatformTwitch, MessageID: "m1",
	})

	var frame map[string]interface{}
	readJSON(t, conn, &frame)
	assert.Equal(t, "someone", frame["user"])
	assert.Equal(t, "hi", frame["message"])
	assert.Equal(t, "twitch", frame["platform"])
}

func TestDisconnectDestroysEmptyRoom(t *testing.T) {
	tr := newTestRelay(t)
	conn := tr.dial(t)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"action": "join", "platform": "twitch", "channel": "foo",
	}))
	var ack domain.JoinAck
	readJSON(t, conn, &ack)
	require.Equal(t, 1, tr.hub.RoomCount())

	conn.Close()

	require.Eventually(t, func() bool {
		return tr.hub.RoomCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTwoViewersOneLeaves(t *testing.T) {
	tr := newTestRelay(t)
	c1 := tr.dial(t)
	c2 := tr.dial(t)

	join := map[string]string{"action": "join", "platform": "kick", "channel": "bar"}
	var ack domain.JoinAck
	require.NoError(t, c1.WriteJSON(join))
	readJSON(t, c1, &ack)
	require.NoError(t, c2.WriteJSON(join))
	readJSON(t, c2, &ack)

	key := domain.NewRoomKey(domain.PlatformKick, "bar")
	require.Equal(t, 2, tr.hub.MemberCount(key))

	c2.Close()
	require.Eventually(t, func() bool {
		return tr.hub.MemberCount(key) == 1
	}, 2*time.Second, 10*time.Millisecond)

	tr.hub.Dispatch(key, domain.NewChatCleared())

	var frame map[string]interface{}
	readJSON(t, c1, &frame)
	assert.Equal(t, "clear-chat", frame["type"])
}

func TestHealthEndpoint(t *testing.T) {
	tr := newTestRelay(t)

	resp, err := http.Get(tr.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
