package kick

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamoverlay/relay/internal/domain"
)

// wrap builds a pusher frame whose data field is the JSON-encoded payload,
// matching the double-encoding on the wire.
func wrap(t *testing.T, event string, payload interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	frame, err := json.Marshal(map[string]string{
		"event":   event,
		"data":    string(data),
		"channel": "chatrooms.42.v2",
	})
	require.NoError(t, err)
	return frame
}

func TestTranslateChatMessage(t *testing.T) {
	frame := wrap(t, `App\Events\ChatMessageEvent`, map[string]interface{}{
		"id":      "msg-1",
		"content": "hello [emote:37226:KEKW]",
		"sender": map[string]interface{}{
			"id":       99,
			"username": "viewer",
			"identity": map[string]interface{}{
				"badges": []map[string]string{{"type": "moderator"}},
			},
		},
	})

	ev, err := translateFrame(frame)
	require.NoError(t, err)

	msg, ok := ev.(*domain.ChatMessage)
	require.True(t, ok)
	assert.Equal(t, "viewer", msg.User)
	assert.Equal(t, "hello [emote:37226:KEKW]", msg.Text, "emote markup stays raw")
	assert.Equal(t, "99", msg.UserID)
	assert.Equal(t, "msg-1", msg.MessageID)
	assert.Equal(t, domain.PlatformKick, msg.Platform)
	assert.JSONEq(t, `[{"type":"moderator"}]`, msg.BadgesRaw)
}

func TestTranslateMessageDeleted(t *testing.T) {
	frame := wrap(t, `App\Events\MessageDeletedEvent`, map[string]interface{}{
		"id":      "evt-1",
		"message": map[string]string{"id": "msg-7"},
	})

	ev, err := translateFrame(frame)
	require.NoError(t, err)

	del, ok := ev.(*domain.MessageDeleted)
	require.True(t, ok)
	assert.Equal(t, "msg-7", del.MessageID)
	assert.Equal(t, domain.EventTypeDeleteMessage, del.Type)
}

func TestTranslateUserBanned(t *testing.T) {
	frame := wrap(t, `App\Events\UserBannedEvent`, map[string]interface{}{
		"user": map[string]interface{}{"id": 123, "username": "troll"},
	})

	ev, err := translateFrame(frame)
	require.NoError(t, err)

	purge, ok := ev.(*domain.MessagesDeletedByUser)
	require.True(t, ok)
	assert.Equal(t, "123", purge.UserID)
}

func TestTranslateChatroomClear(t *testing.T) {
	frame := wrap(t, `App\Events\ChatroomClearEvent`, map[string]string{"id": "evt"})

	ev, err := translateFrame(frame)
	require.NoError(t, err)
	_, ok := ev.(*domain.ChatCleared)
	assert.True(t, ok)
}

func TestTranslateSkipsPusherControlFrames(t *testing.T) {
	for _, event := range []string{
		"pusher:connection_established",
		"pusher:pong",
		"pusher_internal:subscription_succeeded",
	} {
		frame := []byte(`{"event":"` + event + `","data":"{}"}`)
		ev, err := translateFrame(frame)
		assert.NoError(t, err, event)
		assert.Nil(t, ev, event)
	}
}

func TestTranslateMalformedFramesError(t *testing.T) {
	cases := []struct {
		name  string
		frame []byte
	}{
		{"not json", []byte("not json at all")},
		{"data not json", []byte(`{"event":"App\\Events\\ChatMessageEvent","data":"not json"}`)},
		{"chat payload incomplete", wrap(t, `App\Events\ChatMessageEvent`, map[string]string{"something": "else"})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := translateFrame(tc.frame)
			assert.Error(t, err)
			assert.Nil(t, ev)
		})
	}
}
