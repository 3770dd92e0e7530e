package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatMessageWireFormat(t *testing.T) {
	ev := &ChatMessage{
		User:      "viewer",
		Text:      "hello",
		UserID:    "123",
		MessageID: "abc",
		Platform:  PlatformTwitch,
		BadgesRaw: "subscriber/1",
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var frame map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &frame))

	assert.Equal(t, "viewer", frame["user"])
	assert.Equal(t, "hello", frame["message"])
	assert.Equal(t, "123", frame["userId"])
	assert.Equal(t, "abc", frame["msgId"])
	assert.Equal(t, "twitch", frame["platform"])
	assert.Equal(t, "subscriber/1", frame["badgesRaw"])
	assert.Equal(t, false, frame["isAction"])
	// frames without a type field are rendered as chat messages downstream
	assert.NotContains(t, frame, "type")
}

func TestChatMessageOmitsEmptyRawFields(t *testing.T) {
	data, err := json.Marshal(&ChatMessage{User: "v", Platform: PlatformKick})
	require.NoError(t, err)

	var frame map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &frame))
	assert.NotContains(t, frame, "badgesRaw")
	assert.NotContains(t, frame, "emotesRaw")
}

// Moderation frames from either platform must serialize identically: the
// downstream protocol is platform-agnostic.
func TestModerationWireFormats(t *testing.T) {
	cases := []struct {
		name string
		ev   Event
		want string
	}{
		{"delete message", NewMessageDeleted("m1"), `{"type":"delete-message","msgId":"m1"}`},
		{"delete by user", NewMessagesDeletedByUser("u1"), `{"type":"delete-messages","userId":"u1"}`},
		{"clear chat", NewChatCleared(), `{"type":"clear-chat"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.ev)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(data))
		})
	}
}
