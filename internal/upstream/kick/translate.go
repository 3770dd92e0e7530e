package kick

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/streamoverlay/relay/internal/domain"
)

// Pusher frames arrive as an envelope whose data field is a JSON-encoded
// string. Event names are PHP class paths, matched by suffix.
type envelope struct {
	Event   string `json:"event"`
	Data    string `json:"data"`
	Channel string `json:"channel"`
}

type chatPayload struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Sender  struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Identity struct {
			Badges json.RawMessage `json:"badges"`
		} `json:"identity"`
	} `json:"sender"`
}

type deletePayload struct {
	ID      string `json:"id"`
	Message struct {
		ID string `json:"id"`
	} `json:"message"`
}

type bannedPayload struct {
	User struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

// translateFrame maps one inbound frame to a normalized event. A nil
// event with a nil error means protocol chatter (pusher control frames,
// subscription acks) to skip. Errors mean the single frame is dropped;
// the session stays up either way.
func translateFrame(raw []byte) (domain.Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("envelope: %w", err)
	}

	switch {
	case strings.HasPrefix(env.Event, "pusher"):
		return nil, nil

	case strings.HasSuffix(env.Event, "MessageDeletedEvent"):
		var p deletePayload
		if err := json.Unmarshal([]byte(env.Data), &p); err != nil {
			return nil, fmt.Errorf("delete payload: %w", err)
		}
		return domain.NewMessageDeleted(p.Message.ID), nil

	case strings.HasSuffix(env.Event, "UserBannedEvent"):
		var p bannedPayload
		if err := json.Unmarshal([]byte(env.Data), &p); err != nil {
			return nil, fmt.Errorf("banned payload: %w", err)
		}
		return domain.NewMessagesDeletedByUser(strconv.FormatInt(p.User.ID, 10)), nil

	case strings.HasSuffix(env.Event, "ChatroomClearEvent"):
		return domain.NewChatCleared(), nil
	}

	// Anything else is treated as a chat message; text stays raw, emote
	// markup included.
	var p chatPayload
	if err := json.Unmarshal([]byte(env.Data), &p); err != nil {
		return nil, fmt.Errorf("chat payload: %w", err)
	}
	if p.ID == "" || p.Sender.Username == "" {
		return nil, fmt.Errorf("chat payload for %q missing id or sender", env.Event)
	}

	return &domain.ChatMessage{
		User:      p.Sender.Username,
		Text:      p.Content,
		UserID:    strconv.FormatInt(p.Sender.ID, 10),
		MessageID: p.ID,
		Platform:  domain.PlatformKick,
		BadgesRaw: string(p.Sender.Identity.Badges),
	}, nil
}
