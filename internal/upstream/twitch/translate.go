package twitch

import (
	twitchirc "github.com/gempir/go-twitch-irc/v4"

	"github.com/streamoverlay/relay/internal/domain"
)

// Translation is pure so it can be exercised with synthetic IRC messages.
// Badge and emote tags pass through raw; the overlay resolves them.

func translatePrivateMessage(m twitchirc.PrivateMessage) *domain.ChatMessage {
	return &domain.ChatMessage{
		User:      m.User.DisplayName,
		Text:      m.Message,
		UserID:    m.User.ID,
		MessageID: m.ID,
		Platform:  domain.PlatformTwitch,
		BadgesRaw: m.Tags["badges"],
		EmotesRaw: m.Tags["emotes"],
		IsAction:  m.Action,
	}
}

func translateClearMessage(m twitchirc.ClearMessage) *domain.MessageDeleted {
	return domain.NewMessageDeleted(m.TargetMsgID)
}

// translateClearChat distinguishes a per-user purge (timeout or ban, the
// tag carries a target) from a full chat clear.
func translateClearChat(m twitchirc.ClearChatMessage) domain.Event {
	if m.TargetUserID != "" {
		return domain.NewMessagesDeletedByUser(m.TargetUserID)
	}
	return domain.NewChatCleared()
}
