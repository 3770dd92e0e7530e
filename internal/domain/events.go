package domain

// Event types for moderation frames sent to viewers. Chat messages carry
// no type field (the overlay treats untyped frames as messages).
const (
	EventTypeDeleteMessage  = "delete-message"
	EventTypeDeleteMessages = "delete-messages"
	EventTypeClearChat      = "clear-chat"
)

// Event is a platform-agnostic upstream event. Upstream adapters map their
// native events into one of the variants below before anything reaches the
// broadcast path; the downstream protocol never sees platform-native shapes.
type Event interface {
	event()
}

// ChatMessage is a single chat line. Badges and emotes are forwarded raw,
// exactly as the platform supplied them; resolution is the consumer's job.
type ChatMessage struct {
	User      string `json:"user"`
	Text      string `json:"message"`
	UserID    string `json:"userId"`
	MessageID string `json:"msgId"`
	Platform  string `json:"platform"`
	BadgesRaw string `json:"badgesRaw,omitempty"`
	EmotesRaw string `json:"emotesRaw,omitempty"`
	IsAction  bool   `json:"isAction"`
}

// MessageDeleted removes a single message by its platform-native ID.
type MessageDeleted struct {
	Type      string `json:"type"`
	MessageID string `json:"msgId"`
}

// MessagesDeletedByUser removes every message from one user (timeout/ban).
type MessagesDeletedByUser struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// ChatCleared wipes the whole room.
type ChatCleared struct {
	Type string `json:"type"`
}

func (*ChatMessage) event()           {}
func (*MessageDeleted) event()        {}
func (*MessagesDeletedByUser) event() {}
func (*ChatCleared) event()           {}

func NewMessageDeleted(messageID string) *MessageDeleted {
	return &MessageDeleted{Type: EventTypeDeleteMessage, MessageID: messageID}
}

func NewMessagesDeletedByUser(userID string) *MessagesDeletedByUser {
	return &MessagesDeletedByUser{Type: EventTypeDeleteMessages, UserID: userID}
}

func NewChatCleared() *ChatCleared {
	return &ChatCleared{Type: EventTypeClearChat}
}
