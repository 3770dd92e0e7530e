package domain

import "strings"

// Supported upstream platforms.
const (
	PlatformTwitch = "twitch"
	PlatformKick   = "kick"
)

// RoomKey addresses a room: one upstream channel on one platform.
// Channel names are case-insensitive; the constructor normalizes them
// so two keys are equal iff platform and lowercased channel match.
type RoomKey struct {
	Platform string
	Channel  string
}

func NewRoomKey(platform, channel string) RoomKey {
	return RoomKey{
		Platform: platform,
		Channel:  strings.ToLower(strings.TrimPrefix(channel, "#")),
	}
}

// String renders the key in the wire form used by join acks, e.g. "twitch-sodapoppin".
func (k RoomKey) String() string {
	return k.Platform + "-" + k.Channel
}
