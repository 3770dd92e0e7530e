// Package twitch adapts the Twitch IRC firehose into normalized relay
// events. One persistent session serves every subscribed channel; joins
// are added to it at runtime.
package twitch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	twitchirc "github.com/gempir/go-twitch-irc/v4"

	"github.com/streamoverlay/relay/internal/domain"
	"github.com/streamoverlay/relay/pkg/log"
)

// Dispatcher receives normalized events for a room.
type Dispatcher interface {
	Dispatch(key domain.RoomKey, ev domain.Event)
}

// IRC is the slice of the gempir client the adapter uses. Handlers must be
// registered before Connect.
type IRC interface {
	Join(channels ...string)
	OnPrivateMessage(handler func(message twitchirc.PrivateMessage))
	OnClearMessage(handler func(message twitchirc.ClearMessage))
	OnClearChatMessage(handler func(message twitchirc.ClearChatMessage))
	Connect() error
	Disconnect() error
}

type Adapter struct {
	irc        IRC
	dispatcher Dispatcher

	mu     sync.Mutex
	joined map[string]struct{}
}

func NewAdapter(irc IRC, d Dispatcher) *Adapter {
	a := &Adapter{
		irc:        irc,
		dispatcher: d,
		joined:     make(map[string]struct{}),
	}
	irc.OnPrivateMessage(a.onPrivateMessage)
	irc.OnClearMessage(a.onClearMessage)
	irc.OnClearChatMessage(a.onClearChat)
	return a
}

// Run keeps the IRC session connected until the context is cancelled. The
// client reconnects on its own; this loop only restarts it after a
// terminal connect error.
func (a *Adapter) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		a.irc.Disconnect()
	}()

	for {
		err := a.irc.Connect()
		if ctx.Err() != nil || errors.Is(err, twitchirc.ErrClientDisconnected) {
			return
		}
		l := log.L()
		l.Warn().Err(err).Msg("twitch connection lost, restarting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

// Subscribe joins a channel on the shared session. Channels already joined
// are skipped, so the room registry may call this on every room creation.
func (a *Adapter) Subscribe(channel string) {
	ch := normalizeChannel(channel)

	a.mu.Lock()
	if _, ok := a.joined[ch]; ok {
		a.mu.Unlock()
		return
	}
	a.joined[ch] = struct{}{}
	a.mu.Unlock()

	a.irc.Join(ch)
	l := log.L()
	l.Info().Str(log.FieldChannel, ch).Msg("joined twitch channel")
}

func (a *Adapter) onPrivateMessage(m twitchirc.PrivateMessage) {
	a.dispatcher.Dispatch(roomKeyFor(m.Channel), translatePrivateMessage(m))
}

func (a *Adapter) onClearMessage(m twitchirc.ClearMessage) {
	a.dispatcher.Dispatch(roomKeyFor(m.Channel), translateClearMessage(m))
}

func (a *Adapter) onClearChat(m twitchirc.ClearChatMessage) {
	a.dispatcher.Dispatch(roomKeyFor(m.Channel), translateClearChat(m))
}

func roomKeyFor(channel string) domain.RoomKey {
	return domain.NewRoomKey(domain.PlatformTwitch, channel)
}

func normalizeChannel(channel string) string {
	return strings.ToLower(strings.TrimPrefix(channel, "#"))
}
