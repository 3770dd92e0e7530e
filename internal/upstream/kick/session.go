package kick

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"

	"github.com/streamoverlay/relay/internal/config"
	"github.com/streamoverlay/relay/internal/domain"
	"github.com/streamoverlay/relay/pkg/log"
)

// Dispatcher receives normalized events for a room.
type Dispatcher interface {
	Dispatch(key domain.RoomKey, ev domain.Event)
}

// State of a channel session. Transitions happen only on the session's own
// goroutine; the atomic is for observation.
type State int32

const (
	StateIdle State = iota
	StateResolving
	StateConnecting
	StateSubscribing
	StateActive
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateConnecting:
		return "connecting"
	case StateSubscribing:
		return "subscribing"
	case StateActive:
		return "active"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

type subscribeFrame struct {
	Event string        `json:"event"`
	Data  subscribeData `json:"data"`
}

type subscribeData struct {
	Auth    string `json:"auth"`
	Channel string `json:"channel"`
}

// Session owns one channel's upstream connection for the process lifetime.
// All state below is touched only by the run goroutine.
type Session struct {
	channel    string
	key        domain.RoomKey
	cfg        config.KickConfig
	resolver   Resolver
	dispatcher Dispatcher

	identity *Identity
	state    atomic.Int32
}

func newSession(channel string, cfg config.KickConfig, r Resolver, d Dispatcher) *Session {
	return &Session{
		channel:    channel,
		key:        domain.NewRoomKey(domain.PlatformKick, channel),
		cfg:        cfg,
		resolver:   r,
		dispatcher: d,
	}
}

func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
	l := log.L()
	l.Debug().
		Str(log.FieldChannel, s.channel).
		Str(log.FieldState, st.String()).
		Msg("kick session state")
}

// run drives the session state machine until the context is cancelled.
// Metadata resolution happens once; reconnects reuse the identity. Both
// resolution failures and socket failures back off exponentially, with
// the delay reset after every clean open.
func (s *Session) run(ctx context.Context) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.ReconnectMin
	bo.MaxInterval = s.cfg.ReconnectMax

	for {
		if s.identity == nil {
			s.setState(StateResolving)
			id, err := s.resolver.Resolve(ctx, s.channel)
			if err != nil {
				l := log.L()
				l.Warn().Err(err).Str(log.FieldChannel, s.channel).Msg("kick metadata resolution failed")
				s.setState(StateIdle)
				if !s.wait(ctx, bo.NextBackOff()) {
					return
				}
				continue
			}
			s.identity = &id
		}

		s.setState(StateConnecting)
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.cfg.WSURL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l := log.L()
			l.Warn().Err(err).Str(log.FieldChannel, s.channel).Msg("kick dial failed")
			s.setState(StateReconnecting)
			if !s.wait(ctx, bo.NextBackOff()) {
				return
			}
			continue
		}

		s.setState(StateSubscribing)
		if err := s.subscribe(conn); err != nil {
			l := log.L()
			l.Warn().Err(err).Str(log.FieldChannel, s.channel).Msg("kick subscribe failed")
			conn.Close()
			s.setState(StateReconnecting)
			if !s.wait(ctx, bo.NextBackOff()) {
				return
			}
			continue
		}

		s.setState(StateActive)
		bo.Reset()
		l := log.L()
		l.Info().Str(log.FieldChannel, s.channel).Msg("kick channel active")

		s.readLoop(ctx, conn)
		conn.Close()
		if ctx.Err() != nil {
			return
		}

		s.setState(StateReconnecting)
		if !s.wait(ctx, bo.NextBackOff()) {
			return
		}
	}
}

// subscribe sends the two topic subscriptions, fire and forget; acks are
// not awaited.
func (s *Session) subscribe(conn *websocket.Conn) error {
	topics := []string{
		fmt.Sprintf("chatrooms.%d.v2", s.identity.ChatroomID),
		fmt.Sprintf("channel.%d", s.identity.ChannelID),
	}
	for _, topic := range topics {
		frame := subscribeFrame{
			Event: "pusher:subscribe",
			Data:  subscribeData{Channel: topic},
		}
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(frame); err != nil {
			return err
		}
	}
	return nil
}

// readLoop pumps frames until the socket dies or the context is
// cancelled. A malformed frame is logged and dropped; it never takes the
// session down.
func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			l := log.L()
			l.Debug().Err(err).Str(log.FieldChannel, s.channel).Msg("kick socket closed")
			return
		}

		ev, err := translateFrame(data)
		if err != nil {
			l := log.L()
			l.Warn().Err(err).Str(log.FieldChannel, s.channel).Msg("dropping malformed kick frame")
			continue
		}
		if ev == nil {
			continue
		}
		s.dispatcher.Dispatch(s.key, ev)
	}
}

// wait sleeps for d, returning false if the context was cancelled first.
func (s *Session) wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
