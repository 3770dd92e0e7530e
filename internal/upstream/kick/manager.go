package kick

import (
	"context"
	"strings"
	"sync"

	"github.com/streamoverlay/relay/internal/config"
)

// Manager provisions channel sessions lazily and keeps them for the
// process lifetime; a room emptying downstream never tears its session
// down.
type Manager struct {
	cfg        config.KickConfig
	resolver   Resolver
	dispatcher Dispatcher

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(cfg config.KickConfig, r Resolver, d Dispatcher) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:        cfg,
		resolver:   r,
		dispatcher: d,
		ctx:        ctx,
		cancel:     cancel,
		sessions:   make(map[string]*Session),
	}
}

// Subscribe starts a session for the channel on first call; later calls
// for the same channel are no-ops.
func (m *Manager) Subscribe(channel string) {
	ch := strings.ToLower(channel)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[ch]; ok {
		return
	}
	s := newSession(ch, m.cfg, m.resolver, m.dispatcher)
	m.sessions[ch] = s
	go s.run(m.ctx)
}

// SessionState reports a channel's session state for observation; false
// if the channel was never subscribed.
func (m *Manager) SessionState(channel string) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[strings.ToLower(channel)]
	if !ok {
		return StateIdle, false
	}
	return s.State(), true
}

// Close cancels every session, stopping sockets and reconnect timers.
func (m *Manager) Close() {
	m.cancel()
}
