package hub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/streamoverlay/relay/internal/audit"
	"github.com/streamoverlay/relay/internal/config"
	"github.com/streamoverlay/relay/internal/domain"
	"github.com/streamoverlay/relay/pkg/log"
)

// UpstreamState tracks whether a room's upstream subscription has been
// provisioned. It is advisory: provisioning is asynchronous and best-effort,
// so a Pending room may receive events late or, on provisioning failure,
// never.
type UpstreamState int

const (
	UpstreamUnsubscribed UpstreamState = iota
	UpstreamPending
	UpstreamActive
)

// ProvisionFunc is invoked once, asynchronously, when a room gains its
// first member. It must not call back into the hub synchronously holding
// any lock of its own that a dispatch path could also take.
type ProvisionFunc func(key domain.RoomKey)

type room struct {
	key      domain.RoomKey
	members  map[string]*Client
	upstream UpstreamState
}

// Hub is the room registry and broadcast dispatcher. All membership state
// lives behind its mutex; no other component touches a room's member set.
// Critical sections are short and never perform I/O beyond a non-blocking
// push onto a client's send buffer.
type Hub struct {
	mu        sync.RWMutex
	rooms     map[domain.RoomKey]*room
	clients   map[string]*Client
	provision ProvisionFunc
	cfg       config.WebSocketConfig
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		rooms:   make(map[domain.RoomKey]*room),
		clients: make(map[string]*Client),
		cfg:     cfg,
	}
}

// SetProvisioner installs the upstream provisioning hook. Call before the
// hub starts accepting joins.
func (h *Hub) SetProvisioner(fn ProvisionFunc) {
	h.provision = fn
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	l := log.L()
	l.Debug().Str(log.FieldClientID, c.ID).Msg("client registered")
}

// Unregister removes a client from the hub and from every room it joined,
// destroying rooms left empty. Safe to call more than once; the send
// channel is closed exactly once, under the lock, so in-flight dispatches
// (which hold the read lock) can never race the close.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; !ok {
		h.mu.Unlock()
		return
	}
	for _, key := range c.Session.Rooms() {
		h.removeMemberLocked(c, key)
	}
	delete(h.clients, c.ID)
	close(c.send)
	h.mu.Unlock()
	audit.Log(context.Background(), audit.ActionDisconnect, c.ID, "client unregistered")
}

// Join adds the client to the room for key, creating the room on first
// join. Joining a room the client already belongs to is a no-op that still
// counts as success. Returns true when this join created the room, in
// which case the provisioning hook has been kicked off asynchronously.
//
// A client that has already been unregistered is refused: its send channel
// is closed, and inserting it into a member map would let a later Dispatch
// write to that closed channel.
func (h *Hub) Join(c *Client, key domain.RoomKey) bool {
	h.mu.Lock()
	if _, registered := h.clients[c.ID]; !registered {
		h.mu.Unlock()
		return false
	}
	r, ok := h.rooms[key]
	if !ok {
		r = &room{
			key:      key,
			members:  make(map[string]*Client),
			upstream: UpstreamPending,
		}
		h.rooms[key] = r
	}
	r.members[c.ID] = c
	c.Session.AddRoom(key)
	h.mu.Unlock()

	l := log.L()
	l.Info().
		Str(log.FieldClientID, c.ID).
		Str(log.FieldRoom, key.String()).
		Msg("client joined room")

	created := !ok
	if created && h.provision != nil {
		go func() {
			h.provision(key)
			h.setUpstreamState(key, UpstreamActive)
		}()
	}
	return created
}

// Leave removes the client from one room, destroying it if left empty.
func (h *Hub) Leave(c *Client, key domain.RoomKey) {
	h.mu.Lock()
	h.removeMemberLocked(c, key)
	h.mu.Unlock()

	audit.LogWithRoom(context.Background(), audit.ActionLeaveRoom, c.ID, key.String(), "client left room")
}

func (h *Hub) removeMemberLocked(c *Client, key domain.RoomKey) {
	r, ok := h.rooms[key]
	if !ok {
		return
	}
	delete(r.members, c.ID)
	c.Session.RemoveRoom(key)
	if len(r.members) == 0 {
		// The upstream subscription, if any, stays live; a later join to
		// the same key reuses it without re-provisioning upstream state
		// owned by the adapters.
		delete(h.rooms, key)
	}
}

// Dispatch serializes the event once and fans it out to every current
// member of the room. Members whose send buffer is full are skipped; a
// slow viewer never delays the rest. No-op if the room does not exist.
func (h *Hub) Dispatch(key domain.RoomKey, ev domain.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		l := log.L()
		l.Error().Err(err).Str(log.FieldRoom, key.String()).Msg("marshal event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[key]
	if !ok {
		return
	}
	for _, c := range r.members {
		select {
		case c.send <- data:
		default:
			l := log.L()
			l.Debug().
				Str(log.FieldClientID, c.ID).
				Str(log.FieldRoom, key.String()).
				Msg("send buffer full, dropping event for client")
		}
	}
}

// sendTo enqueues a frame for one client if it is still registered.
func (h *Hub) sendTo(c *Client, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.ID]; !ok {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Clients returns a snapshot of all registered clients.
func (h *Hub) Clients() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c)
	}
	return out
}

// RoomCount returns the number of live rooms.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// MemberCount returns the member count for a room, zero if absent.
func (h *Hub) MemberCount(key domain.RoomKey) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.rooms[key]; ok {
		return len(r.members)
	}
	return 0
}

// UpstreamStateOf reports a room's provisioning state, Unsubscribed if the
// room does not exist.
func (h *Hub) UpstreamStateOf(key domain.RoomKey) UpstreamState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.rooms[key]; ok {
		return r.upstream
	}
	return UpstreamUnsubscribed
}

func (h *Hub) setUpstreamState(key domain.RoomKey, state UpstreamState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[key]; ok {
		r.upstream = state
	}
}
