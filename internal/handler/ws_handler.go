package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/streamoverlay/relay/internal/config"
	"github.com/streamoverlay/relay/internal/domain"
	"github.com/streamoverlay/relay/internal/hub"
	"github.com/streamoverlay/relay/internal/relay"
	"github.com/streamoverlay/relay/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Overlays are embedded in browser sources on arbitrary origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub   *hub.Hub
	relay *relay.Relay
	wsCfg config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, r *relay.Relay, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:   h,
		relay: r,
		wsCfg: wsCfg,
	}
}

func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l := log.L()
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.handleMessage)
}

// handleMessage processes one inbound frame. The downstream protocol has a
// single action; anything unparseable or incomplete is ignored and the
// connection stays open.
func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	var req domain.JoinRequest
	if err := json.Unmarshal(message, &req); err != nil {
		l := log.L()
		l.Warn().Err(err).Str(log.FieldClientID, client.ID).Msg("malformed frame")
		return
	}

	if req.Action != domain.ActionJoin || req.Platform == "" || req.Channel == "" {
		return
	}

	key := domain.NewRoomKey(req.Platform, req.Channel)
	h.relay.Join(context.Background(), client, key)

	// Acked unconditionally: provisioning is asynchronous and its failure
	// is not surfaced here.
	client.SendMessage(domain.NewJoinAck(key))
}

func (h *WSHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.HandleWebSocket)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Server is running"))
	})
}
