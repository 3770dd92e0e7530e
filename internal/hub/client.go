package hub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/streamoverlay/relay/internal/config"
	"github.com/streamoverlay/relay/internal/domain"
	"github.com/streamoverlay/relay/pkg/log"
)

// Client is one downstream viewer connection.
type Client struct {
	ID      string
	Session *domain.Session

	hub  *Hub
	conn Conn
	send chan []byte
	cfg  config.WebSocketConfig
}

func NewClient(id string, h *Hub, conn Conn, cfg config.WebSocketConfig) *Client {
	buffer := cfg.SendBuffer
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{
		ID:      id,
		Session: domain.NewSession(id),
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, buffer),
		cfg:     cfg,
	}
}

// ReadPump consumes inbound frames until the socket dies, then removes the
// client from the hub (and thereby from every room). Pong responses flip
// the liveness flag the supervisor clears each sweep.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.Session.SetAlive(true)
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				l := log.L()
				l.Debug().Err(err).Str(log.FieldClientID, c.ID).Msg("websocket read error")
			}
			break
		}

		c.Session.UpdateActivity()
		handler(c, message)
	}
}

// WritePump drains the send buffer onto the socket. It exits when the hub
// closes the channel on unregister, or on the first write failure.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(c.cfg.WriteWait))
}

// SendMessage marshals and enqueues a frame for this client. Delivery is
// best-effort: a full buffer or an unregistered client drops the frame.
func (c *Client) SendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	c.hub.sendTo(c, data)
	return nil
}

// Ping sends a heartbeat probe. Control frames may be written concurrently
// with the write pump.
func (c *Client) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteWait))
}

// Terminate forcibly disconnects the client, removing it from all rooms
// before the socket is torn down.
func (c *Client) Terminate() {
	c.hub.Unregister(c)
	c.conn.Close()
}
