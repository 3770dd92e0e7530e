package hub

import "time"

// Conn is the subset of *websocket.Conn the hub needs from a downstream
// socket. Narrowing it keeps the client and supervisor testable without a
// network.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadLimit(limit int64)
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}
