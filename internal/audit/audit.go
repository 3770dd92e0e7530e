package audit

import (
	"context"

	"github.com/streamoverlay/relay/pkg/log"
)

// Audit actions for the relay.
const (
	ActionJoinRoom   = "relay.join_room"
	ActionLeaveRoom  = "relay.leave_room"
	ActionDisconnect = "relay.disconnect"
	ActionTerminate  = "relay.terminate"
	ActionProvision  = "relay.provision_upstream"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, clientID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldClientID, clientID).
		Msg(msg)
}

// LogWithRoom emits an audit log carrying the room key.
func LogWithRoom(ctx context.Context, action string, clientID string, room string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldClientID, clientID).
		Str(log.FieldRoom, room).
		Msg(msg)
}
