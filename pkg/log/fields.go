package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Relay
	FieldClientID = "client_id"
	FieldRoom     = "room"
	FieldPlatform = "platform"
	FieldChannel  = "channel"
	FieldEvent    = "event"
	FieldState    = "state"

	// Service
	FieldService = "service"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
