package service

// Session event types pushed over WebSocket
const (
	EventStateChanged   = "state_changed"
	EventToast          = "toast"
	EventToastDismissed = "toast_dismissed"
	EventSessionClosed  = "session_closed"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
	DisconnectSession(sessionID string)
}
