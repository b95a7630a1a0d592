package websocket

// Events pushed to monitor subscribers.
const (
	EventMonitorHello = "monitor_hello"
	EventAttempt      = "attempt_event"
	EventError        = "error"
)

// Envelope wraps every message sent to a monitor client.
type Envelope struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

// ErrorResponse reports a failure over the socket before closing it.
type ErrorResponse struct {
	Event string `json:"event"`
	Error string `json:"error"`
}
