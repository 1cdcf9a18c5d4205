package connection

// Conn is an outbound message sink for one websocket connection.
type Conn interface {
	// Send queues v for delivery. It must not block.
	Send(v any) error
}
