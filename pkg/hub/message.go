// Package hub provides a thread-safe websocket broadcast hub using the
// channel-based fan-out pattern. The server uses it to stream pipeline
// stage events to connected UIs.
package hub

// Message is a pre-encoded JSON payload to be broadcast to clients.
type Message struct {
	Data []byte
}

// NewMessage creates a message from pre-encoded JSON bytes.
func NewMessage(data []byte) Message {
	return Message{Data: data}
}
