package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds how long a slow client can stall an event write.
const writeWait = 10 * time.Second

// WriteTyped sends one JSON message with a fresh write deadline.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

// WriteError reports a failure to the client, typically right before the
// server closes the socket.
func WriteError(conn *websocket.Conn, msg string) error {
	return WriteTyped(conn, ErrorResponse{Event: EventError, Error: msg})
}
