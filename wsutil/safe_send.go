package wsutil

import "log/slog"

// SafeSend sends data to a connection's send channel without panicking if the
// channel is closed. A full or closed channel drops the message; a slow client
// must never block a match broadcast.
func SafeSend(ch chan []byte, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("SafeSend recovered panic", "tag", "wsutil", "panic", r)
		}
	}()
	select {
	case ch <- data:
	default:
	}
}
