package session

import (
	"net/http"

	"github.com/coder/websocket"
)

func acceptWebSocket(w http.ResponseWriter, r *http.Request, allowedOrigins []string) (*websocket.Conn, error) {
	opts := &websocket.AcceptOptions{}
	if len(allowedOrigins) == 0 {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = allowedOrigins
	}
	return websocket.Accept(w, r, opts)
}
