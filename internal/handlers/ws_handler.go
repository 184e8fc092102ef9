package handlers

import (
	"log/slog"
	"net/http"

	"github.com/automeal/automeal-server/internal/rpc"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades connections and feeds inbound frames to the
// dispatcher. Messages on one connection are handled strictly in
// arrival order so replies correlate 1:1; independent connections run
// in their own goroutines.
type WSHandler struct {
	dispatcher *rpc.Dispatcher
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewWSHandler creates a new WebSocket handler
func NewWSHandler(dispatcher *rpc.Dispatcher, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// CORS is enforced at the router; the upgrade accepts any origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP handles GET /mcp/ws
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	h.logger.Info("websocket connected", "remote_addr", conn.RemoteAddr().String())
	h.serve(r, conn)
}

// serve runs the per-connection read loop until the peer disconnects.
func (h *WSHandler) serve(r *http.Request, conn *websocket.Conn) {
	defer func() {
		conn.Close()
		h.logger.Info("websocket disconnected", "remote_addr", conn.RemoteAddr().String())
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		reply, ok := h.dispatcher.Dispatch(r.Context(), message)
		if !ok {
			// notification: no frame goes back
			continue
		}

		if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
			h.logger.Warn("websocket write failed", "error", err)
			return
		}
	}
}
