package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bensgilbert/Collaborate/internal/session"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type Handlers struct {
	log         *zap.Logger
	dispatcher  *session.Dispatcher
	sendTimeout time.Duration
}

func NewHandlers(log *zap.Logger, dispatcher *session.Dispatcher, sendTimeout time.Duration) *Handlers {
	return &Handlers{log: log, dispatcher: dispatcher, sendTimeout: sendTimeout}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// CollaborateWS upgrades the connection and runs its event loop: one task per
// connection, repeatedly reading a frame and handing it to the dispatcher. A
// read error is the transport disconnect and becomes an implicit leave.
func (h *Handlers) CollaborateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	client := session.NewClient(conn, h.sendTimeout)
	state := h.dispatcher.NewConn(client)
	defer h.dispatcher.HandleDisconnect(state)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		h.dispatcher.HandleMessage(state, msg)
	}
}
