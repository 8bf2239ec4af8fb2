package simgateway

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cleanbook/internal/api"
	"cleanbook/internal/realtime"
)

// Hub fans booking events out to connected dashboard sessions.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{conns: make(map[*websocket.Conn]bool), log: log}
}

var upgrader = websocket.Upgrader{
	// The simulator trusts whatever origin the dev frontend runs on.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve upgrades an authenticated staff connection and keeps it registered
// until the peer goes away.
func (h *Hub) Serve(secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authz := strings.TrimSpace(r.Header.Get("Authorization"))
		token := ""
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			token = strings.TrimSpace(authz[7:])
		} else {
			// Browser websocket clients cannot set headers; accept ?token=.
			token = r.URL.Query().Get("token")
		}
		if _, err := api.VerifyStaffToken(token, secret, time.Now()); err != nil {
			api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid session token")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.mu.Lock()
		h.conns[conn] = true
		h.mu.Unlock()

		// Drain reads so close frames are processed; drop on first error.
		go func() {
			defer h.drop(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// Broadcast pushes one event to every connected session.
func (h *Hub) Broadcast(ev realtime.Event) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteJSON(ev); err != nil {
			h.log.Debug("dropping notification client", zap.Error(err))
			h.drop(c)
		}
	}
}
