package websocket

import (
	"log"
	"net/http"

	internaljwt "helpdesk-backend/internal/jwt"
	"helpdesk-backend/internal/registry"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	reg    *registry.Registry
	verify Verifier
	poster Poster
}

func NewHandler(reg *registry.Registry, poster Poster) *Handler {
	return &Handler{
		reg:    reg,
		verify: internaljwt.ParseAccessToken,
		poster: poster,
	}
}

func NewHandlerWithVerifier(reg *registry.Registry, poster Poster, verify Verifier) *Handler {
	return &Handler{
		reg:    reg,
		verify: verify,
		poster: poster,
	}
}

// ServeTicket upgrades the request and runs the connection's read loop until
// disconnect. Frames are handled in arrival order on this goroutine; each
// connection gets its own, so one slow or broken connection never stalls
// another.
func (h *Handler) ServeTicket(w http.ResponseWriter, r *http.Request, ticketID int64) {
	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		log.Printf("websocket: ticket %d: upgrade failed: %v", ticketID, err)
		return
	}

	conn := newWSConn(raw)
	session := NewSession(ticketID, conn, h.reg, h.verify, h.poster)
	incSessions()

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("websocket: ticket %d: recovered from panic: %v", ticketID, rec)
		}
		// Deregister before the socket goes away, on every exit path.
		session.Close()
		conn.close()
		decSessions()
		log.Printf("websocket: ticket %d: connection closed", ticketID)
	}()

	go conn.keepAlive(ticketID)

	if err := conn.WriteText(AckConnected); err != nil {
		log.Printf("websocket: ticket %d: write greeting: %v", ticketID, err)
		return
	}

	raw.SetReadLimit(512 * 1024)

	for {
		msgType, payload, err := raw.ReadMessage()
		if err != nil {
			if closeErr, ok := err.(*websocket.CloseError); ok {
				if closeErr.Code == websocket.CloseNormalClosure ||
					closeErr.Code == websocket.CloseGoingAway ||
					closeErr.Code == websocket.CloseNoStatusReceived {
					return
				}
			}
			log.Printf("websocket: ticket %d: read failed: %v", ticketID, err)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		session.HandleFrame(r.Context(), string(payload))
	}
}
