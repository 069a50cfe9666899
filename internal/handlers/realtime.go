package handlers

import (
	"net/http"

	"inpstories/internal/middleware"
	"inpstories/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type RealtimeHandler struct {
	base
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

func NewRealtimeHandler(hub *realtime.Hub, allowedOrigins []string, verbose bool) *RealtimeHandler {
	return &RealtimeHandler{
		base: newBase("realtime-api", verbose),
		hub:  hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

// Connect upgrades the request and serves the socket until it closes. The
// optional token only labels the connection; anonymous viewers may join rooms.
func (h *RealtimeHandler) Connect(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	realtime.NewClient(h.hub, conn, middleware.CurrentUserID(c)).Serve()
}
