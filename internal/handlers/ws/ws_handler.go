// internal/handlers/ws/ws_handler.go
package ws

import (
	"net/http"
	"net/url"
	"strings"

	"campus-service/internal/events"
	"campus-service/internal/middleware"
	"campus-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWebSocketHandler(hub *events.Hub, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

// originChecker accepts requests without an Origin header (non-browser
// clients), same-host origins, and any origin on the configured allow list.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}

		for _, a := range allowed {
			if strings.EqualFold(strings.TrimRight(a, "/"), strings.TrimRight(origin, "/")) {
				return true
			}
		}
		return false
	}
}

// HandleConnection upgrades an authenticated request to a websocket and
// streams the user's subscription lifecycle events. Admin connections
// receive every event.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()),
		)
		return
	}

	client := events.NewClient(h.hub, conn, userID, middleware.IsAdmin(c), h.logger)
	client.Run()
}
