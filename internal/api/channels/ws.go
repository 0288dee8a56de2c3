package channels

import (
	"net/http"

	ws "community-app/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced at the router level; the upgrade itself accepts
	// any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /ws (authenticated; token passed as a query parameter)
func (h *Handler) ServeWS(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	client := ws.NewClient(userID, conn, h.hub, h.log)
	client.Start()
}
