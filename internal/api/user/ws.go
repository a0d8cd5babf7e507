package user

import (
	"net/http"

	"github.com/algojourney/algojourney/internal/auth"
	"github.com/algojourney/algojourney/internal/database"
	"github.com/algojourney/algojourney/internal/pubsub"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleLeaderboardWs streams live contest standings. The current snapshot
// is sent on connect, then every committed rank recalculation pushes an
// update.
func (h *Handler) handleLeaderboardWs(c *gin.Context) {
	contestID := c.Param("id")
	tokenString := c.Query("token")

	if tokenString == "" {
		c.String(http.StatusUnauthorized, "token query parameter is required")
		return
	}
	if _, err := auth.ValidateJWT(tokenString, h.cfg.Auth.JWT.Secret); err != nil {
		c.String(http.StatusUnauthorized, "invalid token")
		return
	}

	if _, err := database.GetContestByID(h.db, contestID); err != nil {
		c.String(http.StatusNotFound, "contest not found")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.S().Errorf("failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	// Seed the connection with current standings if nothing has been
	// published yet.
	if rows, err := database.GetGroupsOnContest(h.db, contestID); err == nil {
		msg := pubsub.FormatMessage("leaderboard", rows)
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}

	msgChan, unsubscribe := pubsub.GetBroker().Subscribe(contestID)
	defer unsubscribe()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for msg := range msgChan {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				zap.S().Warnf("error writing to websocket: %v", err)
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.S().Infof("websocket unexpected close error: %v", err)
			}
			break
		}
	}
	<-clientClosed

	zap.S().Infof("leaderboard websocket closed for contest %s", contestID)
}
