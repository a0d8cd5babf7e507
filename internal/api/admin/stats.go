package admin

import (
	"github.com/algojourney/algojourney/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// triggerStatsRefresh queues every user with external handles for a
// third-party stats refresh. Fire-and-forget: the response returns while the
// batch drains in the background.
func (h *Handler) triggerStatsRefresh(c *gin.Context) {
	go func() {
		if err := h.refresher.EnqueueAll(); err != nil {
			zap.S().Errorf("bulk stats refresh failed to enqueue: %v", err)
		}
	}()
	util.Success(c, nil, "Stats refresh triggered")
}
