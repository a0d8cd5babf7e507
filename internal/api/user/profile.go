package user

import (
	"errors"
	"net/http"

	"github.com/algojourney/algojourney/internal/database"
	"github.com/algojourney/algojourney/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handler) getUserProfile(c *gin.Context) {
	userID := c.GetString("userID")
	user, err := database.GetUserByID(h.db, userID)
	if err != nil {
		util.Error(c, http.StatusNotFound, err)
		return
	}
	util.Success(c, user, "Profile retrieved")
}

func (h *Handler) updateUserProfile(c *gin.Context) {
	userID := c.GetString("userID")
	user, err := database.GetUserByID(h.db, userID)
	if err != nil {
		util.Error(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		LeetcodeUsername *string `json:"leetcode_username"`
		CodeforcesHandle *string `json:"codeforces_handle"`
		GithubUsername   *string `json:"github_username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	if req.LeetcodeUsername != nil {
		user.LeetcodeUsername = *req.LeetcodeUsername
	}
	if req.CodeforcesHandle != nil {
		user.CodeforcesHandle = *req.CodeforcesHandle
	}
	if req.GithubUsername != nil {
		user.GithubUsername = *req.GithubUsername
	}

	if err := database.UpdateUser(h.db, user); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, user, "Profile updated")
}

func (h *Handler) getUserStats(c *gin.Context) {
	targetID := c.Param("id")
	if _, err := database.GetUserByID(h.db, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "user not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	stats, err := database.GetExternalStats(h.db, targetID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, stats, "Stats retrieved")
}

// refreshOwnStats queues a background refresh of the caller's third-party
// profiles. The request returns immediately.
func (h *Handler) refreshOwnStats(c *gin.Context) {
	userID := c.GetString("userID")
	if !h.refresher.Enqueue(userID) {
		util.Error(c, http.StatusServiceUnavailable, "refresh queue is full, try again later")
		return
	}
	util.Success(c, nil, "Stats refresh queued")
}
