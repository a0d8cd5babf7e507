package user

import (
	"errors"
	"net/http"

	"github.com/algojourney/algojourney/internal/database"
	"github.com/algojourney/algojourney/internal/pubsub"
	"github.com/algojourney/algojourney/internal/scoring"
	"github.com/algojourney/algojourney/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handler) createSubmission(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		QuestionSlug string  `json:"question_slug" binding:"required"`
		ContestID    *string `json:"contest_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	sub, err := scoring.RecordSubmission(h.db, userID, req.QuestionSlug, req.ContestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "user or question not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	// Contest scores changed; push fresh standings after the commit.
	if req.ContestID != nil {
		h.leaderboard.Invalidate(c.Request.Context(), *req.ContestID)
		if rows, err := database.GetGroupsOnContest(h.db, *req.ContestID); err == nil {
			pubsub.GetBroker().Publish(*req.ContestID, pubsub.FormatMessage("leaderboard", rows))
		}
	}

	util.Success(c, gin.H{"submission_id": sub.ID, "score": sub.Score}, "Submission recorded")
}

func (h *Handler) getUserSubmissions(c *gin.Context) {
	userID := c.GetString("userID")
	subs, err := database.GetSubmissionsByUserID(h.db, userID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, subs, "ok")
}
