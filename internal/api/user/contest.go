package user

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/algojourney/algojourney/internal/contest"
	"github.com/algojourney/algojourney/internal/database"
	"github.com/algojourney/algojourney/internal/database/models"
	"github.com/algojourney/algojourney/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handler) getAllContests(c *gin.Context) {
	contests, err := database.GetAllContests(h.db)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	// Statuses are reconciled opportunistically on read.
	contests = contest.ReconcileStatuses(h.db, contests)
	util.Success(c, contests, "Contests loaded")
}

func (h *Handler) getContest(c *gin.Context) {
	contestID := c.Param("id")
	target, err := database.GetContestByID(h.db, contestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, fmt.Errorf("contest not found"))
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	now := contest.Now()
	target.Status = contest.DeriveStatus(target, now)

	// For contests that haven't started, hide the question list.
	if now.Before(target.StartTime) {
		target.Questions = []models.Question{}
		util.Success(c, target, "Contest found, but has not started yet")
		return
	}
	util.Success(c, target, "Contest found")
}

func (h *Handler) joinContest(c *gin.Context) {
	userID := c.GetString("userID")
	contestID := c.Param("id")

	result, err := contest.Join(h.db, userID, contestID)
	if err != nil {
		switch {
		case errors.Is(err, contest.ErrNoGroup):
			util.Denied(c, http.StatusNotFound, "no_group", err)
		case errors.Is(err, contest.ErrNotPermitted):
			util.Denied(c, http.StatusForbidden, "not_permitted", err)
		case errors.Is(err, contest.ErrNotStarted):
			util.Denied(c, http.StatusForbidden, "not_started", err)
		case errors.Is(err, contest.ErrEnded):
			util.Denied(c, http.StatusForbidden, "ended", err)
		case errors.Is(err, contest.ErrAlreadyAttempted):
			util.Denied(c, http.StatusConflict, "already_attempted", err)
		case errors.Is(err, gorm.ErrRecordNotFound):
			util.Error(c, http.StatusNotFound, "contest not found")
		default:
			util.Error(c, http.StatusInternalServerError, err)
		}
		return
	}

	util.Success(c, result, "Joined contest")
}

func (h *Handler) getContestLeaderboard(c *gin.Context) {
	contestID := c.Param("id")

	var cached []models.GroupOnContest
	if h.leaderboard.Get(c.Request.Context(), contestID, &cached) {
		util.Success(c, cached, "Leaderboard retrieved")
		return
	}

	rows, err := database.GetGroupsOnContest(h.db, contestID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	h.leaderboard.Set(c.Request.Context(), contestID, rows)
	util.Success(c, rows, "Leaderboard retrieved")
}
