package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/algojourney/algojourney/internal/contest"
	"github.com/algojourney/algojourney/internal/database"
	"github.com/algojourney/algojourney/internal/database/models"
	"github.com/algojourney/algojourney/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (h *Handler) createContest(c *gin.Context) {
	var req struct {
		Name        string    `json:"name" binding:"required"`
		StartTime   time.Time `json:"start_time" binding:"required"`
		EndTime     time.Time `json:"end_time" binding:"required"`
		Duration    int       `json:"duration" binding:"required"`
		QuestionIDs []string  `json:"question_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}
	if !req.EndTime.After(req.StartTime) {
		util.Error(c, http.StatusBadRequest, "end_time must be after start_time")
		return
	}

	newContest := models.Contest{
		ID:        uuid.NewString(),
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Duration:  req.Duration,
	}
	newContest.Status = contest.DeriveStatus(&newContest, contest.Now())

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := database.CreateContest(tx, &newContest); err != nil {
			return err
		}
		if len(req.QuestionIDs) == 0 {
			return nil
		}
		var questions []models.Question
		if err := tx.Where("id IN ?", req.QuestionIDs).Find(&questions).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].InContest = true
			if err := tx.Model(&models.Question{}).
				Where("id = ?", questions[i].ID).
				Update("in_contest", true).Error; err != nil {
				return err
			}
		}
		return tx.Model(&newContest).Association("Questions").Replace(questions)
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	zap.S().Infof("contest %s created: %s", newContest.ID, newContest.Name)
	util.Success(c, newContest, "Contest created")
}

func (h *Handler) updateContest(c *gin.Context) {
	contestID := c.Param("id")

	target, err := database.GetContestByID(h.db, contestID)
	if err != nil {
		util.Error(c, http.StatusNotFound, "contest not found")
		return
	}

	var req struct {
		Name      *string    `json:"name"`
		StartTime *time.Time `json:"start_time"`
		EndTime   *time.Time `json:"end_time"`
		Duration  *int       `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		target.Name = *req.Name
	}
	if req.StartTime != nil {
		target.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		target.EndTime = *req.EndTime
	}
	if req.Duration != nil {
		target.Duration = *req.Duration
	}
	target.Status = contest.DeriveStatus(target, contest.Now())

	if err := database.UpdateContest(h.db, target); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, target, "Contest updated")
}

// grantContestPermissions adds per-user allow-list entries in bulk. Group IDs
// expand to all current members of those groups.
func (h *Handler) grantContestPermissions(c *gin.Context) {
	contestID := c.Param("id")

	var req struct {
		UserIDs  []string `json:"user_ids"`
		GroupIDs []string `json:"group_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	if _, err := database.GetContestByID(h.db, contestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "contest not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	userIDs := append([]string{}, req.UserIDs...)
	for _, gid := range req.GroupIDs {
		group, err := database.GetGroupByID(h.db, gid)
		if err != nil {
			util.Error(c, http.StatusNotFound, "group not found: "+gid)
			return
		}
		for _, member := range group.Members {
			userIDs = append(userIDs, member.ID)
		}
	}

	if err := database.GrantContestPermissions(h.db, contestID, userIDs); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	zap.S().Infof("granted contest %s permission to %d users", contestID, len(userIDs))
	util.Success(c, gin.H{"granted": len(userIDs)}, "Permissions granted")
}

// setGroupPermissions grants group-level access, either to an explicit list
// or to every group when the all flag is set.
func (h *Handler) setGroupPermissions(c *gin.Context) {
	contestID := c.Param("id")
	if contestID == "" {
		util.Error(c, http.StatusBadRequest, "contest id is required")
		return
	}

	var req struct {
		GroupIDs []string `json:"group_ids"`
		All      bool     `json:"all"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	if _, err := database.GetContestByID(h.db, contestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "contest not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	groupIDs := req.GroupIDs
	if req.All {
		groups, err := database.GetAllGroups(h.db)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, err)
			return
		}
		groupIDs = groupIDs[:0]
		for _, g := range groups {
			groupIDs = append(groupIDs, g.ID)
		}
	}

	if err := database.GrantGroupPermissions(h.db, contestID, groupIDs); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	perms, err := database.GetGroupPermissions(h.db, contestID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, perms, "Group permissions set")
}
