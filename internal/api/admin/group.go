package admin

import (
	"errors"
	"net/http"

	"github.com/algojourney/algojourney/internal/database"
	"github.com/algojourney/algojourney/internal/database/models"
	"github.com/algojourney/algojourney/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (h *Handler) getAllGroups(c *gin.Context) {
	groups, err := database.GetAllGroups(h.db)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, groups, "Groups retrieved")
}

// createGroup and updateGroup are deliberately two operations with explicit
// shapes; neither infers intent from which fields happen to be present.
func (h *Handler) createGroup(c *gin.Context) {
	var req struct {
		Name          string   `json:"name" binding:"required"`
		CoordinatorID *string  `json:"coordinator_id"`
		MemberIDs     []string `json:"member_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	group := models.Group{
		ID:            uuid.NewString(),
		Name:          req.Name,
		CoordinatorID: req.CoordinatorID,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := database.CreateGroup(tx, &group); err != nil {
			return err
		}
		for _, uid := range req.MemberIDs {
			if err := database.SetUserGroup(tx, uid, &group.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	zap.S().Infof("group %s created: %s", group.ID, group.Name)
	util.Success(c, group, "Group created")
}

func (h *Handler) updateGroup(c *gin.Context) {
	groupID := c.Param("id")

	group, err := database.GetGroupByID(h.db, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "group not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	var req struct {
		Name          *string `json:"name"`
		CoordinatorID *string `json:"coordinator_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.CoordinatorID != nil {
		group.CoordinatorID = req.CoordinatorID
	}

	if err := database.UpdateGroup(h.db, group); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, group, "Group updated")
}

// addGroupMember moves a user into the group. A user belongs to at most one
// group, so any previous membership is replaced by the pointer update.
func (h *Handler) addGroupMember(c *gin.Context) {
	groupID := c.Param("id")

	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	if _, err := database.GetGroupByID(h.db, groupID); err != nil {
		util.Error(c, http.StatusNotFound, "group not found")
		return
	}
	if _, err := database.GetUserByID(h.db, req.UserID); err != nil {
		util.Error(c, http.StatusNotFound, "user not found")
		return
	}

	if err := database.SetUserGroup(h.db, req.UserID, &groupID); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, nil, "Member added")
}

func (h *Handler) removeGroupMember(c *gin.Context) {
	groupID := c.Param("id")
	userID := c.Param("userID")

	user, err := database.GetUserByID(h.db, userID)
	if err != nil {
		util.Error(c, http.StatusNotFound, "user not found")
		return
	}
	if user.GroupID == nil || *user.GroupID != groupID {
		util.Error(c, http.StatusBadRequest, "user is not a member of this group")
		return
	}

	if err := database.SetUserGroup(h.db, userID, nil); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, nil, "Member removed")
}
