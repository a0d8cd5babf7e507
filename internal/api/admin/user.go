package admin

import (
	"errors"
	"net/http"

	"github.com/algojourney/algojourney/internal/auth"
	"github.com/algojourney/algojourney/internal/database"
	"github.com/algojourney/algojourney/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (h *Handler) getAllUsers(c *gin.Context) {
	users, err := database.GetAllUsers(h.db)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, users, "Users retrieved")
}

// deleteUser removes the account. Point-bearing side effects (past
// submissions, group aggregates) are intentionally left in place.
func (h *Handler) deleteUser(c *gin.Context) {
	userID := c.Param("id")

	if _, err := database.GetUserByID(h.db, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "user not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	if err := database.DeleteUser(h.db, userID); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	zap.S().Infof("user %s deleted by admin", userID)
	util.Success(c, nil, "User deleted")
}

func (h *Handler) grantRole(c *gin.Context) {
	userID := c.Param("id")

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	if _, err := database.GetUserByID(h.db, userID); err != nil {
		util.Error(c, http.StatusNotFound, "user not found")
		return
	}

	if err := auth.GrantRole(h.db, userID, req.Role); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	zap.S().Infof("role %s granted to user %s", req.Role, userID)
	util.Success(c, nil, "Role granted")
}

func (h *Handler) revokeRole(c *gin.Context) {
	userID := c.Param("id")
	role := c.Param("role")

	if err := auth.RevokeRole(h.db, userID, role); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	zap.S().Infof("role %s revoked from user %s", role, userID)
	util.Success(c, nil, "Role revoked")
}
