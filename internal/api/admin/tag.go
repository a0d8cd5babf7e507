package admin

import (
	"net/http"

	"github.com/algojourney/algojourney/internal/database/models"
	"github.com/algojourney/algojourney/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) getAllTags(c *gin.Context) {
	var tags []models.QuestionTag
	if err := h.db.Order("name asc").Find(&tags).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, tags, "Tags retrieved")
}

func (h *Handler) createTag(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	tag := models.QuestionTag{ID: uuid.NewString(), Name: req.Name}
	if err := h.db.Create(&tag).Error; err != nil {
		util.Error(c, http.StatusConflict, "tag already exists")
		return
	}
	util.Success(c, tag, "Tag created")
}
