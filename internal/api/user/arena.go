package user

import (
	"errors"
	"net/http"

	"github.com/algojourney/algojourney/internal/database"
	"github.com/algojourney/algojourney/internal/database/models"
	"github.com/algojourney/algojourney/internal/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// getArenaQuestions lists the practice pool ordered by difficulty, then by
// when the question entered the arena.
func (h *Handler) getArenaQuestions(c *gin.Context) {
	questions, err := database.GetArenaQuestions(h.db)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, questions, "Arena questions retrieved")
}

func (h *Handler) getQuestion(c *gin.Context) {
	slug := c.Param("slug")
	question, err := database.GetQuestionBySlug(h.db, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "question not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	var hint *models.Hint
	var stored models.Hint
	if err := h.db.Where("question_id = ?", question.ID).First(&stored).Error; err == nil {
		hint = &stored
	}

	util.Success(c, gin.H{"question": question, "hint": hint}, "Question retrieved")
}
