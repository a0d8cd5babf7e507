package admin

import (
	"errors"
	"net/http"

	"github.com/algojourney/algojourney/internal/contest"
	"github.com/algojourney/algojourney/internal/database"
	"github.com/algojourney/algojourney/internal/database/models"
	"github.com/algojourney/algojourney/internal/pubsub"
	"github.com/algojourney/algojourney/internal/scoring"
	"github.com/algojourney/algojourney/internal/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (h *Handler) getAllQuestions(c *gin.Context) {
	questions, err := database.GetAllQuestions(h.db)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, questions, "Questions retrieved")
}

func (h *Handler) createQuestion(c *gin.Context) {
	var req struct {
		Title      string            `json:"title" binding:"required"`
		URL        string            `json:"url"`
		Points     int               `json:"points" binding:"required"`
		Difficulty models.Difficulty `json:"difficulty" binding:"required"`
		InArena    bool              `json:"in_arena"`
		TagIDs     []string          `json:"tag_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	q := models.Question{
		ID:         uuid.NewString(),
		Slug:       slug.Make(req.Title),
		Title:      req.Title,
		URL:        req.URL,
		Points:     req.Points,
		Difficulty: req.Difficulty,
		InArena:    req.InArena,
	}
	if req.InArena {
		now := contest.Now()
		q.ArenaAddedAt = &now
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := database.CreateQuestion(tx, &q); err != nil {
			return err
		}
		if len(req.TagIDs) == 0 {
			return nil
		}
		var tags []models.QuestionTag
		if err := tx.Where("id IN ?", req.TagIDs).Find(&tags).Error; err != nil {
			return err
		}
		return tx.Model(&q).Association("Tags").Replace(tags)
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	zap.S().Infof("question %s created with slug %s", q.ID, q.Slug)
	util.Success(c, q, "Question created")
}

// updateQuestionPoints edits a question's point value and reconciles all
// historical credit for it.
func (h *Handler) updateQuestionPoints(c *gin.Context) {
	questionID := c.Param("id")

	var req struct {
		Points int `json:"points" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	question, affected, err := scoring.ApplyPointsDelta(h.db, questionID, req.Points)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "question not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	// Standings changed in every affected contest.
	for _, contestID := range affected {
		h.leaderboard.Invalidate(c.Request.Context(), contestID)
		if rows, err := database.GetGroupsOnContest(h.db, contestID); err == nil {
			pubsub.GetBroker().Publish(contestID, pubsub.FormatMessage("leaderboard", rows))
		}
	}

	zap.S().Infof("question %s points set to %d, %d contests re-ranked", questionID, req.Points, len(affected))
	util.Success(c, question, "Question points updated")
}

func (h *Handler) setQuestionArena(c *gin.Context) {
	questionID := c.Param("id")

	var req struct {
		InArena bool `json:"in_arena"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	question, err := database.GetQuestionByID(h.db, questionID)
	if err != nil {
		util.Error(c, http.StatusNotFound, "question not found")
		return
	}

	question.InArena = req.InArena
	if req.InArena && question.ArenaAddedAt == nil {
		now := contest.Now()
		question.ArenaAddedAt = &now
	}

	if err := database.UpdateQuestion(h.db, question); err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, question, "Arena flag updated")
}

func (h *Handler) deleteQuestion(c *gin.Context) {
	questionID := c.Param("id")

	if err := scoring.DeleteQuestion(h.db, questionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "question not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, err)
		return
	}

	zap.S().Infof("question %s deleted and awarded credit reversed", questionID)
	util.Success(c, nil, "Question deleted")
}

func (h *Handler) upsertHint(c *gin.Context) {
	questionID := c.Param("id")

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, err)
		return
	}

	if _, err := database.GetQuestionByID(h.db, questionID); err != nil {
		util.Error(c, http.StatusNotFound, "question not found")
		return
	}

	var hint models.Hint
	err := h.db.Where("question_id = ?", questionID).First(&hint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hint = models.Hint{ID: uuid.NewString(), QuestionID: questionID, Content: req.Content}
		err = h.db.Create(&hint).Error
	} else if err == nil {
		hint.Content = req.Content
		err = h.db.Save(&hint).Error
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, err)
		return
	}
	util.Success(c, hint, "Hint saved")
}
