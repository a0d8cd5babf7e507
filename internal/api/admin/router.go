package admin

import (
	"github.com/algojourney/algojourney/internal/api"
	"github.com/algojourney/algojourney/internal/auth"
	"github.com/algojourney/algojourney/internal/cache"
	"github.com/algojourney/algojourney/internal/config"
	"github.com/algojourney/algojourney/internal/fetcher"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewAdminRouter creates and configures the admin Gin engine. Every route
// requires a valid token and the admin role.
func NewAdminRouter(
	cfg *config.Config,
	db *gorm.DB,
	refresher *fetcher.Refresher,
	leaderboard *cache.Leaderboard) *gin.Engine {

	r := gin.Default()

	r.Use(api.CORSMiddleware(cfg.CORS))

	h := NewHandler(cfg, db, refresher, leaderboard)

	v1 := r.Group("/api/v1")
	v1.Use(api.AuthMiddleware(cfg.Auth.JWT.Secret))
	v1.Use(api.RequireRole(db, auth.RoleAdmin))
	{
		// User & Role Management
		users := v1.Group("/users")
		{
			users.GET("", h.getAllUsers)
			users.DELETE("/:id", h.deleteUser)
			users.POST("/:id/roles", h.grantRole)
			users.DELETE("/:id/roles/:role", h.revokeRole)
		}

		// Group Management
		groups := v1.Group("/groups")
		{
			groups.GET("", h.getAllGroups)
			groups.POST("", h.createGroup)
			groups.PATCH("/:id", h.updateGroup)
			groups.POST("/:id/members", h.addGroupMember)
			groups.DELETE("/:id/members/:userID", h.removeGroupMember)
		}

		// Question Management
		questions := v1.Group("/questions")
		{
			questions.GET("", h.getAllQuestions)
			questions.POST("", h.createQuestion)
			questions.PATCH("/:id/points", h.updateQuestionPoints)
			questions.PATCH("/:id/arena", h.setQuestionArena)
			questions.DELETE("/:id", h.deleteQuestion)
			questions.PUT("/:id/hint", h.upsertHint)
		}

		// Tag Management
		tags := v1.Group("/tags")
		{
			tags.GET("", h.getAllTags)
			tags.POST("", h.createTag)
		}

		// Contest Management
		contests := v1.Group("/contests")
		{
			contests.POST("", h.createContest)
			contests.PUT("/:id", h.updateContest)
			contests.POST("/:id/permissions", h.grantContestPermissions)
			contests.POST("/:id/group-permissions", h.setGroupPermissions)
		}

		// Stats Management
		v1.POST("/stats/refresh", h.triggerStatsRefresh)
	}

	return r
}
