package user

import (
	"github.com/algojourney/algojourney/internal/api"
	"github.com/algojourney/algojourney/internal/cache"
	"github.com/algojourney/algojourney/internal/config"
	"github.com/algojourney/algojourney/internal/fetcher"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewUserRouter creates and configures the user Gin engine.
func NewUserRouter(
	cfg *config.Config,
	db *gorm.DB,
	refresher *fetcher.Refresher,
	leaderboard *cache.Leaderboard) *gin.Engine {

	r := gin.Default()

	r.Use(api.CORSMiddleware(cfg.CORS))

	h := NewHandler(cfg, db, refresher, leaderboard)

	v1 := r.Group("/api/v1")
	{
		// Auth
		authGroup := v1.Group("/auth")
		{
			authGroup.GET("/status", h.getAuthStatus)
			githubGroup := authGroup.Group("/github")
			githubGroup.GET("/login", h.githubAuthHandler.Login)
			githubGroup.GET("/callback", h.githubAuthHandler.Callback)

			if cfg.Auth.Local.Enabled {
				localAuthGroup := authGroup.Group("/local")
				{
					localAuthGroup.POST("/register", h.localRegister)
					localAuthGroup.POST("/login", h.localLogin)
				}
			}
		}

		// Live leaderboard stream with token authorization
		v1.GET("/ws/contests/:id/leaderboard", h.handleLeaderboardWs)

		// Publicly accessible info
		v1.GET("/contests", h.getAllContests)
		v1.GET("/contests/:id", h.getContest)
		v1.GET("/contests/:id/leaderboard", h.getContestLeaderboard)
		v1.GET("/arena/questions", h.getArenaQuestions)
		v1.GET("/questions/:slug", h.getQuestion)
		v1.GET("/users/:id/stats", h.getUserStats)

		// Authenticated routes
		authed := v1.Group("/")
		authed.Use(api.AuthMiddleware(cfg.Auth.JWT.Secret))
		{
			// User Profile
			profile := authed.Group("/user")
			{
				profile.GET("/profile", h.getUserProfile)
				profile.PATCH("/profile", h.updateUserProfile)
				profile.POST("/stats/refresh", h.refreshOwnStats)
			}

			// Contest
			authed.POST("/contests/:id/join", h.joinContest)

			// Submissions
			authed.POST("/submissions", h.createSubmission)
			authed.GET("/submissions", h.getUserSubmissions)
		}
	}

	return r
}
