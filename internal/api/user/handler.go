package user

import (
	"github.com/algojourney/algojourney/internal/auth"
	"github.com/algojourney/algojourney/internal/cache"
	"github.com/algojourney/algojourney/internal/config"
	"github.com/algojourney/algojourney/internal/fetcher"
	"gorm.io/gorm"
)

// Handler holds all dependencies for the user API handlers.
type Handler struct {
	cfg               *config.Config
	db                *gorm.DB
	refresher         *fetcher.Refresher
	leaderboard       *cache.Leaderboard
	githubAuthHandler *auth.GitHubHandler
}

// NewHandler creates a new user handler with its dependencies.
func NewHandler(
	cfg *config.Config,
	db *gorm.DB,
	refresher *fetcher.Refresher,
	leaderboard *cache.Leaderboard,
) *Handler {
	return &Handler{
		cfg:               cfg,
		db:                db,
		refresher:         refresher,
		leaderboard:       leaderboard,
		githubAuthHandler: auth.NewGitHubHandler(cfg, db),
	}
}
