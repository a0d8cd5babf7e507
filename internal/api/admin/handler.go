package admin

import (
	"github.com/algojourney/algojourney/internal/cache"
	"github.com/algojourney/algojourney/internal/config"
	"github.com/algojourney/algojourney/internal/fetcher"
	"gorm.io/gorm"
)

// Handler holds all dependencies for the admin API handlers.
type Handler struct {
	cfg         *config.Config
	db          *gorm.DB
	refresher   *fetcher.Refresher
	leaderboard *cache.Leaderboard
}

// NewHandler creates a new admin handler with its dependencies.
func NewHandler(
	cfg *config.Config,
	db *gorm.DB,
	refresher *fetcher.Refresher,
	leaderboard *cache.Leaderboard,
) *Handler {
	return &Handler{
		cfg:         cfg,
		db:          db,
		refresher:   refresher,
		leaderboard: leaderboard,
	}
}
