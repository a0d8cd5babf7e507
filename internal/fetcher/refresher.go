package fetcher

import (
	"context"
	"time"

	"github.com/algojourney/algojourney/internal/config"
	"github.com/algojourney/algojourney/internal/database"
	"github.com/algojourney/algojourney/internal/database/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Refresher runs the bulk third-party stats refresh in the background. The
// triggering request returns immediately; refreshes drain through a bounded
// queue in a single worker goroutine, rate-limited between users and between
// batches so the third-party APIs are not hammered. A failure for one user
// never aborts the rest of the queue.
type Refresher struct {
	db     *gorm.DB
	client *Client
	cfg    config.Fetcher
	queue  chan string
}

func NewRefresher(db *gorm.DB, cfg config.Fetcher) *Refresher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	return &Refresher{
		db:     db,
		client: NewClient(cfg),
		cfg:    cfg,
		queue:  make(chan string, 1024),
	}
}

// Start launches the worker goroutine.
func (r *Refresher) Start() {
	go r.run()
}

// Enqueue schedules one user for refresh. Returns false when the queue is
// full; the caller treats that as "try again later".
func (r *Refresher) Enqueue(userID string) bool {
	select {
	case r.queue <- userID:
		return true
	default:
		zap.S().Warnf("stats refresh queue full, dropping user %s", userID)
		return false
	}
}

// EnqueueAll schedules every user that has at least one external handle.
func (r *Refresher) EnqueueAll() error {
	users, err := database.GetAllUsers(r.db)
	if err != nil {
		return err
	}
	queued := 0
	for _, u := range users {
		if u.LeetcodeUsername == "" && u.CodeforcesHandle == "" && u.GithubUsername == "" {
			continue
		}
		if r.Enqueue(u.ID) {
			queued++
		}
	}
	zap.S().Infof("queued %d users for stats refresh", queued)
	return nil
}

func (r *Refresher) run() {
	itemDelay := time.Duration(r.cfg.ItemDelayMS) * time.Millisecond
	batchDelay := time.Duration(r.cfg.BatchDelayMS) * time.Millisecond

	processed := 0
	for userID := range r.queue {
		r.refreshUser(userID)
		processed++

		if processed%r.cfg.BatchSize == 0 {
			time.Sleep(batchDelay)
		} else {
			time.Sleep(itemDelay)
		}
	}
}

// refreshUser fetches every platform the user has a handle for. Each
// platform is isolated: an unreachable API or unknown handle is logged and
// the others still run.
func (r *Refresher) refreshUser(userID string) {
	user, err := database.GetUserByID(r.db, userID)
	if err != nil {
		zap.S().Errorf("stats refresh: user %s not found: %v", userID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if user.LeetcodeUsername != "" {
		if data, err := r.client.FetchLeetcode(ctx, user.LeetcodeUsername); err != nil {
			zap.S().Warnf("leetcode fetch failed for %s: %v", user.Username, err)
		} else {
			r.store(user.ID, PlatformLeetcode, data)
		}
	}
	if user.CodeforcesHandle != "" {
		if data, err := r.client.FetchCodeforces(ctx, user.CodeforcesHandle); err != nil {
			zap.S().Warnf("codeforces fetch failed for %s: %v", user.Username, err)
		} else {
			r.store(user.ID, PlatformCodeforces, data)
		}
	}
	if user.GithubUsername != "" {
		if data, err := r.client.FetchGithub(ctx, user.GithubUsername); err != nil {
			zap.S().Warnf("github fetch failed for %s: %v", user.Username, err)
		} else {
			r.store(user.ID, PlatformGithub, data)
		}
	}
}

func (r *Refresher) store(userID, platform string, data models.JSONMap) {
	stat := &models.ExternalStat{
		ID:        uuid.NewString(),
		UserID:    userID,
		Platform:  platform,
		Data:      data,
		FetchedAt: time.Now(),
	}
	if err := database.UpsertExternalStat(r.db, stat); err != nil {
		zap.S().Errorf("failed to store %s stats for user %s: %v", platform, userID, err)
	}
}
