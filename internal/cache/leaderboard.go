package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/algojourney/algojourney/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const leaderboardTTL = 5 * time.Minute

// Leaderboard caches contest standings in Redis. The cache is optional: with
// no configured address every call is a miss and reads fall through to the
// database.
type Leaderboard struct {
	rdb *redis.Client
}

func NewLeaderboard(cfg config.Redis) *Leaderboard {
	if cfg.Addr == "" {
		return &Leaderboard{}
	}
	return &Leaderboard{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func key(contestID string) string {
	return "leaderboard:" + contestID
}

// Get returns the cached standings for a contest, unmarshalled into dest.
func (l *Leaderboard) Get(ctx context.Context, contestID string, dest interface{}) bool {
	if l.rdb == nil {
		return false
	}
	data, err := l.rdb.Get(ctx, key(contestID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			zap.S().Warnf("leaderboard cache read failed: %v", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		zap.S().Warnf("leaderboard cache payload corrupt for contest %s: %v", contestID, err)
		return false
	}
	return true
}

// Set stores the standings. Cache errors are logged, never surfaced.
func (l *Leaderboard) Set(ctx context.Context, contestID string, value interface{}) {
	if l.rdb == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		zap.S().Warnf("leaderboard cache marshal failed: %v", err)
		return
	}
	if err := l.rdb.Set(ctx, key(contestID), data, leaderboardTTL).Err(); err != nil {
		zap.S().Warnf("leaderboard cache write failed: %v", err)
	}
}

// Invalidate drops a contest's cached standings after a rank recalculation
// commits.
func (l *Leaderboard) Invalidate(ctx context.Context, contestID string) {
	if l.rdb == nil {
		return
	}
	if err := l.rdb.Del(ctx, key(contestID)).Err(); err != nil {
		zap.S().Warnf("leaderboard cache invalidation failed for contest %s: %v", contestID, err)
	}
}
