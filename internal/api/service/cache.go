package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/wchen310/tictactoe-arena/internal/api/models"
)

const leaderboardCacheKey = "cache:leaderboard"

// leaderboardCache keeps a short-lived copy of the leaderboard in Redis so
// the hot read endpoint stays off SQLite. All operations degrade to a miss
// when Redis is unavailable.
type leaderboardCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func newLeaderboardCache(rdb *redis.Client, ttl time.Duration) *leaderboardCache {
	return &leaderboardCache{rdb: rdb, ttl: ttl}
}

func (c *leaderboardCache) get(ctx context.Context) ([]models.Player, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, leaderboardCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.WarnContext(ctx, "leaderboard cache read failed", "error", err)
		}
		return nil, false
	}
	var players []models.Player
	if err := json.Unmarshal(raw, &players); err != nil {
		slog.WarnContext(ctx, "leaderboard cache entry corrupt", "error", err)
		return nil, false
	}
	return players, true
}

func (c *leaderboardCache) set(ctx context.Context, players []models.Player) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(players)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, leaderboardCacheKey, raw, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "leaderboard cache write failed", "error", err)
	}
}

func (c *leaderboardCache) invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, leaderboardCacheKey).Err(); err != nil {
		slog.WarnContext(ctx, "leaderboard cache invalidation failed", "error", err)
	}
}
