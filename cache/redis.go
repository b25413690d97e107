package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Dosada05/pickem-league/models"
)

// TTL constants
const (
	ProvisionalLeaderboardTTL = 5 * time.Minute
	FinalLeaderboardTTL       = 24 * time.Hour
	StandingsTTL              = time.Hour

	leaseRetryInterval = 50 * time.Millisecond
)

func leaderboardKey(competitionID int) string {
	return fmt.Sprintf("pickem:competition:%d:leaderboard", competitionID)
}

func standingsKey(leagueID int) string {
	return fmt.Sprintf("pickem:league:%d:standings", leagueID)
}

// RedisCache implements LeaderboardCache on top of plain string keys holding JSON.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) GetLeaderboard(ctx context.Context, competitionID int) (*models.Leaderboard, error) {
	var board models.Leaderboard
	if err := c.get(ctx, leaderboardKey(competitionID), &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *RedisCache) SetLeaderboard(ctx context.Context, board *models.Leaderboard) error {
	ttl := ProvisionalLeaderboardTTL
	if !board.Provisional {
		ttl = FinalLeaderboardTTL
	}
	return c.set(ctx, leaderboardKey(board.CompetitionID), board, ttl)
}

func (c *RedisCache) InvalidateLeaderboard(ctx context.Context, competitionID int) error {
	return c.client.Del(ctx, leaderboardKey(competitionID)).Err()
}

func (c *RedisCache) GetStandings(ctx context.Context, leagueID int) (*models.Standings, error) {
	var standings models.Standings
	if err := c.get(ctx, standingsKey(leagueID), &standings); err != nil {
		return nil, err
	}
	return &standings, nil
}

func (c *RedisCache) SetStandings(ctx context.Context, standings *models.Standings) error {
	return c.set(ctx, standingsKey(standings.LeagueID), standings, StandingsTTL)
}

func (c *RedisCache) InvalidateStandings(ctx context.Context, leagueID int) error {
	return c.client.Del(ctx, standingsKey(leagueID)).Err()
}

func (c *RedisCache) get(ctx context.Context, key string, dst interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshaling %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Удаляем ключ только если он всё ещё принадлежит нам.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX and a token-checked release.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

// Acquire blocks until the lease is free, ctx is done, or ttl elapses.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(ttl)

	ticker := time.NewTicker(leaseRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquiring lease %s: %w", key, err)
		}
		if ok {
			return func(ctx context.Context) error {
				return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLeaseTimeout, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
