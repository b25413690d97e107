// Package cache keeps computed leaderboards and season standings close to the
// readers and coordinates calculations between several API instances.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/Dosada05/pickem-league/models"
)

var (
	ErrCacheMiss    = errors.New("cache miss")
	ErrLeaseTimeout = errors.New("timed out waiting for calculation lease")
)

// LeaderboardCache хранит последние рассчитанные таблицы.
type LeaderboardCache interface {
	GetLeaderboard(ctx context.Context, competitionID int) (*models.Leaderboard, error)
	SetLeaderboard(ctx context.Context, board *models.Leaderboard) error
	InvalidateLeaderboard(ctx context.Context, competitionID int) error

	GetStandings(ctx context.Context, leagueID int) (*models.Standings, error)
	SetStandings(ctx context.Context, standings *models.Standings) error
	InvalidateStandings(ctx context.Context, leagueID int) error
}

// ReleaseFunc gives a lease back. Calling it after the lease expired is harmless.
type ReleaseFunc func(ctx context.Context) error

// Locker hands out exclusive, expiring leases keyed by name.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}

type nopCache struct{}

// NewNopCache returns a cache that never stores anything.
func NewNopCache() LeaderboardCache { return nopCache{} }

func (nopCache) GetLeaderboard(context.Context, int) (*models.Leaderboard, error) {
	return nil, ErrCacheMiss
}
func (nopCache) SetLeaderboard(context.Context, *models.Leaderboard) error { return nil }
func (nopCache) InvalidateLeaderboard(context.Context, int) error           { return nil }
func (nopCache) GetStandings(context.Context, int) (*models.Standings, error) {
	return nil, ErrCacheMiss
}
func (nopCache) SetStandings(context.Context, *models.Standings) error { return nil }
func (nopCache) InvalidateStandings(context.Context, int) error        { return nil }

type nopLocker struct{}

// NewNopLocker returns a Locker for single-instance deployments.
func NewNopLocker() Locker { return nopLocker{} }

func (nopLocker) Acquire(context.Context, string, time.Duration) (ReleaseFunc, error) {
	return func(context.Context) error { return nil }, nil
}
