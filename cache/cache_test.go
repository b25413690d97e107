package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNopCacheAlwaysMisses(t *testing.T) {
	c := NewNopCache()
	ctx := context.Background()

	if _, err := c.GetLeaderboard(ctx, 1); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetLeaderboard error = %v, want ErrCacheMiss", err)
	}
	if _, err := c.GetStandings(ctx, 1); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetStandings error = %v, want ErrCacheMiss", err)
	}
	if err := c.InvalidateLeaderboard(ctx, 1); err != nil {
		t.Errorf("InvalidateLeaderboard error = %v", err)
	}
}

func TestNopLockerGrantsImmediately(t *testing.T) {
	release, err := NewNopLocker().Acquire(context.Background(), "k", time.Second)
	if err != nil {
		t.Fatalf("Acquire error = %v", err)
	}
	if err := release(context.Background()); err != nil {
		t.Errorf("release error = %v", err)
	}
}

func TestKeys(t *testing.T) {
	if got := leaderboardKey(7); got != "pickem:competition:7:leaderboard" {
		t.Errorf("leaderboardKey = %q", got)
	}
	if got := standingsKey(3); got != "pickem:league:3:standings" {
		t.Errorf("standingsKey = %q", got)
	}
}
