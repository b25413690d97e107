package repositories

import (
	"context"
	"fmt"
)

// LockClass separates advisory lock namespaces.
type LockClass int32

const (
	LockCompetitionScores LockClass = 1
	LockLeagueStandings   LockClass = 2
)

// AcquireXactLock takes a Postgres transaction-scoped advisory lock. It blocks
// until the lock is granted and is released by COMMIT or ROLLBACK.
func AcquireXactLock(ctx context.Context, exec SQLExecutor, class LockClass, id int) error {
	if _, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, int32(class), int32(id)); err != nil {
		return fmt.Errorf("failed to acquire advisory lock %d/%d: %w", class, id, err)
	}
	return nil
}

// AdvisoryLocker lets services take scope locks without depending on Postgres directly.
type AdvisoryLocker interface {
	Lock(ctx context.Context, exec SQLExecutor, class LockClass, id int) error
}

type postgresAdvisoryLocker struct{}

func NewPostgresAdvisoryLocker() AdvisoryLocker {
	return postgresAdvisoryLocker{}
}

func (postgresAdvisoryLocker) Lock(ctx context.Context, exec SQLExecutor, class LockClass, id int) error {
	return AcquireXactLock(ctx, exec, class, id)
}
