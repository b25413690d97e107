package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/pickem-league/models"
	"github.com/lib/pq"
)

var ErrScoreNotFound = errors.New("score not found")

type ScoreRepository interface {
	UpsertBatch(ctx context.Context, exec SQLExecutor, scores []*models.Score) error
	ListByCompetition(ctx context.Context, exec SQLExecutor, competitionID int) ([]models.Score, error)
	ListByCompetitions(ctx context.Context, exec SQLExecutor, competitionIDs []int) ([]models.Score, error)
	DeleteByCompetitionAndUser(ctx context.Context, exec SQLExecutor, competitionID, userID int) error
}

type postgresScoreRepository struct {
	db *sql.DB
}

func NewPostgresScoreRepository(db *sql.DB) ScoreRepository {
	return &postgresScoreRepository{db: db}
}

func (r *postgresScoreRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const scoreColumns = `id, competition_id, user_id, total_points, correct_picks, total_picks, rank, updated_at`

// UpsertBatch replaces the (competition, user) rows with the given values.
// It must run inside the caller's transaction.
func (r *postgresScoreRepository) UpsertBatch(ctx context.Context, exec SQLExecutor, scores []*models.Score) error {
	if len(scores) == 0 {
		return nil
	}
	tx, ok := exec.(*sql.Tx)
	if !ok {
		return fmt.Errorf("UpsertBatch requires a transaction, got %T", exec)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scores (competition_id, user_id, total_points, correct_picks, total_picks, rank, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (competition_id, user_id) DO UPDATE SET
			total_points = EXCLUDED.total_points,
			correct_picks = EXCLUDED.correct_picks,
			total_picks = EXCLUDED.total_picks,
			rank = EXCLUDED.rank,
			updated_at = EXCLUDED.updated_at
		RETURNING id`)
	if err != nil {
		return fmt.Errorf("UpsertBatch failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, s := range scores {
		s.UpdatedAt = now
		err := stmt.QueryRowContext(ctx,
			s.CompetitionID, s.UserID, s.TotalPoints, s.CorrectPicks, s.TotalPicks, s.Rank, s.UpdatedAt,
		).Scan(&s.ID)
		if err != nil {
			return fmt.Errorf("UpsertBatch failed for user %d: %w", s.UserID, err)
		}
	}
	return nil
}

func (r *postgresScoreRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.Score, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make([]models.Score, 0)
	for rows.Next() {
		var s models.Score
		var rank sql.NullInt64
		if err := rows.Scan(&s.ID, &s.CompetitionID, &s.UserID, &s.TotalPoints, &s.CorrectPicks,
			&s.TotalPicks, &rank, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if rank.Valid {
			v := int(rank.Int64)
			s.Rank = &v
		}
		scores = append(scores, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}

// ListByCompetition returns the leaderboard order used by the ranker.
func (r *postgresScoreRepository) ListByCompetition(ctx context.Context, exec SQLExecutor, competitionID int) ([]models.Score, error) {
	query := `
		SELECT ` + scoreColumns + `
		FROM scores
		WHERE competition_id = $1
		ORDER BY total_points DESC, correct_picks DESC, user_id ASC`
	return r.list(ctx, exec, query, competitionID)
}

func (r *postgresScoreRepository) ListByCompetitions(ctx context.Context, exec SQLExecutor, competitionIDs []int) ([]models.Score, error) {
	if len(competitionIDs) == 0 {
		return []models.Score{}, nil
	}
	query := `
		SELECT ` + scoreColumns + `
		FROM scores
		WHERE competition_id = ANY($1)
		ORDER BY competition_id ASC, user_id ASC`
	return r.list(ctx, exec, query, pq.Array(toInt64s(competitionIDs)))
}

func (r *postgresScoreRepository) DeleteByCompetitionAndUser(ctx context.Context, exec SQLExecutor, competitionID, userID int) error {
	query := `DELETE FROM scores WHERE competition_id = $1 AND user_id = $2`
	_, err := r.getExecutor(exec).ExecContext(ctx, query, competitionID, userID)
	return err
}
