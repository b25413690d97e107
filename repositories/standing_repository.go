package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Dosada05/pickem-league/models"
	"github.com/lib/pq"
)

type SeasonStandingRepository interface {
	UpsertBatch(ctx context.Context, exec SQLExecutor, standings []*models.SeasonStanding) error
	ListByLeague(ctx context.Context, exec SQLExecutor, leagueID int) ([]models.SeasonStanding, error)
	DeleteStale(ctx context.Context, exec SQLExecutor, leagueID int, keepUserIDs []int) (int64, error)
}

type postgresSeasonStandingRepository struct {
	db *sql.DB // Main DB connection, can be used if exec is nil
}

func NewPostgresSeasonStandingRepository(db *sql.DB) SeasonStandingRepository {
	return &postgresSeasonStandingRepository{db: db}
}

func (r *postgresSeasonStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// UpsertBatch replaces the (league, user) rows with the given values.
// It must run inside the caller's transaction.
func (r *postgresSeasonStandingRepository) UpsertBatch(ctx context.Context, exec SQLExecutor, standings []*models.SeasonStanding) error {
	if len(standings) == 0 {
		return nil
	}
	tx, ok := exec.(*sql.Tx)
	if !ok {
		return fmt.Errorf("UpsertBatch requires a transaction, got %T", exec)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO season_standings
		    (league_id, user_id, total_points, weeks_participated, correct_picks, total_picks,
		     average_points_per_week, rank, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (league_id, user_id) DO UPDATE SET
			total_points = EXCLUDED.total_points,
			weeks_participated = EXCLUDED.weeks_participated,
			correct_picks = EXCLUDED.correct_picks,
			total_picks = EXCLUDED.total_picks,
			average_points_per_week = EXCLUDED.average_points_per_week,
			rank = EXCLUDED.rank,
			updated_at = EXCLUDED.updated_at
		RETURNING id`)
	if err != nil {
		return fmt.Errorf("UpsertBatch failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, s := range standings {
		s.UpdatedAt = now
		err := stmt.QueryRowContext(ctx,
			s.LeagueID, s.UserID, s.TotalPoints, s.WeeksParticipated, s.CorrectPicks, s.TotalPicks,
			s.AveragePointsPerWeek, s.Rank, s.UpdatedAt,
		).Scan(&s.ID)
		if err != nil {
			return fmt.Errorf("UpsertBatch failed for user %d: %w", s.UserID, err)
		}
	}
	return nil
}

func (r *postgresSeasonStandingRepository) ListByLeague(ctx context.Context, exec SQLExecutor, leagueID int) ([]models.SeasonStanding, error) {
	query := `
		SELECT id, league_id, user_id, total_points, weeks_participated, correct_picks, total_picks,
		       average_points_per_week, rank, updated_at
		FROM season_standings
		WHERE league_id = $1
		ORDER BY total_points DESC, correct_picks DESC, user_id ASC` // user_id for stable sort

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]models.SeasonStanding, 0)
	for rows.Next() {
		var s models.SeasonStanding
		var avg sql.NullFloat64
		var rank sql.NullInt64
		if err := rows.Scan(&s.ID, &s.LeagueID, &s.UserID, &s.TotalPoints, &s.WeeksParticipated,
			&s.CorrectPicks, &s.TotalPicks, &avg, &rank, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if avg.Valid {
			v := avg.Float64
			s.AveragePointsPerWeek = &v
		}
		if rank.Valid {
			v := int(rank.Int64)
			s.Rank = &v
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}

// DeleteStale removes league rows for users that no longer have any counted week.
func (r *postgresSeasonStandingRepository) DeleteStale(ctx context.Context, exec SQLExecutor, leagueID int, keepUserIDs []int) (int64, error) {
	query := `DELETE FROM season_standings WHERE league_id = $1 AND NOT (user_id = ANY($2))`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, leagueID, pq.Array(toInt64s(keepUserIDs)))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
