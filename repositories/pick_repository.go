package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/pickem-league/models"
)

var (
	ErrPickNotFound          = errors.New("pick not found")
	ErrPickGameInvalid       = errors.New("invalid pick game reference")
	ErrPickConfidenceInvalid = errors.New("pick confidence out of range")
)

type PickRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, pick *models.Pick) error
	GetByID(ctx context.Context, id int) (*models.Pick, error)
	ListByCompetition(ctx context.Context, exec SQLExecutor, competitionID int) ([]*models.Pick, error)
	ListByCompetitionAndUser(ctx context.Context, competitionID, userID int) ([]*models.Pick, error)
	CountByCompetitionAndUser(ctx context.Context, exec SQLExecutor, competitionID, userID int) (int, error)
	UpdateGrades(ctx context.Context, exec SQLExecutor, picks []*models.Pick) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresPickRepository struct {
	db *sql.DB
}

func NewPostgresPickRepository(db *sql.DB) PickRepository {
	return &postgresPickRepository{db: db}
}

func (r *postgresPickRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const pickColumns = `id, competition_id, game_id, user_id, picked_team, confidence, correct, points_earned, created_at, updated_at`

func scanPick(row rowScanner) (*models.Pick, error) {
	p := &models.Pick{}
	var correct sql.NullBool
	var points sql.NullInt64
	err := row.Scan(&p.ID, &p.CompetitionID, &p.GameID, &p.UserID, &p.PickedTeam, &p.Confidence,
		&correct, &points, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPickNotFound
		}
		return nil, err
	}
	if correct.Valid {
		v := correct.Bool
		p.Correct = &v
	}
	if points.Valid {
		v := int(points.Int64)
		p.PointsEarned = &v
	}
	return p, nil
}

func (r *postgresPickRepository) listPicks(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Pick, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	picks := make([]*models.Pick, 0)
	for rows.Next() {
		p, err := scanPick(rows)
		if err != nil {
			return nil, err
		}
		picks = append(picks, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return picks, nil
}

// Upsert creates the pick or replaces the user's existing pick for the same
// game. A replaced pick loses its grade until the next calculation.
func (r *postgresPickRepository) Upsert(ctx context.Context, exec SQLExecutor, p *models.Pick) error {
	query := `
		INSERT INTO picks (competition_id, game_id, user_id, picked_team, confidence)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id, user_id) DO UPDATE SET
			picked_team = EXCLUDED.picked_team,
			confidence = EXCLUDED.confidence,
			correct = NULL,
			points_earned = NULL,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		p.CompetitionID, p.GameID, p.UserID, p.PickedTeam, p.Confidence,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if code, constraint, ok := pqConstraint(err); ok {
			switch {
			case code == pgForeignKeyViolation:
				return ErrPickGameInvalid
			case code == pgCheckViolation && constraint == "chk_pick_confidence":
				return ErrPickConfidenceInvalid
			}
		}
		return fmt.Errorf("failed to upsert pick: %w", err)
	}
	p.Correct = nil
	p.PointsEarned = nil
	return nil
}

func (r *postgresPickRepository) GetByID(ctx context.Context, id int) (*models.Pick, error) {
	query := `SELECT ` + pickColumns + ` FROM picks WHERE id = $1`
	return scanPick(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresPickRepository) ListByCompetition(ctx context.Context, exec SQLExecutor, competitionID int) ([]*models.Pick, error) {
	query := `SELECT ` + pickColumns + ` FROM picks WHERE competition_id = $1 ORDER BY user_id ASC, game_id ASC`
	return r.listPicks(ctx, r.getExecutor(exec), query, competitionID)
}

func (r *postgresPickRepository) ListByCompetitionAndUser(ctx context.Context, competitionID, userID int) ([]*models.Pick, error) {
	query := `SELECT ` + pickColumns + ` FROM picks WHERE competition_id = $1 AND user_id = $2 ORDER BY game_id ASC`
	return r.listPicks(ctx, r.db, query, competitionID, userID)
}

func (r *postgresPickRepository) CountByCompetitionAndUser(ctx context.Context, exec SQLExecutor, competitionID, userID int) (int, error) {
	query := `SELECT COUNT(*) FROM picks WHERE competition_id = $1 AND user_id = $2`
	var n int
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, competitionID, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

const updatePickGradeQuery = `
		UPDATE picks SET correct = $1, points_earned = $2, updated_at = NOW()
		WHERE id = $3 AND picked_team = $4 AND confidence = $5`

func updatePickGradeArgs(p *models.Pick) []interface{} {
	return []interface{}{p.Correct, p.PointsEarned, p.ID, p.PickedTeam, p.Confidence}
}

// UpdateGrades writes correct/points_earned for each pick. It expects to run
// inside the caller's transaction. A row whose picked_team or confidence no
// longer matches the graded pick was re-submitted after the read and is
// skipped, the new pick stays ungraded until the next calculation.
func (r *postgresPickRepository) UpdateGrades(ctx context.Context, exec SQLExecutor, picks []*models.Pick) error {
	if len(picks) == 0 {
		return nil
	}
	tx, ok := exec.(*sql.Tx)
	if !ok {
		return fmt.Errorf("UpdateGrades requires a transaction, got %T", exec)
	}

	stmt, err := tx.PrepareContext(ctx, updatePickGradeQuery)
	if err != nil {
		return fmt.Errorf("UpdateGrades failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range picks {
		if _, err := stmt.ExecContext(ctx, updatePickGradeArgs(p)...); err != nil {
			return fmt.Errorf("UpdateGrades failed for pick %d: %w", p.ID, err)
		}
	}
	return nil
}

func (r *postgresPickRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM picks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPickNotFound)
}
