package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/pickem-league/models"
)

var (
	ErrCompetitionNotFound      = errors.New("competition not found")
	ErrCompetitionWeekConflict  = errors.New("competition for this week already exists in the league")
	ErrCompetitionLeagueInvalid = errors.New("invalid competition league reference")
)

type CompetitionRepository interface {
	Create(ctx context.Context, c *models.Competition) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Competition, error)
	ListByLeague(ctx context.Context, exec SQLExecutor, leagueID int, status *models.CompetitionStatus) ([]models.Competition, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.CompetitionStatus) error
	ListDueForLock(ctx context.Context, now time.Time) ([]*models.Competition, error)
}

type postgresCompetitionRepository struct {
	db *sql.DB
}

func NewPostgresCompetitionRepository(db *sql.DB) CompetitionRepository {
	return &postgresCompetitionRepository{db: db}
}

func (r *postgresCompetitionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const competitionColumns = `id, league_id, name, week, lock_deadline, status, created_at`

func (r *postgresCompetitionRepository) scanCompetition(row rowScanner) (*models.Competition, error) {
	c := &models.Competition{}
	err := row.Scan(&c.ID, &c.LeagueID, &c.Name, &c.Week, &c.LockDeadline, &c.Status, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresCompetitionRepository) Create(ctx context.Context, c *models.Competition) error {
	query := `
		INSERT INTO competitions (league_id, name, week, lock_deadline, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, c.LeagueID, c.Name, c.Week, c.LockDeadline, c.Status).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if code, constraint, ok := pqConstraint(err); ok {
			switch {
			case code == pgUniqueViolation && constraint == "competitions_league_id_week_key":
				return ErrCompetitionWeekConflict
			case code == pgForeignKeyViolation:
				return ErrCompetitionLeagueInvalid
			}
		}
		return fmt.Errorf("failed to create competition: %w", err)
	}
	return nil
}

func (r *postgresCompetitionRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Competition, error) {
	query := `SELECT ` + competitionColumns + ` FROM competitions WHERE id = $1`
	return r.scanCompetition(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresCompetitionRepository) ListByLeague(ctx context.Context, exec SQLExecutor, leagueID int, status *models.CompetitionStatus) ([]models.Competition, error) {
	query := `SELECT ` + competitionColumns + ` FROM competitions WHERE league_id = $1`
	args := []interface{}{leagueID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY week ASC, id ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	competitions := make([]models.Competition, 0)
	for rows.Next() {
		c, err := r.scanCompetition(rows)
		if err != nil {
			return nil, err
		}
		competitions = append(competitions, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return competitions, nil
}

func (r *postgresCompetitionRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.CompetitionStatus) error {
	query := `UPDATE competitions SET status = $1 WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

// ListDueForLock returns open competitions whose lock deadline has passed.
func (r *postgresCompetitionRepository) ListDueForLock(ctx context.Context, now time.Time) ([]*models.Competition, error) {
	query := `
		SELECT ` + competitionColumns + `
		FROM competitions
		WHERE status = $1 AND lock_deadline < $2
		ORDER BY lock_deadline ASC`

	rows, err := r.db.QueryContext(ctx, query, models.CompetitionActive, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []*models.Competition
	for rows.Next() {
		c, err := r.scanCompetition(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, c)
	}
	return due, rows.Err()
}
