package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/pickem-league/models"
)

var (
	ErrLeagueNotFound      = errors.New("league not found")
	ErrLeagueNameConflict  = errors.New("league name conflict for this season")
	ErrLeagueOwnerInvalid  = errors.New("invalid league owner reference")
	ErrLeagueMemberExists  = errors.New("user is already a league member")
	ErrLeagueMemberInvalid = errors.New("invalid league member reference")
)

type LeagueRepository interface {
	Create(ctx context.Context, exec SQLExecutor, league *models.League) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.League, error)
	ListByMember(ctx context.Context, userID int) ([]models.League, error)
	AddMember(ctx context.Context, exec SQLExecutor, leagueID, userID int) error
	IsMember(ctx context.Context, leagueID, userID int) (bool, error)
	ListMembers(ctx context.Context, leagueID int) ([]models.User, error)
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

func (r *postgresLeagueRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLeagueRepository) Create(ctx context.Context, exec SQLExecutor, l *models.League) error {
	query := `
		INSERT INTO leagues (name, season, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query, l.Name, l.Season, l.OwnerID).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		if code, constraint, ok := pqConstraint(err); ok {
			switch {
			case code == pgUniqueViolation && constraint == "leagues_name_season_key":
				return ErrLeagueNameConflict
			case code == pgForeignKeyViolation && constraint == "leagues_owner_id_fkey":
				return ErrLeagueOwnerInvalid
			}
		}
		return fmt.Errorf("failed to create league: %w", err)
	}
	return nil
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.League, error) {
	query := `SELECT id, name, season, owner_id, created_at FROM leagues WHERE id = $1`

	l := &models.League{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, id).Scan(&l.ID, &l.Name, &l.Season, &l.OwnerID, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *postgresLeagueRepository) ListByMember(ctx context.Context, userID int) ([]models.League, error) {
	query := `
		SELECT l.id, l.name, l.season, l.owner_id, l.created_at
		FROM leagues l
		JOIN league_members lm ON lm.league_id = l.id
		WHERE lm.user_id = $1
		ORDER BY l.season DESC, l.name ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leagues := make([]models.League, 0)
	for rows.Next() {
		var l models.League
		if err := rows.Scan(&l.ID, &l.Name, &l.Season, &l.OwnerID, &l.CreatedAt); err != nil {
			return nil, err
		}
		leagues = append(leagues, l)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return leagues, nil
}

func (r *postgresLeagueRepository) AddMember(ctx context.Context, exec SQLExecutor, leagueID, userID int) error {
	query := `INSERT INTO league_members (league_id, user_id) VALUES ($1, $2)`

	_, err := r.getExecutor(exec).ExecContext(ctx, query, leagueID, userID)
	if err != nil {
		if code, _, ok := pqConstraint(err); ok {
			switch code {
			case pgUniqueViolation:
				return ErrLeagueMemberExists
			case pgForeignKeyViolation:
				return ErrLeagueMemberInvalid
			}
		}
		return fmt.Errorf("failed to add league member: %w", err)
	}
	return nil
}

func (r *postgresLeagueRepository) IsMember(ctx context.Context, leagueID, userID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM league_members WHERE league_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, leagueID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresLeagueRepository) ListMembers(ctx context.Context, leagueID int) ([]models.User, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.nickname, u.role, u.created_at
		FROM users u
		JOIN league_members lm ON lm.user_id = u.id
		WHERE lm.league_id = $1
		ORDER BY lm.joined_at ASC, u.id ASC`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Nickname, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
