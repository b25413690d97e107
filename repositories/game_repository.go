package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/pickem-league/models"
)

var (
	ErrGameNotFound           = errors.New("game not found")
	ErrGameCompetitionInvalid = errors.New("invalid game competition reference")
	ErrGameTeamsInvalid       = errors.New("game home and away teams must differ")
)

type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	ListByCompetition(ctx context.Context, exec SQLExecutor, competitionID int) ([]models.Game, error)
	UpdateResult(ctx context.Context, game *models.Game) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

const gameColumns = `id, competition_id, home_team, away_team, home_score, away_score, status, kickoff_at, updated_at`

func scanGame(row rowScanner) (*models.Game, error) {
	g := &models.Game{}
	var homeScore, awayScore sql.NullInt64
	err := row.Scan(&g.ID, &g.CompetitionID, &g.HomeTeam, &g.AwayTeam, &homeScore, &awayScore,
		&g.Status, &g.KickoffAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	if homeScore.Valid {
		v := int(homeScore.Int64)
		g.HomeScore = &v
	}
	if awayScore.Valid {
		v := int(awayScore.Int64)
		g.AwayScore = &v
	}
	return g, nil
}

func (r *postgresGameRepository) Create(ctx context.Context, g *models.Game) error {
	query := `
		INSERT INTO games (competition_id, home_team, away_team, home_score, away_score, status, kickoff_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		g.CompetitionID, g.HomeTeam, g.AwayTeam, g.HomeScore, g.AwayScore, g.Status, g.KickoffAt,
	).Scan(&g.ID, &g.UpdatedAt)
	if err != nil {
		if code, constraint, ok := pqConstraint(err); ok {
			switch {
			case code == pgForeignKeyViolation:
				return ErrGameCompetitionInvalid
			case code == pgCheckViolation && constraint == "chk_game_teams_differ":
				return ErrGameTeamsInvalid
			}
		}
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	return scanGame(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresGameRepository) ListByCompetition(ctx context.Context, exec SQLExecutor, competitionID int) ([]models.Game, error) {
	if exec == nil {
		exec = r.db
	}
	query := `SELECT ` + gameColumns + ` FROM games WHERE competition_id = $1 ORDER BY kickoff_at ASC, id ASC`

	rows, err := exec.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

// UpdateResult stores status and scores; updated_at is refreshed by the database.
func (r *postgresGameRepository) UpdateResult(ctx context.Context, g *models.Game) error {
	query := `
		UPDATE games
		SET status = $1, home_score = $2, away_score = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, g.Status, g.HomeScore, g.AwayScore, g.ID).Scan(&g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrGameNotFound
		}
		return err
	}
	return nil
}
