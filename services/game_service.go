package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/pickem-league/models"
	"github.com/Dosada05/pickem-league/repositories"
)

type GameService interface {
	CreateGame(ctx context.Context, actor Actor, competitionID int, input CreateGameInput) (*models.Game, error)
	ListGames(ctx context.Context, competitionID int) ([]models.Game, error)
	UpdateResult(ctx context.Context, actor Actor, gameID int, input UpdateGameResultInput) (*models.Game, error)
}

type CreateGameInput struct {
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	KickoffAt time.Time `json:"kickoff_at"`
}

type UpdateGameResultInput struct {
	Status    models.GameStatus `json:"status"`
	HomeScore *int              `json:"home_score"`
	AwayScore *int              `json:"away_score"`
}

type gameService struct {
	gameRepo        repositories.GameRepository
	competitionRepo repositories.CompetitionRepository
	leagueRepo      repositories.LeagueRepository
	logger          *slog.Logger
}

func NewGameService(
	gameRepo repositories.GameRepository,
	competitionRepo repositories.CompetitionRepository,
	leagueRepo repositories.LeagueRepository,
	logger *slog.Logger,
) GameService {
	return &gameService{
		gameRepo:        gameRepo,
		competitionRepo: competitionRepo,
		leagueRepo:      leagueRepo,
		logger:          logger,
	}
}

func (s *gameService) CreateGame(ctx context.Context, actor Actor, competitionID int, input CreateGameInput) (*models.Game, error) {
	competition, err := s.authorizeCompetition(ctx, actor, competitionID)
	if err != nil {
		return nil, err
	}
	if competition.Status == models.CompetitionCompleted || competition.Status == models.CompetitionCancelled {
		return nil, fmt.Errorf("%w: competition is %s", ErrValidationFailed, competition.Status)
	}

	home, away := normalizeTeam(input.HomeTeam), normalizeTeam(input.AwayTeam)
	if home == "" || away == "" {
		return nil, fmt.Errorf("%w: home_team and away_team are required", ErrValidationFailed)
	}
	if home == away {
		return nil, ErrGameTeamsMustDiffer
	}
	if input.KickoffAt.IsZero() {
		return nil, fmt.Errorf("%w: kickoff_at is required", ErrValidationFailed)
	}

	game := &models.Game{
		CompetitionID: competitionID,
		HomeTeam:      home,
		AwayTeam:      away,
		Status:        models.GameScheduled,
		KickoffAt:     input.KickoffAt.UTC(),
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		switch {
		case errors.Is(err, repositories.ErrGameTeamsInvalid):
			return nil, ErrGameTeamsMustDiffer
		case errors.Is(err, repositories.ErrGameCompetitionInvalid):
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return game, nil
}

func (s *gameService) ListGames(ctx context.Context, competitionID int) ([]models.Game, error) {
	if _, err := s.competitionRepo.GetByID(ctx, nil, competitionID); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to get competition %d: %w", competitionID, err)
	}
	games, err := s.gameRepo.ListByCompetition(ctx, nil, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games for competition %d: %w", competitionID, err)
	}
	return games, nil
}

// UpdateResult records a game's status and score. Changing a final result is
// an administrative correction; the next calculation regrades affected picks.
func (s *gameService) UpdateResult(ctx context.Context, actor Actor, gameID int, input UpdateGameResultInput) (*models.Game, error) {
	if err := validateResult(input); err != nil {
		return nil, err
	}

	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game %d: %w", gameID, err)
	}
	if _, err := s.authorizeCompetition(ctx, actor, game.CompetitionID); err != nil {
		return nil, err
	}

	correction := game.Status == models.GameFinal
	game.Status = input.Status
	game.HomeScore = input.HomeScore
	game.AwayScore = input.AwayScore

	if err := s.gameRepo.UpdateResult(ctx, game); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to update game %d: %w", gameID, err)
	}

	attrs := []any{slog.Int("game_id", game.ID), slog.Int("competition_id", game.CompetitionID), slog.String("status", string(game.Status))}
	if correction {
		s.logger.WarnContext(ctx, "Final game result corrected", append(attrs, slog.Int("actor_id", actor.UserID))...)
	} else {
		s.logger.InfoContext(ctx, "Game result updated", attrs...)
	}
	return game, nil
}

func validateResult(input UpdateGameResultInput) error {
	if !input.Status.Valid() {
		return ErrGameInvalidStatus
	}
	if (input.HomeScore != nil && *input.HomeScore < 0) || (input.AwayScore != nil && *input.AwayScore < 0) {
		return ErrGameScoreNegative
	}
	if input.Status == models.GameFinal && (input.HomeScore == nil || input.AwayScore == nil) {
		return ErrGameScoresRequired
	}
	return nil
}

func (s *gameService) authorizeCompetition(ctx context.Context, actor Actor, competitionID int) (*models.Competition, error) {
	competition, err := s.competitionRepo.GetByID(ctx, nil, competitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to get competition %d: %w", competitionID, err)
	}
	league, err := s.leagueRepo.GetByID(ctx, nil, competition.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to get league %d: %w", competition.LeagueID, err)
	}
	if !canManageLeague(league, actor.UserID, actor.Role) {
		return nil, ErrForbiddenOperation
	}
	return competition, nil
}
