package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/pickem-league/cache"
	"github.com/Dosada05/pickem-league/models"
	"github.com/Dosada05/pickem-league/repositories"
)

type PickService interface {
	SubmitPick(ctx context.Context, actor Actor, competitionID int, input SubmitPickInput) (*models.Pick, error)
	ListMyPicks(ctx context.Context, actor Actor, competitionID int) ([]*models.Pick, error)
	DeletePick(ctx context.Context, actor Actor, pickID int) error
}

type SubmitPickInput struct {
	GameID     int    `json:"game_id"`
	PickedTeam string `json:"picked_team"`
	Confidence int    `json:"confidence"`
}

type pickService struct {
	tx              Transactor
	pickRepo        repositories.PickRepository
	gameRepo        repositories.GameRepository
	competitionRepo repositories.CompetitionRepository
	leagueRepo      repositories.LeagueRepository
	scoreRepo       repositories.ScoreRepository
	advisory        repositories.AdvisoryLocker
	cache           cache.LeaderboardCache
	logger          *slog.Logger
	now             func() time.Time
}

func NewPickService(
	tx Transactor,
	pickRepo repositories.PickRepository,
	gameRepo repositories.GameRepository,
	competitionRepo repositories.CompetitionRepository,
	leagueRepo repositories.LeagueRepository,
	scoreRepo repositories.ScoreRepository,
	advisory repositories.AdvisoryLocker,
	leaderboardCache cache.LeaderboardCache,
	logger *slog.Logger,
) PickService {
	return &pickService{
		tx:              tx,
		pickRepo:        pickRepo,
		gameRepo:        gameRepo,
		competitionRepo: competitionRepo,
		leagueRepo:      leagueRepo,
		scoreRepo:       scoreRepo,
		advisory:        advisory,
		cache:           leaderboardCache,
		logger:          logger,
		now:             time.Now,
	}
}

// SubmitPick creates or replaces the actor's pick for one game. Grading
// fields are reset; the next calculation fills them in. The write holds the
// competition's scoring lock so a running calculation cannot grade the old
// pick over the new one.
func (s *pickService) SubmitPick(ctx context.Context, actor Actor, competitionID int, input SubmitPickInput) (*models.Pick, error) {
	if input.Confidence < models.MinConfidence || input.Confidence > models.MaxConfidence {
		return nil, ErrPickInvalidConfidence
	}

	competition, err := s.openCompetition(ctx, actor, competitionID)
	if err != nil {
		return nil, err
	}

	game, err := s.gameRepo.GetByID(ctx, input.GameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game %d: %w", input.GameID, err)
	}
	if game.CompetitionID != competition.ID {
		return nil, fmt.Errorf("%w: game %d is not part of competition %d", ErrGameNotFound, game.ID, competition.ID)
	}

	if !game.OpenForPicks() {
		return nil, fmt.Errorf("%w: game %d is %s", ErrGameAlreadyStarted, game.ID, game.Status)
	}

	team := normalizeTeam(input.PickedTeam)
	if !game.Involves(team) {
		return nil, ErrPickInvalidTeam
	}

	pick := &models.Pick{
		CompetitionID: competition.ID,
		GameID:        game.ID,
		UserID:        actor.UserID,
		PickedTeam:    team,
		Confidence:    input.Confidence,
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if err := s.advisory.Lock(ctx, exec, repositories.LockCompetitionScores, competition.ID); err != nil {
			return err
		}
		return s.pickRepo.Upsert(ctx, exec, pick)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrPickConfidenceInvalid):
			return nil, ErrPickInvalidConfidence
		case errors.Is(err, repositories.ErrPickGameInvalid):
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to save pick: %w", err)
	}

	s.logger.DebugContext(ctx, "Pick saved",
		slog.Int("pick_id", pick.ID), slog.Int("competition_id", competition.ID), slog.Int("user_id", actor.UserID))
	return pick, nil
}

func (s *pickService) ListMyPicks(ctx context.Context, actor Actor, competitionID int) ([]*models.Pick, error) {
	competition, err := s.competitionRepo.GetByID(ctx, nil, competitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to get competition %d: %w", competitionID, err)
	}
	if _, err := requireMembership(ctx, s.leagueRepo, competition.LeagueID, actor); err != nil {
		return nil, err
	}

	picks, err := s.pickRepo.ListByCompetitionAndUser(ctx, competitionID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}
	return picks, nil
}

// DeletePick removes a pick while its competition is open. When it was the
// user's last pick the stale Score row goes with it. Both happen under the
// competition's scoring lock, otherwise a concurrent calculation could write
// a Score row for a user who no longer has picks.
func (s *pickService) DeletePick(ctx context.Context, actor Actor, pickID int) error {
	pick, err := s.pickRepo.GetByID(ctx, pickID)
	if err != nil {
		if errors.Is(err, repositories.ErrPickNotFound) {
			return ErrPickNotFound
		}
		return fmt.Errorf("failed to get pick %d: %w", pickID, err)
	}
	if pick.UserID != actor.UserID && !actor.IsAdmin() {
		return ErrForbiddenOperation
	}

	if _, err := s.openCompetition(ctx, actor, pick.CompetitionID); err != nil {
		return err
	}

	var scoreRemoved bool
	err = s.tx.WithinTx(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if err := s.advisory.Lock(ctx, exec, repositories.LockCompetitionScores, pick.CompetitionID); err != nil {
			return err
		}
		if err := s.pickRepo.Delete(ctx, exec, pick.ID); err != nil {
			return err
		}
		remaining, err := s.pickRepo.CountByCompetitionAndUser(ctx, exec, pick.CompetitionID, pick.UserID)
		if err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}
		scoreRemoved = true
		return s.scoreRepo.DeleteByCompetitionAndUser(ctx, exec, pick.CompetitionID, pick.UserID)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrPickNotFound) {
			return ErrPickNotFound
		}
		return fmt.Errorf("failed to delete pick %d: %w", pickID, err)
	}

	if scoreRemoved {
		if err := s.cache.InvalidateLeaderboard(ctx, pick.CompetitionID); err != nil {
			s.logger.WarnContext(ctx, "Failed to invalidate cached leaderboard",
				slog.Int("competition_id", pick.CompetitionID), slog.Any("error", err))
		}
	}
	return nil
}

// openCompetition loads a competition that still accepts picks from actor.
func (s *pickService) openCompetition(ctx context.Context, actor Actor, competitionID int) (*models.Competition, error) {
	competition, err := s.competitionRepo.GetByID(ctx, nil, competitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to get competition %d: %w", competitionID, err)
	}
	if _, err := requireMembership(ctx, s.leagueRepo, competition.LeagueID, actor); err != nil {
		return nil, err
	}
	if !competition.AcceptsPicks(s.now()) {
		return nil, ErrCompetitionLocked
	}
	return competition, nil
}
