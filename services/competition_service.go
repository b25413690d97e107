package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/pickem-league/cache"
	"github.com/Dosada05/pickem-league/live"
	"github.com/Dosada05/pickem-league/models"
	"github.com/Dosada05/pickem-league/repositories"
)

type CompetitionService interface {
	CreateCompetition(ctx context.Context, actor Actor, leagueID int, input CreateCompetitionInput) (*models.Competition, error)
	GetCompetition(ctx context.Context, competitionID int) (*models.Competition, error)
	ListCompetitions(ctx context.Context, leagueID int, status *models.CompetitionStatus) ([]models.Competition, error)
	UpdateStatus(ctx context.Context, actor Actor, competitionID int, status models.CompetitionStatus) (*models.Competition, error)
	LockDueCompetitions(ctx context.Context) (int, error)
}

type CreateCompetitionInput struct {
	Name         string                    `json:"name"`
	Week         int                       `json:"week"`
	LockDeadline time.Time                 `json:"lock_deadline"`
	Status       *models.CompetitionStatus `json:"status,omitempty"`
}

type CompetitionStatusPayload struct {
	CompetitionID int                      `json:"competition_id"`
	LeagueID      int                      `json:"league_id"`
	Status        models.CompetitionStatus `json:"status"`
}

type competitionService struct {
	competitionRepo repositories.CompetitionRepository
	leagueRepo      repositories.LeagueRepository
	gameRepo        repositories.GameRepository
	cache           cache.LeaderboardCache
	hub             live.Broadcaster
	logger          *slog.Logger
	now             func() time.Time
}

func NewCompetitionService(
	competitionRepo repositories.CompetitionRepository,
	leagueRepo repositories.LeagueRepository,
	gameRepo repositories.GameRepository,
	leaderboardCache cache.LeaderboardCache,
	hub live.Broadcaster,
	logger *slog.Logger,
) CompetitionService {
	return &competitionService{
		competitionRepo: competitionRepo,
		leagueRepo:      leagueRepo,
		gameRepo:        gameRepo,
		cache:           leaderboardCache,
		hub:             hub,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *competitionService) CreateCompetition(ctx context.Context, actor Actor, leagueID int, input CreateCompetitionInput) (*models.Competition, error) {
	league, err := s.leagueRepo.GetByID(ctx, nil, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}
	if !canManageLeague(league, actor.UserID, actor.Role) {
		return nil, ErrForbiddenOperation
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: competition name is required", ErrValidationFailed)
	}
	if input.Week < 1 {
		return nil, fmt.Errorf("%w: week must be positive", ErrValidationFailed)
	}
	if input.LockDeadline.IsZero() {
		return nil, fmt.Errorf("%w: lock_deadline is required", ErrValidationFailed)
	}

	status := models.CompetitionUpcoming
	if input.Status != nil {
		// Создать можно только ещё не начавшееся или открытое соревнование.
		if *input.Status != models.CompetitionUpcoming && *input.Status != models.CompetitionActive {
			return nil, ErrCompetitionInvalidStatus
		}
		status = *input.Status
	}

	competition := &models.Competition{
		LeagueID:     leagueID,
		Name:         name,
		Week:         input.Week,
		LockDeadline: input.LockDeadline.UTC(),
		Status:       status,
	}
	if err := s.competitionRepo.Create(ctx, competition); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCompetitionWeekConflict):
			return nil, ErrCompetitionWeekConflict
		case errors.Is(err, repositories.ErrCompetitionLeagueInvalid):
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to create competition: %w", err)
	}

	s.logger.InfoContext(ctx, "Competition created",
		slog.Int("competition_id", competition.ID), slog.Int("league_id", leagueID), slog.Int("week", competition.Week))
	return competition, nil
}

func (s *competitionService) GetCompetition(ctx context.Context, competitionID int) (*models.Competition, error) {
	var (
		competition *models.Competition
		games       []models.Game
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		competition, err = s.competitionRepo.GetByID(gctx, nil, competitionID)
		return err
	})
	g.Go(func() error {
		var err error
		games, err = s.gameRepo.ListByCompetition(gctx, nil, competitionID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to get competition %d: %w", competitionID, err)
	}

	competition.Games = games
	return competition, nil
}

func (s *competitionService) ListCompetitions(ctx context.Context, leagueID int, status *models.CompetitionStatus) ([]models.Competition, error) {
	if status != nil && !isValidCompetitionStatus(*status) {
		return nil, ErrCompetitionInvalidStatus
	}
	if _, err := s.leagueRepo.GetByID(ctx, nil, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}
	competitions, err := s.competitionRepo.ListByLeague(ctx, nil, leagueID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions for league %d: %w", leagueID, err)
	}
	return competitions, nil
}

func (s *competitionService) UpdateStatus(ctx context.Context, actor Actor, competitionID int, status models.CompetitionStatus) (*models.Competition, error) {
	if !isValidCompetitionStatus(status) {
		return nil, ErrCompetitionInvalidStatus
	}

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

	if !isValidStatusTransition(competition.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrCompetitionInvalidStatusTransition, competition.Status, status)
	}
	if competition.Status == status {
		return competition, nil
	}

	if err := s.setStatus(ctx, competition, status); err != nil {
		return nil, err
	}
	return competition, nil
}

// LockDueCompetitions переводит в locked все активные соревнования с истёкшим дедлайном.
func (s *competitionService) LockDueCompetitions(ctx context.Context) (int, error) {
	due, err := s.competitionRepo.ListDueForLock(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to list competitions due for lock: %w", err)
	}

	locked := 0
	var errs []error
	for _, competition := range due {
		if err := s.setStatus(ctx, competition, models.CompetitionLocked); err != nil {
			s.logger.ErrorContext(ctx, "Scheduler: failed to lock competition",
				slog.Int("competition_id", competition.ID), slog.Any("error", err))
			errs = append(errs, err)
			continue
		}
		locked++
	}
	return locked, errors.Join(errs...)
}

func (s *competitionService) setStatus(ctx context.Context, competition *models.Competition, status models.CompetitionStatus) error {
	previous := competition.Status
	if err := s.competitionRepo.UpdateStatus(ctx, nil, competition.ID, status); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return ErrCompetitionNotFound
		}
		return fmt.Errorf("failed to update competition %d status: %w", competition.ID, err)
	}
	competition.Status = status

	// Флаг provisional в кэше зависит от статуса.
	if err := s.cache.InvalidateLeaderboard(ctx, competition.ID); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate cached leaderboard",
			slog.Int("competition_id", competition.ID), slog.Any("error", err))
	}

	payload := CompetitionStatusPayload{CompetitionID: competition.ID, LeagueID: competition.LeagueID, Status: status}
	s.hub.BroadcastToRoom(live.CompetitionRoom(competition.ID), live.Message{Type: live.MessageCompetitionStatus, Payload: payload})
	s.hub.BroadcastToRoom(live.LeagueRoom(competition.LeagueID), live.Message{Type: live.MessageCompetitionStatus, Payload: payload})

	s.logger.InfoContext(ctx, "Competition status changed",
		slog.Int("competition_id", competition.ID),
		slog.String("from", string(previous)),
		slog.String("to", string(status)))
	return nil
}
