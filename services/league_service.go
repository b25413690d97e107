package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/pickem-league/models"
	"github.com/Dosada05/pickem-league/repositories"
)

type LeagueService interface {
	CreateLeague(ctx context.Context, ownerID int, input CreateLeagueInput) (*models.League, error)
	GetLeague(ctx context.Context, leagueID int) (*models.League, error)
	ListMyLeagues(ctx context.Context, userID int) ([]models.League, error)
	JoinLeague(ctx context.Context, leagueID, userID int) error
}

type CreateLeagueInput struct {
	Name   string `json:"name"`
	Season int    `json:"season"`
}

type leagueService struct {
	tx         Transactor
	leagueRepo repositories.LeagueRepository
	logger     *slog.Logger
}

func NewLeagueService(tx Transactor, leagueRepo repositories.LeagueRepository, logger *slog.Logger) LeagueService {
	return &leagueService{tx: tx, leagueRepo: leagueRepo, logger: logger}
}

func (s *leagueService) CreateLeague(ctx context.Context, ownerID int, input CreateLeagueInput) (*models.League, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: league name is required", ErrValidationFailed)
	}
	if input.Season < 1900 || input.Season > 3000 {
		return nil, fmt.Errorf("%w: season %d is out of range", ErrValidationFailed, input.Season)
	}

	league := &models.League{Name: name, Season: input.Season, OwnerID: ownerID}

	// Владелец сразу становится участником, в одной транзакции с созданием лиги.
	err := s.tx.WithinTx(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if err := s.leagueRepo.Create(ctx, exec, league); err != nil {
			return err
		}
		return s.leagueRepo.AddMember(ctx, exec, league.ID, ownerID)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrLeagueNameConflict):
			return nil, ErrLeagueNameConflict
		case errors.Is(err, repositories.ErrLeagueOwnerInvalid), errors.Is(err, repositories.ErrLeagueMemberInvalid):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create league: %w", err)
	}

	s.logger.InfoContext(ctx, "League created", slog.Int("league_id", league.ID), slog.Int("owner_id", ownerID))
	return league, nil
}

func (s *leagueService) GetLeague(ctx context.Context, leagueID int) (*models.League, error) {
	var (
		league  *models.League
		members []models.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		league, err = s.leagueRepo.GetByID(gctx, nil, leagueID)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = s.leagueRepo.ListMembers(gctx, leagueID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}

	league.Members = members
	return league, nil
}

func (s *leagueService) ListMyLeagues(ctx context.Context, userID int) ([]models.League, error) {
	leagues, err := s.leagueRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues for user %d: %w", userID, err)
	}
	return leagues, nil
}

func (s *leagueService) JoinLeague(ctx context.Context, leagueID, userID int) error {
	if _, err := s.leagueRepo.GetByID(ctx, nil, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return ErrLeagueNotFound
		}
		return fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}

	if err := s.leagueRepo.AddMember(ctx, nil, leagueID, userID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrLeagueMemberExists):
			return ErrAlreadyLeagueMember
		case errors.Is(err, repositories.ErrLeagueMemberInvalid):
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to join league %d: %w", leagueID, err)
	}

	s.logger.InfoContext(ctx, "User joined league", slog.Int("league_id", leagueID), slog.Int("user_id", userID))
	return nil
}

// requireMembership returns the league when actor may act inside it.
// Admins pass without being members.
func requireMembership(ctx context.Context, repo repositories.LeagueRepository, leagueID int, actor Actor) (*models.League, error) {
	league, err := repo.GetByID(ctx, nil, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}
	if actor.IsAdmin() {
		return league, nil
	}
	ok, err := repo.IsMember(ctx, leagueID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check league membership: %w", err)
	}
	if !ok {
		return nil, ErrNotLeagueMember
	}
	return league, nil
}
