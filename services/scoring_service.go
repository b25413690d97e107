package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/pickem-league/cache"
	"github.com/Dosada05/pickem-league/live"
	"github.com/Dosada05/pickem-league/models"
	"github.com/Dosada05/pickem-league/repositories"
	"github.com/Dosada05/pickem-league/scoring"
	"github.com/Dosada05/pickem-league/storage"
)

const defaultLeaseTTL = 30 * time.Second

// ScoringService runs competition and season calculations and serves their results.
type ScoringService interface {
	CalculateCompetition(ctx context.Context, competitionID int) (*models.Leaderboard, error)
	CalculateSeason(ctx context.Context, leagueID int) (*models.Standings, error)
	GetLeaderboard(ctx context.Context, competitionID int) (*models.Leaderboard, error)
	GetStandings(ctx context.Context, leagueID int) (*models.Standings, error)
}

// SnapshotArchiver keeps an immutable copy of final results.
type SnapshotArchiver interface {
	ArchiveLeaderboard(ctx context.Context, runID string, board *models.Leaderboard) (*storage.UploadResult, error)
	ArchiveStandings(ctx context.Context, runID string, standings *models.Standings) (*storage.UploadResult, error)
}

type ScoringServiceDeps struct {
	Tx              Transactor
	Advisory        repositories.AdvisoryLocker
	CompetitionRepo repositories.CompetitionRepository
	LeagueRepo      repositories.LeagueRepository
	GameRepo        repositories.GameRepository
	PickRepo        repositories.PickRepository
	ScoreRepo       repositories.ScoreRepository
	StandingRepo    repositories.SeasonStandingRepository

	Cache    cache.LeaderboardCache
	Lease    cache.Locker
	LeaseTTL time.Duration
	Hub      live.Broadcaster
	Archiver SnapshotArchiver // nil отключает архив

	Logger *slog.Logger
}

type scoringService struct {
	ScoringServiceDeps
	locks *keyedMutex
	now   func() time.Time
}

func NewScoringService(deps ScoringServiceDeps) ScoringService {
	if deps.LeaseTTL <= 0 {
		deps.LeaseTTL = defaultLeaseTTL
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewNopCache()
	}
	if deps.Lease == nil {
		deps.Lease = cache.NewNopLocker()
	}
	return &scoringService{
		ScoringServiceDeps: deps,
		locks:              newKeyedMutex(),
		now:                time.Now,
	}
}

func competitionScope(id int) string { return "pickem:lock:competition:" + strconv.Itoa(id) }
func leagueScope(id int) string      { return "pickem:lock:league:" + strconv.Itoa(id) }

// serialize holds the in-process mutex and the cross-instance lease for scope
// until the returned func is called.
func (s *scoringService) serialize(ctx context.Context, scope string, logger *slog.Logger) (func(), error) {
	unlock := s.locks.Lock(scope)

	release, err := s.Lease.Acquire(ctx, scope, s.LeaseTTL)
	if err != nil {
		unlock()
		if errors.Is(err, cache.ErrLeaseTimeout) {
			return nil, fmt.Errorf("%w: %s", ErrCalculationBusy, scope)
		}
		return nil, fmt.Errorf("failed to acquire calculation lease: %w", err)
	}

	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.WarnContext(ctx, "Failed to release calculation lease", slog.Any("error", err))
		}
		unlock()
	}, nil
}

// CalculateCompetition grades every pick of the competition, rebuilds its
// scores and ranks them. All writes share one transaction.
func (s *scoringService) CalculateCompetition(ctx context.Context, competitionID int) (*models.Leaderboard, error) {
	runID := uuid.NewString()
	logger := s.Logger.With(slog.String("run_id", runID), slog.Int("competition_id", competitionID))

	done, err := s.serialize(ctx, competitionScope(competitionID), logger)
	if err != nil {
		return nil, err
	}
	defer done()

	started := s.now()
	var (
		board       *models.Leaderboard
		regraded    int
		finalGames  int
		competition *models.Competition
	)

	err = s.Tx.WithinTx(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if err := s.Advisory.Lock(ctx, exec, repositories.LockCompetitionScores, competitionID); err != nil {
			return err
		}

		var err error
		competition, err = s.CompetitionRepo.GetByID(ctx, exec, competitionID)
		if err != nil {
			if errors.Is(err, repositories.ErrCompetitionNotFound) {
				return ErrCompetitionNotFound
			}
			return fmt.Errorf("failed to load competition: %w", err)
		}

		games, err := s.GameRepo.ListByCompetition(ctx, exec, competitionID)
		if err != nil {
			return fmt.Errorf("failed to load games: %w", err)
		}
		picks, err := s.PickRepo.ListByCompetition(ctx, exec, competitionID)
		if err != nil {
			return fmt.Errorf("failed to load picks: %w", err)
		}
		finalGames = scoring.CountFinal(games)

		changed, err := scoring.GradeCompetition(picks, games)
		if err != nil {
			return err
		}
		if err := s.PickRepo.UpdateGrades(ctx, exec, changed); err != nil {
			return fmt.Errorf("failed to store grades: %w", err)
		}
		regraded = len(changed)

		scores := scoring.AggregateCompetition(competitionID, picks)

		existing, err := s.ScoreRepo.ListByCompetition(ctx, exec, competitionID)
		if err != nil {
			return fmt.Errorf("failed to load existing scores: %w", err)
		}
		if err := checkOrphanScores(existing, scores); err != nil {
			return err
		}

		scoring.RankScores(scores)
		if err := s.ScoreRepo.UpsertBatch(ctx, exec, scores); err != nil {
			return fmt.Errorf("failed to store scores: %w", err)
		}

		board = newLeaderboard(competition, scores, started)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInconsistentState) {
			logger.ErrorContext(ctx, "Competition calculation aborted", slog.Any("error", err))
		}
		return nil, err
	}

	logger.InfoContext(ctx, "Competition scores calculated",
		slog.Int("entries", len(board.Entries)),
		slog.Int("final_games", finalGames),
		slog.Int("regraded_picks", regraded),
		slog.Bool("provisional", board.Provisional),
		slog.Duration("took", s.now().Sub(started)))

	s.publishLeaderboard(ctx, logger, runID, board)
	return board, nil
}

// CalculateSeason rebuilds the league's standings from scores of completed
// competitions only. Users without such scores lose their standing row.
func (s *scoringService) CalculateSeason(ctx context.Context, leagueID int) (*models.Standings, error) {
	runID := uuid.NewString()
	logger := s.Logger.With(slog.String("run_id", runID), slog.Int("league_id", leagueID))

	done, err := s.serialize(ctx, leagueScope(leagueID), logger)
	if err != nil {
		return nil, err
	}
	defer done()

	started := s.now()
	var (
		standings *models.Standings
		removed   int64
	)

	err = s.Tx.WithinTx(ctx, func(ctx context.Context, exec repositories.SQLExecutor) error {
		if err := s.Advisory.Lock(ctx, exec, repositories.LockLeagueStandings, leagueID); err != nil {
			return err
		}

		if _, err := s.LeagueRepo.GetByID(ctx, exec, leagueID); err != nil {
			if errors.Is(err, repositories.ErrLeagueNotFound) {
				return ErrLeagueNotFound
			}
			return fmt.Errorf("failed to load league: %w", err)
		}

		completed := models.CompetitionCompleted
		competitions, err := s.CompetitionRepo.ListByLeague(ctx, exec, leagueID, &completed)
		if err != nil {
			return fmt.Errorf("failed to load completed competitions: %w", err)
		}
		ids := make([]int, 0, len(competitions))
		for _, c := range competitions {
			ids = append(ids, c.ID)
		}

		scores, err := s.ScoreRepo.ListByCompetitions(ctx, exec, ids)
		if err != nil {
			return fmt.Errorf("failed to load scores: %w", err)
		}

		rows := scoring.AggregateSeason(leagueID, competitions, scores)
		scoring.RankStandings(rows)
		if err := s.StandingRepo.UpsertBatch(ctx, exec, rows); err != nil {
			return fmt.Errorf("failed to store standings: %w", err)
		}

		keep := make([]int, 0, len(rows))
		for _, r := range rows {
			keep = append(keep, r.UserID)
		}
		removed, err = s.StandingRepo.DeleteStale(ctx, exec, leagueID, keep)
		if err != nil {
			return fmt.Errorf("failed to delete stale standings: %w", err)
		}

		standings = newStandings(leagueID, len(competitions), rows, started)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Season standings calculated",
		slog.Int("entries", len(standings.Entries)),
		slog.Int("completed_competitions", standings.CompletedCompetitions),
		slog.Int64("stale_removed", removed),
		slog.Duration("took", s.now().Sub(started)))

	s.publishStandings(ctx, logger, runID, standings)
	return standings, nil
}

// GetLeaderboard returns the last committed leaderboard without recalculating.
func (s *scoringService) GetLeaderboard(ctx context.Context, competitionID int) (*models.Leaderboard, error) {
	if board, err := s.Cache.GetLeaderboard(ctx, competitionID); err == nil {
		return board, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.Logger.WarnContext(ctx, "Leaderboard cache read failed", slog.Int("competition_id", competitionID), slog.Any("error", err))
	}

	var (
		competition *models.Competition
		scores      []models.Score
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		competition, err = s.CompetitionRepo.GetByID(gctx, nil, competitionID)
		return err
	})
	g.Go(func() error {
		var err error
		scores, err = s.ScoreRepo.ListByCompetition(gctx, nil, competitionID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to load leaderboard %d: %w", competitionID, err)
	}

	entries := make([]*models.Score, len(scores))
	for i := range scores {
		entries[i] = &scores[i]
	}
	board := newLeaderboard(competition, entries, latestScoreUpdate(scores))

	if err := s.Cache.SetLeaderboard(ctx, board); err != nil {
		s.Logger.WarnContext(ctx, "Leaderboard cache write failed", slog.Int("competition_id", competitionID), slog.Any("error", err))
	}
	return board, nil
}

// GetStandings returns the last committed season standings of a league.
func (s *scoringService) GetStandings(ctx context.Context, leagueID int) (*models.Standings, error) {
	if standings, err := s.Cache.GetStandings(ctx, leagueID); err == nil {
		return standings, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.Logger.WarnContext(ctx, "Standings cache read failed", slog.Int("league_id", leagueID), slog.Any("error", err))
	}

	var (
		rows      []models.SeasonStanding
		completed []models.Competition
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.LeagueRepo.GetByID(gctx, nil, leagueID)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.StandingRepo.ListByLeague(gctx, nil, leagueID)
		return err
	})
	g.Go(func() error {
		status := models.CompetitionCompleted
		var err error
		completed, err = s.CompetitionRepo.ListByLeague(gctx, nil, leagueID, &status)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load standings %d: %w", leagueID, err)
	}

	entries := make([]*models.SeasonStanding, len(rows))
	var calculatedAt time.Time
	for i := range rows {
		entries[i] = &rows[i]
		if rows[i].UpdatedAt.After(calculatedAt) {
			calculatedAt = rows[i].UpdatedAt
		}
	}
	standings := newStandings(leagueID, len(completed), entries, calculatedAt)

	if err := s.Cache.SetStandings(ctx, standings); err != nil {
		s.Logger.WarnContext(ctx, "Standings cache write failed", slog.Int("league_id", leagueID), slog.Any("error", err))
	}
	return standings, nil
}

// publishLeaderboard runs the after-commit side effects. Their failures are
// logged and never undo the committed calculation.
func (s *scoringService) publishLeaderboard(ctx context.Context, logger *slog.Logger, runID string, board *models.Leaderboard) {
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	g.Go(func() error {
		if err := s.Cache.SetLeaderboard(ctx, board); err != nil {
			logger.WarnContext(ctx, "Leaderboard cache write failed", slog.Any("error", err))
		}
		return nil
	})
	if s.Archiver != nil && !board.Provisional {
		g.Go(func() error {
			res, err := s.Archiver.ArchiveLeaderboard(ctx, runID, board)
			if err != nil {
				logger.WarnContext(ctx, "Leaderboard snapshot upload failed", slog.Any("error", err))
				return nil
			}
			logger.InfoContext(ctx, "Leaderboard snapshot archived", slog.String("key", res.Key))
			return nil
		})
	}
	_ = g.Wait()

	s.Hub.BroadcastToRoom(live.CompetitionRoom(board.CompetitionID), live.Message{
		Type:    live.MessageLeaderboardUpdated,
		Payload: board,
	})
}

func (s *scoringService) publishStandings(ctx context.Context, logger *slog.Logger, runID string, standings *models.Standings) {
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	g.Go(func() error {
		if err := s.Cache.SetStandings(ctx, standings); err != nil {
			logger.WarnContext(ctx, "Standings cache write failed", slog.Any("error", err))
		}
		return nil
	})
	if s.Archiver != nil {
		g.Go(func() error {
			res, err := s.Archiver.ArchiveStandings(ctx, runID, standings)
			if err != nil {
				logger.WarnContext(ctx, "Standings snapshot upload failed", slog.Any("error", err))
				return nil
			}
			logger.InfoContext(ctx, "Standings snapshot archived", slog.String("key", res.Key))
			return nil
		})
	}
	_ = g.Wait()

	s.Hub.BroadcastToRoom(live.LeagueRoom(standings.LeagueID), live.Message{
		Type:    live.MessageStandingsUpdated,
		Payload: standings,
	})
}

// checkOrphanScores fails when a stored Score belongs to a user who has no
// picks left in the competition.
func checkOrphanScores(existing []models.Score, fresh []*models.Score) error {
	withPicks := make(map[int]struct{}, len(fresh))
	for _, s := range fresh {
		withPicks[s.UserID] = struct{}{}
	}
	for _, e := range existing {
		if _, ok := withPicks[e.UserID]; !ok {
			return fmt.Errorf("%w: score row for user %d in competition %d has no picks",
				ErrInconsistentState, e.UserID, e.CompetitionID)
		}
	}
	return nil
}

func newLeaderboard(competition *models.Competition, scores []*models.Score, at time.Time) *models.Leaderboard {
	entries := make([]models.Score, 0, len(scores))
	for _, s := range scores {
		entries = append(entries, *s)
	}
	return &models.Leaderboard{
		CompetitionID: competition.ID,
		Status:        string(competition.Status),
		Provisional:   !competition.RanksFinal(),
		CalculatedAt:  at.UTC(),
		Entries:       entries,
	}
}

func newStandings(leagueID, completed int, rows []*models.SeasonStanding, at time.Time) *models.Standings {
	entries := make([]models.SeasonStanding, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, *r)
	}
	return &models.Standings{
		LeagueID:              leagueID,
		CompletedCompetitions: completed,
		CalculatedAt:          at.UTC(),
		Entries:               entries,
	}
}

func latestScoreUpdate(scores []models.Score) time.Time {
	var latest time.Time
	for _, s := range scores {
		if s.UpdatedAt.After(latest) {
			latest = s.UpdatedAt
		}
	}
	return latest
}
