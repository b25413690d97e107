package routes_test

import (
	"context"

	"github.com/Dosada05/pickem-league/models"
	"github.com/Dosada05/pickem-league/services"
)

type fakeAuthService struct {
	users map[string]*models.User
}

func (f *fakeAuthService) Register(ctx context.Context, input services.RegisterInput) (*models.User, error) {
	if _, ok := f.users[input.Email]; ok {
		return nil, services.ErrUserEmailConflict
	}
	u := &models.User{ID: len(f.users) + 1, FirstName: input.FirstName, Email: input.Email, Role: models.RolePlayer}
	f.users[input.Email] = u
	return u, nil
}

func (f *fakeAuthService) Login(ctx context.Context, input services.LoginInput) (*models.User, error) {
	u, ok := f.users[input.Email]
	if !ok || input.Password != "correct-horse" {
		return nil, services.ErrInvalidCredentials
	}
	return u, nil
}

func (f *fakeAuthService) GetUser(ctx context.Context, id int) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, services.ErrUserNotFound
}

type fakeLeagueService struct {
	joined []int
}

func (f *fakeLeagueService) CreateLeague(ctx context.Context, ownerID int, input services.CreateLeagueInput) (*models.League, error) {
	return &models.League{ID: 1, Name: input.Name, Season: input.Season, OwnerID: ownerID}, nil
}

func (f *fakeLeagueService) GetLeague(ctx context.Context, leagueID int) (*models.League, error) {
	if leagueID != 1 {
		return nil, services.ErrLeagueNotFound
	}
	return &models.League{ID: 1, Name: "Office", Season: 2024, OwnerID: 1}, nil
}

func (f *fakeLeagueService) ListMyLeagues(ctx context.Context, userID int) ([]models.League, error) {
	return []models.League{{ID: 1, Name: "Office", Season: 2024, OwnerID: userID}}, nil
}

func (f *fakeLeagueService) JoinLeague(ctx context.Context, leagueID, userID int) error {
	if leagueID != 1 {
		return services.ErrLeagueNotFound
	}
	for _, id := range f.joined {
		if id == userID {
			return services.ErrAlreadyLeagueMember
		}
	}
	f.joined = append(f.joined, userID)
	return nil
}

type fakeCompetitionService struct {
	lastActor services.Actor
}

func (f *fakeCompetitionService) CreateCompetition(ctx context.Context, actor services.Actor, leagueID int, input services.CreateCompetitionInput) (*models.Competition, error) {
	f.lastActor = actor
	return &models.Competition{ID: 10, LeagueID: leagueID, Name: input.Name, Week: input.Week, Status: models.CompetitionUpcoming}, nil
}

func (f *fakeCompetitionService) GetCompetition(ctx context.Context, competitionID int) (*models.Competition, error) {
	if competitionID != 10 {
		return nil, services.ErrCompetitionNotFound
	}
	return &models.Competition{ID: 10, LeagueID: 1, Week: 1, Status: models.CompetitionActive}, nil
}

func (f *fakeCompetitionService) ListCompetitions(ctx context.Context, leagueID int, status *models.CompetitionStatus) ([]models.Competition, error) {
	if status != nil && *status == "bogus" {
		return nil, services.ErrCompetitionInvalidStatus
	}
	return []models.Competition{{ID: 10, LeagueID: leagueID}}, nil
}

func (f *fakeCompetitionService) UpdateStatus(ctx context.Context, actor services.Actor, competitionID int, status models.CompetitionStatus) (*models.Competition, error) {
	f.lastActor = actor
	if status == models.CompetitionUpcoming {
		return nil, services.ErrCompetitionInvalidStatusTransition
	}
	return &models.Competition{ID: competitionID, Status: status}, nil
}

func (f *fakeCompetitionService) LockDueCompetitions(ctx context.Context) (int, error) { return 0, nil }

type fakeGameService struct{}

func (fakeGameService) CreateGame(ctx context.Context, actor services.Actor, competitionID int, input services.CreateGameInput) (*models.Game, error) {
	if input.HomeTeam == input.AwayTeam {
		return nil, services.ErrGameTeamsMustDiffer
	}
	return &models.Game{ID: 100, CompetitionID: competitionID, HomeTeam: input.HomeTeam, AwayTeam: input.AwayTeam, Status: models.GameScheduled}, nil
}

func (fakeGameService) ListGames(ctx context.Context, competitionID int) ([]models.Game, error) {
	return []models.Game{{ID: 100, CompetitionID: competitionID}}, nil
}

func (fakeGameService) UpdateResult(ctx context.Context, actor services.Actor, gameID int, input services.UpdateGameResultInput) (*models.Game, error) {
	if !actor.IsAdmin() {
		return nil, services.ErrForbiddenOperation
	}
	return &models.Game{ID: gameID, Status: input.Status, HomeScore: input.HomeScore, AwayScore: input.AwayScore}, nil
}

type fakePickService struct {
	lastInput services.SubmitPickInput
}

func (f *fakePickService) SubmitPick(ctx context.Context, actor services.Actor, competitionID int, input services.SubmitPickInput) (*models.Pick, error) {
	f.lastInput = input
	switch {
	case competitionID == 11:
		return nil, services.ErrCompetitionLocked
	case input.Confidence > models.MaxConfidence:
		return nil, services.ErrPickInvalidConfidence
	}
	return &models.Pick{ID: 500, CompetitionID: competitionID, GameID: input.GameID, UserID: actor.UserID, PickedTeam: input.PickedTeam, Confidence: input.Confidence}, nil
}

func (f *fakePickService) ListMyPicks(ctx context.Context, actor services.Actor, competitionID int) ([]*models.Pick, error) {
	return []*models.Pick{{ID: 500, CompetitionID: competitionID, UserID: actor.UserID}}, nil
}

func (f *fakePickService) DeletePick(ctx context.Context, actor services.Actor, pickID int) error {
	if pickID != 500 {
		return services.ErrPickNotFound
	}
	return nil
}

type fakeScoringService struct {
	calculateErr error
	calls        int
}

func (f *fakeScoringService) CalculateCompetition(ctx context.Context, competitionID int) (*models.Leaderboard, error) {
	f.calls++
	if f.calculateErr != nil {
		return nil, f.calculateErr
	}
	if competitionID != 10 {
		return nil, services.ErrCompetitionNotFound
	}
	rank := func(r int) *int { return &r }
	return &models.Leaderboard{
		CompetitionID: competitionID,
		Status:        string(models.CompetitionCompleted),
		Entries: []models.Score{
			{CompetitionID: 10, UserID: 1, TotalPoints: 100, CorrectPicks: 5, TotalPicks: 6, Rank: rank(1)},
			{CompetitionID: 10, UserID: 2, TotalPoints: 100, CorrectPicks: 5, TotalPicks: 6, Rank: rank(1)},
			{CompetitionID: 10, UserID: 3, TotalPoints: 90, CorrectPicks: 6, TotalPicks: 6, Rank: rank(3)},
		},
	}, nil
}

func (f *fakeScoringService) CalculateSeason(ctx context.Context, leagueID int) (*models.Standings, error) {
	f.calls++
	if leagueID != 1 {
		return nil, services.ErrLeagueNotFound
	}
	return &models.Standings{LeagueID: leagueID, Entries: []models.SeasonStanding{}}, nil
}

func (f *fakeScoringService) GetLeaderboard(ctx context.Context, competitionID int) (*models.Leaderboard, error) {
	return &models.Leaderboard{CompetitionID: competitionID, Provisional: true, Entries: []models.Score{}}, nil
}

func (f *fakeScoringService) GetStandings(ctx context.Context, leagueID int) (*models.Standings, error) {
	return &models.Standings{LeagueID: leagueID, Entries: []models.SeasonStanding{}}, nil
}
