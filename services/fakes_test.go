package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Dosada05/pickem-league/cache"
	"github.com/Dosada05/pickem-league/live"
	"github.com/Dosada05/pickem-league/models"
	"github.com/Dosada05/pickem-league/repositories"
	"github.com/Dosada05/pickem-league/storage"
)

var testNow = time.Date(2026, 9, 13, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

type pairKey [2]int

// memStore is an in-memory database shared by the fake repositories.
type memStore struct {
	mu sync.Mutex

	nextID       int
	users        map[int]*models.User
	leagues      map[int]*models.League
	members      map[int]map[int]bool
	competitions map[int]*models.Competition
	games        map[int]*models.Game
	picks        map[int]*models.Pick
	scores       map[pairKey]*models.Score
	standings    map[pairKey]*models.SeasonStanding

	failScoreUpsert error
}

func newMemStore() *memStore {
	return &memStore{
		nextID:       1000,
		users:        map[int]*models.User{},
		leagues:      map[int]*models.League{},
		members:      map[int]map[int]bool{},
		competitions: map[int]*models.Competition{},
		games:        map[int]*models.Game{},
		picks:        map[int]*models.Pick{},
		scores:       map[pairKey]*models.Score{},
		standings:    map[pairKey]*models.SeasonStanding{},
	}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

func clonePick(p *models.Pick) *models.Pick {
	c := *p
	if p.Correct != nil {
		c.Correct = boolPtr(*p.Correct)
	}
	if p.PointsEarned != nil {
		c.PointsEarned = intPtr(*p.PointsEarned)
	}
	return &c
}

func cloneScore(sc *models.Score) *models.Score {
	c := *sc
	if sc.Rank != nil {
		c.Rank = intPtr(*sc.Rank)
	}
	return &c
}

func cloneStanding(st *models.SeasonStanding) *models.SeasonStanding {
	c := *st
	if st.Rank != nil {
		c.Rank = intPtr(*st.Rank)
	}
	if st.AveragePointsPerWeek != nil {
		v := *st.AveragePointsPerWeek
		c.AveragePointsPerWeek = &v
	}
	return &c
}

type memSnapshot struct {
	picks     map[int]*models.Pick
	scores    map[pairKey]*models.Score
	standings map[pairKey]*models.SeasonStanding
	members   map[int]map[int]bool
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		picks:     map[int]*models.Pick{},
		scores:    map[pairKey]*models.Score{},
		standings: map[pairKey]*models.SeasonStanding{},
		members:   map[int]map[int]bool{},
	}
	for k, v := range s.picks {
		snap.picks[k] = clonePick(v)
	}
	for k, v := range s.scores {
		snap.scores[k] = cloneScore(v)
	}
	for k, v := range s.standings {
		snap.standings[k] = cloneStanding(v)
	}
	for k, v := range s.members {
		m := map[int]bool{}
		for u := range v {
			m[u] = true
		}
		snap.members[k] = m
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.picks = snap.picks
	s.scores = snap.scores
	s.standings = snap.standings
	s.members = snap.members
}

// --- seeding helpers ---

func (s *memStore) addUser(id int, role models.UserRole) {
	s.users[id] = &models.User{ID: id, FirstName: "User", Role: role, Email: "u" + strconv.Itoa(id) + "@test.io"}
}

func (s *memStore) addLeague(id, ownerID int, memberIDs ...int) {
	s.leagues[id] = &models.League{ID: id, Name: "League", Season: 2026, OwnerID: ownerID}
	s.members[id] = map[int]bool{ownerID: true}
	for _, m := range memberIDs {
		s.members[id][m] = true
	}
}

func (s *memStore) addCompetition(id, leagueID, week int, status models.CompetitionStatus, deadline time.Time) {
	s.competitions[id] = &models.Competition{ID: id, LeagueID: leagueID, Name: "Week", Week: week, Status: status, LockDeadline: deadline}
}

func (s *memStore) addGame(id, competitionID int, home, away string, status models.GameStatus, homeScore, awayScore *int) {
	s.games[id] = &models.Game{
		ID: id, CompetitionID: competitionID, HomeTeam: home, AwayTeam: away,
		Status: status, HomeScore: homeScore, AwayScore: awayScore, KickoffAt: testNow,
	}
}

func (s *memStore) addPick(id, competitionID, gameID, userID int, team string, confidence int) {
	s.picks[id] = &models.Pick{ID: id, CompetitionID: competitionID, GameID: gameID, UserID: userID, PickedTeam: team, Confidence: confidence}
}

func (s *memStore) addScore(competitionID, userID, points, correct, total int) {
	s.scores[pairKey{competitionID, userID}] = &models.Score{
		ID: s.id(), CompetitionID: competitionID, UserID: userID,
		TotalPoints: points, CorrectPicks: correct, TotalPicks: total,
	}
}

func (s *memStore) pick(id int) *models.Pick {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePick(s.picks[id])
}

func (s *memStore) scoreCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scores)
}

// --- fake transaction and locks ---

type fakeTx struct {
	store *memStore
	exec  repositories.SQLExecutor

	mu        sync.Mutex
	commits   int
	rollbacks int
	inFlight  int
	maxFlight int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context, exec repositories.SQLExecutor) error) error {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxFlight {
		f.maxFlight = f.inFlight
	}
	f.mu.Unlock()

	snap := f.store.snapshot()
	end := &txEnd{}
	err := fn(context.WithValue(ctx, txEndKey{}, end), f.exec)

	f.mu.Lock()
	f.inFlight--
	if err != nil {
		f.store.restore(snap)
		f.rollbacks++
	} else {
		f.commits++
	}
	f.mu.Unlock()

	// Как pg_advisory_xact_lock: блокировки живут до конца транзакции.
	end.run()
	return err
}

type txEndKey struct{}

type txEnd struct {
	mu    sync.Mutex
	hooks []func()
}

func (e *txEnd) add(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, fn)
}

func (e *txEnd) run() {
	e.mu.Lock()
	hooks := e.hooks
	e.hooks = nil
	e.mu.Unlock()
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}

type advisoryCall struct {
	class repositories.LockClass
	id    int
}

// fakeAdvisory blocks like a transaction-scoped advisory lock. The lock is
// released when the surrounding fakeTx ends.
type fakeAdvisory struct {
	mu    sync.Mutex
	calls []advisoryCall
	locks map[advisoryCall]*sync.Mutex
}

func (f *fakeAdvisory) Lock(ctx context.Context, _ repositories.SQLExecutor, class repositories.LockClass, id int) error {
	key := advisoryCall{class: class, id: id}
	f.mu.Lock()
	f.calls = append(f.calls, key)
	if f.locks == nil {
		f.locks = map[advisoryCall]*sync.Mutex{}
	}
	m, ok := f.locks[key]
	if !ok {
		m = &sync.Mutex{}
		f.locks[key] = m
	}
	f.mu.Unlock()

	m.Lock()
	if end, ok := ctx.Value(txEndKey{}).(*txEnd); ok {
		end.add(m.Unlock)
	} else {
		m.Unlock()
	}
	return nil
}

func (f *fakeAdvisory) callsFor(class repositories.LockClass) []advisoryCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []advisoryCall
	for _, c := range f.calls {
		if c.class == class {
			out = append(out, c)
		}
	}
	return out
}

type fakeLease struct {
	err      error
	acquired []string
	released int
	mu       sync.Mutex
}

func (f *fakeLease) Acquire(_ context.Context, key string, _ time.Duration) (cache.ReleaseFunc, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.acquired = append(f.acquired, key)
	f.mu.Unlock()
	return func(context.Context) error {
		f.mu.Lock()
		f.released++
		f.mu.Unlock()
		return nil
	}, nil
}

type sentMessage struct {
	room string
	msg  live.Message
}

type fakeHub struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (h *fakeHub) BroadcastToRoom(room string, msg live.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, sentMessage{room: room, msg: msg})
}

func (h *fakeHub) messages() []sentMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]sentMessage(nil), h.sent...)
}

type fakeArchiver struct {
	mu          sync.Mutex
	leaderboard []string
	standings   []string
}

func (a *fakeArchiver) ArchiveLeaderboard(_ context.Context, runID string, board *models.Leaderboard) (*storage.UploadResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := storage.LeaderboardSnapshotKey(board.CompetitionID, runID, board.CalculatedAt)
	a.leaderboard = append(a.leaderboard, key)
	return &storage.UploadResult{Key: key}, nil
}

func (a *fakeArchiver) ArchiveStandings(_ context.Context, runID string, st *models.Standings) (*storage.UploadResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := storage.StandingsSnapshotKey(st.LeagueID, runID, st.CalculatedAt)
	a.standings = append(a.standings, key)
	return &storage.UploadResult{Key: key}, nil
}

type memCache struct {
	mu          sync.Mutex
	boards      map[int]*models.Leaderboard
	standings   map[int]*models.Standings
	hits        int
	invalidated []int
}

func newMemCache() *memCache {
	return &memCache{boards: map[int]*models.Leaderboard{}, standings: map[int]*models.Standings{}}
}

func (c *memCache) GetLeaderboard(_ context.Context, id int) (*models.Leaderboard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.boards[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	c.hits++
	return b, nil
}

func (c *memCache) SetLeaderboard(_ context.Context, b *models.Leaderboard) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.boards[b.CompetitionID] = b
	return nil
}

func (c *memCache) InvalidateLeaderboard(_ context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.boards, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

func (c *memCache) GetStandings(_ context.Context, id int) (*models.Standings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.standings[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	c.hits++
	return st, nil
}

func (c *memCache) SetStandings(_ context.Context, st *models.Standings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.standings[st.LeagueID] = st
	return nil
}

func (c *memCache) InvalidateStandings(_ context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.standings, id)
	return nil
}

// --- repositories ---

type memUserRepo struct{ s *memStore }

func (r memUserRepo) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
		if u.Nickname != nil && existing.Nickname != nil && *existing.Nickname == *u.Nickname {
			return repositories.ErrUserNicknameConflict
		}
	}
	u.ID = r.s.id()
	u.CreatedAt = testNow
	c := *u
	r.s.users[u.ID] = &c
	return nil
}

func (r memUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

type memLeagueRepo struct{ s *memStore }

func (r memLeagueRepo) Create(_ context.Context, _ repositories.SQLExecutor, l *models.League) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.leagues {
		if existing.Name == l.Name && existing.Season == l.Season {
			return repositories.ErrLeagueNameConflict
		}
	}
	l.ID = r.s.id()
	l.CreatedAt = testNow
	c := *l
	r.s.leagues[l.ID] = &c
	return nil
}

func (r memLeagueRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.League, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leagues[id]
	if !ok {
		return nil, repositories.ErrLeagueNotFound
	}
	c := *l
	return &c, nil
}

func (r memLeagueRepo) ListByMember(_ context.Context, userID int) ([]models.League, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.League{}
	for id, m := range r.s.members {
		if m[userID] {
			out = append(out, *r.s.leagues[id])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memLeagueRepo) AddMember(_ context.Context, _ repositories.SQLExecutor, leagueID, userID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.leagues[leagueID]; !ok {
		return repositories.ErrLeagueMemberInvalid
	}
	if r.s.members[leagueID] == nil {
		r.s.members[leagueID] = map[int]bool{}
	}
	if r.s.members[leagueID][userID] {
		return repositories.ErrLeagueMemberExists
	}
	r.s.members[leagueID][userID] = true
	return nil
}

func (r memLeagueRepo) IsMember(_ context.Context, leagueID, userID int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.members[leagueID][userID], nil
}

func (r memLeagueRepo) ListMembers(_ context.Context, leagueID int) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.User{}
	for id := range r.s.members[leagueID] {
		if u, ok := r.s.users[id]; ok {
			out = append(out, *u)
		} else {
			out = append(out, models.User{ID: id})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memCompetitionRepo struct{ s *memStore }

func (r memCompetitionRepo) Create(_ context.Context, c *models.Competition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.competitions {
		if existing.LeagueID == c.LeagueID && existing.Week == c.Week {
			return repositories.ErrCompetitionWeekConflict
		}
	}
	c.ID = r.s.id()
	c.CreatedAt = testNow
	cp := *c
	r.s.competitions[c.ID] = &cp
	return nil
}

func (r memCompetitionRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Competition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.competitions[id]
	if !ok {
		return nil, repositories.ErrCompetitionNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memCompetitionRepo) ListByLeague(_ context.Context, _ repositories.SQLExecutor, leagueID int, status *models.CompetitionStatus) ([]models.Competition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Competition{}
	for _, c := range r.s.competitions {
		if c.LeagueID != leagueID || (status != nil && c.Status != *status) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out, nil
}

func (r memCompetitionRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.CompetitionStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.competitions[id]
	if !ok {
		return repositories.ErrCompetitionNotFound
	}
	c.Status = status
	return nil
}

func (r memCompetitionRepo) ListDueForLock(_ context.Context, now time.Time) ([]*models.Competition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Competition
	for _, c := range r.s.competitions {
		if c.Status == models.CompetitionActive && c.LockDeadline.Before(now) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memGameRepo struct{ s *memStore }

func (r memGameRepo) Create(_ context.Context, g *models.Game) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.competitions[g.CompetitionID]; !ok {
		return repositories.ErrGameCompetitionInvalid
	}
	g.ID = r.s.id()
	g.UpdatedAt = testNow
	cp := *g
	r.s.games[g.ID] = &cp
	return nil
}

func (r memGameRepo) GetByID(_ context.Context, id int) (*models.Game, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	cp := *g
	return &cp, nil
}

func (r memGameRepo) ListByCompetition(_ context.Context, _ repositories.SQLExecutor, competitionID int) ([]models.Game, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Game{}
	for _, g := range r.s.games {
		if g.CompetitionID == competitionID {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memGameRepo) UpdateResult(_ context.Context, g *models.Game) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.games[g.ID]
	if !ok {
		return repositories.ErrGameNotFound
	}
	existing.Status = g.Status
	existing.HomeScore = g.HomeScore
	existing.AwayScore = g.AwayScore
	existing.UpdatedAt = testNow
	g.UpdatedAt = testNow
	return nil
}

type memPickRepo struct{ s *memStore }

func (r memPickRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, p *models.Pick) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.games[p.GameID]; !ok {
		return repositories.ErrPickGameInvalid
	}
	for _, existing := range r.s.picks {
		if existing.GameID == p.GameID && existing.UserID == p.UserID {
			existing.PickedTeam = p.PickedTeam
			existing.Confidence = p.Confidence
			existing.Correct = nil
			existing.PointsEarned = nil
			existing.UpdatedAt = testNow
			*p = *clonePick(existing)
			return nil
		}
	}
	p.ID = r.s.id()
	p.CreatedAt, p.UpdatedAt = testNow, testNow
	r.s.picks[p.ID] = clonePick(p)
	return nil
}

func (r memPickRepo) GetByID(_ context.Context, id int) (*models.Pick, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.picks[id]
	if !ok {
		return nil, repositories.ErrPickNotFound
	}
	return clonePick(p), nil
}

func (r memPickRepo) list(match func(*models.Pick) bool) []*models.Pick {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Pick{}
	for _, p := range r.s.picks {
		if match(p) {
			out = append(out, clonePick(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memPickRepo) ListByCompetition(_ context.Context, _ repositories.SQLExecutor, competitionID int) ([]*models.Pick, error) {
	return r.list(func(p *models.Pick) bool { return p.CompetitionID == competitionID }), nil
}

func (r memPickRepo) ListByCompetitionAndUser(_ context.Context, competitionID, userID int) ([]*models.Pick, error) {
	return r.list(func(p *models.Pick) bool { return p.CompetitionID == competitionID && p.UserID == userID }), nil
}

func (r memPickRepo) CountByCompetitionAndUser(ctx context.Context, exec repositories.SQLExecutor, competitionID, userID int) (int, error) {
	picks, _ := r.ListByCompetitionAndUser(ctx, competitionID, userID)
	return len(picks), nil
}

func (r memPickRepo) UpdateGrades(_ context.Context, _ repositories.SQLExecutor, picks []*models.Pick) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range picks {
		existing, ok := r.s.picks[p.ID]
		if !ok || existing.PickedTeam != p.PickedTeam || existing.Confidence != p.Confidence {
			continue
		}
		graded := clonePick(p)
		existing.Correct = graded.Correct
		existing.PointsEarned = graded.PointsEarned
	}
	return nil
}

func (r memPickRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.picks[id]; !ok {
		return repositories.ErrPickNotFound
	}
	delete(r.s.picks, id)
	return nil
}

type memScoreRepo struct{ s *memStore }

func (r memScoreRepo) UpsertBatch(_ context.Context, _ repositories.SQLExecutor, scores []*models.Score) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failScoreUpsert != nil && len(scores) > 0 {
		return r.s.failScoreUpsert
	}
	for _, sc := range scores {
		key := pairKey{sc.CompetitionID, sc.UserID}
		if existing, ok := r.s.scores[key]; ok {
			sc.ID = existing.ID
		} else {
			sc.ID = r.s.id()
		}
		sc.UpdatedAt = testNow
		r.s.scores[key] = cloneScore(sc)
	}
	return nil
}

func sortScores(out []models.Score) {
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.CorrectPicks != b.CorrectPicks {
			return a.CorrectPicks > b.CorrectPicks
		}
		return a.UserID < b.UserID
	})
}

func (r memScoreRepo) ListByCompetition(_ context.Context, _ repositories.SQLExecutor, competitionID int) ([]models.Score, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Score{}
	for _, sc := range r.s.scores {
		if sc.CompetitionID == competitionID {
			out = append(out, *cloneScore(sc))
		}
	}
	sortScores(out)
	return out, nil
}

func (r memScoreRepo) ListByCompetitions(_ context.Context, _ repositories.SQLExecutor, ids []int) ([]models.Score, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := map[int]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []models.Score{}
	for _, sc := range r.s.scores {
		if want[sc.CompetitionID] {
			out = append(out, *cloneScore(sc))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompetitionID != out[j].CompetitionID {
			return out[i].CompetitionID < out[j].CompetitionID
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (r memScoreRepo) DeleteByCompetitionAndUser(_ context.Context, _ repositories.SQLExecutor, competitionID, userID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.scores, pairKey{competitionID, userID})
	return nil
}

type memStandingRepo struct{ s *memStore }

func (r memStandingRepo) UpsertBatch(_ context.Context, _ repositories.SQLExecutor, rows []*models.SeasonStanding) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range rows {
		key := pairKey{st.LeagueID, st.UserID}
		if existing, ok := r.s.standings[key]; ok {
			st.ID = existing.ID
		} else {
			st.ID = r.s.id()
		}
		st.UpdatedAt = testNow
		r.s.standings[key] = cloneStanding(st)
	}
	return nil
}

func (r memStandingRepo) ListByLeague(_ context.Context, _ repositories.SQLExecutor, leagueID int) ([]models.SeasonStanding, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.SeasonStanding{}
	for _, st := range r.s.standings {
		if st.LeagueID == leagueID {
			out = append(out, *cloneStanding(st))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.CorrectPicks != b.CorrectPicks {
			return a.CorrectPicks > b.CorrectPicks
		}
		return a.UserID < b.UserID
	})
	return out, nil
}

func (r memStandingRepo) DeleteStale(_ context.Context, _ repositories.SQLExecutor, leagueID int, keep []int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	keepSet := map[int]bool{}
	for _, id := range keep {
		keepSet[id] = true
	}
	var n int64
	for key, st := range r.s.standings {
		if st.LeagueID == leagueID && !keepSet[st.UserID] {
			delete(r.s.standings, key)
			n++
		}
	}
	return n, nil
}

// --- wiring ---

type scoringFixture struct {
	store    *memStore
	tx       *fakeTx
	advisory *fakeAdvisory
	lease    *fakeLease
	hub      *fakeHub
	cache    *memCache
	archiver *fakeArchiver
	svc      *scoringService
}

func newScoringFixture() *scoringFixture {
	store := newMemStore()
	f := &scoringFixture{
		store:    store,
		tx:       &fakeTx{store: store},
		advisory: &fakeAdvisory{},
		lease:    &fakeLease{},
		hub:      &fakeHub{},
		cache:    newMemCache(),
		archiver: &fakeArchiver{},
	}
	svc := NewScoringService(ScoringServiceDeps{
		Tx:              f.tx,
		Advisory:        f.advisory,
		CompetitionRepo: memCompetitionRepo{store},
		LeagueRepo:      memLeagueRepo{store},
		GameRepo:        memGameRepo{store},
		PickRepo:        memPickRepo{store},
		ScoreRepo:       memScoreRepo{store},
		StandingRepo:    memStandingRepo{store},
		Cache:           f.cache,
		Lease:           f.lease,
		Hub:             f.hub,
		Archiver:        f.archiver,
		Logger:          discardLogger(),
	}).(*scoringService)
	svc.now = func() time.Time { return testNow }
	f.svc = svc
	return f
}

var errDiskFull = errors.New("disk full")
