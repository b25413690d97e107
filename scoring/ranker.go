package scoring

import (
	"cmp"
	"slices"

	"github.com/Dosada05/pickem-league/models"
)

// Key is what a row is ranked by.
type Key struct {
	TotalPoints  int
	CorrectPicks int
	UserID       int
}

// compareKeys orders by points desc, then correct picks desc, then user id asc.
func compareKeys(a, b Key) int {
	if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
		return c
	}
	if c := cmp.Compare(b.CorrectPicks, a.CorrectPicks); c != 0 {
		return c
	}
	return cmp.Compare(a.UserID, b.UserID)
}

// AssignRanks sorts rows into leaderboard order and assigns standard
// competition ranks (1, 2, 2, 4). Rows tie when both points and correct picks
// are equal; the user id only fixes their order in the slice.
func AssignRanks[T any](rows []T, key func(T) Key, setRank func(T, int)) {
	slices.SortStableFunc(rows, func(a, b T) int { return compareKeys(key(a), key(b)) })

	rank := 0
	for i, row := range rows {
		k := key(row)
		if i == 0 {
			rank = 1
		} else if prev := key(rows[i-1]); prev.TotalPoints != k.TotalPoints || prev.CorrectPicks != k.CorrectPicks {
			rank = i + 1
		}
		setRank(row, rank)
	}
}

// RankScores ranks competition scores in place.
func RankScores(scores []*models.Score) {
	AssignRanks(scores,
		func(s *models.Score) Key { return Key{s.TotalPoints, s.CorrectPicks, s.UserID} },
		func(s *models.Score, r int) { s.Rank = &r },
	)
}

// RankStandings ranks season standings in place.
func RankStandings(standings []*models.SeasonStanding) {
	AssignRanks(standings,
		func(s *models.SeasonStanding) Key { return Key{s.TotalPoints, s.CorrectPicks, s.UserID} },
		func(s *models.SeasonStanding, r int) { s.Rank = &r },
	)
}
