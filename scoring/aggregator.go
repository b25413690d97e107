package scoring

import (
	"math"
	"slices"

	"github.com/Dosada05/pickem-league/models"
)

// AggregateCompetition builds one Score per user that has at least one pick.
// Ungraded picks count toward TotalPicks and contribute zero points.
// Ranks are left nil; the result is ordered by user id.
func AggregateCompetition(competitionID int, picks []*models.Pick) []*models.Score {
	byUser := make(map[int]*models.Score)
	for _, p := range picks {
		s, ok := byUser[p.UserID]
		if !ok {
			s = &models.Score{CompetitionID: competitionID, UserID: p.UserID}
			byUser[p.UserID] = s
		}
		s.TotalPicks++
		if p.PointsEarned != nil {
			s.TotalPoints += *p.PointsEarned
		}
		if p.Correct != nil && *p.Correct {
			s.CorrectPicks++
		}
	}
	return sortedByUser(byUser, func(s *models.Score) int { return s.UserID })
}

// AggregateSeason folds the scores of a league's completed competitions into
// season standings. Scores of competitions that are not completed, or that
// belong to another league, are ignored.
func AggregateSeason(leagueID int, competitions []models.Competition, scores []models.Score) []*models.SeasonStanding {
	counted := make(map[int]bool, len(competitions))
	for _, c := range competitions {
		if c.LeagueID == leagueID && c.Status == models.CompetitionCompleted {
			counted[c.ID] = true
		}
	}

	byUser := make(map[int]*models.SeasonStanding)
	weeks := make(map[int]map[int]struct{})
	for _, sc := range scores {
		if !counted[sc.CompetitionID] {
			continue
		}
		st, ok := byUser[sc.UserID]
		if !ok {
			st = &models.SeasonStanding{LeagueID: leagueID, UserID: sc.UserID}
			byUser[sc.UserID] = st
			weeks[sc.UserID] = make(map[int]struct{})
		}
		st.TotalPoints += sc.TotalPoints
		st.CorrectPicks += sc.CorrectPicks
		st.TotalPicks += sc.TotalPicks
		weeks[sc.UserID][sc.CompetitionID] = struct{}{}
	}

	for userID, st := range byUser {
		st.WeeksParticipated = len(weeks[userID])
		st.AveragePointsPerWeek = AveragePerWeek(st.TotalPoints, st.WeeksParticipated)
	}
	return sortedByUser(byUser, func(s *models.SeasonStanding) int { return s.UserID })
}

// AveragePerWeek returns total/weeks rounded to two decimals, or nil when no
// week was played.
func AveragePerWeek(total, weeks int) *float64 {
	if weeks <= 0 {
		return nil
	}
	avg := math.Round(float64(total)/float64(weeks)*100) / 100
	return &avg
}

func sortedByUser[T any](m map[int]T, userID func(T) int) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int { return userID(a) - userID(b) })
	return out
}
