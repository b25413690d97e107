// Package scoring grades picks against final results, aggregates them into
// per-competition scores and season standings, and assigns ranks.
//
// Everything here is pure: callers load the rows, call these functions and
// persist what comes back inside a single transaction.
package scoring

import (
	"errors"
	"fmt"

	"github.com/Dosada05/pickem-league/models"
)

// ErrInconsistentState marks an integrity violation in the input rows. A
// calculation that hits it must be aborted without writing anything.
var ErrInconsistentState = errors.New("inconsistent scoring state")

// GradePick overwrites pick.Correct and pick.PointsEarned from the current
// state of game and reports whether either field changed.
//
// A final game grades the pick: correct only when the picked team scored
// strictly more, so a tie is a miss for both sides. Any other game status
// clears both fields.
func GradePick(pick *models.Pick, game models.Game) (bool, error) {
	if pick.GameID != game.ID {
		return false, fmt.Errorf("%w: pick %d graded against game %d, expected game %d",
			ErrInconsistentState, pick.ID, game.ID, pick.GameID)
	}
	if pick.CompetitionID != game.CompetitionID {
		return false, fmt.Errorf("%w: pick %d belongs to competition %d but game %d belongs to competition %d",
			ErrInconsistentState, pick.ID, pick.CompetitionID, game.ID, game.CompetitionID)
	}
	if !game.Involves(pick.PickedTeam) {
		return false, fmt.Errorf("%w: pick %d names team %q which does not play in game %d",
			ErrInconsistentState, pick.ID, pick.PickedTeam, game.ID)
	}

	if game.Status != models.GameFinal {
		changed := pick.Correct != nil || pick.PointsEarned != nil
		pick.Correct = nil
		pick.PointsEarned = nil
		return changed, nil
	}

	if game.HomeScore == nil || game.AwayScore == nil {
		return false, fmt.Errorf("%w: game %d is final without a score", ErrInconsistentState, game.ID)
	}

	var winner string
	switch {
	case *game.HomeScore > *game.AwayScore:
		winner = game.HomeTeam
	case *game.AwayScore > *game.HomeScore:
		winner = game.AwayTeam
	}

	correct := winner != "" && pick.PickedTeam == winner
	points := 0
	if correct {
		points = pick.Confidence
	}

	changed := pick.Correct == nil || *pick.Correct != correct ||
		pick.PointsEarned == nil || *pick.PointsEarned != points
	pick.Correct = &correct
	pick.PointsEarned = &points
	return changed, nil
}

// GradeCompetition grades every pick against the games of one competition and
// returns the picks whose derived fields changed. A pick that references a game
// outside the given set fails the whole batch.
func GradeCompetition(picks []*models.Pick, games []models.Game) ([]*models.Pick, error) {
	gamesByID := make(map[int]models.Game, len(games))
	for _, g := range games {
		gamesByID[g.ID] = g
	}

	changed := make([]*models.Pick, 0, len(picks))
	for _, p := range picks {
		game, ok := gamesByID[p.GameID]
		if !ok {
			return nil, fmt.Errorf("%w: pick %d references game %d outside competition %d",
				ErrInconsistentState, p.ID, p.GameID, p.CompetitionID)
		}
		didChange, err := GradePick(p, game)
		if err != nil {
			return nil, err
		}
		if didChange {
			changed = append(changed, p)
		}
	}
	return changed, nil
}

// CountFinal returns how many of the games have a final result.
func CountFinal(games []models.Game) int {
	n := 0
	for _, g := range games {
		if g.Status == models.GameFinal {
			n++
		}
	}
	return n
}
