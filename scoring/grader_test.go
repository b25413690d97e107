package scoring

import (
	"errors"
	"testing"

	"github.com/Dosada05/pickem-league/models"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func finalGame(id, home, away int) models.Game {
	return models.Game{
		ID: id, CompetitionID: 1, HomeTeam: "KC", AwayTeam: "DET",
		HomeScore: intPtr(home), AwayScore: intPtr(away), Status: models.GameFinal,
	}
}

func newPick(id, gameID, userID int, team string, confidence int) *models.Pick {
	return &models.Pick{ID: id, CompetitionID: 1, GameID: gameID, UserID: userID, PickedTeam: team, Confidence: confidence}
}

func TestGradePick(t *testing.T) {
	tests := []struct {
		name        string
		game        models.Game
		team        string
		wantCorrect *bool
		wantPoints  *int
	}{
		{"home win picked home", finalGame(10, 24, 17), "KC", boolPtr(true), intPtr(7)},
		{"home win picked away", finalGame(10, 24, 17), "DET", boolPtr(false), intPtr(0)},
		{"away win picked away", finalGame(10, 3, 30), "DET", boolPtr(true), intPtr(7)},
		{"tie picked home", finalGame(10, 14, 14), "KC", boolPtr(false), intPtr(0)},
		{"tie picked away", finalGame(10, 14, 14), "DET", boolPtr(false), intPtr(0)},
		{"scheduled", models.Game{ID: 10, CompetitionID: 1, HomeTeam: "KC", AwayTeam: "DET", Status: models.GameScheduled}, "KC", nil, nil},
		{"in progress with score", models.Game{ID: 10, CompetitionID: 1, HomeTeam: "KC", AwayTeam: "DET", HomeScore: intPtr(7), AwayScore: intPtr(0), Status: models.GameInProgress}, "KC", nil, nil},
		{"postponed", models.Game{ID: 10, CompetitionID: 1, HomeTeam: "KC", AwayTeam: "DET", Status: models.GamePostponed}, "KC", nil, nil},
		{"cancelled", models.Game{ID: 10, CompetitionID: 1, HomeTeam: "KC", AwayTeam: "DET", Status: models.GameCancelled}, "DET", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPick(1, 10, 100, tt.team, 7)
			if _, err := GradePick(p, tt.game); err != nil {
				t.Fatalf("GradePick returned error: %v", err)
			}
			if !equalBool(p.Correct, tt.wantCorrect) {
				t.Errorf("correct = %v, want %v", fmtBool(p.Correct), fmtBool(tt.wantCorrect))
			}
			if !equalInt(p.PointsEarned, tt.wantPoints) {
				t.Errorf("points = %v, want %v", fmtInt(p.PointsEarned), fmtInt(tt.wantPoints))
			}
		})
	}
}

func TestGradePickIsIdempotent(t *testing.T) {
	p := newPick(1, 10, 100, "KC", 5)
	g := finalGame(10, 24, 17)

	changed, err := GradePick(p, g)
	if err != nil || !changed {
		t.Fatalf("first grade: changed=%v err=%v, want changed=true", changed, err)
	}
	changed, err = GradePick(p, g)
	if err != nil || changed {
		t.Fatalf("second grade: changed=%v err=%v, want changed=false", changed, err)
	}
	if *p.PointsEarned != 5 {
		t.Errorf("points = %d, want 5", *p.PointsEarned)
	}
}

func TestGradePickCorrection(t *testing.T) {
	p := newPick(1, 10, 100, "KC", 9)
	if _, err := GradePick(p, finalGame(10, 24, 17)); err != nil {
		t.Fatal(err)
	}
	changed, err := GradePick(p, finalGame(10, 17, 24))
	if err != nil {
		t.Fatal(err)
	}
	if !changed || *p.Correct || *p.PointsEarned != 0 {
		t.Errorf("after correction: changed=%v correct=%v points=%d", changed, *p.Correct, *p.PointsEarned)
	}

	// A final game moved back to in-progress clears the grade.
	reopened := finalGame(10, 17, 24)
	reopened.Status = models.GameInProgress
	if changed, _ := GradePick(p, reopened); !changed || p.Correct != nil || p.PointsEarned != nil {
		t.Errorf("reopened game should clear grade, got correct=%v points=%v", fmtBool(p.Correct), fmtInt(p.PointsEarned))
	}
}

func TestGradePickInconsistent(t *testing.T) {
	tests := []struct {
		name string
		pick *models.Pick
		game models.Game
	}{
		{"wrong game", newPick(1, 11, 100, "KC", 3), finalGame(10, 1, 0)},
		{"other competition", &models.Pick{ID: 1, CompetitionID: 2, GameID: 10, PickedTeam: "KC", Confidence: 3}, finalGame(10, 1, 0)},
		{"team not in game", newPick(1, 10, 100, "BUF", 3), finalGame(10, 1, 0)},
		{"final without score", newPick(1, 10, 100, "KC", 3), models.Game{ID: 10, CompetitionID: 1, HomeTeam: "KC", AwayTeam: "DET", Status: models.GameFinal}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GradePick(tt.pick, tt.game)
			if !errors.Is(err, ErrInconsistentState) {
				t.Fatalf("err = %v, want ErrInconsistentState", err)
			}
		})
	}
}

func TestGradeCompetition(t *testing.T) {
	games := []models.Game{
		finalGame(10, 24, 17),
		{ID: 11, CompetitionID: 1, HomeTeam: "BUF", AwayTeam: "MIA", Status: models.GameScheduled},
	}
	picks := []*models.Pick{
		newPick(1, 10, 100, "KC", 10),
		newPick(2, 11, 100, "BUF", 3),
		newPick(3, 10, 200, "DET", 4),
	}

	changed, err := GradeCompetition(picks, games)
	if err != nil {
		t.Fatalf("GradeCompetition: %v", err)
	}
	if len(changed) != 2 {
		t.Fatalf("changed = %d picks, want 2", len(changed))
	}
	if picks[1].Correct != nil || picks[1].PointsEarned != nil {
		t.Errorf("pick on scheduled game must stay ungraded")
	}

	changed, err = GradeCompetition(picks, games)
	if err != nil || len(changed) != 0 {
		t.Errorf("second run: changed=%d err=%v, want 0 and nil", len(changed), err)
	}
}

func TestGradeCompetitionUnknownGame(t *testing.T) {
	picks := []*models.Pick{newPick(1, 99, 100, "KC", 1)}
	if _, err := GradeCompetition(picks, []models.Game{finalGame(10, 1, 0)}); !errors.Is(err, ErrInconsistentState) {
		t.Fatalf("err = %v, want ErrInconsistentState", err)
	}
}

func TestCountFinal(t *testing.T) {
	games := []models.Game{finalGame(1, 1, 0), {ID: 2, Status: models.GameScheduled}, finalGame(3, 2, 2)}
	if got := CountFinal(games); got != 2 {
		t.Errorf("CountFinal = %d, want 2", got)
	}
}

func equalBool(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtBool(b *bool) any {
	if b == nil {
		return "null"
	}
	return *b
}

func fmtInt(i *int) any {
	if i == nil {
		return "null"
	}
	return *i
}
