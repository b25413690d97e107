package models

import "time"

type GameStatus string

const (
	GameScheduled  GameStatus = "scheduled"
	GameInProgress GameStatus = "in_progress"
	GameFinal      GameStatus = "final"
	GamePostponed  GameStatus = "postponed"
	GameCancelled  GameStatus = "cancelled"
)

func (s GameStatus) Valid() bool {
	switch s {
	case GameScheduled, GameInProgress, GameFinal, GamePostponed, GameCancelled:
		return true
	}
	return false
}

type Game struct {
	ID            int        `json:"id" db:"id"`
	CompetitionID int        `json:"competition_id" db:"competition_id"`
	HomeTeam      string     `json:"home_team" db:"home_team"`
	AwayTeam      string     `json:"away_team" db:"away_team"`
	HomeScore     *int       `json:"home_score,omitempty" db:"home_score"`
	AwayScore     *int       `json:"away_score,omitempty" db:"away_score"`
	Status        GameStatus `json:"status" db:"status"`
	KickoffAt     time.Time  `json:"kickoff_at" db:"kickoff_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// OpenForPicks reports whether the result is still unknown. Postponed games
// stay open until they are played.
func (g Game) OpenForPicks() bool {
	return g.Status == GameScheduled || g.Status == GamePostponed
}

// Involves reports whether team plays in this game.
func (g Game) Involves(team string) bool {
	return team == g.HomeTeam || team == g.AwayTeam
}
