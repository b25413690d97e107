package models

import "time"

// SeasonStanding aggregates a user's scores across the completed competitions of a league.
type SeasonStanding struct {
	ID                   int       `json:"-" db:"id"`
	LeagueID             int       `json:"league_id" db:"league_id"`
	UserID               int       `json:"user_id" db:"user_id"`
	TotalPoints          int       `json:"total_points" db:"total_points"`
	WeeksParticipated    int       `json:"weeks_participated" db:"weeks_participated"`
	CorrectPicks         int       `json:"correct_picks" db:"correct_picks"`
	TotalPicks           int       `json:"total_picks" db:"total_picks"`
	AveragePointsPerWeek *float64  `json:"average_points_per_week" db:"average_points_per_week"`
	Rank                 *int      `json:"rank" db:"rank"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

type Standings struct {
	LeagueID              int              `json:"league_id"`
	CompletedCompetitions int              `json:"completed_competitions"`
	CalculatedAt          time.Time        `json:"calculated_at"`
	Entries               []SeasonStanding `json:"entries"`
}
