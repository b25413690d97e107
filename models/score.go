package models

import "time"

// Score: сводка пользователя по одному соревнованию (неделе).
type Score struct {
	ID            int       `json:"-" db:"id"`
	CompetitionID int       `json:"competition_id" db:"competition_id"`
	UserID        int       `json:"user_id" db:"user_id"`
	TotalPoints   int       `json:"total_points" db:"total_points"`
	CorrectPicks  int       `json:"correct_picks" db:"correct_picks"`
	TotalPicks    int       `json:"total_picks" db:"total_picks"`
	Rank          *int      `json:"rank" db:"rank"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Leaderboard is the ranked result of a competition calculation.
type Leaderboard struct {
	CompetitionID int       `json:"competition_id"`
	Status        string    `json:"status"`
	Provisional   bool      `json:"provisional"`
	CalculatedAt  time.Time `json:"calculated_at"`
	Entries       []Score   `json:"entries"`
}
