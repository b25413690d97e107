package models

import "time"

const (
	MinConfidence = 1
	MaxConfidence = 20
)

// Pick is a user's prediction for one game. Correct and PointsEarned stay nil until the game is final.
type Pick struct {
	ID            int       `json:"id" db:"id"`
	CompetitionID int       `json:"competition_id" db:"competition_id"`
	GameID        int       `json:"game_id" db:"game_id"`
	UserID        int       `json:"user_id" db:"user_id"`
	PickedTeam    string    `json:"picked_team" db:"picked_team"`
	Confidence    int       `json:"confidence" db:"confidence"`
	Correct       *bool     `json:"correct" db:"correct"`
	PointsEarned  *int      `json:"points_earned" db:"points_earned"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// IsGraded reports whether the pick carries a grading result.
func (p Pick) IsGraded() bool {
	return p.Correct != nil && p.PointsEarned != nil
}
