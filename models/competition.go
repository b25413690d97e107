package models

import "time"

// CompetitionStatus соответствует ENUM competition_status в БД.
type CompetitionStatus string

const (
	CompetitionUpcoming  CompetitionStatus = "upcoming"
	CompetitionActive    CompetitionStatus = "active"
	CompetitionLocked    CompetitionStatus = "locked"
	CompetitionCompleted CompetitionStatus = "completed"
	CompetitionCancelled CompetitionStatus = "cancelled"
)

// Competition is one week of picks inside a league.
type Competition struct {
	ID           int               `json:"id" db:"id"`
	LeagueID     int               `json:"league_id" db:"league_id"`
	Name         string            `json:"name" db:"name"`
	Week         int               `json:"week" db:"week"`
	LockDeadline time.Time         `json:"lock_deadline" db:"lock_deadline"`
	Status       CompetitionStatus `json:"status" db:"status"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`

	Games []Game `json:"games,omitempty" db:"-"`
}

// AcceptsPicks reports whether picks may still be created or edited at the given moment.
func (c Competition) AcceptsPicks(now time.Time) bool {
	switch c.Status {
	case CompetitionLocked, CompetitionCompleted, CompetitionCancelled:
		return false
	}
	return !now.After(c.LockDeadline)
}

// RanksFinal reports whether the competition ranks are no longer provisional.
func (c Competition) RanksFinal() bool {
	return c.Status == CompetitionCompleted
}
