package models

import "time"

// League объединяет участников, соревнующихся в течение сезона.
type League struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Season    int       `json:"season" db:"season"`
	OwnerID   int       `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Members []User `json:"members,omitempty" db:"-"`
}

type LeagueMember struct {
	LeagueID int       `json:"league_id" db:"league_id"`
	UserID   int       `json:"user_id" db:"user_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}
