package services

import "github.com/Dosada05/pickem-league/models"

// Actor is the authenticated user on whose behalf an operation runs.
type Actor struct {
	UserID int
	Role   models.UserRole
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }
