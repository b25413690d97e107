package services

import (
	"strings"

	"github.com/Dosada05/pickem-league/models"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func normalizeTeam(team string) string {
	return strings.ToUpper(strings.TrimSpace(team))
}

func isValidCompetitionStatus(status models.CompetitionStatus) bool {
	switch status {
	case models.CompetitionUpcoming, models.CompetitionActive, models.CompetitionLocked,
		models.CompetitionCompleted, models.CompetitionCancelled:
		return true
	}
	return false
}

func isValidStatusTransition(current, next models.CompetitionStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.CompetitionStatus][]models.CompetitionStatus{
		models.CompetitionUpcoming:  {models.CompetitionActive, models.CompetitionCancelled},
		models.CompetitionActive:    {models.CompetitionLocked, models.CompetitionCancelled},
		models.CompetitionLocked:    {models.CompetitionCompleted, models.CompetitionCancelled},
		models.CompetitionCompleted: {},
		models.CompetitionCancelled: {},
	}
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}

// canManageLeague: владелец лиги или администратор.
func canManageLeague(league *models.League, userID int, role models.UserRole) bool {
	return role == models.RoleAdmin || (league != nil && league.OwnerID == userID)
}
