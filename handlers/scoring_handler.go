package handlers

import (
	"net/http"

	"github.com/Dosada05/pickem-league/services"
)

// ScoringHandler запускает пересчёт очков и отдаёт таблицы.
type ScoringHandler struct {
	scoringService services.ScoringService
}

func NewScoringHandler(scoringService services.ScoringService) *ScoringHandler {
	return &ScoringHandler{scoringService: scoringService}
}

// CalculateCompetition
// @Summary Пересчитать очки соревнования
// @Description Оценивает прогнозы по финальным матчам, суммирует и ранжирует участников в одной транзакции.
// @Tags scores
// @Produce json
// @Security BearerAuth
// @Param competitionID path int true "ID соревнования"
// @Success 200 {object} models.Leaderboard
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /competitions/{competitionID}/scores/calculate [post]
func (h *ScoringHandler) CalculateCompetition(w http.ResponseWriter, r *http.Request) {
	competitionID, err := parseIDParam(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	board, err := h.scoringService.CalculateCompetition(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": board}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetLeaderboard
// @Summary Таблица соревнования
// @Tags scores
// @Produce json
// @Param competitionID path int true "ID соревнования"
// @Success 200 {object} models.Leaderboard
// @Router /competitions/{competitionID}/scores [get]
func (h *ScoringHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	competitionID, err := parseIDParam(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	board, err := h.scoringService.GetLeaderboard(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": board}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CalculateSeason
// @Summary Пересчитать сезонную таблицу лиги
// @Description Учитываются только завершённые соревнования.
// @Tags standings
// @Produce json
// @Security BearerAuth
// @Param leagueID path int true "ID лиги"
// @Success 200 {object} models.Standings
// @Router /leagues/{leagueID}/standings/calculate [post]
func (h *ScoringHandler) CalculateSeason(w http.ResponseWriter, r *http.Request) {
	leagueID, err := parseIDParam(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.scoringService.CalculateSeason(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScoringHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	leagueID, err := parseIDParam(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.scoringService.GetStandings(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
