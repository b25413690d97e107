package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/pickem-league/models"
	"github.com/Dosada05/pickem-league/services"
)

type CompetitionHandler struct {
	competitionService services.CompetitionService
	gameService        services.GameService
}

func NewCompetitionHandler(competitionService services.CompetitionService, gameService services.GameService) *CompetitionHandler {
	return &CompetitionHandler{
		competitionService: competitionService,
		gameService:        gameService,
	}
}

// CreateCompetition
// @Summary Создать соревнование (неделю) в лиге
// @Tags competitions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param leagueID path int true "ID лиги"
// @Param input body services.CreateCompetitionInput true "Неделя и дедлайн"
// @Success 201 {object} models.Competition
// @Router /leagues/{leagueID}/competitions [post]
func (h *CompetitionHandler) CreateCompetition(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	leagueID, err := parseIDParam(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateCompetitionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competition, err := h.competitionService.CreateCompetition(r.Context(), actor, leagueID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"competition": competition}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListCompetitions
// @Summary Соревнования лиги
// @Tags competitions
// @Produce json
// @Security BearerAuth
// @Param leagueID path int true "ID лиги"
// @Param status query string false "Фильтр по статусу"
// @Success 200 {array} models.Competition
// @Router /leagues/{leagueID}/competitions [get]
func (h *CompetitionHandler) ListCompetitions(w http.ResponseWriter, r *http.Request) {
	leagueID, err := parseIDParam(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var status *models.CompetitionStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.CompetitionStatus(raw)
		status = &s
	}

	competitions, err := h.competitionService.ListCompetitions(r.Context(), leagueID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitions": competitions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CompetitionHandler) GetCompetition(w http.ResponseWriter, r *http.Request) {
	competitionID, err := parseIDParam(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competition, err := h.competitionService.GetCompetition(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competition": competition}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStatus
// @Summary Сменить статус соревнования
// @Tags competitions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param competitionID path int true "ID соревнования"
// @Success 200 {object} models.Competition
// @Router /competitions/{competitionID}/status [patch]
func (h *CompetitionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	competitionID, err := parseIDParam(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Status models.CompetitionStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Status == "" {
		badRequestResponse(w, r, errors.New("status is required"))
		return
	}

	competition, err := h.competitionService.UpdateStatus(r.Context(), actor, competitionID, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competition": competition}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateGame
// @Summary Добавить матч в соревнование
// @Tags games
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param competitionID path int true "ID соревнования"
// @Param input body services.CreateGameInput true "Команды и время начала"
// @Success 201 {object} models.Game
// @Router /competitions/{competitionID}/games [post]
func (h *CompetitionHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	competitionID, err := parseIDParam(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateGameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.CreateGame(r.Context(), actor, competitionID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CompetitionHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	competitionID, err := parseIDParam(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	games, err := h.gameService.ListGames(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateGameResult
// @Summary Внести результат матча
// @Tags games
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param gameID path int true "ID матча"
// @Param input body services.UpdateGameResultInput true "Статус и счёт"
// @Success 200 {object} models.Game
// @Router /games/{gameID}/result [put]
func (h *CompetitionHandler) UpdateGameResult(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	gameID, err := parseIDParam(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateGameResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.UpdateResult(r.Context(), actor, gameID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
