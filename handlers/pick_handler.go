package handlers

import (
	"net/http"

	"github.com/Dosada05/pickem-league/services"
)

type PickHandler struct {
	pickService services.PickService
}

func NewPickHandler(pickService services.PickService) *PickHandler {
	return &PickHandler{pickService: pickService}
}

// SubmitPick
// @Summary Сделать или изменить прогноз на матч
// @Tags picks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param competitionID path int true "ID соревнования"
// @Param input body services.SubmitPickInput true "Матч, команда, уверенность 1-20"
// @Success 200 {object} models.Pick
// @Router /competitions/{competitionID}/picks [post]
func (h *PickHandler) SubmitPick(w http.ResponseWriter, r *http.Request) {
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

	var input services.SubmitPickInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pick, err := h.pickService.SubmitPick(r.Context(), actor, competitionID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"pick": pick}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PickHandler) ListMyPicks(w http.ResponseWriter, r *http.Request) {
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

	picks, err := h.pickService.ListMyPicks(r.Context(), actor, competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"picks": picks}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeletePick
// @Summary Удалить свой прогноз до дедлайна
// @Tags picks
// @Security BearerAuth
// @Param pickID path int true "ID прогноза"
// @Success 204
// @Router /picks/{pickID} [delete]
func (h *PickHandler) DeletePick(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	pickID, err := parseIDParam(r, "pickID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.pickService.DeletePick(r.Context(), actor, pickID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
