package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/pickem-league/live"
	"github.com/Dosada05/pickem-league/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub                *live.Hub
	competitionService services.CompetitionService
	leagueService      services.LeagueService
	upgrader           websocket.Upgrader
	logger             *slog.Logger
}

// NewWebSocketHandler принимает список разрешённых Origin; "*" разрешает все.
func NewWebSocketHandler(hub *live.Hub, competitionService services.CompetitionService, leagueService services.LeagueService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:                hub,
		competitionService: competitionService,
		leagueService:      leagueService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ServeCompetition подписывает клиента на комнату competition_{id}.
// Клиент подключается к /ws/competitions/{competitionID}
func (h *WebSocketHandler) ServeCompetition(w http.ResponseWriter, r *http.Request) {
	competitionID, err := parseIDParam(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.competitionService.GetCompetition(r.Context(), competitionID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.serve(w, r, live.CompetitionRoom(competitionID))
}

// ServeLeague подписывает клиента на комнату league_{id}.
func (h *WebSocketHandler) ServeLeague(w http.ResponseWriter, r *http.Request) {
	leagueID, err := parseIDParam(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.leagueService.GetLeague(r.Context(), leagueID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.serve(w, r, live.LeagueRoom(leagueID))
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, roomID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой
		h.logger.Warn("Failed to upgrade websocket connection", slog.String("room", roomID), slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, roomID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("Websocket client registered", slog.String("room", client.Room()))
}
