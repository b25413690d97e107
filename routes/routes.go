package routes

import (
	"net/http"

	_ "github.com/Dosada05/pickem-league/docs" // регистрирует swagger спецификацию
	"github.com/Dosada05/pickem-league/handlers"
	"github.com/Dosada05/pickem-league/middleware"
	"github.com/Dosada05/pickem-league/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	League      *handlers.LeagueHandler
	Competition *handlers.CompetitionHandler
	Pick        *handlers.PickHandler
	Scoring     *handlers.ScoringHandler
	WebSocket   *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(opts.JWTSecret))
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})

	router.With(authenticate).Get("/users/me", h.Auth.Me)

	router.Route("/leagues", func(r chi.Router) {
		r.With(authenticate).Post("/", h.League.CreateLeague)
		r.With(authenticate).Get("/", h.League.ListMyLeagues)

		r.Route("/{leagueID}", func(r chi.Router) {
			r.Get("/", h.League.GetLeague)
			r.Get("/competitions", h.Competition.ListCompetitions)
			r.Get("/standings", h.Scoring.GetStandings)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/join", h.League.JoinLeague)
				r.Post("/competitions", h.Competition.CreateCompetition)
				r.With(adminOnly).Post("/standings/calculate", h.Scoring.CalculateSeason)
			})
		})
	})

	router.Route("/competitions/{competitionID}", func(r chi.Router) {
		r.Get("/", h.Competition.GetCompetition)
		r.Get("/games", h.Competition.ListGames)
		r.Get("/scores", h.Scoring.GetLeaderboard)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Patch("/status", h.Competition.UpdateStatus)
			r.Post("/games", h.Competition.CreateGame)
			r.Post("/picks", h.Pick.SubmitPick)
			r.Get("/picks/me", h.Pick.ListMyPicks)
			r.With(adminOnly).Post("/scores/calculate", h.Scoring.CalculateCompetition)
		})
	})

	router.With(authenticate).Put("/games/{gameID}/result", h.Competition.UpdateGameResult)
	router.With(authenticate).Delete("/picks/{pickID}", h.Pick.DeletePick)

	router.Route("/ws", func(r chi.Router) {
		r.Get("/competitions/{competitionID}", h.WebSocket.ServeCompetition)
		r.Get("/leagues/{leagueID}", h.WebSocket.ServeLeague)
	})
}
