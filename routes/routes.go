package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tennisclub/league-system/handlers"
	"github.com/tennisclub/league-system/middleware"
	"github.com/tennisclub/league-system/models"
)

// SetupRoutes собирает дерево маршрутов приложения. Просмотр лиг,
// матчей и таблиц открыт всем, запись в лигу требует токена, а
// генерация сеток и редактирование матчей доступны только администратору.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	memberHandler *handlers.MemberHandler,
	leagueHandler *handlers.LeagueHandler,
	applicationHandler *handlers.ApplicationHandler,
	bracketHandler *handlers.BracketHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	adminOnly := middleware.Authorize(models.RoleAdmin)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"tennis club league system"}` + "\n"))
	})
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}` + "\n"))
	})

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/members", func(r chi.Router) {
		r.Get("/", memberHandler.List)
		r.Get("/{memberID}", memberHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", memberHandler.Me)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Patch("/{memberID}/role", memberHandler.UpdateRole)
			})
		})
	})

	router.Route("/leagues", func(r chi.Router) {
		r.Get("/", leagueHandler.List)
		r.Get("/{leagueID}", leagueHandler.GetByID)
		r.Get("/{leagueID}/overview", leagueHandler.GetOverview)
		r.Get("/{leagueID}/applications", applicationHandler.ListByLeague)
		r.Get("/{leagueID}/matches", matchHandler.ListByLeague)
		r.Get("/{leagueID}/rankings", bracketHandler.Rankings)
		r.Get("/{leagueID}/preliminary-status", bracketHandler.PreliminaryStatus)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{leagueID}/applications", applicationHandler.Apply)
			r.Delete("/{leagueID}/applications/{memberID}", applicationHandler.Cancel)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Post("/", leagueHandler.Create)
				r.Post("/{leagueID}/bracket", bracketHandler.GenerateBracket)
				r.Post("/{leagueID}/final-stage", bracketHandler.GenerateFinalStage)
				r.Post("/{leagueID}/tournament", bracketHandler.GenerateKnockout)
				r.Post("/{leagueID}/tournament/advance", bracketHandler.AdvanceRound)
				r.Post("/{leagueID}/matches", matchHandler.Create)
			})
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{matchID}/score", matchHandler.SubmitScore)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Patch("/{matchID}/schedule", matchHandler.UpdateSchedule)
			})
		})
	})

	router.Get("/ws/leagues/{leagueID}", webSocketHandler.ServeWs)
}
