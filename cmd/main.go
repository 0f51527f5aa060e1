package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/tennisclub/league-system/brackets"
	"github.com/tennisclub/league-system/config"
	"github.com/tennisclub/league-system/db"
	"github.com/tennisclub/league-system/handlers"
	"github.com/tennisclub/league-system/repositories"
	api "github.com/tennisclub/league-system/routes"
	"github.com/tennisclub/league-system/services"
)

func main() {
	log.SetLevel(log.InfoLevel)
	log.SetReportTimestamp(true)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", "error", err)
	}
	log.Info("configuration loaded", "port", cfg.ServerPort)

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			log.Error("failed to close database connection", "error", err)
		}
	}()
	log.Info("database connection established")

	if err := db.EnsureSchema(context.Background(), dbConn); err != nil {
		log.Fatal("failed to apply database schema", "error", err)
	}

	wsHub := brackets.NewHub()
	go wsHub.Run()

	memberRepo := repositories.NewPostgresMemberRepository(dbConn)
	leagueRepo := repositories.NewPostgresLeagueRepository(dbConn)
	applicationRepo := repositories.NewPostgresApplicationRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)

	authService := services.NewAuthService(memberRepo)
	memberService := services.NewMemberService(memberRepo)
	leagueService := services.NewLeagueService(leagueRepo, applicationRepo, matchRepo, participantRepo)
	rankingService := services.NewRankingService(leagueRepo, matchRepo, participantRepo, memberRepo)
	bracketService := services.NewBracketService(dbConn, leagueRepo, applicationRepo, matchRepo, participantRepo, wsHub)
	finalStageService := services.NewFinalStageService(dbConn, leagueRepo, matchRepo, participantRepo, memberRepo, rankingService, wsHub)
	tournamentService := services.NewTournamentService(dbConn, leagueRepo, matchRepo, participantRepo, memberRepo, rankingService, wsHub)
	matchService := services.NewMatchService(dbConn, leagueRepo, matchRepo, participantRepo, wsHub)
	applicationService := services.NewApplicationService(applicationRepo, leagueRepo, memberRepo, bracketService)

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey, cfg.TokenTTL)
	memberHandler := handlers.NewMemberHandler(memberService)
	leagueHandler := handlers.NewLeagueHandler(leagueService)
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	bracketHandler := handlers.NewBracketHandler(bracketService, finalStageService, tournamentService, rankingService)
	matchHandler := handlers.NewMatchHandler(matchService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, leagueService)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		memberHandler,
		leagueHandler,
		applicationHandler,
		bracketHandler,
		matchHandler,
		webSocketHandler,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("starting server", "address", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", "error", err)
		}
		log.Info("server stopped gracefully")
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
			if closeErr := server.Close(); closeErr != nil {
				log.Error("failed to force close server", "error", closeErr)
			}
			os.Exit(1)
		}
		log.Info("server shutdown complete")
	}
}
