package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sprintjam/sprintjam/internal/api"
	"github.com/sprintjam/sprintjam/internal/config"
	"github.com/sprintjam/sprintjam/internal/repository"
	"github.com/sprintjam/sprintjam/internal/repository/memory"
	"github.com/sprintjam/sprintjam/internal/repository/mongodb"
	"github.com/sprintjam/sprintjam/internal/service"
	"github.com/sprintjam/sprintjam/internal/websocket"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Environment == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var repos *repository.Repositories
	switch cfg.Storage {
	case config.StorageMongo:
		db, err := mongodb.NewConnection(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongodb")
		}
		defer db.Client().Disconnect(context.Background())
		repos = mongodb.NewRepositories(db)
		log.Info().Str("db", cfg.MongoDB).Msg("using mongodb storage")
	default:
		repos = memory.NewRepositories()
		log.Info().Msg("using in-memory storage")
	}

	services := service.NewServices(repos)

	hub := websocket.NewHub(services.Room, cfg.DisconnectGrace)

	janitor := service.NewJanitor(services.Room, repos.Room, cfg.CleanupInterval)
	go janitor.Run()

	router := api.NewRouter(services, hub)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shut down")
	}

	hub.Stop()
	janitor.Stop()

	log.Info().Msg("server stopped")
}
