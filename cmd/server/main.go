package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/partnerhub/portal-server/internal/api"
	"github.com/partnerhub/portal-server/internal/api/portal/session/storage/inmem"
	"github.com/partnerhub/portal-server/internal/config"
	"github.com/partnerhub/portal-server/internal/storage/cache"
	"github.com/partnerhub/portal-server/internal/storage/postgres"
	"github.com/partnerhub/portal-server/internal/task"
)

func main() {
	// Set up zerolog to use pretty printing
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out: os.Stderr,
	})
	log.Info().Msg("starting up...")

	// Load the application configuration
	log.Info().Msg("loading configuration...")
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load the configuration")
	}
	if cfg.IsEnvProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Debug().Str("config", fmt.Sprintf("%+v", cfg)).Msg("")

	// Initialize the PostgreSQL storage driver, wrapped by the caching layer
	log.Info().Msg("initializing database connection...")
	driver := cache.New(postgres.New(cfg.PostgresDSN))
	if err := driver.Initialize(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("could not initialize the database connection")
	}
	defer driver.Close()

	// Create the in-memory session storage and schedule a task that sweeps expired sessions
	sessionStorage, err := inmem.New()
	if err != nil {
		log.Fatal().Err(err).Msg("could not initialize the session storage")
	}
	sweepingTask := task.NewRepeating(func() {
		n, err := sessionStorage.TerminateExpired(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("could not terminate expired sessions")
		} else if n > 0 {
			log.Info().Int("amount", n).Msg("terminated expired sessions")
		}
	}, time.Minute)
	sweepingTask.Start()
	defer sweepingTask.Stop(true)

	// Start up the portal API
	log.Info().Str("portal_api", cfg.PortalAPIListenAddress).Msg("starting up the portal API...")
	apis := &api.Service{
		Config:         cfg,
		Storage:        driver,
		SessionStorage: sessionStorage,
	}
	apiErrs := make(chan error, 1)
	apis.Startup(apiErrs)
	go func() {
		err := <-apiErrs
		log.Fatal().Err(err).Msg("the API service raised an unexpected error")
	}()
	defer func() {
		log.Info().Msg("shutting down the portal API...")
		apis.Shutdown()
	}()

	log.Info().Msg("done!")
	defer log.Info().Msg("shutting down...")

	// Wait for the application to be terminated
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt)
	<-shutdown
}
