// Command server is the application entry point. It wires together all
// layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/PragadheeshPandian123/college-event-registration/internal/config"
	"github.com/PragadheeshPandian123/college-event-registration/internal/database"
	"github.com/PragadheeshPandian123/college-event-registration/internal/handler"
	"github.com/PragadheeshPandian123/college-event-registration/internal/metrics"
	"github.com/PragadheeshPandian123/college-event-registration/internal/service"
	"github.com/PragadheeshPandian123/college-event-registration/internal/store/memory"
	"github.com/PragadheeshPandian123/college-event-registration/internal/store/postgres"
	"github.com/PragadheeshPandian123/college-event-registration/migrations"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		events        service.EventStore
		participants  service.ParticipantStore
		registrations service.RegistrationStore
		ledger        service.CapacityLedger
	)

	switch cfg.Storage {
	case "memory":
		store := memory.New()
		events = store.Events()
		participants = store.Participants()
		registrations = store.Registrations()
		ledger = store.Ledger()
		log.Info().Msg("using in-memory storage")
	default:
		pool, err := database.NewPool(ctx, cfg.DB, log)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to database")
		}
		defer pool.Close()

		if err := migrations.Apply(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("apply migrations")
		}
		log.Info().Msg("database ready")

		store := postgres.New(pool)
		events = store.Events()
		participants = store.Participants()
		registrations = store.Registrations()
		ledger = store.Ledger()
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	eventSvc := service.NewEventService(events, registrations, log.With().Str("component", "events").Logger())
	regSvc := service.NewRegistrationService(events, participants, registrations, ledger, m,
		log.With().Str("component", "registrations").Logger())
	participantSvc := service.NewParticipantService(events, participants, registrations, ledger, m,
		log.With().Str("component", "participants").Logger())

	h := handler.New(eventSvc, regSvc, participantSvc)
	router := handler.NewRouter(h, log)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
}
