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

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/synergia/erp-api/internal/app"
	"github.com/synergia/erp-api/internal/infrastructure/config"
	"github.com/synergia/erp-api/pkg/logger"
)

// @title                       ERP API
// @version                     1.0
// @description                 Clients, projects, users and dashboard of the ERP back office.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
func main() {
	// A missing .env is fine: the environment may already be populated.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, envconfig.OsLookuper()); err != nil {
		// Init returns the configured logger when run got that far.
		boot := logger.Init(logger.Options{Level: "info"})
		boot.Fatal().Err(err).Msg("erp-api exited")
	}
}

// run serves until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, env envconfig.Lookuper) error {
	cfg, err := config.LoadWith(ctx, env)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "erp-api",
	})

	srv, err := app.NewServer(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Addr()).
			Str("store", cfg.Store.Driver).
			Str("identity_provider", cfg.Identity.Provider).
			Msg("http server listening")
		if err := srv.Echo.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		_ = srv.Shutdown(context.WithoutCancel(ctx))
		return fmt.Errorf("http server: %w", err)
	}
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("unclean shutdown: %w", err)
	}
	log.Info().Msg("stopped")
	return nil
}
