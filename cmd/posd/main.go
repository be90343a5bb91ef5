package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akovac726-netizen/trgopos-retail-system/internal/catalog"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/config"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/ledger"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/obs"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/server"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/session"
	"github.com/akovac726-netizen/trgopos-retail-system/internal/terminal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().
		Str("env", cfg.AppEnv).Str("till", cfg.TillID).Logger()

	if cfg.MetricsEnabled {
		obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)
	}

	cat, err := catalog.New(catalog.SeedConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("build catalog")
	}
	sessions, err := session.NewManager(session.SeedRoster())
	if err != nil {
		logger.Fatal().Err(err).Msg("build roster")
	}
	sessions.Log = logger

	term, err := terminal.New(terminal.Config{
		Catalog:     cat,
		Sessions:    sessions,
		Ledger:      ledger.New(),
		ManagerCode: cfg.ManagerCode,
		Card:        terminal.SimulatedCard{Delay: cfg.CardTerminalDelay},
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("build terminal")
	}

	handler := server.NewHandler(server.HandlerConfig{Terminal: term, Logger: logger})
	router := server.NewRouter(server.RouterConfig{
		Handler:        handler,
		Logger:         logger,
		MetricsEnabled: cfg.MetricsEnabled,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown http server")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("terminal listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("http server")
	}
	<-done
}
