package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meeting-summary-service/internal/app"
	"meeting-summary-service/internal/config"
	httpapi "meeting-summary-service/internal/http"
	"meeting-summary-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}
	if err := application.Start(); err != nil {
		log.Fatalf("failed to start application: %v", err)
	}

	// Metrics and health endpoints on a separate port
	obs := observability.NewServer(":" + cfg.Service.MetricsPort)
	obs.Start()

	router := httpapi.NewRouter(httpapi.NewServer(application.Summarizer, application.Oracle.Name(), application.Logger))
	server := &http.Server{
		Addr:         ":" + cfg.Service.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Oracle.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		application.Logger.Info().Str("addr", server.Addr).Msg("Meeting summary service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http serve failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	application.Logger.Info().Msg("shutting down HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		application.Logger.Error().Err(err).Msg("http shutdown failed")
	}
	if err := obs.Shutdown(ctx); err != nil {
		application.Logger.Error().Err(err).Msg("observability shutdown failed")
	}
	application.Shutdown()
}
