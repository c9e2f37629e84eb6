// Package app wires configuration, providers, and the pipeline into one
// process-wide application value.
package app

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"meeting-summary-service/internal/config"
	"meeting-summary-service/internal/events"
	"meeting-summary-service/internal/observability/logging"
	"meeting-summary-service/internal/service/oracle"
	"meeting-summary-service/internal/service/oracle/gemini"
	"meeting-summary-service/internal/service/oracle/mock"
	"meeting-summary-service/internal/service/summarize"
)

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Configuration
	Oracle      oracle.Oracle
	Publisher   *events.Publisher
	Summarizer  *summarize.Service
}

// New constructs the Application from the provided configuration: logging
// first, then the oracle provider, the event publisher, and the pipeline.
func New(cfg *config.Configuration) (*Application, error) {
	logging.Init(logging.Config{
		Level:   cfg.Observability.LogLevel,
		Console: cfg.Observability.Env == "dev",
		Service: "meeting-summary-service",
	})
	logger := logging.Logger()

	provider, err := buildOracle(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build oracle provider: %w", err)
	}

	publisher := events.New(&events.Config{
		Enabled:   cfg.Kafka.Enabled,
		Brokers:   cfg.Kafka.Brokers,
		Topic:     cfg.Kafka.Topic,
		Principal: cfg.Service.Principal,
	})

	summarizer := summarize.New(provider, publisher, summarize.Config{
		WindowSeconds:  float64(cfg.Summarizer.WindowSeconds),
		MaxConcurrency: cfg.Oracle.MaxConcurrency,
		RequestTimeout: cfg.Oracle.RequestTimeout,
	}, logger)

	a := &Application{
		Logger:     logger,
		Cfg:        cfg,
		Oracle:     provider,
		Publisher:  publisher,
		Summarizer: summarizer,
	}

	logger.Info().
		Str("oracleProvider", provider.Name()).
		Int("windowSeconds", cfg.Summarizer.WindowSeconds).
		Bool("kafkaEnabled", cfg.Kafka.Enabled).
		Msg("meeting summary application created")
	return a, nil
}

func buildOracle(cfg *config.Configuration, logger zerolog.Logger) (oracle.Oracle, error) {
	switch cfg.Oracle.Provider {
	case "mock":
		return mock.New(), nil
	case "gemini":
		return gemini.New(gemini.Config{
			APIKeys:    cfg.Oracle.GeminiAPIKeys,
			Model:      cfg.Oracle.GeminiModel,
			MaxRetries: cfg.Oracle.MaxRetries,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Oracle.Provider)
	}
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	a.StartupTime = time.Now().UTC()
	a.Logger.Info().
		Time("startupTime", a.StartupTime).
		Msg("meeting summary service starting")
	return nil
}

// Shutdown performs a best-effort cleanup before process exit.
func (a *Application) Shutdown() {
	a.Logger.Info().Msg("meeting summary service shutting down")
	if err := a.Publisher.Close(); err != nil {
		a.Logger.Error().Err(err).Msg("closing event publisher")
	}
}
