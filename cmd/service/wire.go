package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/tarot-service/internal/adapters/clients"
	"github.com/jsamuelsen/tarot-service/internal/adapters/clients/acl"
	"github.com/jsamuelsen/tarot-service/internal/adapters/flags"
	"github.com/jsamuelsen/tarot-service/internal/adapters/http"
	"github.com/jsamuelsen/tarot-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/tarot-service/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/tarot-service/internal/app"
	"github.com/jsamuelsen/tarot-service/internal/platform/config"
	"github.com/jsamuelsen/tarot-service/internal/ports"
)

// httpServer is the part of *http.Server that serve drives.
type httpServer interface {
	Start() <-chan error
	Shutdown(ctx context.Context) error
}

// newServer assembles repositories, services and handlers on top of store
// and generator and mounts them on a new HTTP server.
func newServer(
	cfg *config.Config,
	logger *slog.Logger,
	store *sqlite.Store,
	generator ports.Generator,
	health ports.HealthRegistry,
) *http.Server {
	cards := sqlite.NewCardRepository(store)
	spreads := sqlite.NewSpreadRepository(store)
	readingRepo := sqlite.NewReadingRepository(store)
	deckRepo := sqlite.NewDeckRepository(store)

	catalog := app.NewCatalogService(app.CatalogServiceConfig{Cards: cards, Spreads: spreads, Logger: logger})
	decks := app.NewDeckService(app.DeckServiceConfig{Decks: deckRepo, Logger: logger})
	readings := app.NewReadingService(app.ReadingServiceConfig{Readings: readingRepo, Spreads: spreads, Logger: logger})

	interpretations := app.NewInterpretationService(app.InterpretationServiceConfig{
		Assembler: app.NewContextAssembler(app.ContextAssemblerConfig{
			Cards:    cards,
			Spreads:  spreads,
			Decks:    deckRepo,
			Examples: readingRepo,
			Flags:    flags.NewStatic(cfg.Features, logger),
			Logger:   logger,
		}),
		Generator: generator,
		Readings:  readings,
		Logger:    logger,
	})

	build := handlers.NewBuildInfo(Version, Commit, BuildTime, cfg.LLM.Provider)

	rc := http.NewDefaultRouterConfig(logger, &cfg.App, &cfg.Auth, handlers.NewHealthHandler(health, build))
	rc.CatalogHandler = handlers.NewCatalogHandler(catalog)
	rc.DeckHandler = handlers.NewDeckHandler(decks)
	rc.ReadingHandler = handlers.NewReadingHandler(readings)
	rc.InterpretHandler = handlers.NewInterpretHandler(interpretations, cfg.LLM.StreamTimeout)
	rc.CORS = cfg.Server.CORS
	rc.Timeout = cfg.Server.RequestTimeout

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), rc)

	return server
}

// newGenerator builds the configured provider gateway, registers its circuit
// as a health check and wraps it with tracing and metrics.
func newGenerator(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	registry ports.HealthRegistry,
) (ports.Generator, error) {
	var (
		gen     ports.Generator
		circuit acl.CircuitReporter
		err     error
	)

	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		var gw *acl.GeminiGateway

		gw, err = newGemini(ctx, cfg, logger)
		gen, circuit = gw, gw
	default:
		var gw *acl.AnthropicGateway

		gw, err = newAnthropic(cfg, logger)
		gen, circuit = gw, gw
	}

	if err != nil {
		return nil, err
	}

	if err := registry.Register(acl.NewGatewayHealth(cfg.LLM.Provider, circuit)); err != nil {
		return nil, fmt.Errorf("registering generator health check: %w", err)
	}

	return acl.Instrument(gen, cfg.LLM.Provider), nil
}

func newGemini(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*acl.GeminiGateway, error) {
	cb := cfg.Client.CircuitBreaker

	gw, err := acl.NewGeminiGateway(ctx, acl.GeminiConfig{
		APIKey:        cfg.LLM.Gemini.APIKey,
		Model:         cfg.LLM.Gemini.Model,
		MaxTokens:     cfg.LLM.MaxTokens,
		BaseURL:       cfg.LLM.Gemini.BaseURL,
		Timeout:       cfg.LLM.Timeout,
		StreamTimeout: cfg.LLM.StreamTimeout,
		Circuit: clients.CircuitBreakerConfig{
			MaxFailures:   cb.MaxFailures,
			Timeout:       cb.Timeout,
			HalfOpenLimit: cb.HalfOpenLimit,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini gateway: %w", err)
	}

	return gw, nil
}

func newAnthropic(cfg *config.Config, logger *slog.Logger) (*acl.AnthropicGateway, error) {
	ac := acl.AnthropicConfig{
		APIKey:        cfg.LLM.Anthropic.APIKey,
		Model:         cfg.LLM.Anthropic.Model,
		Version:       cfg.LLM.Anthropic.Version,
		MaxTokens:     cfg.LLM.MaxTokens,
		Timeout:       cfg.LLM.Timeout,
		StreamTimeout: cfg.LLM.StreamTimeout,
	}

	hc, err := clients.New(&clients.Config{
		BaseURL:     cfg.LLM.Anthropic.BaseURL,
		ServiceName: config.ProviderAnthropic,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		AuthFunc:    ac.AuthFunc(),
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating HTTP client: %w", err)
	}

	return acl.NewAnthropicGateway(hc, ac), nil
}
