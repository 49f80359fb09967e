package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/tarot-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/tarot-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/tarot-service/internal/platform/config"
	"github.com/jsamuelsen/tarot-service/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for blocking API requests.
// Generation calls dominate it.
const DefaultRequestTimeout = 60 * time.Second

// corsMaxAge is how long browsers may cache a preflight response.
const corsMaxAge = 12 * time.Hour

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AuthConfig contains the gateway identity header configuration.
	AuthConfig *config.AuthConfig

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// CORS lists the allowed browser origins.
	CORS config.CORSConfig

	HealthHandler    *handlers.HealthHandler
	CatalogHandler   *handlers.CatalogHandler
	DeckHandler      *handlers.DeckHandler
	ReadingHandler   *handlers.ReadingHandler
	InterpretHandler *handlers.InterpretHandler

	// Timeout bounds blocking API requests. The stream route is exempt.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - tracing and metrics
//  5. Logging - request logging (skips health endpoints)
//  6. CORS - browser origin policy
//  7. Request scope - per-request cache and pending actions
//  8. Timeout - request deadline (blocking API routes only)
//
// Route groups:
//   - /-/ (internal): Health endpoints
//   - /api/v1/ (public API): Catalog, decks, readings and interpretation
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.AppConfig.Name)...)
	engine.Use(
		middleware.Logging(cfg.Logger),
		cors.New(corsConfig(cfg.CORS, cfg.AuthConfig)),
		middleware.RequestScope(),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.Register(engine)
	}

	// Streams run for as long as generation does; the handler extends the
	// write deadline instead.
	stream := engine.Group("/api/v1")

	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.Timeout(cfg.Timeout))
	}

	setupAPIRoutes(apiV1, stream, cfg)
}

// setupAPIRoutes registers business API routes.
func setupAPIRoutes(rg, stream *gin.RouterGroup, cfg RouterConfig) {
	if cfg.CatalogHandler != nil {
		cfg.CatalogHandler.RegisterCatalogRoutes(rg)
	}

	if cfg.DeckHandler != nil {
		var guard []gin.HandlerFunc
		if cfg.AuthConfig != nil && cfg.AuthConfig.ProtectDeckManagement {
			guard = append(guard, middleware.RequireRole(cfg.AuthConfig, cfg.AuthConfig.AdminRole))
		}

		cfg.DeckHandler.RegisterDeckRoutes(rg, guard...)
	}

	if cfg.ReadingHandler != nil {
		cfg.ReadingHandler.RegisterReadingRoutes(rg)
	}

	if cfg.InterpretHandler != nil {
		cfg.InterpretHandler.RegisterInterpretRoutes(rg, stream)
	}
}

// corsConfig allows any origin when none are configured, matching a local
// setup where the web client runs on its own dev server.
func corsConfig(c config.CORSConfig, auth *config.AuthConfig) cors.Config {
	cc := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			middleware.HeaderRequestID, middleware.HeaderCorrelationID,
		},
		ExposeHeaders: []string{middleware.HeaderRequestID, middleware.HeaderCorrelationID, telemetry.HeaderTraceID},
		MaxAge:        corsMaxAge,
	}

	if auth != nil {
		cc.AllowHeaders = append(cc.AllowHeaders, auth.SubjectHeader, auth.RolesHeader)
	}

	if len(c.AllowedOrigins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = c.AllowedOrigins
	}

	return cc
}

// NewDefaultRouterConfig creates a RouterConfig with sensible defaults.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	authCfg *config.AuthConfig,
	healthHandler *handlers.HealthHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AuthConfig:    authCfg,
		AppConfig:     appCfg,
		HealthHandler: healthHandler,
		Timeout:       DefaultRequestTimeout,
	}
}
