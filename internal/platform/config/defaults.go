package config

import "time"

const (
	DefaultServerPort     = 3001
	DefaultMaxRequestSize = 1 << 20

	// Generation is not idempotent, so a single attempt means no retry.
	DefaultClientRetryMaxAttempts     = 1
	DefaultClientRetryMultiplier      = 2.0
	DefaultClientRetryJitterFactor    = 0.25
	DefaultClientCircuitMaxFailures   = 5
	DefaultClientCircuitHalfOpenLimit = 3

	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	// SQLite allows one writer; more connections only add lock contention.
	DefaultDatabaseMaxOpenConns = 1
	DefaultDatabaseBusyTimeout  = 5 * time.Second

	DefaultLLMMaxTokens = 2000

	DefaultFewShotLimit     = 3
	DefaultFewShotMinRating = 4
)

// defaults is the lowest configuration layer.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "tarot-service",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":                 DefaultServerPort,
		"server.host":                 "0.0.0.0",
		"server.read_timeout":         "30s",
		"server.write_timeout":        "30s",
		"server.idle_timeout":         "120s",
		"server.shutdown_timeout":     "10s",
		"server.request_timeout":      "60s",
		"server.max_request_size":     DefaultMaxRequestSize,
		"server.cors.allowed_origins": []string{},

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "tarot-service",
		"telemetry.sampling_rate": 1.0,
		"telemetry.insecure":      true,

		"auth.subject_header":          "X-User-ID",
		"auth.roles_header":            "X-User-Roles",
		"auth.protect_deck_management": false,
		"auth.admin_role":              "admin",

		"client.timeout":                           "60s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"database.path":           "./data/tarot.db",
		"database.max_open_conns": DefaultDatabaseMaxOpenConns,
		"database.busy_timeout":   DefaultDatabaseBusyTimeout.String(),

		"llm.provider":           ProviderAnthropic,
		"llm.timeout":            "60s",
		"llm.stream_timeout":     "120s",
		"llm.max_tokens":         DefaultLLMMaxTokens,
		"llm.anthropic.api_key":  "",
		"llm.anthropic.base_url": "https://api.anthropic.com",
		"llm.anthropic.model":    "claude-sonnet-4-5",
		"llm.anthropic.version":  "2023-06-01",
		"llm.gemini.api_key":     "",
		"llm.gemini.base_url":    "",
		"llm.gemini.model":       "gemini-2.5-flash",

		"features.few-shot-examples":   true,
		"features.few-shot-limit":      DefaultFewShotLimit,
		"features.few-shot-min-rating": DefaultFewShotMinRating,
	}
}
