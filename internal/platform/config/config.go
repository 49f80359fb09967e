// Package config loads the service configuration from defaults, YAML files
// and the environment, and validates it before anything starts.
package config

import "time"

// Generation providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Config is the root of the service configuration. koanf keys are the
// snake_case paths of the fields, e.g. llm.stream_timeout.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Auth      AuthConfig      `koanf:"auth"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Database  DatabaseConfig  `koanf:"database"  validate:"required"`
	LLM       LLMConfig       `koanf:"llm"       validate:"required"`
	Features  map[string]any  `koanf:"features"`
}

type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
	CORS            CORSConfig    `koanf:"cors"`
}

// CORSConfig lists the browser origins allowed to call the API.
// An empty list allows any origin.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins" validate:"dive,url"`
}

type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig rotates the log file through lumberjack.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig points at an OTLP gRPC collector.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
	Insecure     bool    `koanf:"insecure"`
}

// AuthConfig describes the identity headers set by the API gateway.
type AuthConfig struct {
	SubjectHeader string `koanf:"subject_header" validate:"required"`
	RolesHeader   string `koanf:"roles_header"   validate:"required"`

	// ProtectDeckManagement requires AdminRole on deck and meaning writes.
	ProtectDeckManagement bool   `koanf:"protect_deck_management"`
	AdminRole             string `koanf:"admin_role" validate:"required_if=ProtectDeckManagement true"`
}

// ClientConfig tunes the resilient HTTP client in front of the provider.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms,gtefield=InitialInterval"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path         string        `koanf:"path"           validate:"required"`
	MaxOpenConns int           `koanf:"max_open_conns" validate:"min=0"`
	BusyTimeout  time.Duration `koanf:"busy_timeout"   validate:"min=0"`
}

// LLMConfig selects and configures the generation provider.
type LLMConfig struct {
	Provider      string          `koanf:"provider"       validate:"required,oneof=anthropic gemini"`
	Timeout       time.Duration   `koanf:"timeout"        validate:"required,min=1s"`
	StreamTimeout time.Duration   `koanf:"stream_timeout" validate:"required,min=1s,gtefield=Timeout"`
	MaxTokens     int             `koanf:"max_tokens"     validate:"required,min=1,max=64000"`
	Anthropic     AnthropicConfig `koanf:"anthropic"`
	Gemini        GeminiConfig    `koanf:"gemini"`
}

// AnthropicConfig configures the Anthropic Messages API.
type AnthropicConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url" validate:"required,url"`
	Model   string `koanf:"model"    validate:"required"`
	Version string `koanf:"version"  validate:"required"`
}

// GeminiConfig configures the Gemini API.
type GeminiConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`
	Model   string `koanf:"model"    validate:"required"`
}

// APIKey returns the credential of the selected provider.
func (c *LLMConfig) APIKey() string {
	if c.Provider == ProviderGemini {
		return c.Gemini.APIKey
	}

	return c.Anthropic.APIKey
}
