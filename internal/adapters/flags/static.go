// Package flags provides feature flag evaluation backed by configuration.
package flags

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jsamuelsen/tarot-service/internal/ports"
)

// Static evaluates flags from the features section of the configuration.
// Values may be typed (YAML) or strings (environment variables).
type Static struct {
	values map[string]any
	logger *slog.Logger
}

var _ ports.FeatureFlags = (*Static)(nil)

// NewStatic creates a flag source over values. Keys are matched case-insensitively.
func NewStatic(values map[string]any, logger *slog.Logger) *Static {
	if logger == nil {
		logger = slog.Default()
	}

	normalized := make(map[string]any, len(values))
	for k, v := range values {
		normalized[strings.ToLower(k)] = v
	}

	return &Static{
		values: normalized,
		logger: logger.With(slog.String("component", "flags.Static")),
	}
}

// IsEnabled implements ports.FeatureFlags.
func (s *Static) IsEnabled(ctx context.Context, flag string, defaultValue bool) bool {
	v, ok := s.values[strings.ToLower(flag)]
	if !ok {
		return defaultValue
	}

	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			s.invalid(ctx, flag, v)
			return defaultValue
		}

		return parsed
	default:
		s.invalid(ctx, flag, v)
		return defaultValue
	}
}

// GetInt implements ports.FeatureFlags.
func (s *Static) GetInt(ctx context.Context, flag string, defaultValue int) int {
	v, ok := s.values[strings.ToLower(flag)]
	if !ok {
		return defaultValue
	}

	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			s.invalid(ctx, flag, v)
			return defaultValue
		}

		return parsed
	default:
		s.invalid(ctx, flag, v)
		return defaultValue
	}
}

func (s *Static) invalid(ctx context.Context, flag string, v any) {
	s.logger.WarnContext(ctx, "ignoring malformed feature flag",
		slog.String("flag", flag),
		slog.Any("value", v),
	)
}
