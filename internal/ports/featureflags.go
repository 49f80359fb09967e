package ports

import (
	"context"
)

// Flag names read by the application.
const (
	// FlagFewShotExamples toggles past-reading examples in prompts.
	FlagFewShotExamples = "few-shot-examples"

	// FlagFewShotLimit caps how many past readings are sampled.
	FlagFewShotLimit = "few-shot-limit"

	// FlagFewShotMinRating is the minimum accuracy or resonance rating of a sample.
	FlagFewShotMinRating = "few-shot-min-rating"
)

// FeatureFlags defines the contract for feature flag evaluation.
// This port allows the application to check feature enablement without
// knowing the underlying provider.
//
// Example usage:
//
//	if flags.IsEnabled(ctx, ports.FlagFewShotExamples, true) {
//	    examples, err = provider.Sample(ctx, limit, minRating)
//	}
type FeatureFlags interface {
	// IsEnabled checks if a boolean feature flag is enabled.
	// Returns defaultValue if the flag doesn't exist or evaluation fails.
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool

	// GetInt retrieves an integer feature flag value.
	// Returns defaultValue if the flag doesn't exist or evaluation fails.
	GetInt(ctx context.Context, flag string, defaultValue int) int
}
