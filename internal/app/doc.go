// Package app contains the application services of the tarot backend.
// Services orchestrate domain rules and infrastructure through ports.
//
// Responsibilities:
//   - Catalog, deck, and reading use cases over the repositories
//   - Assembling interpretation context from a draw
//   - Rendering prompts and driving the generation gateway
//   - Recording readings only after generation completes
//
// HTTP, SQL, and provider wire formats live in adapters.
package app
