// Package collab defines the generation-collaborator contract: the external
// text-generation and embedding capability the engine depends on but does not
// implement. Both calls may fail; every call site keeps a local fallback.
package collab

import "context"

// Collaborator produces embeddings and short text completions.
type Collaborator interface {
	// Embed returns a fixed-length vector representation of text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Generate returns a completion for prompt. The purpose tag identifies the
	// call site (moment-analysis, insights) for provider-side logging.
	Generate(ctx context.Context, prompt, purpose string) (string, error)
}

// HealthPinger is optionally implemented by a Collaborator to expose
// specialized health check logic. Returns nil when healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
