package health

import "context"

// HealthPinger is an optional specialization a dependency can implement to
// provide a cheaper or more precise probe than the checker's default.
// A nil return means healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
