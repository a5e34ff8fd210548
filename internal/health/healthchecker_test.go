package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type stubChecker struct {
	name string
	up   atomic.Bool
}

func (s *stubChecker) Name() string                         { return s.name }
func (s *stubChecker) IsHealthy() bool                      { return s.up.Load() }
func (s *stubChecker) Start(context.Context, time.Duration) {}

func TestServiceHealthFollowsDependencies(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &stubChecker{name: "store"}
	collab := &stubChecker{name: "collaborator"}
	store.up.Store(true)
	collab.up.Store(true)

	svc := NewServiceHealthChecker(zerolog.Nop(), store, collab)
	go svc.Start(ctx, 5*time.Millisecond)

	eventually(t, svc.IsHealthy)

	collab.up.Store(false)
	eventually(t, func() bool { return !svc.IsHealthy() })

	collab.up.Store(true)
	eventually(t, svc.IsHealthy)
}

func eventually(t *testing.T, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before timeout")
}
