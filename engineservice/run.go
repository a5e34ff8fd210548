// Package engineservice wires configuration, drivers and the HTTP surface
// into the running memory-engine service.
package engineservice

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/keepsakelabs/keepsake-memory/internal/api"
	"github.com/keepsakelabs/keepsake-memory/internal/api/recovery"
	"github.com/keepsakelabs/keepsake-memory/internal/collab"
	"github.com/keepsakelabs/keepsake-memory/internal/config"
	"github.com/keepsakelabs/keepsake-memory/internal/factory"
	"github.com/keepsakelabs/keepsake-memory/internal/health"
	"github.com/keepsakelabs/keepsake-memory/internal/logger"
	"github.com/keepsakelabs/keepsake-memory/internal/recall"
	"github.com/keepsakelabs/keepsake-memory/internal/services"
	"github.com/keepsakelabs/keepsake-memory/internal/store"
)

// Run starts the memory-engine HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("memory-engine")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Str("collab_provider", cfg.CollabProvider).
		Int("http_port", cfg.HTTPPort).
		Msg("Memory engine starting")

	ctx, stop := newServerContext()
	defer stop()

	st, err := factory.NewStore(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store driver unavailable")
		return err
	}
	c, err := factory.NewCollaborator(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Collaborator provider unavailable")
		return err
	}

	engine := services.NewEngine(st, recall.NewInMemoryIndex(), c, log)
	router := buildRouter(engine)

	startHealthCheckers(ctx, cfg, log, st, c)

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(engine *services.Engine) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	h := api.NewEngineHandler(engine)
	root.HandleFunc("/api/snaps", h.IngestSnap).Methods("POST")
	root.HandleFunc("/api/users/{userId}/friends/{friendId}/timeline", h.GetTimeline).Methods("GET")
	root.HandleFunc("/api/users/{userId}/friendships", h.GetFriendships).Methods("GET")
	root.HandleFunc("/api/users/{userId}/patterns", h.GetTrendingPatterns).Methods("GET")
	root.HandleFunc("/api/search", h.Search).Methods("POST")

	healthHandler := api.NewHealthHandler()
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	return root
}

// startHealthCheckers starts component checkers and the service aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, c collab.Collaborator) {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	collabChecker := collab.NewProviderHealthChecker(c, log, probeTimeout)
	go collabChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker, collabChecker)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a context cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
