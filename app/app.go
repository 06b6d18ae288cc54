// Package app assembles the service: database, event bus, per-module
// watermill routers, the club and treasury modules, and the HTTP read API.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	club "github.com/osusu-club/osusu-service/app/modules/club"
	clubdb "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/repositories"
	treasury "github.com/osusu-club/osusu-service/app/modules/treasury"
	"github.com/osusu-club/osusu-service/config"
	"github.com/osusu-club/osusu-service/internal/db/bundb"
	"github.com/osusu-club/osusu-service/internal/eventbus"
	"github.com/osusu-club/osusu-service/internal/observability"
	"github.com/osusu-club/osusu-service/internal/observability/attr"
	"github.com/osusu-club/osusu-service/internal/utils"
)

// streamNames are the JetStream streams provisioned on startup. Each module
// publishes under its own stream subject space ("club.>", "treasury.>").
var streamNames = []string{"club", "treasury"}

// App owns every long-lived component of the service and shuts them down in
// reverse order of construction.
type App struct {
	Config         *config.Config
	Observability  observability.Observability
	ClubModule     *club.Module
	TreasuryModule *treasury.Module

	db             *bun.DB
	eventBus       eventbus.EventBus
	clubRouter     *message.Router
	treasuryRouter *message.Router
	httpServer     *http.Server
	routerCtx      context.Context
	routerCancel   context.CancelFunc
	routerWg       sync.WaitGroup
	moduleWg       sync.WaitGroup
}

// NewApp wires the full service. The treasury module is constructed first so
// the club module can borrow its service as the withdrawal transfer recorder
// and the statement export's transfer lister.
func NewApp(ctx context.Context, cfg *config.Config, obs observability.Observability) (*App, error) {
	logger := obs.Provider.Logger

	db, err := bundb.NewDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, logger, "backend", obs.Registry.EventBusMetrics, obs.Registry.Tracer)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	for _, streamName := range streamNames {
		if err := bus.CreateStream(ctx, streamName); err != nil {
			bus.Close()
			db.Close()
			return nil, fmt.Errorf("failed to create stream %q: %w", streamName, err)
		}
	}

	// One watermill router per module keeps each module's middleware chain to
	// itself.
	wmLogger := watermill.NewSlogLogger(logger)
	routerConfig := message.RouterConfig{CloseTimeout: 10 * time.Second}

	clubRouter, err := message.NewRouter(routerConfig, wmLogger)
	if err != nil {
		bus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create club router: %w", err)
	}

	treasuryRouter, err := message.NewRouter(routerConfig, wmLogger)
	if err != nil {
		bus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create treasury router: %w", err)
	}

	helpers := utils.NewHelper(logger)
	routerCtx, routerCancel := context.WithCancel(ctx)

	treasuryModule, err := treasury.NewTreasuryModule(ctx, cfg, obs, clubdb.NewRepository(db), bus, treasuryRouter, helpers, routerCtx, db)
	if err != nil {
		routerCancel()
		bus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create treasury module: %w", err)
	}

	httpRouter := chi.NewRouter()

	clubModule, err := club.NewClubModule(ctx, cfg, obs, treasuryModule.TreasuryService, treasuryModule.TreasuryService, bus, clubRouter, helpers, httpRouter, routerCtx, db)
	if err != nil {
		routerCancel()
		bus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create club module: %w", err)
	}

	httpRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	httpRouter.Method(http.MethodGet, "/metrics", obs.Provider.MetricsHandler())

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           httpRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &App{
		Config:         cfg,
		Observability:  obs,
		ClubModule:     clubModule,
		TreasuryModule: treasuryModule,
		db:             db,
		eventBus:       bus,
		clubRouter:     clubRouter,
		treasuryRouter: treasuryRouter,
		httpServer:     httpServer,
		routerCtx:      routerCtx,
		routerCancel:   routerCancel,
	}, nil
}

// Run starts the watermill routers, the module goroutines, and the HTTP
// server, then blocks until ctx is cancelled or the HTTP server fails.
func (a *App) Run(ctx context.Context) error {
	logger := a.Observability.Provider.Logger
	logger.InfoContext(ctx, "starting osusu service")

	a.routerWg.Add(2)
	go a.runRouter("club", a.clubRouter)
	go a.runRouter("treasury", a.treasuryRouter)

	a.moduleWg.Add(2)
	go a.ClubModule.Run(ctx, &a.moduleWg)
	go a.TreasuryModule.Run(ctx, &a.moduleWg)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", attr.String("address", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		return nil
	}
}

func (a *App) runRouter(name string, router *message.Router) {
	defer a.routerWg.Done()
	if err := router.Run(a.routerCtx); err != nil && !errors.Is(err, context.Canceled) {
		a.Observability.Provider.Logger.Error("watermill router stopped",
			attr.String("router", name),
			attr.Error(err))
	}
}

// Close shuts down in reverse order of startup: HTTP first so in-flight reads
// drain, then the routers and modules, then the bus and the database. Module
// Close owns the module's watermill router, so the routers are not closed here
// directly.
func (a *App) Close() error {
	logger := a.Observability.Provider.Logger
	logger.Info("stopping osusu service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var errs []error

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
	}

	a.routerCancel()

	if err := a.ClubModule.Close(); err != nil {
		errs = append(errs, fmt.Errorf("club module close: %w", err))
	}
	if err := a.TreasuryModule.Close(); err != nil {
		errs = append(errs, fmt.Errorf("treasury module close: %w", err))
	}

	a.waitForRouters(shutdownCtx)
	a.moduleWg.Wait()

	if err := a.eventBus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("event bus close: %w", err))
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}
	if err := a.Observability.Provider.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("observability shutdown: %w", err))
	}

	logger.Info("osusu service stopped")
	return errors.Join(errs...)
}

func (a *App) waitForRouters(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		a.routerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.Observability.Provider.Logger.Warn("watermill routers did not stop within shutdown timeout")
	}
}
