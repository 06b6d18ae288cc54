package club

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	clubservice "github.com/osusu-club/osusu-service/app/modules/club/application"
	clubapi "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/api"
	clubhandlers "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/handlers"
	clubqueue "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/queue"
	clubdb "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/repositories"
	clubrouter "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/router"
	"github.com/osusu-club/osusu-service/config"
	"github.com/osusu-club/osusu-service/internal/authjwt"
	"github.com/osusu-club/osusu-service/internal/clock"
	"github.com/osusu-club/osusu-service/internal/eventbus"
	"github.com/osusu-club/osusu-service/internal/observability"
	"github.com/osusu-club/osusu-service/internal/utils"
)

// Module represents the club module.
type Module struct {
	ClubService   clubservice.Service
	ClubRouter    *clubrouter.ClubRouter
	QueueService  clubqueue.QueueService
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewClubModule creates and initializes a new club module. The treasury
// recorder is passed in from app wiring so the withdrawal transaction can span
// both modules without the club module owning treasury persistence; the
// transfer lister feeds the statement export. httpRouter may be nil when no
// read API is served.
func NewClubModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	treasury clubservice.TransferRecorder,
	transfers clubapi.TransferLister,
	eventBus eventbus.EventBus,
	router *message.Router,
	helpers utils.Helpers,
	httpRouter chi.Router,
	routerCtx context.Context,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer
	metrics := obs.Registry.ClubMetrics

	logger.InfoContext(ctx, "club.NewClubModule initializing")

	// 1. Initialize Repository
	repo := clubdb.NewRepository(db)

	// 2. Initialize Queue Service (River workers publish the scheduled
	// notifications)
	queueService, err := clubqueue.NewService(ctx, db, repo, logger, cfg.Postgres.DSN, metrics, eventBus, helpers)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize club queue service: %w", err)
	}
	if err := queueService.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start club queue service: %w", err)
	}

	// 3. Initialize Service
	service := clubservice.NewClubService(repo, treasury, queueService, clock.NewRealClock(), logger, metrics, tracer, db)

	// 4. Initialize Handlers
	handlers := clubhandlers.NewClubHandlers(service, logger, tracer)

	// 5. Initialize Router
	clubRouter := clubrouter.NewClubRouter(
		logger,
		router,
		eventBus,
		eventBus,
		helpers,
		tracer,
	)

	// 6. Configure the router with handlers
	if err := clubRouter.Configure(routerCtx, handlers); err != nil {
		if stopErr := queueService.Stop(ctx); stopErr != nil {
			logger.ErrorContext(ctx, "Failed to stop club queue service during rollback", "error", stopErr)
		}
		return nil, fmt.Errorf("failed to configure club router: %w", err)
	}

	// 7. Register HTTP read routes
	if httpRouter != nil {
		jwtProvider := authjwt.NewProvider(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)
		apiHandlers := clubapi.NewHandlers(service, transfers, logger)
		clubapi.Register(httpRouter, apiHandlers, cfg, jwtProvider)
	}

	return &Module{
		ClubService:   service,
		ClubRouter:    clubRouter,
		QueueService:  queueService,
		observability: obs,
	}, nil
}

// Run starts the club module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting club module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Club module goroutine stopped")
}

// Close shuts down the club module.
func (m *Module) Close() error {
	logger := m.observability.Provider.Logger
	logger.Info("Stopping club module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.QueueService != nil {
		if err := m.QueueService.Stop(context.Background()); err != nil {
			logger.Error("Error stopping club queue service", "error", err)
		}
	}

	if m.ClubRouter != nil {
		if err := m.ClubRouter.Close(); err != nil {
			logger.Error("Error closing ClubRouter from module", "error", err)
			return fmt.Errorf("error closing ClubRouter: %w", err)
		}
	}

	logger.Info("Club module stopped")
	return nil
}
