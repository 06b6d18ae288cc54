package treasury

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	clubdb "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/repositories"
	treasuryservice "github.com/osusu-club/osusu-service/app/modules/treasury/application"
	treasurydomain "github.com/osusu-club/osusu-service/app/modules/treasury/domain"
	settlement "github.com/osusu-club/osusu-service/app/modules/treasury/infrastructure/gateway"
	treasuryhandlers "github.com/osusu-club/osusu-service/app/modules/treasury/infrastructure/handlers"
	treasurydb "github.com/osusu-club/osusu-service/app/modules/treasury/infrastructure/repositories"
	treasuryrouter "github.com/osusu-club/osusu-service/app/modules/treasury/infrastructure/router"
	"github.com/osusu-club/osusu-service/config"
	"github.com/osusu-club/osusu-service/internal/clock"
	"github.com/osusu-club/osusu-service/internal/eventbus"
	"github.com/osusu-club/osusu-service/internal/observability"
	"github.com/osusu-club/osusu-service/internal/utils"
)

// Module represents the treasury module.
type Module struct {
	TreasuryService treasuryservice.Service
	TreasuryRouter  *treasuryrouter.TreasuryRouter
	cancelFunc      context.CancelFunc
	observability   observability.Observability
}

// NewTreasuryModule creates and initializes a new treasury module. The club
// repository is shared from app wiring so reconciliation can read rosters
// without owning club persistence.
func NewTreasuryModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	clubs clubdb.Repository,
	eventBus eventbus.EventBus,
	router *message.Router,
	helpers utils.Helpers,
	routerCtx context.Context,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer
	metrics := obs.Registry.TreasuryMetrics

	logger.InfoContext(ctx, "treasury.NewTreasuryModule initializing")

	// 1. Initialize Repository
	repo := treasurydb.NewRepository(db)

	// 2. Initialize instruction signer. An empty seed disables signing and
	// recorded instructions carry no signature.
	var signer *treasurydomain.Signer
	if cfg.Treasury.SigningSeed != "" {
		var err error
		signer, err = treasurydomain.NewSigner(cfg.Treasury.SigningSeed)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize treasury signer: %w", err)
		}
	}

	// 3. Initialize settlement gateway client. Without a base URL submissions
	// fail terminally instead of reaching a provider.
	var gateway treasuryservice.SettlementGateway
	if cfg.Treasury.SettlementBaseURL != "" {
		gateway = settlement.NewClient(settlement.Config{
			BaseURL:      cfg.Treasury.SettlementBaseURL,
			TokenURL:     cfg.Treasury.OAuthTokenURL,
			ClientID:     cfg.Treasury.OAuthClientID,
			ClientSecret: cfg.Treasury.OAuthClientSecret,
		}, logger)
	}

	// 4. Initialize Service
	service := treasuryservice.NewTreasuryService(repo, clubs, signer, gateway, clock.NewRealClock(), logger, metrics, tracer, db)

	// 5. Initialize Handlers
	handlers := treasuryhandlers.NewTreasuryHandlers(service, logger, tracer)

	// 6. Initialize Router
	treasuryRouter := treasuryrouter.NewTreasuryRouter(
		logger,
		router,
		eventBus,
		eventBus,
		helpers,
		tracer,
	)

	// 7. Configure the router with handlers
	if err := treasuryRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure treasury router: %w", err)
	}

	return &Module{
		TreasuryService: service,
		TreasuryRouter:  treasuryRouter,
		observability:   obs,
	}, nil
}

// Run starts the treasury module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting treasury module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Treasury module goroutine stopped")
}

// Close shuts down the treasury module.
func (m *Module) Close() error {
	logger := m.observability.Provider.Logger
	logger.Info("Stopping treasury module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.TreasuryRouter != nil {
		if err := m.TreasuryRouter.Close(); err != nil {
			logger.Error("Error closing TreasuryRouter from module", "error", err)
			return fmt.Errorf("error closing TreasuryRouter: %w", err)
		}
	}

	logger.Info("Treasury module stopped")
	return nil
}
