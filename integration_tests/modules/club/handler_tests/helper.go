package clubhandlerintegrationtests

import (
	"context"
	"io"
	"log"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace/noop"

	clubmodule "github.com/osusu-club/osusu-service/app/modules/club"
	clubdb "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/repositories"
	treasuryservice "github.com/osusu-club/osusu-service/app/modules/treasury/application"
	treasurydb "github.com/osusu-club/osusu-service/app/modules/treasury/infrastructure/repositories"
	"github.com/osusu-club/osusu-service/integration_tests/testutils"
	"github.com/osusu-club/osusu-service/internal/clock"
	"github.com/osusu-club/osusu-service/internal/eventbus"
	"github.com/osusu-club/osusu-service/internal/observability"
	clubmetrics "github.com/osusu-club/osusu-service/internal/observability/metrics/club"
	eventbusmetrics "github.com/osusu-club/osusu-service/internal/observability/metrics/eventbus"
	treasurymetrics "github.com/osusu-club/osusu-service/internal/observability/metrics/treasury"
	"github.com/osusu-club/osusu-service/internal/utils"
)

var standardStreamNames = []string{"club", "treasury"}

var (
	testEnv     *testutils.TestEnvironment
	testEnvOnce sync.Once
	testEnvErr  error
)

// HandlerTestDeps wires a running club module against a directly-constructed
// treasury service. No treasury router runs in this suite, so tests may
// subscribe to treasury topics without competing for the shared durable, and
// recorded transfers stay pending in the database.
type HandlerTestDeps struct {
	*testutils.TestEnvironment
	ClubModule      *clubmodule.Module
	TreasuryService treasuryservice.Service
	Router          *message.Router
	EventBus        eventbus.EventBus
	TestHelpers     utils.Helpers
}

func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()

	testEnvOnce.Do(func() {
		log.Println("Initializing club handler test environment...")
		env, err := testutils.NewTestEnvironment(t)
		if err != nil {
			testEnvErr = err
			log.Printf("Failed to set up test environment: %v", err)
		} else {
			log.Println("Club handler test environment initialized successfully.")
			testEnv = env
		}
	})

	if testEnvErr != nil {
		t.Fatalf("Club handler test environment initialization failed: %v", testEnvErr)
	}

	if testEnv == nil {
		t.Fatalf("Club handler test environment not initialized")
	}

	return testEnv
}

func SetupTestClubHandler(t *testing.T) (HandlerTestDeps, func()) {
	t.Helper()

	env := GetTestEnv(t)

	resetCtx, resetCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer resetCancel()
	if err := env.Reset(resetCtx); err != nil {
		t.Fatalf("Failed to reset environment: %v", err)
	}

	watermillLogger := watermill.NopLogger{}
	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	eventBusCtx, eventBusCancel := context.WithCancel(env.Ctx)
	routerRunCtx, routerRunCancel := context.WithCancel(env.Ctx)

	eventBusImpl, err := eventbus.NewEventBus(
		eventBusCtx,
		env.Config.NATS.URL,
		discardLogger,
		"backend",
		eventbusmetrics.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test"),
	)
	if err != nil {
		eventBusCancel()
		t.Fatalf("Failed to create EventBus: %v", err)
	}

	for _, streamName := range standardStreamNames {
		if err := eventBusImpl.CreateStream(env.Ctx, streamName); err != nil {
			eventBusImpl.Close()
			eventBusCancel()
			t.Fatalf("Failed to create required NATS stream %q: %v", streamName, err)
		}
	}

	routerConfig := message.RouterConfig{CloseTimeout: 2 * time.Second}
	watermillRouter, err := message.NewRouter(routerConfig, watermillLogger)
	if err != nil {
		eventBusImpl.Close()
		eventBusCancel()
		t.Fatalf("Failed to create Watermill router: %v", err)
	}

	realHelpers := utils.NewHelper(discardLogger)

	obs := observability.Observability{
		Provider: &observability.Provider{
			Logger: discardLogger,
		},
		Registry: &observability.Registry{
			ClubMetrics:     clubmetrics.NewNoop(),
			TreasuryMetrics: treasurymetrics.NewNoop(),
			EventBusMetrics: eventbusmetrics.NoOpMetrics{},
			Tracer:          noop.NewTracerProvider().Tracer("test"),
		},
	}

	// Treasury service without signer or gateway: recording works, submission
	// is out of scope here.
	treasuryService := treasuryservice.NewTreasuryService(
		treasurydb.NewRepository(env.DB),
		clubdb.NewRepository(env.DB),
		nil,
		nil,
		clock.NewRealClock(),
		discardLogger,
		treasurymetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		env.DB,
	)

	clubModule, err := clubmodule.NewClubModule(
		env.Ctx,
		env.Config,
		obs,
		treasuryService,
		treasuryService,
		eventBusImpl,
		watermillRouter,
		realHelpers,
		nil,
		routerRunCtx,
		env.DB,
	)
	if err != nil {
		eventBusImpl.Close()
		eventBusCancel()
		routerRunCancel()
		t.Fatalf("Failed to create club module: %v", err)
	}

	routerWg := &sync.WaitGroup{}
	routerWg.Add(1)
	go func() {
		defer routerWg.Done()
		if runErr := watermillRouter.Run(routerRunCtx); runErr != nil && runErr != context.Canceled {
			t.Errorf("Watermill router stopped with error: %v", runErr)
		}
	}()

	time.Sleep(500 * time.Millisecond)

	cleanup := func() {
		log.Println("Cleaning up club handler test environment...")
		routerRunCancel()

		if clubModule != nil {
			clubModule.Close()
		}

		if watermillRouter != nil {
			if err := watermillRouter.Close(); err != nil {
				t.Logf("Warning: Failed to close Watermill router: %v", err)
			}
		}

		eventBusCancel()

		if eventBusImpl != nil {
			eventBusImpl.Close()
		}

		waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer waitCancel()

		waitCh := make(chan struct{})
		go func() {
			routerWg.Wait()
			close(waitCh)
		}()

		select {
		case <-waitCh:
			log.Println("Router goroutine finished")
		case <-waitCtx.Done():
			log.Println("WARNING: Router goroutine did not finish within timeout")
		}
	}

	t.Cleanup(cleanup)

	return HandlerTestDeps{
		TestEnvironment: env,
		ClubModule:      clubModule,
		TreasuryService: treasuryService,
		Router:          watermillRouter,
		EventBus:        eventBusImpl,
		TestHelpers:     realHelpers,
	}, cleanup
}
