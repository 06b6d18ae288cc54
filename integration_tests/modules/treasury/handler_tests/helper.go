package treasuryhandlerintegrationtests

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/nats-io/nkeys"
	"go.opentelemetry.io/otel/trace/noop"

	clubdomain "github.com/osusu-club/osusu-service/app/modules/club/domain"
	clubdb "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/repositories"
	treasurymodule "github.com/osusu-club/osusu-service/app/modules/treasury"
	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
	"github.com/osusu-club/osusu-service/config"
	"github.com/osusu-club/osusu-service/integration_tests/testutils"
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

// submittedTransfer is one instruction the fake settlement provider accepted.
type submittedTransfer struct {
	IdempotencyKey string
	Instruction    treasurytypes.TransferInstruction
}

// fakeSettlement stands in for the settlement provider. It serves the OAuth2
// token endpoint the client fetches credentials from and records every
// instruction posted to /v1/transfers while the configured status is a
// success.
type fakeSettlement struct {
	*httptest.Server

	mu        sync.Mutex
	status    int
	submitted []submittedTransfer
}

func newFakeSettlement() *fakeSettlement {
	fake := &fakeSettlement{status: http.StatusAccepted}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"test-token","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v1/transfers", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var instruction treasurytypes.TransferInstruction
		if err := json.Unmarshal(body, &instruction); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		fake.mu.Lock()
		status := fake.status
		if status < http.StatusBadRequest {
			fake.submitted = append(fake.submitted, submittedTransfer{
				IdempotencyKey: r.Header.Get("Idempotency-Key"),
				Instruction:    instruction,
			})
		}
		fake.mu.Unlock()

		w.WriteHeader(status)
		if status >= http.StatusBadRequest {
			w.Write([]byte(`{"error":"instruction refused"}`))
		}
	})

	fake.Server = httptest.NewServer(mux)
	return fake
}

// respondWith sets the status code returned for subsequent submissions.
func (f *fakeSettlement) respondWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

// submissions returns a copy of every accepted submission so far.
func (f *fakeSettlement) submissions() []submittedTransfer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]submittedTransfer(nil), f.submitted...)
}

// HandlerTestDeps wires a running treasury module against a fake settlement
// provider. The module consumes the request topics, so tests subscribe to
// outcome topics only; nothing else competes for those on the shared durable.
type HandlerTestDeps struct {
	*testutils.TestEnvironment
	TreasuryModule *treasurymodule.Module
	ClubRepo       clubdb.Repository
	Settlement     *fakeSettlement
	Router         *message.Router
	EventBus       eventbus.EventBus
	TestHelpers    utils.Helpers
}

func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()

	testEnvOnce.Do(func() {
		log.Println("Initializing treasury handler test environment...")
		env, err := testutils.NewTestEnvironment(t)
		if err != nil {
			testEnvErr = err
			log.Printf("Failed to set up test environment: %v", err)
		} else {
			log.Println("Treasury handler test environment initialized successfully.")
			testEnv = env
		}
	})

	if testEnvErr != nil {
		t.Fatalf("Treasury handler test environment initialization failed: %v", testEnvErr)
	}

	if testEnv == nil {
		t.Fatalf("Treasury handler test environment not initialized")
	}

	return testEnv
}

func SetupTestTreasuryHandler(t *testing.T) (HandlerTestDeps, func()) {
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

	settlement := newFakeSettlement()

	kp, err := nkeys.CreateAccount()
	if err != nil {
		settlement.Close()
		eventBusImpl.Close()
		eventBusCancel()
		t.Fatalf("Failed to create signing key pair: %v", err)
	}
	seed, err := kp.Seed()
	if err != nil {
		settlement.Close()
		eventBusImpl.Close()
		eventBusCancel()
		t.Fatalf("Failed to extract signing seed: %v", err)
	}

	// Copy the shared config so the settlement endpoints of this suite never
	// leak into another package's environment.
	cfg := *env.Config
	cfg.Treasury = config.TreasuryConfig{
		SigningSeed:       string(seed),
		SettlementBaseURL: settlement.URL,
		OAuthTokenURL:     settlement.URL + "/oauth/token",
		OAuthClientID:     "test-client",
		OAuthClientSecret: "test-secret",
	}

	clubRepo := clubdb.NewRepository(env.DB)

	module, err := treasurymodule.NewTreasuryModule(
		env.Ctx,
		&cfg,
		obs,
		clubRepo,
		eventBusImpl,
		watermillRouter,
		realHelpers,
		routerRunCtx,
		env.DB,
	)
	if err != nil {
		settlement.Close()
		eventBusImpl.Close()
		eventBusCancel()
		routerRunCancel()
		t.Fatalf("Failed to create treasury module: %v", err)
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
		log.Println("Cleaning up treasury handler test environment...")
		routerRunCancel()

		if module != nil {
			module.Close()
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

		settlement.Close()

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
		TreasuryModule:  module,
		ClubRepo:        clubRepo,
		Settlement:      settlement,
		Router:          watermillRouter,
		EventBus:        eventBusImpl,
		TestHelpers:     realHelpers,
	}, cleanup
}

// seedClub persists a club with a filled roster straight through the
// repository; the club module's handlers are not part of this suite.
func seedClub(t *testing.T, deps HandlerTestDeps, members []sharedtypes.AccountID, contribution sharedtypes.Amount) *clubdomain.Club {
	t.Helper()

	now := time.Now().UTC()
	cfg := clubdomain.Config{
		Name:               "Reconciliation Club",
		Creator:            members[0],
		ContributionAmount: contribution,
		PenaltyAmount:      500,
		MaxMembers:         len(members),
		StartTime:          now.Add(-time.Hour),
		EndTime:            now.Add(24 * time.Hour),
		PayoutInterval:     time.Second,
	}

	club, err := clubdomain.NewClub(uuid.New(), cfg, now)
	if err != nil {
		t.Fatalf("Failed to build club: %v", err)
	}
	for _, account := range members {
		if _, err := club.Join(account, sharedtypes.AccountKindIndividual, cfg.PenaltyAmount, now); err != nil {
			t.Fatalf("Failed to admit %s: %v", account, err)
		}
	}

	if err := deps.ClubRepo.Create(deps.Ctx, deps.DB, club); err != nil {
		t.Fatalf("Failed to insert club: %v", err)
	}
	if err := deps.ClubRepo.Save(deps.Ctx, deps.DB, club); err != nil {
		t.Fatalf("Failed to persist club members: %v", err)
	}
	return club
}

// recordPendingTransfer writes a signed pending payout through the module's
// service, the same path a settled withdrawal takes.
func recordPendingTransfer(t *testing.T, deps HandlerTestDeps, clubID uuid.UUID, destination sharedtypes.AccountID, amount sharedtypes.Amount) treasurytypes.TransferInstruction {
	t.Helper()

	instruction, err := deps.TreasuryModule.TreasuryService.RecordTransfer(deps.Ctx, deps.DB, treasurytypes.TransferInstruction{
		ClubID:      clubID,
		Destination: destination,
		Amount:      amount,
		Kind:        treasurytypes.TransferKindPayout,
		Cycle:       1,
	})
	if err != nil {
		t.Fatalf("Failed to record transfer: %v", err)
	}
	return instruction
}
