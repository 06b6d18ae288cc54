package clubintegrationtests

import (
	"context"
	"log"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	clubservice "github.com/osusu-club/osusu-service/app/modules/club/application"
	clubdb "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/repositories"
	treasuryservice "github.com/osusu-club/osusu-service/app/modules/treasury/application"
	treasurydb "github.com/osusu-club/osusu-service/app/modules/treasury/infrastructure/repositories"
	"github.com/osusu-club/osusu-service/integration_tests/testutils"
	"github.com/osusu-club/osusu-service/internal/clock"
	clubmetrics "github.com/osusu-club/osusu-service/internal/observability/metrics/club"
	treasurymetrics "github.com/osusu-club/osusu-service/internal/observability/metrics/treasury"
)

// Global variables for the test environment, initialized once.
var (
	testEnv     *testutils.TestEnvironment
	testEnvOnce sync.Once
	testEnvErr  error
)

// TestDeps holds dependencies needed by individual tests.
type TestDeps struct {
	Ctx      context.Context
	Repo     clubdb.Repository
	BunDB    *bun.DB
	Service  clubservice.Service
	Treasury treasuryservice.Service
	Cleanup  func()
}

// noopScheduler satisfies the notification port without a running queue;
// these tests exercise the lifecycle, not the reminders.
type noopScheduler struct{}

func (noopScheduler) ScheduleWithdrawalWindow(context.Context, uuid.UUID, time.Time) error { return nil }
func (noopScheduler) ScheduleContributionReminder(context.Context, uuid.UUID, time.Time) error {
	return nil
}
func (noopScheduler) CancelClubJobs(context.Context, uuid.UUID) error { return nil }

func GetTestEnv(t *testing.T) *testutils.TestEnvironment {
	t.Helper()

	testEnvOnce.Do(func() {
		log.Println("Initializing club service test environment...")
		env, err := testutils.NewTestEnvironment(t)
		if err != nil {
			testEnvErr = err
			log.Printf("Failed to set up test environment: %v", err)
		} else {
			log.Println("Club service test environment initialized successfully.")
			testEnv = env
		}
	})

	if testEnvErr != nil {
		t.Fatalf("Club service test environment initialization failed: %v", testEnvErr)
	}

	if testEnv == nil {
		t.Fatalf("Club service test environment not initialized")
	}

	return testEnv
}

func SetupTestClubService(t *testing.T) TestDeps {
	t.Helper()

	env := GetTestEnv(t)

	resetCtx, resetCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer resetCancel()
	if err := env.Reset(resetCtx); err != nil {
		t.Fatalf("Failed to reset environment: %v", err)
	}

	repo := clubdb.NewRepository(env.DB)

	// Use a logger that writes to test output for debugging
	testLogger := slog.New(slog.NewTextHandler(testWriter{t: t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	noOpTracer := noop.NewTracerProvider().Tracer("test_club_service")

	// Real treasury service so withdrawal settlement records instructions in
	// the same transaction. No signer, no gateway: transfers stay pending.
	treasury := treasuryservice.NewTreasuryService(
		treasurydb.NewRepository(env.DB),
		repo,
		nil,
		nil,
		clock.NewRealClock(),
		testLogger,
		treasurymetrics.NewNoop(),
		noOpTracer,
		env.DB,
	)

	service := clubservice.NewClubService(
		repo,
		treasury,
		noopScheduler{},
		clock.NewRealClock(),
		testLogger,
		clubmetrics.NewNoop(),
		noOpTracer,
		env.DB,
	)

	cleanup := func() {}

	t.Cleanup(cleanup)

	return TestDeps{
		Ctx:      env.Ctx,
		Repo:     repo,
		BunDB:    env.DB,
		Service:  service,
		Treasury: treasury,
		Cleanup:  cleanup,
	}
}

// testWriter wraps a testing.T to implement io.Writer for slog
type testWriter struct {
	t *testing.T
}

func (tw testWriter) Write(p []byte) (n int, err error) {
	tw.t.Log(string(p))
	return len(p), nil
}
