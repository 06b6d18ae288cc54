package clubqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"

	clubservice "github.com/osusu-club/osusu-service/app/modules/club/application"
	clubdb "github.com/osusu-club/osusu-service/app/modules/club/infrastructure/repositories"
	"github.com/osusu-club/osusu-service/internal/clock"
	"github.com/osusu-club/osusu-service/internal/eventbus"
	"github.com/osusu-club/osusu-service/internal/observability/attr"
	"github.com/osusu-club/osusu-service/internal/utils"
)

// Metrics interface (using the existing club metrics)
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// QueueService interface defines the contract for job scheduling operations
type QueueService interface {
	// ScheduleWithdrawalWindow schedules a window-opened notification for openAt
	ScheduleWithdrawalWindow(ctx context.Context, clubID uuid.UUID, openAt time.Time) error
	// ScheduleContributionReminder schedules the first deposit reminder for remindAt
	ScheduleContributionReminder(ctx context.Context, clubID uuid.UUID, remindAt time.Time) error
	// CancelClubJobs cancels all scheduled jobs for a specific club
	CancelClubJobs(ctx context.Context, clubID uuid.UUID) error
	// GetScheduledJobs returns information about scheduled jobs for a club (for debugging)
	GetScheduledJobs(ctx context.Context, clubID uuid.UUID) ([]JobInfo, error)
	// HealthCheck verifies the queue service is healthy
	HealthCheck(ctx context.Context) error
	// Start starts the queue service
	Start(ctx context.Context) error
	// Stop stops the queue service
	Stop(ctx context.Context) error
}

// Ensure Service implements QueueService and the application's scheduler port
var (
	_ QueueService          = (*Service)(nil)
	_ clubservice.Scheduler = (*Service)(nil)
)

// Service handles job scheduling for the club module using River
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	db      *bun.DB
	metrics Metrics
}

// NewService creates a new River-based queue service for club notifications
func NewService(ctx context.Context, bunDB *bun.DB, repo clubdb.Repository, logger *slog.Logger, dsn string, metrics Metrics, eventBus eventbus.EventBus, helpers utils.Helpers) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_club_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	ctxLogger.Info("Initializing Club queue service")

	// Create pgx pool for River (River requires pgx, not database/sql)
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		ctxLogger.Error("Failed to parse DSN for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		ctxLogger.Error("Failed to create pgx pool for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Create River workers registry and register workers
	workers := river.NewWorkers()

	river.AddWorker(workers, NewWithdrawalWindowWorker(ctxLogger, repo, eventBus, helpers))
	river.AddWorker(workers, NewContributionReminderWorker(ctxLogger, repo, eventBus, helpers, clock.NewRealClock()))

	// Create River client with configuration
	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 50},
			"club":             {MaxWorkers: 25}, // Dedicated queue for club jobs
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	service := &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: metrics,
	}

	duration := time.Since(start)
	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", duration)

	ctxLogger.Info("Club queue service initialized successfully")
	return service, nil
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_service", "river")

	s.logger.Info("Starting Club queue service")

	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", "river")
		return fmt.Errorf("failed to start River client: %w", err)
	}

	duration := time.Since(start)
	s.metrics.RecordOperationSuccess(ctx, "start_service", "river")
	s.metrics.RecordOperationDuration(ctx, "start_service", "river", duration)

	s.logger.Info("Club queue service started successfully")
	return nil
}

// Stop stops the River queue service and releases the pgx pool
func (s *Service) Stop(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "stop_service", "river")

	s.logger.Info("Stopping Club queue service")

	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", "river")
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()

	duration := time.Since(start)
	s.metrics.RecordOperationSuccess(ctx, "stop_service", "river")
	s.metrics.RecordOperationDuration(ctx, "stop_service", "river", duration)

	s.logger.Info("Club queue service stopped successfully")
	return nil
}

// ScheduleWithdrawalWindow schedules a window-opened notification. A past
// openAt is legal: the window is already due and the job runs immediately.
func (s *Service) ScheduleWithdrawalWindow(ctx context.Context, clubID uuid.UUID, openAt time.Time) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "schedule_withdrawal_window", "river")

	ctxLogger := s.logger.With(
		attr.String("club_id", clubID.String()),
		attr.Time("open_at", openAt),
		attr.String("operation", "schedule_withdrawal_window"),
	)

	ctxLogger.Info("Scheduling withdrawal window job")

	now := time.Now()
	if openAt.Before(now) {
		ctxLogger.Info("Withdrawal window already due, job will run immediately",
			attr.Duration("overdue_by", now.Sub(openAt)))
	}

	job := WithdrawalWindowJob{
		ClubID:  clubID,
		OpensAt: openAt,
	}

	jobResult, err := s.client.Insert(ctx, job, &river.InsertOpts{
		Queue:       "club",
		ScheduledAt: openAt,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true, // Prevent duplicate scheduling for the same club and window
		},
	})
	if err != nil {
		ctxLogger.Error("Failed to schedule withdrawal window job", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "schedule_withdrawal_window", "river")
		return fmt.Errorf("failed to schedule withdrawal window job: %w", err)
	}

	duration := time.Since(start)
	s.metrics.RecordOperationSuccess(ctx, "schedule_withdrawal_window", "river")
	s.metrics.RecordOperationDuration(ctx, "schedule_withdrawal_window", "river", duration)

	ctxLogger.Info("Withdrawal window job scheduled successfully",
		attr.Duration("delay", openAt.Sub(now)),
		attr.Int64("job_id", jobResult.Job.ID))
	return nil
}

// ScheduleContributionReminder schedules the first deposit reminder. The
// worker keeps the cadence going after that by snoozing itself.
func (s *Service) ScheduleContributionReminder(ctx context.Context, clubID uuid.UUID, remindAt time.Time) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "schedule_contribution_reminder", "river")

	ctxLogger := s.logger.With(
		attr.String("club_id", clubID.String()),
		attr.Time("remind_at", remindAt),
		attr.String("operation", "schedule_contribution_reminder"),
	)

	ctxLogger.Info("Scheduling contribution reminder job")

	now := time.Now()
	if remindAt.Before(now) {
		// Clubs may be created with a start time already in the past; the
		// first reminder then fires right away.
		ctxLogger.Info("Reminder time already past, job will run immediately",
			attr.Duration("overdue_by", now.Sub(remindAt)))
	}

	job := ContributionReminderJob{
		ClubID: clubID,
	}

	jobResult, err := s.client.Insert(ctx, job, &river.InsertOpts{
		Queue:       "club",
		ScheduledAt: remindAt,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true, // Prevent duplicate scheduling for the same club
		},
	})
	if err != nil {
		ctxLogger.Error("Failed to schedule contribution reminder job", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "schedule_contribution_reminder", "river")
		return fmt.Errorf("failed to schedule contribution reminder job: %w", err)
	}

	duration := time.Since(start)
	s.metrics.RecordOperationSuccess(ctx, "schedule_contribution_reminder", "river")
	s.metrics.RecordOperationDuration(ctx, "schedule_contribution_reminder", "river", duration)

	ctxLogger.Info("Contribution reminder job scheduled successfully",
		attr.Duration("delay", remindAt.Sub(now)),
		attr.Int64("job_id", jobResult.Job.ID))
	return nil
}

// CancelClubJobs cancels all scheduled jobs for a specific club
func (s *Service) CancelClubJobs(ctx context.Context, clubID uuid.UUID) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "cancel_club_jobs", "river")

	ctxLogger := s.logger.With(
		attr.String("club_id", clubID.String()),
		attr.String("operation", "cancel_club_jobs"),
	)

	ctxLogger.Info("Cancelling scheduled jobs for club")

	type RiverJobRow struct {
		ID          int64                  `bun:"id"`
		Kind        string                 `bun:"kind"`
		State       string                 `bun:"state"`
		Args        map[string]interface{} `bun:"args"`
		ScheduledAt *time.Time             `bun:"scheduled_at"`
	}

	var jobs []RiverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "args", "scheduled_at").
		Where("kind IN (?, ?)", "club_withdrawal_window", "club_contribution_reminder").
		Where("state IN (?, ?)", "available", "scheduled").
		Where("args->>'club_id' = ?", clubID.String()).
		Scan(ctx, &jobs)
	if err != nil {
		ctxLogger.Error("Failed to query jobs for cancellation", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "cancel_club_jobs", "river")
		return fmt.Errorf("failed to query jobs for cancellation: %w", err)
	}

	if len(jobs) == 0 {
		ctxLogger.Info("No jobs found to cancel")
		duration := time.Since(start)
		s.metrics.RecordOperationSuccess(ctx, "cancel_club_jobs", "river")
		s.metrics.RecordOperationDuration(ctx, "cancel_club_jobs", "river", duration)
		return nil
	}

	// Cancel each job
	cancelledCount := 0
	for _, job := range jobs {
		_, err := s.client.JobCancel(ctx, job.ID)
		if err != nil {
			ctxLogger.Warn("Failed to cancel job",
				attr.Int64("job_id", job.ID),
				attr.String("job_kind", job.Kind),
				attr.Error(err))
			continue
		}
		cancelledCount++
	}

	duration := time.Since(start)
	if cancelledCount == len(jobs) {
		s.metrics.RecordOperationSuccess(ctx, "cancel_club_jobs", "river")
	} else {
		s.metrics.RecordOperationFailure(ctx, "cancel_club_jobs", "river")
	}
	s.metrics.RecordOperationDuration(ctx, "cancel_club_jobs", "river", duration)

	ctxLogger.Info("Jobs cancellation completed",
		attr.Int("total_found", len(jobs)),
		attr.Int("cancelled_count", cancelledCount))

	return nil
}

// GetScheduledJobs returns information about scheduled jobs for a club (for debugging)
func (s *Service) GetScheduledJobs(ctx context.Context, clubID uuid.UUID) ([]JobInfo, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "get_scheduled_jobs", "river")

	ctxLogger := s.logger.With(
		attr.String("club_id", clubID.String()),
		attr.String("operation", "get_scheduled_jobs"),
	)

	type RiverJobRow struct {
		ID          int64                  `bun:"id"`
		Kind        string                 `bun:"kind"`
		State       string                 `bun:"state"`
		Args        map[string]interface{} `bun:"args"`
		ScheduledAt *time.Time             `bun:"scheduled_at"`
		CreatedAt   time.Time              `bun:"created_at"`
		Attempt     int16                  `bun:"attempt"`
		MaxAttempts int16                  `bun:"max_attempts"`
	}

	var jobs []RiverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "args", "scheduled_at", "created_at", "attempt", "max_attempts").
		Where("kind IN (?, ?)", "club_withdrawal_window", "club_contribution_reminder").
		Where("args->>'club_id' = ?", clubID.String()).
		Order("scheduled_at ASC NULLS LAST", "created_at ASC").
		Scan(ctx, &jobs)
	if err != nil {
		ctxLogger.Error("Failed to query scheduled jobs", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "get_scheduled_jobs", "river")
		return nil, fmt.Errorf("failed to query scheduled jobs: %w", err)
	}

	// Convert to JobInfo
	result := make([]JobInfo, len(jobs))
	for i, job := range jobs {
		scheduledAt := ""
		if job.ScheduledAt != nil {
			scheduledAt = job.ScheduledAt.Format(time.RFC3339)
		}

		result[i] = JobInfo{
			ID:          job.ID,
			Kind:        job.Kind,
			ClubID:      clubID.String(),
			State:       job.State,
			ScheduledAt: scheduledAt,
			CreatedAt:   job.CreatedAt.Format(time.RFC3339),
			Attempt:     int(job.Attempt),
			MaxAttempts: int(job.MaxAttempts),
		}
	}

	duration := time.Since(start)
	s.metrics.RecordOperationSuccess(ctx, "get_scheduled_jobs", "river")
	s.metrics.RecordOperationDuration(ctx, "get_scheduled_jobs", "river", duration)

	ctxLogger.Info("Retrieved scheduled jobs",
		attr.Int("job_count", len(result)))

	return result, nil
}

// HealthCheck verifies the queue service is healthy
func (s *Service) HealthCheck(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "health_check", "river")

	if s.client == nil {
		s.metrics.RecordOperationFailure(ctx, "health_check", "river")
		return fmt.Errorf("river client is nil")
	}

	// Try a simple database query to verify connectivity
	var count int
	err := s.db.NewSelect().
		Table("river_job").
		ColumnExpr("COUNT(*)").
		Scan(ctx, &count)
	if err != nil {
		s.logger.Error("Queue service health check failed", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "health_check", "river")
		return fmt.Errorf("queue service health check failed: %w", err)
	}

	duration := time.Since(start)
	s.metrics.RecordOperationSuccess(ctx, "health_check", "river")
	s.metrics.RecordOperationDuration(ctx, "health_check", "river", duration)

	s.logger.Debug("Queue service health check passed", attr.Int("total_jobs", count))
	return nil
}

// GetClient returns the underlying River client for advanced operations
func (s *Service) GetClient() *river.Client[pgx.Tx] {
	return s.client
}
