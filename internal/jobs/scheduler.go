package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Scheduler runs the server's background jobs on cron schedules.
type Scheduler struct {
	scheduler  gocron.Scheduler
	instanceID string
}

// NewScheduler creates a scheduler pinned to UTC.
func NewScheduler() (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		scheduler:  scheduler,
		instanceID: uuid.New().String(),
	}, nil
}

// RegisterCron registers a job under a standard 5-field cron expression.
// The expression is validated up front so a config typo fails at startup,
// not at first fire time.
func (s *Scheduler) RegisterCron(name, expr string, task func(ctx context.Context)) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q for job %s: %w", expr, name, err)
	}

	_, err := s.scheduler.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(func() {
			task(context.Background())
		}),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", name, err)
	}

	log.Printf("✅ [SCHEDULER] Registered job: %s (%s)", name, expr)
	return nil
}

// Start begins running all registered jobs.
func (s *Scheduler) Start() {
	s.scheduler.Start()
	log.Printf("🚀 [SCHEDULER] Started (instance %s)", s.instanceID)
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	log.Println("⏹️ [SCHEDULER] Stopping...")
	return s.scheduler.Shutdown()
}
