// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task does one unit of maintenance and reports how many rows it touched.
type Task func(ctx context.Context) (int64, error)

type Job struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Task    Task
}

type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
	jobs map[string]Job
}

func NewScheduler(loc *time.Location, log *zap.Logger) *Scheduler {
	cl := cron.PrintfLogger(zap.NewStdLog(log.Named("cron")))

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:  log,
		jobs: map[string]Job{},
	}
}

func (s *Scheduler) Add(j Job) error {
	if _, dup := s.jobs[j.Name]; dup {
		return fmt.Errorf("job %q already registered", j.Name)
	}
	if j.Timeout <= 0 {
		j.Timeout = time.Minute
	}

	if _, err := s.cron.AddFunc(j.Spec, func() {
		_, _ = s.run(context.Background(), j)
	}); err != nil {
		return fmt.Errorf("job %q: %w", j.Name, err)
	}

	s.jobs[j.Name] = j
	return nil
}

// Run executes a registered job immediately.
func (s *Scheduler) Run(ctx context.Context, name string) (int64, error) {
	j, ok := s.jobs[name]
	if !ok {
		return 0, fmt.Errorf("job %q not registered", name)
	}
	return s.run(ctx, j)
}

func (s *Scheduler) run(ctx context.Context, j Job) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, j.Timeout)
	defer cancel()

	start := time.Now()
	n, err := j.Task(ctx)
	if err != nil {
		s.log.Error("job failed", zap.String("job", j.Name), zap.Error(err))
		return n, err
	}

	if n > 0 {
		s.log.Info("job done",
			zap.String("job", j.Name),
			zap.Int64("affected", n),
			zap.Duration("took", time.Since(start)),
		)
	}
	return n, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop waits for running jobs up to ctx's deadline.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}
