package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Job is a scheduled unit of work.
type Job func(ctx context.Context) error

type entry struct {
	name string
	spec string
	job  Job
}

// Scheduler runs jobs on cron schedules until its context is canceled.
type Scheduler struct {
	logger *zap.Logger

	mu      sync.Mutex
	entries []entry
}

// NewScheduler returns an empty scheduler. logger may be nil.
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{logger: logger}
}

// Add registers job under name to run on spec. An empty spec disables the job.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if spec == "" {
		return nil
	}
	if _, err := cronParser.Parse(spec); err != nil {
		return fmt.Errorf("history: schedule %s: %w", name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry{name: name, spec: spec, job: job})
	return nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Run starts every registered job and blocks until ctx is canceled, then
// waits for running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithParser(cronParser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	s.mu.Lock()
	for _, e := range s.entries {
		if _, err := c.AddFunc(e.spec, func() { s.run(ctx, e) }); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("history: schedule %s: %w", e.name, err)
		}
	}
	n := len(s.entries)
	s.mu.Unlock()

	s.logger.Info("scheduler started", zap.Int("jobs", n))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) run(ctx context.Context, e entry) {
	if ctx.Err() != nil {
		return
	}
	if err := e.job(ctx); err != nil {
		s.logger.Error("scheduled job failed", zap.String("job", e.name), zap.Error(err))
		return
	}
	s.logger.Debug("scheduled job done", zap.String("job", e.name))
}
