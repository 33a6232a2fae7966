package jobs

import (
	"context"
	"time"

	"anoa.com/alumnihub/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Job is a unit of background maintenance run on a cron schedule.
type Job interface {
	Name() string
	// Schedule is a standard five-field cron expression or a descriptor like "@every 10m".
	Schedule() string
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs on their schedules. Each run gets its own
// timeout so a stuck job cannot pile up.
type Scheduler struct {
	cron    *cron.Cron
	jobs    []Job
	timeout time.Duration
}

func NewScheduler(timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		timeout: timeout,
	}
}

// Register schedules job. A malformed schedule is returned and the job is
// not added.
func (s *Scheduler) Register(job Job) error {
	if _, err := s.cron.AddFunc(job.Schedule(), func() { s.run(job) }); err != nil {
		return err
	}
	s.jobs = append(s.jobs, job)
	logger.WithField("job", job.Name()).Infof("scheduled with %q", job.Schedule())
	return nil
}

func (s *Scheduler) run(job Job) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		logger.WithField("job", job.Name()).WithError(err).Warn("job failed")
		return
	}
	logger.WithField("job", job.Name()).WithField("took", time.Since(start).String()).Debug("job completed")
}

// RunByName runs a registered job once, outside its schedule.
func (s *Scheduler) RunByName(name string) bool {
	for _, job := range s.jobs {
		if job.Name() == name {
			s.run(job)
			return true
		}
	}
	return false
}

func (s *Scheduler) Names() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
