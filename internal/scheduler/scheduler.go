// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of background work.
type Job interface {
	Run() error
	Name() string
}

// Scheduler runs registered jobs on their schedules.
// A scheduled run is skipped while the previous run of the same job is still going.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a Scheduler. Schedules accept an optional seconds field.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		log: log.With().Str("component", "scheduler").Logger(),
	}
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop halts the schedule and waits for running jobs to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers job under a cron spec such as "@every 1m" or "0 */5 * * * *".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	if _, err := s.cron.AddFunc(schedule, func() { _ = s.run(job) }); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", schedule, job.Name(), err)
	}

	s.log.Info().Str("schedule", schedule).Str("job", job.Name()).Msg("Job registered")
	return nil
}

// RunNow runs job once outside its schedule, e.g. to catch up at startup.
func (s *Scheduler) RunNow(job Job) error {
	return s.run(job)
}

func (s *Scheduler) run(job Job) error {
	start := time.Now()
	err := job.Run()

	event := s.log.Debug()
	if err != nil {
		event = s.log.Error().Err(err)
	}
	event.Str("job", job.Name()).Dur("duration", time.Since(start)).Msg("Job finished")

	return err
}
