// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"time"

	"github.com/aristath/yieldrouter/internal/events"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// scheduleParser accepts 5- and 6-field cron specs and descriptors.
var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Reporter is implemented by jobs that publish per-run counts with their
// completion event.
type Reporter interface {
	Report() map[string]int64
}

// EventEmitter publishes typed events.
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
}

// Scheduler manages background jobs
type Scheduler struct {
	cron    *cron.Cron
	emitter EventEmitter
	log     zerolog.Logger
}

// New creates a new scheduler. emitter may be nil.
func New(emitter EventEmitter, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithParser(scheduleParser)),
		emitter: emitter,
		log:     log.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "@daily"             - Every day at midnight
//   - "@every 30s"         - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		_ = s.run(job)
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return s.run(job)
}

func (s *Scheduler) run(job Job) error {
	start := time.Now()
	s.emit(&events.JobStatusData{JobName: job.Name(), Status: "started", Timestamp: start})

	err := job.Run()
	duration := time.Since(start)

	if err != nil {
		s.log.Error().
			Err(err).
			Str("job", job.Name()).
			Dur("duration", duration).
			Msg("Job failed")
		s.emit(&events.JobStatusData{
			JobName:   job.Name(),
			Status:    "failed",
			Error:     err.Error(),
			Duration:  duration.Seconds(),
			Timestamp: time.Now(),
		})
		return err
	}

	s.log.Debug().Str("job", job.Name()).Dur("duration", duration).Msg("Job completed")
	completed := &events.JobStatusData{
		JobName:   job.Name(),
		Status:    "completed",
		Duration:  duration.Seconds(),
		Timestamp: time.Now(),
	}
	if r, ok := job.(Reporter); ok {
		completed.Details = r.Report()
	}
	s.emit(completed)
	return nil
}

func (s *Scheduler) emit(data events.EventData) {
	if s.emitter != nil {
		s.emitter.EmitTyped("scheduler", data)
	}
}
