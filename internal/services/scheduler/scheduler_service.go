// Package scheduler runs cron-based background maintenance: knowledge
// directory rescans and store garbage collection.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/spectrumbridge/bridge/internal/interfaces"
)

// jobEntry tracks one registered job with its run metadata.
type jobEntry struct {
	name      string
	schedule  string
	handler   func() error
	cronID    cron.EntryID
	lastRun   *time.Time
	lastError string
	isRunning bool
}

// Service implements interfaces.SchedulerService.
type Service struct {
	cron    *cron.Cron
	logger  arbor.ILogger
	mu      sync.Mutex
	jobs    map[string]*jobEntry
	running bool
}

// Compile-time interface assertion
var _ interfaces.SchedulerService = (*Service)(nil)

// NewService creates a scheduler service. Jobs registered before Start run on
// their schedules once Start is called.
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		cron:   cron.New(),
		logger: logger,
		jobs:   make(map[string]*jobEntry),
	}
}

// RegisterJob registers a named job with a standard 5-field cron schedule.
// Registering an already-known name replaces its schedule and handler.
func (s *Service) RegisterJob(name string, schedule string, handler func() error) error {
	if name == "" {
		return fmt.Errorf("job name is required")
	}
	if handler == nil {
		return fmt.Errorf("job handler is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[name]; ok {
		s.cron.Remove(existing.cronID)
	}

	entry := &jobEntry{
		name:     name,
		schedule: schedule,
		handler:  handler,
	}
	cronID, err := s.cron.AddFunc(schedule, func() { s.runJob(entry) })
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", name, err)
	}
	entry.cronID = cronID
	s.jobs[name] = entry

	s.logger.Info().
		Str("job", name).
		Str("schedule", schedule).
		Msg("Scheduler job registered")
	return nil
}

// runJob executes one job, skipping the run if the previous one is still
// going (a slow ingest rescan must not pile up).
func (s *Service) runJob(entry *jobEntry) {
	s.mu.Lock()
	if entry.isRunning {
		s.mu.Unlock()
		s.logger.Warn().Str("job", entry.name).Msg("Previous run still in progress, skipping")
		return
	}
	entry.isRunning = true
	s.mu.Unlock()

	start := time.Now()
	s.logger.Debug().Str("job", entry.name).Msg("Scheduled job starting")

	err := entry.handler()

	s.mu.Lock()
	entry.isRunning = false
	entry.lastRun = &start
	if err != nil {
		entry.lastError = err.Error()
	} else {
		entry.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().
			Err(err).
			Str("job", entry.name).
			Msg("Scheduled job failed")
		return
	}
	s.logger.Info().
		Str("job", entry.name).
		Dur("duration", time.Since(start)).
		Msg("Scheduled job completed")
}

// Start begins running registered jobs on their schedules.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	s.cron.Start()
	s.running = true

	s.logger.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
	return nil
}

// Stop halts the scheduler, waiting for running jobs to finish.
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	// Stop returns a context that is done once in-flight jobs complete.
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// GetJobStatuses returns a snapshot of every registered job's status.
func (s *Service) GetJobStatuses() map[string]*interfaces.JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make(map[string]*interfaces.JobStatus, len(s.jobs))
	for name, entry := range s.jobs {
		status := &interfaces.JobStatus{
			Name:      name,
			Schedule:  entry.schedule,
			LastRun:   entry.lastRun,
			LastError: entry.lastError,
		}
		if cronEntry := s.cron.Entry(entry.cronID); cronEntry.ID == entry.cronID && !cronEntry.Next.IsZero() {
			next := cronEntry.Next
			status.NextRun = &next
		}
		statuses[name] = status
	}
	return statuses
}
