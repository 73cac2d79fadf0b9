package interfaces

import "time"

// JobStatus represents the current status of a scheduled job
type JobStatus struct {
	Name      string
	Schedule  string
	LastRun   *time.Time
	NextRun   *time.Time
	LastError string
}

// SchedulerService manages cron-based background maintenance (knowledge
// directory rescans, store garbage collection).
type SchedulerService interface {
	// Start begins running registered jobs on their schedules
	Start() error

	// Stop halts the scheduler, waiting for running jobs to finish
	Stop() error

	// RegisterJob registers a new job with the scheduler
	RegisterJob(name string, schedule string, handler func() error) error

	// GetJobStatuses returns all job statuses
	GetJobStatuses() map[string]*JobStatus
}
