package schedule

import (
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler handles cron-based background jobs (inactivity sweep)
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]cron.EntryID
	jobsMux sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()), // Support seconds in cron expressions
		jobs: make(map[string]cron.EntryID),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	log.Println("⏰ Starting scheduler...")
	s.cron.Start()
	log.Println("✅ Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Println("⏰ Stopping scheduler...")
	s.cron.Stop()
	log.Println("✅ Scheduler stopped")
}

// AddJob registers a named job with a cron expression
// (e.g. "*/60 * * * * *" for every 60 seconds)
func (s *Scheduler) AddJob(jobID string, schedule string, job func()) error {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	// Remove existing job if any
	if entryID, exists := s.jobs[jobID]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, jobID)
	}

	entryID, err := s.cron.AddFunc(schedule, job)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.jobs[jobID] = entryID
	log.Printf("   ✅ Scheduled job %s: %s", jobID, schedule)

	return nil
}

// RemoveJob removes a job from the scheduler
func (s *Scheduler) RemoveJob(jobID string) {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	if entryID, exists := s.jobs[jobID]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, jobID)
		log.Printf("   ✅ Removed scheduled job: %s", jobID)
	}
}
