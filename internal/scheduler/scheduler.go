package scheduler

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"tg-groupguard/internal/logger"
)

// JobData is the serializable payload handed to a job callback. Jobs carry
// IDs rather than live objects so that cancellation-by-name stays
// well-defined and a job never pins handler state alive.
type JobData struct {
	ChatID    int64
	UserID    int64
	MessageID int
}

// Job is a scheduled callback.
type Job func(data JobData)

type entry struct {
	timer  *time.Timer
	cronID cron.EntryID
}

// Scheduler runs named, cancelable one-shot and repeating jobs. One-shot
// jobs are plain timers; repeating jobs ride on a cron runner.
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	entries map[string]entry
}

func New() *Scheduler {
	s := &Scheduler{
		cron:    cron.New(),
		entries: make(map[string]entry),
	}
	s.cron.Start()
	return s
}

// RunOnce schedules job to fire once after delay. Scheduling under a name
// that is already taken replaces the previous job.
func (s *Scheduler) RunOnce(name string, delay time.Duration, data JobData, job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(name)

	timer := time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.entries, name)
		s.mu.Unlock()
		runContained(name, data, job)
	})
	s.entries[name] = entry{timer: timer}
}

// RunRepeating schedules job to fire every interval until canceled.
func (s *Scheduler) RunRepeating(name string, interval time.Duration, data JobData, job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(name)

	id := s.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		runContained(name, data, job)
	}))
	s.entries[name] = entry{cronID: id}
}

// Cancel stops the named job. Canceling an already-fired or unknown job is
// a no-op, not an error.
func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(name)
}

// Stop shuts the scheduler down; pending one-shot jobs are dropped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.entries {
		s.removeLocked(name)
	}
	s.cron.Stop()
}

func (s *Scheduler) removeLocked(name string) {
	e, ok := s.entries[name]
	if !ok {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	} else {
		s.cron.Remove(e.cronID)
	}
	delete(s.entries, name)
}

// runContained keeps a panicking job from taking down the timer goroutine
// or the cron runner.
func runContained(name string, data JobData, job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("job %s panicked: %v", name, r)
		}
	}()
	job(data)
}
