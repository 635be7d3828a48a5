// Package scheduler batches component updates.
//
// A job queued while a task is running does not execute immediately. It is
// collected, deduplicated by identity, and run once at the task's microtask
// checkpoint, after the task's synchronous work but before the next task.
// Callers drive tasks with RunTask, or call Drain directly at the end of
// their own unit of work.
//
//	s := scheduler.New()
//	s.RunTask(func() {
//	    s.QueueJob(job)
//	    s.QueueJob(job) // collapses into the first
//	})
//	// job has run exactly once
package scheduler

import (
	"log/slog"
	"sync"
	"time"
)

// Job is a unit of deferred work. Jobs are deduplicated by pointer identity.
type Job struct {
	name string
	fn   func()
}

// NewJob returns a job that runs fn. The name is used in logs only.
func NewJob(name string, fn func()) *Job {
	return &Job{name: name, fn: fn}
}

// Name returns the job's name.
func (j *Job) Name() string {
	return j.name
}

// FlushStats describes one flush of the job queue.
type FlushStats struct {
	Jobs     int
	Duration time.Duration
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithObserver registers fn to be called after every flush.
func WithObserver(fn func(FlushStats)) Option {
	return func(s *Scheduler) {
		s.observer = fn
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// Scheduler owns a job queue and a microtask queue. Jobs and microtasks may
// be queued from any goroutine; they run on whichever goroutine drains.
type Scheduler struct {
	mu           sync.Mutex
	jobs         []*Job
	queued       map[*Job]bool
	flushPending bool
	microtasks   []func()
	draining     bool

	observer func(FlushStats)
	logger   *slog.Logger
}

// New creates a scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		queued: make(map[*Job]bool),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultScheduler = New()

// Default returns the process-wide scheduler.
func Default() *Scheduler {
	return defaultScheduler
}

// QueueJob adds job to the pending queue unless it is already pending, and
// arranges a flush at the next microtask checkpoint. There is no way to
// cancel a queued job.
func (s *Scheduler) QueueJob(job *Job) {
	s.mu.Lock()
	if !s.queued[job] {
		s.queued[job] = true
		s.jobs = append(s.jobs, job)
	}
	post := !s.flushPending
	s.flushPending = true
	if post {
		s.microtasks = append(s.microtasks, s.flushJobs)
	}
	s.mu.Unlock()
}

// flushJobs runs pending jobs in queue order, including jobs queued while
// the flush is in progress.
func (s *Scheduler) flushJobs() {
	start := time.Now()
	s.mu.Lock()
	s.flushPending = false
	s.mu.Unlock()

	ran := 0
	for {
		s.mu.Lock()
		if len(s.jobs) == 0 {
			s.mu.Unlock()
			break
		}
		job := s.jobs[0]
		s.jobs[0] = nil
		s.jobs = s.jobs[1:]
		delete(s.queued, job)
		s.mu.Unlock()

		job.fn()
		ran++
	}

	if ran > 0 {
		s.logger.Debug("scheduler flush", "jobs", ran)
	}
	if s.observer != nil {
		s.observer(FlushStats{Jobs: ran, Duration: time.Since(start)})
	}
}

// NextTick returns a channel that is closed at the next microtask checkpoint,
// after any flush already scheduled. When fn is non-nil it runs at that same
// point, before the channel closes.
//
// Checkpoints only happen inside Drain or at the end of RunTask; nothing
// flushes in the background. Receiving from the channel on the goroutine
// that owns the scheduler, outside RunTask and without calling Drain first,
// blocks forever.
func (s *Scheduler) NextTick(fn func()) <-chan struct{} {
	done := make(chan struct{})
	s.mu.Lock()
	s.microtasks = append(s.microtasks, func() {
		defer close(done)
		if fn != nil {
			fn()
		}
	})
	s.mu.Unlock()
	return done
}

// Drain runs microtasks until none remain. Microtasks queued while draining
// run in the same drain. A nested call returns immediately.
func (s *Scheduler) Drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.draining = false
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		if len(s.microtasks) == 0 {
			s.mu.Unlock()
			return
		}
		task := s.microtasks[0]
		s.microtasks[0] = nil
		s.microtasks = s.microtasks[1:]
		s.mu.Unlock()

		task()
	}
}

// RunTask runs fn as one task and then reaches its microtask checkpoint.
func (s *Scheduler) RunTask(fn func()) {
	fn()
	s.Drain()
}

// Pending reports whether jobs or microtasks are waiting.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs) > 0 || len(s.microtasks) > 0
}

// QueueJob queues job on the default scheduler.
func QueueJob(job *Job) {
	defaultScheduler.QueueJob(job)
}

// NextTick schedules fn on the default scheduler. The same checkpoint rules
// as Scheduler.NextTick apply.
func NextTick(fn func()) <-chan struct{} {
	return defaultScheduler.NextTick(fn)
}
