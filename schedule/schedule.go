// Package schedule runs assembled pipelines on cron schedules. Every tick
// constructs a fresh traversal context through a caller-supplied factory, so
// the one-context-per-traversal invariant holds across scheduled runs.
package schedule

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-pipeline"
	rcron "github.com/robfig/cron/v3"
)

// Logger interface shared across packages
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextFactory builds the traversal context for one scheduled run.
type ContextFactory func() pipeline.Context

// RunConfig carries per-schedule execution options.
type RunConfig struct {
	// Expression is a cron expression, including @every descriptors.
	Expression string
	// MaxRuns completes the handle after this many successful runs. Zero
	// means unbounded.
	MaxRuns int
	// RunOnce is shorthand for MaxRuns == 1.
	RunOnce bool
}

func (c RunConfig) maxRuns() int {
	if c.RunOnce {
		return 1
	}
	return c.MaxRuns
}

// Scheduler wraps cron functionality around pipeline invocation.
type Scheduler struct {
	mu           sync.Mutex
	cron         *rcron.Cron
	location     *time.Location
	errorHandler func(error)

	logger    Logger
	parser    Parser
	logWriter io.Writer
	logLevel  LogLevel

	nextHandleID int64
	handles      map[int64]*scheduleHandle
}

// NewScheduler creates a new scheduler instance with the provided options.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		location: time.Local,
		parser:   DefaultParser,
		logLevel: LogLevelError,
		errorHandler: func(err error) {
			log.Printf("error: %v\n", err)
		},
		handles: make(map[int64]*scheduleHandle),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.cron = rcron.New(s.build()...)
	return s
}

// ScheduleCron schedules recurring pipeline runs by cron expression.
func (s *Scheduler) ScheduleCron(cfg RunConfig, p *pipeline.Pipeline, factory ContextFactory) (Handle, error) {
	if cfg.Expression == "" {
		return nil, errors.New("cron expression cannot be empty", errors.CategoryBadInput).
			WithTextCode("EMPTY_EXPRESSION")
	}
	run, err := buildRunnable(p, factory)
	if err != nil {
		return nil, err
	}

	maxRuns := cfg.maxRuns()
	handle := s.newHandle()
	job := rcron.FuncJob(func() {
		if isTerminalStatus(handle.Status()) {
			return
		}

		handle.setStatus(ScheduleStatusRunning, nil)
		if err := run(); err != nil {
			handle.setTerminal(ScheduleStatusFailed, err)
			s.removeHandle(handle.id)
			s.errorHandler(err)
			return
		}

		if handle.recordRun(maxRuns) {
			handle.setTerminal(ScheduleStatusCompleted, nil)
			s.removeHandle(handle.id)
			return
		}

		if !isTerminalStatus(handle.Status()) {
			handle.setStatus(ScheduleStatusIdle, nil)
		}
	})

	entryID, err := s.cron.AddJob(cfg.Expression, job)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to add scheduled pipeline").
			WithTextCode("BAD_EXPRESSION")
	}
	handle.entryID = int(entryID)
	s.storeHandle(handle)
	return handle, nil
}

// ScheduleEvery schedules recurring pipeline runs at a fixed interval.
func (s *Scheduler) ScheduleEvery(interval time.Duration, cfg RunConfig, p *pipeline.Pipeline, factory ContextFactory) (Handle, error) {
	if interval <= 0 {
		return nil, errors.New("interval must be positive", errors.CategoryBadInput).
			WithTextCode("BAD_INTERVAL")
	}
	cfg.Expression = "@every " + interval.String()
	return s.ScheduleCron(cfg, p, factory)
}

// ScheduleAfter schedules one pipeline run after delay.
func (s *Scheduler) ScheduleAfter(delay time.Duration, p *pipeline.Pipeline, factory ContextFactory) (Handle, error) {
	if delay < 0 {
		delay = 0
	}
	return s.ScheduleAt(time.Now().Add(delay), p, factory)
}

// ScheduleAt schedules one pipeline run at a specific time.
func (s *Scheduler) ScheduleAt(at time.Time, p *pipeline.Pipeline, factory ContextFactory) (Handle, error) {
	run, err := buildRunnable(p, factory)
	if err != nil {
		return nil, err
	}

	handle := s.newHandle()
	s.storeHandle(handle)

	go func() {
		wait := time.Until(at)
		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-handle.Done():
			return
		}

		if isTerminalStatus(handle.Status()) {
			return
		}
		handle.setStatus(ScheduleStatusRunning, nil)
		if err := run(); err != nil {
			handle.setTerminal(ScheduleStatusFailed, err)
			s.errorHandler(err)
			s.removeStoredHandle(handle.id)
			return
		}
		handle.setTerminal(ScheduleStatusCompleted, nil)
		s.removeStoredHandle(handle.id)
	}()

	return handle, nil
}

// Start begins executing scheduled pipelines.
func (s *Scheduler) Start(_ context.Context) error {
	s.cron.Start()
	return nil
}

// Stop stops executing scheduled pipelines and marks active handles stopped.
func (s *Scheduler) Stop(_ context.Context) error {
	s.cron.Stop()

	var handles []*scheduleHandle
	s.mu.Lock()
	for _, handle := range s.handles {
		handles = append(handles, handle)
	}
	s.handles = make(map[int64]*scheduleHandle)
	s.mu.Unlock()

	for _, handle := range handles {
		if handle == nil {
			continue
		}
		if handle.entryID > 0 {
			s.cron.Remove(rcron.EntryID(handle.entryID))
		}
		if isTerminalStatus(handle.Status()) {
			continue
		}
		handle.setTerminal(ScheduleStatusStopped, nil)
	}
	return nil
}

func (s *Scheduler) removeHandle(id int64) {
	handle := s.removeStoredHandle(id)
	if handle == nil {
		return
	}
	if handle.entryID > 0 {
		s.cron.Remove(rcron.EntryID(handle.entryID))
	}
}

func (s *Scheduler) removeStoredHandle(id int64) *scheduleHandle {
	if s == nil || id == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	handle := s.handles[id]
	delete(s.handles, id)
	return handle
}

func (s *Scheduler) storeHandle(handle *scheduleHandle) {
	if s == nil || handle == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handles == nil {
		s.handles = make(map[int64]*scheduleHandle)
	}
	s.handles[handle.id] = handle
}

func (s *Scheduler) newHandle() *scheduleHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHandleID++
	return &scheduleHandle{
		scheduler: s,
		id:        s.nextHandleID,
		status:    ScheduleStatusScheduled,
		done:      make(chan struct{}),
	}
}

func buildRunnable(p *pipeline.Pipeline, factory ContextFactory) (func() error, error) {
	if p == nil {
		return nil, errors.New("pipeline cannot be nil", errors.CategoryBadInput).
			WithTextCode("NIL_PIPELINE")
	}
	if factory == nil {
		factory = func() pipeline.Context { return nil }
	}
	return func() error {
		return p.Invoke(factory())
	}, nil
}
