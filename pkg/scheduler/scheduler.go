package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrTaskNotFound is returned when a task name is not registered.
var ErrTaskNotFound = errors.New("scheduled task not found")

// Task is a unit of scheduled work. Tasks must be idempotent.
type Task func(ctx context.Context) error

// Result captures the outcome of a single task execution.
type Result struct {
	Task        string        `json:"task"`
	Manual      bool          `json:"manual"`
	StartedAt   time.Time     `json:"startedAt"`
	CompletedAt time.Time     `json:"completedAt"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"`
}

// Info describes a registered task.
type Info struct {
	Name    string    `json:"name"`
	Spec    string    `json:"spec"`
	Next    time.Time `json:"next,omitempty"`
	LastRun *Result   `json:"lastRun,omitempty"`
}

type entry struct {
	spec string
	id   cron.EntryID
	task Task
}

// Scheduler runs named tasks on cron expressions.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	entries  map[string]*entry
	lastRuns map[string]*Result
	ctx      context.Context
	cancel   context.CancelFunc

	onComplete func(Result)
}

// Option customises the scheduler.
type Option func(*Scheduler)

// WithOnComplete registers a hook invoked after every execution.
func WithOnComplete(fn func(Result)) Option {
	return func(s *Scheduler) { s.onComplete = fn }
}

// New builds a scheduler evaluating expressions in loc.
func New(loc *time.Location, logger *zap.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{logger: logger.Named("cron")}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:   logger,
		now:      time.Now,
		entries:  make(map[string]*entry),
		lastRuns: make(map[string]*Result),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register schedules task under name using a standard five-field cron spec.
func (s *Scheduler) Register(name, spec string, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("task %s already registered", name)
	}
	id, err := s.cron.AddFunc(spec, func() { s.execute(s.ctx, name, task, false) })
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.entries[name] = &entry{spec: spec, id: id, task: task}
	s.logger.Info("task registered", zap.String("task", name), zap.String("spec", spec))
	return nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running tasks until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow executes a task synchronously, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) (Result, error) {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	return s.execute(ctx, name, e.task, true)
}

// Tasks lists registered tasks ordered by name.
func (s *Scheduler) Tasks() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]Info, 0, len(s.entries))
	for name, e := range s.entries {
		info := Info{Name: name, Spec: e.spec, Next: s.cron.Entry(e.id).Next}
		if last, ok := s.lastRuns[name]; ok {
			copied := *last
			info.LastRun = &copied
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

func (s *Scheduler) execute(ctx context.Context, name string, task Task, manual bool) (Result, error) {
	started := s.now()
	err := task(ctx)
	completed := s.now()

	result := Result{
		Task:        name,
		Manual:      manual,
		StartedAt:   started,
		CompletedAt: completed,
		Duration:    completed.Sub(started),
	}
	fields := []zap.Field{zap.String("task", name), zap.Bool("manual", manual), zap.Duration("duration", result.Duration)}
	if err != nil {
		result.Error = err.Error()
		s.logger.Error("task failed", append(fields, zap.Error(err))...)
	} else {
		s.logger.Info("task completed", fields...)
	}

	s.mu.Lock()
	s.lastRuns[name] = &result
	s.mu.Unlock()

	if s.onComplete != nil {
		s.onComplete(result)
	}
	return result, err
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
