package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/intern-progress-api/internal/dto"
	"github.com/noah-isme/intern-progress-api/internal/models"
	"github.com/noah-isme/intern-progress-api/internal/progression"
	"github.com/noah-isme/intern-progress-api/pkg/jobs"
	"github.com/noah-isme/intern-progress-api/pkg/scheduler"
)

// Scheduled task names.
const (
	TaskDebtReminder   = "debt-reminder"
	TaskEvaluatedReset = "evaluated-reset"

	debtReminderJob = "mentor_debt_reminder"
)

// Publisher delivers a JSON message to the broker.
type Publisher interface {
	PublishJSON(ctx context.Context, routingKey, messageID string, payload interface{}) error
}

type pendingCounter interface {
	PendingCounts(ctx context.Context) ([]models.MentorDebtCount, error)
}

type evaluatedResetter interface {
	ResetEvaluatedMentors(ctx context.Context) (int64, error)
}

type taskRegistrar interface {
	Register(name, spec string, task scheduler.Task) error
}

// ReminderConfig tunes reminder fan-out.
type ReminderConfig struct {
	RoutingKey string
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// ReminderService publishes mentor debt reminders and resets weekly evaluation flags.
type ReminderService struct {
	lessons    pendingCounter
	interns    evaluatedResetter
	publisher  Publisher
	queue      *jobs.Queue
	metrics    *MetricsService
	routingKey string
	logger     *zap.Logger
	now        func() time.Time
}

// NewReminderService constructs the service and its delivery queue.
func NewReminderService(lessons pendingCounter, interns evaluatedResetter, publisher Publisher, metrics *MetricsService, cfg ReminderConfig, logger *zap.Logger) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RoutingKey == "" {
		cfg.RoutingKey = "mentor.debt.reminder"
	}
	s := &ReminderService{
		lessons:    lessons,
		interns:    interns,
		publisher:  publisher,
		metrics:    metrics,
		routingKey: cfg.RoutingKey,
		logger:     logger,
		now:        time.Now,
	}
	s.queue = jobs.NewQueue("reminders", s.Handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnDiscard: func(job jobs.Job, err error) {
			s.metrics.ReminderOutcome("discarded")
		},
	})
	return s
}

// Start launches the delivery workers.
func (s *ReminderService) Start(ctx context.Context) { s.queue.Start(ctx) }

// Stop drains the delivery workers.
func (s *ReminderService) Stop() { s.queue.Stop() }

// Stats reports delivery queue counters.
func (s *ReminderService) Stats() jobs.Stats { return s.queue.Stats() }

// Register schedules the debt sweep and the evaluation reset. An empty spec skips the task.
func (s *ReminderService) Register(sched taskRegistrar, debtSpec, resetSpec string) error {
	if strings.TrimSpace(debtSpec) != "" {
		if err := sched.Register(TaskDebtReminder, debtSpec, s.SweepDebt); err != nil {
			return err
		}
	}
	if strings.TrimSpace(resetSpec) != "" {
		if err := sched.Register(TaskEvaluatedReset, resetSpec, s.ResetEvaluated); err != nil {
			return err
		}
	}
	return nil
}

// SweepDebt enqueues one reminder per mentor with unrated lessons.
func (s *ReminderService) SweepDebt(ctx context.Context) error {
	counts, err := s.lessons.PendingCounts(ctx)
	if err != nil {
		return fmt.Errorf("count pending lessons: %w", err)
	}
	now := s.now().UTC()
	day := now.Format("20060102")
	enqueued := 0
	for _, c := range progression.RankMentorDebt(counts) {
		reminder := dto.DebtReminder{
			MentorID: c.MentorID,
			Name:     strings.TrimSpace(c.Name + " " + c.LastName),
			Count:    c.Count,
			SentAt:   now,
		}
		// one message id per mentor and day lets consumers drop redeliveries
		job := jobs.Job{ID: fmt.Sprintf("debt-%s-%s", c.MentorID, day), Type: debtReminderJob, Payload: reminder}
		if err := s.queue.Enqueue(job); err != nil {
			return fmt.Errorf("enqueue reminder: %w", err)
		}
		enqueued++
	}
	s.logger.Info("debt reminders enqueued", zap.Int("mentors", enqueued))
	return nil
}

// Handle publishes a queued reminder.
func (s *ReminderService) Handle(ctx context.Context, job jobs.Job) error {
	reminder, ok := job.Payload.(dto.DebtReminder)
	if !ok {
		return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
	}
	if err := s.publisher.PublishJSON(ctx, s.routingKey, job.ID, reminder); err != nil {
		s.metrics.ReminderOutcome("failed")
		return err
	}
	s.metrics.ReminderOutcome("sent")
	return nil
}

// ResetEvaluated clears the weekly mentor evaluation flags.
func (s *ReminderService) ResetEvaluated(ctx context.Context) error {
	n, err := s.interns.ResetEvaluatedMentors(ctx)
	if err != nil {
		return fmt.Errorf("reset evaluated mentors: %w", err)
	}
	s.logger.Info("evaluated mentor flags reset", zap.Int64("rows", n))
	return nil
}
