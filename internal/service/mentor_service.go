package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/intern-progress-api/internal/dto"
	"github.com/noah-isme/intern-progress-api/internal/models"
	"github.com/noah-isme/intern-progress-api/internal/progression"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

type mentorDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Mentor, error)
	List(ctx context.Context, branchID string) ([]models.Mentor, error)
}

type debtSource interface {
	ListPendingByMentor(ctx context.Context, mentorID string) ([]models.PendingLesson, error)
	PendingCounts(ctx context.Context) ([]models.MentorDebtCount, error)
	MentorMonthStats(ctx context.Context, mentorID string, from, to time.Time) (models.MentorMonthStats, error)
}

// MentorService reports mentor debt and activity.
type MentorService struct {
	mentors  mentorDirectory
	lessons  debtSource
	calendar *progression.Calendar
	logger   *zap.Logger
	now      func() time.Time
}

// NewMentorService constructs the mentor service.
func NewMentorService(mentors mentorDirectory, lessons debtSource, calendar *progression.Calendar, logger *zap.Logger) *MentorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calendar == nil {
		calendar = progression.NewCalendar(time.Sunday, time.UTC, 2)
	}
	return &MentorService{mentors: mentors, lessons: lessons, calendar: calendar, logger: logger, now: time.Now}
}

// List returns mentors, optionally restricted to a branch.
func (s *MentorService) List(ctx context.Context, branchID string) ([]models.Mentor, error) {
	mentors, err := s.mentors.List(ctx, strings.TrimSpace(branchID))
	if err != nil {
		return nil, wrapInternal(err, "failed to list mentors")
	}
	if mentors == nil {
		mentors = []models.Mentor{}
	}
	return mentors, nil
}

// Debt lists the mentor's unrated lessons, newest first.
func (s *MentorService) Debt(ctx context.Context, mentorID string) (*progression.MentorDebt, error) {
	if _, err := s.load(ctx, mentorID); err != nil {
		return nil, err
	}
	pending, err := s.lessons.ListPendingByMentor(ctx, mentorID)
	if err != nil {
		return nil, wrapInternal(err, "failed to load pending lessons")
	}
	debt := progression.DebtFor(mentorID, pending)
	return &debt, nil
}

// AllDebt lists every mentor with unrated lessons, largest debt first.
func (s *MentorService) AllDebt(ctx context.Context) ([]dto.MentorDebtSummary, error) {
	counts, err := s.lessons.PendingCounts(ctx)
	if err != nil {
		return nil, wrapInternal(err, "failed to count pending lessons")
	}
	ranked := progression.RankMentorDebt(counts)
	out := make([]dto.MentorDebtSummary, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, dto.MentorDebtSummary{
			MentorID: c.MentorID,
			Name:     c.Name,
			LastName: c.LastName,
			BranchID: c.BranchID,
			Count:    c.Count,
		})
	}
	return out, nil
}

// Stats summarises the mentor's current month together with outstanding debt.
func (s *MentorService) Stats(ctx context.Context, mentorID string) (*dto.MentorStats, error) {
	mentor, err := s.load(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	monthStart := s.calendar.StartOfMonth(s.now())
	month, err := s.lessons.MentorMonthStats(ctx, mentorID, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, wrapInternal(err, "failed to load mentor statistics")
	}
	pending, err := s.lessons.ListPendingByMentor(ctx, mentorID)
	if err != nil {
		return nil, wrapInternal(err, "failed to load pending lessons")
	}
	debt := progression.DebtFor(mentorID, pending)
	return &dto.MentorStats{
		Mentor:         *mentor,
		MonthLessons:   month.Lessons,
		MonthFeedbacks: month.Feedbacks,
		TotalDebt:      debt.Count,
		Details:        debt.Details,
	}, nil
}

func (s *MentorService) load(ctx context.Context, id string) (*models.Mentor, error) {
	mentor, err := s.mentors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, wrapInternal(err, "failed to load mentor")
	}
	return mentor, nil
}
