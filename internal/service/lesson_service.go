package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-progress-api/internal/dto"
	"github.com/noah-isme/intern-progress-api/internal/models"
	"github.com/noah-isme/intern-progress-api/internal/progression"
	"github.com/noah-isme/intern-progress-api/internal/repository"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

const (
	defaultTopic = "No topic"
	defaultTime  = "00:00"
	defaultGroup = "General"
)

type internReader interface {
	FindByID(ctx context.Context, id string) (*models.Intern, error)
}

type mentorReader interface {
	FindByID(ctx context.Context, id string) (*models.Mentor, error)
}

type lessonStore interface {
	lessonLedgerReader
	RecordAtVersion(ctx context.Context, visit *models.LessonVisit, internVersion int) error
	FindByID(ctx context.Context, id string) (*models.LessonVisit, error)
	AttendanceStats(ctx context.Context, filter models.AttendanceFilter, restDay time.Weekday, tz string) ([]models.AttendanceRow, error)
}

type feedbackStore interface {
	feedbackLedgerReader
	CountByIntern(ctx context.Context, internID string) (int, error)
	RateLesson(ctx context.Context, lessonID string, fb *models.Feedback, ratedAt time.Time) (float64, error)
}

// LessonServiceParams groups constructor dependencies.
type LessonServiceParams struct {
	Interns   internReader
	Mentors   mentorReader
	Lessons   lessonStore
	Feedback  feedbackStore
	Engine    *progression.Engine
	Cache     *CacheService
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
}

// LessonService records visits, rates them and reports attendance.
type LessonService struct {
	interns   internReader
	mentors   mentorReader
	lessons   lessonStore
	feedback  feedbackStore
	engine    *progression.Engine
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLessonService constructs the lesson service.
func NewLessonService(params LessonServiceParams) *LessonService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Engine == nil {
		params.Engine = progression.NewEngine(nil, nil, "", "", progression.DefaultVisitPolicy())
	}
	return &LessonService{
		interns:   params.Interns,
		mentors:   params.Mentors,
		lessons:   params.Lessons,
		feedback:  params.Feedback,
		engine:    params.Engine,
		cache:     params.Cache,
		metrics:   params.Metrics,
		validator: params.Validator,
		logger:    params.Logger,
		now:       time.Now,
	}
}

// RecordVisit logs an intern's attendance. A repeated (mentor, lesson) pair increments the visit count.
func (s *LessonService) RecordVisit(ctx context.Context, internID string, req dto.RecordLessonRequest) (*dto.RecordLessonResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, wrapValidation(err, "invalid lesson payload")
	}
	intern, err := s.interns.FindByID(ctx, internID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return nil, wrapInternal(err, "failed to load intern")
	}
	if _, err := s.mentors.FindByID(ctx, req.MentorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "mentor not found")
		}
		return nil, wrapInternal(err, "failed to load mentor")
	}

	date := s.now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}
	lessons, err := s.lessons.ListByIntern(ctx, internID)
	if err != nil {
		return nil, wrapInternal(err, "failed to load lessons")
	}
	feedbackCount, err := s.feedback.CountByIntern(ctx, internID)
	if err != nil {
		return nil, wrapInternal(err, "failed to count feedback")
	}

	lessonID := strings.TrimSpace(req.LessonID)
	if err := s.engine.CheckVisit(progression.VisitAttempt{
		Intern:        *intern,
		MentorID:      req.MentorID,
		LessonID:      lessonID,
		Date:          date,
		Lessons:       lessons,
		FeedbackCount: feedbackCount,
	}); err != nil {
		s.metrics.PolicyRejected("record_visit")
		return nil, err
	}
	appended := lessonID == "" || !progression.NewAttendanceLedger(lessons).Has(req.MentorID, lessonID)

	visit := &models.LessonVisit{
		ID:       lessonID,
		InternID: internID,
		MentorID: req.MentorID,
		Topic:    orDefault(req.Topic, defaultTopic),
		Time:     orDefault(req.Time, defaultTime),
		Group:    orDefault(req.Group, defaultGroup),
		Date:     date,
		Status:   models.LessonPending,
	}
	if err := s.lessons.RecordAtVersion(ctx, visit, intern.Version); err != nil {
		if errors.Is(err, repository.ErrLessonOwnership) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "lesson id is already used by another intern or mentor")
		}
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "intern attendance changed concurrently, retry the visit")
		}
		return nil, wrapInternal(err, "failed to record lesson")
	}

	s.metrics.LessonRecorded(appended)
	s.cache.InvalidateIntern(ctx, internID)
	message := "lesson recorded"
	if !appended {
		message = "visit count incremented"
	}
	s.logger.Debug(message,
		zap.String("intern_id", internID),
		zap.String("mentor_id", req.MentorID),
		zap.String("lesson_id", visit.ID),
		zap.Int("visit_count", visit.VisitCount))
	return &dto.RecordLessonResponse{Lesson: *visit, Appended: appended, Message: message}, nil
}

// RateLesson confirms a pending lesson with the owning mentor's feedback and updates the intern's score.
func (s *LessonService) RateLesson(ctx context.Context, lessonID string, req dto.RateLessonRequest) (*dto.RateLessonResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, wrapValidation(err, "invalid rating payload")
	}
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, wrapInternal(err, "failed to load lesson")
	}

	now := s.now().UTC()
	confirmed, err := progression.NewAttendanceLedger([]models.LessonVisit{*lesson}).Confirm(lessonID, req.MentorID, now)
	if err != nil {
		s.rejected(err)
		return nil, err
	}

	existing, err := s.feedback.ListByIntern(ctx, lesson.InternID)
	if err != nil {
		return nil, wrapInternal(err, "failed to load feedback")
	}
	id := lessonID
	fb, err := progression.NewFeedbackLedger(existing, s.engine.RateLimit).Append(models.Feedback{
		InternID: lesson.InternID,
		MentorID: req.MentorID,
		LessonID: &id,
		Stars:    req.Stars,
		Text:     strings.TrimSpace(req.Feedback),
		Date:     now,
	})
	if err != nil {
		s.rejected(err)
		return nil, err
	}

	score, err := s.feedback.RateLesson(ctx, lessonID, &fb, now)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLessonAlreadyRated):
			s.metrics.PolicyRejected("rate_lesson")
			return nil, appErrors.Clone(appErrors.ErrPolicyRejected, "lesson already rated")
		case errors.Is(err, repository.ErrFeedbackWindowTaken):
			s.metrics.PolicyRejected("rate_lesson")
			return nil, appErrors.Clone(appErrors.ErrPolicyRejected, "already rated this period: one rating per "+s.engine.RateLimit.Label())
		}
		return nil, wrapInternal(err, "failed to rate lesson")
	}

	s.metrics.LessonRated()
	s.cache.InvalidateIntern(ctx, lesson.InternID)
	s.logger.Info("lesson rated",
		zap.String("lesson_id", lessonID),
		zap.String("intern_id", lesson.InternID),
		zap.String("mentor_id", req.MentorID),
		zap.Int("stars", req.Stars))
	return &dto.RateLessonResponse{Lesson: confirmed, Feedback: fb, Score: score}, nil
}

// Attendance reports visits per intern against the working-day norm of the selected window.
func (s *LessonService) Attendance(ctx context.Context, query dto.AttendanceQuery) (*dto.AttendanceReport, error) {
	cal := s.engine.Calendar
	now := s.now()
	period := query.Period
	if period == "" {
		period = progression.PeriodMonth
	}
	from, to, err := cal.AttendanceWindow(period, now, query.From, query.To)
	if err != nil {
		return nil, err
	}
	rows, err := s.lessons.AttendanceStats(ctx, models.AttendanceFilter{
		BranchID: query.BranchID,
		InternID: query.InternID,
		From:     from,
		To:       to,
	}, cal.RestDay(), cal.Location().String())
	if err != nil {
		return nil, wrapInternal(err, "failed to load attendance")
	}

	norm := cal.AttendanceNorm(period, now)
	if period == progression.PeriodCustom {
		norm = cal.WindowNorm(from, to)
	}
	stats := make([]dto.AttendanceStat, 0, len(rows))
	for _, row := range rows {
		total := row.Confirmed + row.Pending
		percentage := 0
		if norm > 0 {
			percentage = total * 100 / norm
		}
		stats = append(stats, dto.AttendanceStat{
			InternID:   row.InternID,
			Name:       row.Name,
			LastName:   row.LastName,
			BranchID:   row.BranchID,
			Grade:      row.Grade,
			Confirmed:  row.Confirmed,
			Pending:    row.Pending,
			Total:      total,
			Norm:       norm,
			Percentage: percentage,
			MeetsNorm:  total >= norm,
		})
	}
	return &dto.AttendanceReport{
		Period:   period,
		From:     from,
		To:       to,
		Workdays: cal.WorkdayCount(from, to.Add(-time.Nanosecond)),
		Norm:     norm,
		Interns:  stats,
	}, nil
}

func (s *LessonService) rejected(err error) {
	if appErrors.HasCode(err, appErrors.ErrPolicyRejected) {
		s.metrics.PolicyRejected("rate_lesson")
	}
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
