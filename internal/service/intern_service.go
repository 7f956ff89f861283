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

type internRepository interface {
	List(ctx context.Context, filter models.InternFilter) ([]models.Intern, int, error)
	FindByID(ctx context.Context, id string) (*models.Intern, error)
	ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error)
	Create(ctx context.Context, intern *models.Intern) error
	UpdateProfile(ctx context.Context, intern *models.Intern) error
	ApplyPromotion(ctx context.Context, intern *models.Intern, expectedVersion int, record *models.PromotionRecord) error
	Delete(ctx context.Context, id string) error
	PromotionHistory(ctx context.Context, internID string) ([]models.PromotionRecord, error)
	EvaluatedMentors(ctx context.Context, internID string) ([]string, error)
}

type directoryReader interface {
	FindByID(ctx context.Context, id string) (*models.Mentor, error)
	FindBranch(ctx context.Context, id string) (*models.Branch, error)
}

type lessonLedgerReader interface {
	ListByIntern(ctx context.Context, internID string) ([]models.LessonVisit, error)
}

type lessonRecorder interface {
	Record(ctx context.Context, visit *models.LessonVisit) error
}

type feedbackLedgerReader interface {
	ListByIntern(ctx context.Context, internID string) ([]models.Feedback, error)
}

const (
	legacyTopic = "Placeholder"
	legacyGroup = "Legacy"
)

// InternServiceParams groups constructor dependencies.
type InternServiceParams struct {
	Interns   internRepository
	Directory directoryReader
	Lessons   interface {
		lessonLedgerReader
		lessonRecorder
	}
	Feedback  feedbackLedgerReader
	Engine    *progression.Engine
	Cache     *CacheService
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
}

// InternService handles enrollment, profile changes and grade transitions.
type InternService struct {
	interns   internRepository
	directory directoryReader
	lessons   interface {
		lessonLedgerReader
		lessonRecorder
	}
	feedback  feedbackLedgerReader
	engine    *progression.Engine
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewInternService constructs the intern service.
func NewInternService(params InternServiceParams) *InternService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Engine == nil {
		params.Engine = progression.NewEngine(nil, nil, "", "", progression.DefaultVisitPolicy())
	}
	return &InternService{
		interns:   params.Interns,
		directory: params.Directory,
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

// List returns interns and pagination metadata.
func (s *InternService) List(ctx context.Context, filter models.InternFilter) ([]models.Intern, *models.Pagination, error) {
	interns, total, err := s.interns.List(ctx, filter)
	if err != nil {
		return nil, nil, wrapInternal(err, "failed to list interns")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return interns, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns an intern with promotion history and this week's evaluating mentors.
func (s *InternService) Get(ctx context.Context, id string) (*dto.InternDetail, error) {
	intern, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := s.interns.PromotionHistory(ctx, id)
	if err != nil {
		return nil, wrapInternal(err, "failed to load promotion history")
	}
	evaluated, err := s.interns.EvaluatedMentors(ctx, id)
	if err != nil {
		return nil, wrapInternal(err, "failed to load evaluated mentors")
	}
	if history == nil {
		history = []models.PromotionRecord{}
	}
	if evaluated == nil {
		evaluated = []string{}
	}
	return &dto.InternDetail{Intern: *intern, PromotionHistory: history, EvaluatedMentors: evaluated}, nil
}

// Create enrolls an intern with grade-derived quota fields.
func (s *InternService) Create(ctx context.Context, req dto.CreateInternRequest) (*models.Intern, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, wrapValidation(err, "invalid intern payload")
	}
	if err := s.checkLinkage(ctx, req.BranchID, req.MentorID); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(req.Username)
	exists, err := s.interns.ExistsByUsername(ctx, username, "")
	if err != nil {
		return nil, wrapInternal(err, "failed to validate username")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
	}

	start := s.now().UTC()
	if req.ProbationStartDate != nil {
		start = req.ProbationStartDate.UTC()
	}
	intern, err := s.engine.Enroll(models.Intern{
		Username: username,
		Name:     strings.TrimSpace(req.Name),
		LastName: strings.TrimSpace(req.LastName),
		BranchID: req.BranchID,
		MentorID: req.MentorID,
	}, req.Grade, start)
	if err != nil {
		return nil, err
	}

	if err := s.interns.Create(ctx, &intern); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
		}
		return nil, wrapInternal(err, "failed to create intern")
	}

	for i := 1; i <= req.LegacyLessons; i++ {
		visit := &models.LessonVisit{
			InternID: intern.ID,
			MentorID: intern.MentorID,
			Topic:    legacyTopic,
			Time:     "00:00",
			Group:    legacyGroup,
			Date:     start.AddDate(0, 0, -i),
			Status:   models.LessonConfirmed,
		}
		if err := s.lessons.Record(ctx, visit); err != nil {
			return nil, wrapInternal(err, "failed to back-fill legacy lessons")
		}
	}

	s.logger.Info("intern enrolled",
		zap.String("intern_id", intern.ID),
		zap.String("grade", string(intern.Grade)),
		zap.Int("legacy_lessons", req.LegacyLessons))
	return &intern, nil
}

// Update changes identity fields under an optimistic version check.
func (s *InternService) Update(ctx context.Context, id string, req dto.UpdateInternRequest) (*models.Intern, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, wrapValidation(err, "invalid intern payload")
	}
	intern, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkLinkage(ctx, req.BranchID, req.MentorID); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(req.Username)
	exists, err := s.interns.ExistsByUsername(ctx, username, id)
	if err != nil {
		return nil, wrapInternal(err, "failed to validate username")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
	}

	intern.Username = username
	intern.Name = strings.TrimSpace(req.Name)
	intern.LastName = strings.TrimSpace(req.LastName)
	intern.BranchID = req.BranchID
	intern.MentorID = req.MentorID
	intern.Version = req.Version
	if err := s.interns.UpdateProfile(ctx, intern); err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, appErrors.Clone(appErrors.ErrConflict, "intern was modified concurrently, reload and retry")
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
		}
		return nil, wrapInternal(err, "failed to update intern")
	}
	s.cache.InvalidateIntern(ctx, id)
	return intern, nil
}

// Delete removes an intern together with its ledgers.
func (s *InternService) Delete(ctx context.Context, id string) error {
	if err := s.interns.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return wrapInternal(err, "failed to delete intern")
	}
	s.cache.InvalidateIntern(ctx, id)
	s.logger.Info("intern deleted", zap.String("intern_id", id))
	return nil
}

// Promote changes the intern's grade, recording the current overall progress in the history entry.
func (s *InternService) Promote(ctx context.Context, id string, req dto.PromoteRequest) (*dto.PromotionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, wrapValidation(err, "invalid promotion payload")
	}
	intern, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	progress, err := s.overallProgress(ctx, *intern, now)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Promote(*intern, req.Grade, progression.PromotionOptions{
		WithConcession:  req.WithConcession,
		Note:            req.Note,
		ActorID:         req.PromotedBy,
		OverallProgress: progress,
	}, now.UTC())
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrPolicyRejected) {
			s.metrics.PolicyRejected("promote")
		}
		return nil, err
	}

	if err := s.interns.ApplyPromotion(ctx, &result.Intern, intern.Version, &result.Record); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "intern was modified concurrently, reload and retry")
		}
		return nil, wrapInternal(err, "failed to apply promotion")
	}

	s.metrics.Promoted(result.WasWithConcession)
	s.cache.InvalidateIntern(ctx, id)
	s.logger.Info("intern grade changed",
		zap.String("intern_id", id),
		zap.String("from", string(result.Record.FromGrade)),
		zap.String("to", string(result.Record.ToGrade)),
		zap.Bool("concession", result.WasWithConcession),
		zap.Int("progress", progress))

	return &dto.PromotionResponse{
		Intern:            result.Intern,
		Record:            result.Record,
		WasWithConcession: result.WasWithConcession,
		Message:           result.Message,
	}, nil
}

// Grades lists the grade ladder with its quota parameters.
func (s *InternService) Grades() ([]dto.GradeEntry, error) {
	ladder := s.engine.Grades.Ladder()
	out := make([]dto.GradeEntry, 0, len(ladder))
	for i, grade := range ladder {
		cfg, err := s.engine.Grades.Lookup(grade)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.GradeEntry{
			Grade:             grade,
			Rank:              i,
			LessonsPerMonth:   cfg.LessonsPerMonth,
			TrialPeriodMonths: cfg.TrialPeriodMonths,
			Perks:             cfg.Perks,
		})
	}
	return out, nil
}

func (s *InternService) overallProgress(ctx context.Context, intern models.Intern, now time.Time) (int, error) {
	lessons, err := s.lessons.ListByIntern(ctx, intern.ID)
	if err != nil {
		return 0, wrapInternal(err, "failed to load lessons")
	}
	feedback, err := s.feedback.ListByIntern(ctx, intern.ID)
	if err != nil {
		return 0, wrapInternal(err, "failed to load feedback")
	}
	progress, err := s.engine.OverallProgress(intern, lessons, feedback, now)
	if err != nil {
		return 0, passThrough(err, "failed to compute progress")
	}
	return progress, nil
}

func (s *InternService) checkLinkage(ctx context.Context, branchID, mentorID string) error {
	if _, err := s.directory.FindBranch(ctx, branchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "branch not found")
		}
		return wrapInternal(err, "failed to load branch")
	}
	if _, err := s.directory.FindByID(ctx, mentorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "mentor not found")
		}
		return wrapInternal(err, "failed to load mentor")
	}
	return nil
}

func (s *InternService) load(ctx context.Context, id string) (*models.Intern, error) {
	intern, err := s.interns.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return nil, wrapInternal(err, "failed to load intern")
	}
	return intern, nil
}
