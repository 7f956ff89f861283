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
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

type questionRepository interface {
	Create(ctx context.Context, q *models.Question) error
	List(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error)
	Update(ctx context.Context, q *models.Question) error
	Delete(ctx context.Context, id string) error
}

// QuestionService manages the interview question bank.
type QuestionService struct {
	questions questionRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewQuestionService constructs the question service.
func NewQuestionService(questions questionRepository, validate *validator.Validate, logger *zap.Logger) *QuestionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionService{questions: questions, validator: validate, logger: logger, now: time.Now}
}

// Create adds a question; its points follow the difficulty.
func (s *QuestionService) Create(ctx context.Context, req dto.QuestionRequest) (*models.Question, error) {
	q, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	q.CreatedAt = s.now().UTC()
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, wrapInternal(err, "failed to create question")
	}
	return q, nil
}

// List returns questions, optionally narrowed by direction, difficulty and topic.
func (s *QuestionService) List(ctx context.Context, query dto.QuestionQuery) ([]models.Question, error) {
	filter := models.QuestionFilter{
		Direction:  models.Direction(strings.ToLower(strings.TrimSpace(query.Direction))),
		Difficulty: models.Difficulty(strings.ToLower(strings.TrimSpace(query.Difficulty))),
		Topic:      strings.ToLower(strings.TrimSpace(query.Topic)),
	}
	if filter.Direction != "" && !filter.Direction.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown direction")
	}
	if filter.Difficulty != "" && !filter.Difficulty.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown difficulty")
	}
	questions, err := s.questions.List(ctx, filter)
	if err != nil {
		return nil, wrapInternal(err, "failed to list questions")
	}
	return questions, nil
}

// Update replaces a question. Points are recomputed from the new difficulty.
func (s *QuestionService) Update(ctx context.Context, id string, req dto.QuestionRequest) (*models.Question, error) {
	q, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	q.ID = id
	q.UpdatedAt = s.now().UTC()
	if err := s.questions.Update(ctx, q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "question not found")
		}
		return nil, wrapInternal(err, "failed to update question")
	}
	return q, nil
}

// Delete removes a question.
func (s *QuestionService) Delete(ctx context.Context, id string) error {
	if err := s.questions.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "question not found")
		}
		return wrapInternal(err, "failed to delete question")
	}
	s.logger.Info("question deleted", zap.String("question_id", id))
	return nil
}

func (s *QuestionService) fromRequest(req dto.QuestionRequest) (*models.Question, error) {
	req.Direction = strings.ToLower(strings.TrimSpace(req.Direction))
	req.Difficulty = strings.ToLower(strings.TrimSpace(req.Difficulty))
	if err := s.validator.Struct(req); err != nil {
		return nil, wrapValidation(err, "invalid question payload")
	}
	difficulty := models.Difficulty(req.Difficulty)
	return &models.Question{
		Text:       strings.TrimSpace(req.Text),
		Direction:  models.Direction(req.Direction),
		Topic:      strings.ToLower(strings.TrimSpace(req.Topic)),
		Difficulty: difficulty,
		Points:     difficulty.Points(),
	}, nil
}
