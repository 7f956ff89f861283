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
	"github.com/noah-isme/intern-progress-api/internal/repository"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

type ruleRepository interface {
	ListRules(ctx context.Context, category models.RuleCategory) ([]models.Rule, error)
	FindRule(ctx context.Context, id string) (*models.Rule, error)
	CreateRule(ctx context.Context, rule *models.Rule) error
	CreateViolation(ctx context.Context, violation *models.Violation) error
	ListViolations(ctx context.Context, filter models.ViolationFilter) ([]models.ViolationDetail, int, error)
}

// ViolationService manages the rule catalog and recorded violations.
type ViolationService struct {
	rules     ruleRepository
	interns   internReader
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewViolationService constructs the violation service.
func NewViolationService(rules ruleRepository, interns internReader, validate *validator.Validate, logger *zap.Logger) *ViolationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViolationService{rules: rules, interns: interns, validator: validate, logger: logger, now: time.Now}
}

// Rules lists the catalog, optionally narrowed to a category.
func (s *ViolationService) Rules(ctx context.Context, category string) ([]models.Rule, error) {
	c := models.RuleCategory(strings.ToLower(strings.TrimSpace(category)))
	if c != "" && !c.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown rule category")
	}
	rules, err := s.rules.ListRules(ctx, c)
	if err != nil {
		return nil, wrapInternal(err, "failed to list rules")
	}
	return rules, nil
}

// CreateRule adds a catalog entry.
func (s *ViolationService) CreateRule(ctx context.Context, req dto.RuleRequest) (*models.Rule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, wrapValidation(err, "invalid rule payload")
	}
	rule := &models.Rule{
		Category:    models.RuleCategory(req.Category),
		Title:       strings.TrimSpace(req.Title),
		Example:     strings.TrimSpace(req.Example),
		Consequence: strings.TrimSpace(req.Consequence),
	}
	if err := s.rules.CreateRule(ctx, rule); err != nil {
		if errors.Is(err, repository.ErrDuplicateRule) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "rule already exists in this category")
		}
		return nil, wrapInternal(err, "failed to create rule")
	}
	return rule, nil
}

// Record registers a violation of a catalog rule by an intern.
func (s *ViolationService) Record(ctx context.Context, internID string, req dto.ViolationRequest) (*models.Violation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, wrapValidation(err, "invalid violation payload")
	}
	if _, err := s.interns.FindByID(ctx, internID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return nil, wrapInternal(err, "failed to load intern")
	}
	if _, err := s.rules.FindRule(ctx, req.RuleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "rule not found")
		}
		return nil, wrapInternal(err, "failed to load rule")
	}
	date := s.now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}
	violation := &models.Violation{
		InternID:           internID,
		RuleID:             req.RuleID,
		Date:               date,
		Notes:              strings.TrimSpace(req.Notes),
		ConsequenceApplied: req.ConsequenceApplied,
	}
	if err := s.rules.CreateViolation(ctx, violation); err != nil {
		return nil, wrapInternal(err, "failed to record violation")
	}
	s.logger.Info("violation recorded", zap.String("intern_id", internID), zap.String("rule_id", req.RuleID))
	return violation, nil
}

// List returns violations matching the query.
func (s *ViolationService) List(ctx context.Context, query dto.ViolationQuery) ([]models.ViolationDetail, *models.Pagination, error) {
	category := models.RuleCategory(strings.ToLower(strings.TrimSpace(query.Category)))
	if category != "" && !category.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown rule category")
	}
	if query.From != nil && query.To != nil && query.From.After(*query.To) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	// to is an inclusive date
	var to *time.Time
	if query.To != nil {
		end := query.To.AddDate(0, 0, 1)
		to = &end
	}
	items, total, err := s.rules.ListViolations(ctx, models.ViolationFilter{
		InternID: query.InternID,
		BranchID: query.BranchID,
		Category: category,
		From:     query.From,
		To:       to,
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return nil, nil, wrapInternal(err, "failed to list violations")
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
