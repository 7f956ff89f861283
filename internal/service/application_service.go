package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-progress-api/internal/dto"
	"github.com/noah-isme/intern-progress-api/internal/models"
	"github.com/noah-isme/intern-progress-api/internal/progression"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

const minAnswerLength = 10

var phonePattern = regexp.MustCompile(`^\+?\d{9,15}$`)

type applicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id string) (*models.ApplicationDetail, error)
	FindByContact(ctx context.Context, telegramUsername, phone string) (*models.ApplicationDetail, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error)
	UpdateDetails(ctx context.Context, id, aboutYourself, whatYouKnow string, at time.Time) error
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, at time.Time) error
	SetProjectLink(ctx context.Context, id, link string, at time.Time) error
}

// ApplicationService runs the two-step admission form and its review.
type ApplicationService struct {
	apps      applicationRepository
	directory directoryReader
	grades    *progression.GradeTable
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewApplicationService constructs the application service. A nil grade table uses the default ladder.
func NewApplicationService(apps applicationRepository, directory directoryReader, grades *progression.GradeTable, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if grades == nil {
		grades = progression.DefaultGradeTable()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{apps: apps, directory: directory, grades: grades, validator: validate, logger: logger, now: time.Now}
}

// Register files the first step of an application. Mentor and branch must exist.
func (s *ApplicationService) Register(ctx context.Context, req dto.ApplicationRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, wrapValidation(err, "invalid application payload")
	}
	direction := models.Direction(strings.ToLower(strings.TrimSpace(req.Direction)))
	if !direction.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown direction, expected one of frontend, backend, fullstack")
	}
	phone := strings.TrimSpace(req.Phone)
	if !phonePattern.MatchString(phone) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "phone must be 9 to 15 digits with an optional leading +")
	}
	grade, err := s.grades.Parse(req.Grade)
	if err != nil {
		return nil, err
	}
	if _, err := s.directory.FindBranch(ctx, req.BranchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "branch not found")
		}
		return nil, wrapInternal(err, "failed to load branch")
	}
	if _, err := s.directory.FindByID(ctx, req.MentorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "mentor not found")
		}
		return nil, wrapInternal(err, "failed to load mentor")
	}

	app := &models.Application{
		Name:             strings.TrimSpace(req.Name),
		Surname:          strings.TrimSpace(req.Surname),
		MentorID:         req.MentorID,
		BranchID:         req.BranchID,
		Grade:            grade,
		YearsOfStudy:     req.YearsOfStudy,
		Direction:        direction,
		TelegramUsername: strings.TrimPrefix(strings.TrimSpace(req.TelegramUsername), "@"),
		Phone:            phone,
		InterviewDate:    req.Date.UTC(),
		Status:           models.ApplicationPending,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, wrapInternal(err, "failed to create application")
	}
	s.logger.Info("application registered", zap.String("application_id", app.ID), zap.String("direction", string(direction)))
	return app, nil
}

// Complete stores the second-step answers.
func (s *ApplicationService) Complete(ctx context.Context, id string, req dto.ApplicationDetailsRequest) (*models.ApplicationDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, wrapValidation(err, "invalid application details")
	}
	about := strings.TrimSpace(req.AboutYourself)
	known := strings.TrimSpace(req.WhatYouKnow)
	if len([]rune(about)) < minAnswerLength || len([]rune(known)) < minAnswerLength {
		return nil, appErrors.Clone(appErrors.ErrValidation, "answers must be at least 10 characters")
	}
	if err := s.apps.UpdateDetails(ctx, id, about, known, s.now().UTC()); err != nil {
		return nil, s.notFoundOr(err, "failed to update application")
	}
	return s.Get(ctx, id)
}

// Login returns the application matching the applicant's contact details.
func (s *ApplicationService) Login(ctx context.Context, req dto.ApplicationLoginRequest) (*models.ApplicationDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, wrapValidation(err, "all fields are required")
	}
	app, err := s.apps.FindByContact(ctx, strings.TrimPrefix(strings.TrimSpace(req.TelegramUsername), "@"), strings.TrimSpace(req.Phone))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, wrapInternal(err, "failed to look up application")
	}
	if app == nil || !strings.EqualFold(app.Name, strings.TrimSpace(req.Name)) || !strings.EqualFold(app.Surname, strings.TrimSpace(req.Surname)) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no application matches these details")
	}
	return app, nil
}

// Get fetches one application.
func (s *ApplicationService) Get(ctx context.Context, id string) (*models.ApplicationDetail, error) {
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, s.notFoundOr(err, "failed to load application")
	}
	return app, nil
}

// List returns applications matching the query.
func (s *ApplicationService) List(ctx context.Context, query dto.ApplicationQuery) ([]models.ApplicationDetail, *models.Pagination, error) {
	status := models.ApplicationStatus(strings.ToLower(strings.TrimSpace(query.Status)))
	if status != "" && !status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown application status")
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	items, total, err := s.apps.List(ctx, models.ApplicationFilter{Status: status, BranchID: query.BranchID, Page: page, PageSize: size})
	if err != nil {
		return nil, nil, wrapInternal(err, "failed to list applications")
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// UpdateStatus moves an application through review and returns the message shown to the applicant.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id string, req dto.ApplicationStatusRequest) (*dto.ApplicationStatusResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, wrapValidation(err, "invalid application status")
	}
	status := models.ApplicationStatus(req.Status)
	if err := s.apps.UpdateStatus(ctx, id, status, s.now().UTC()); err != nil {
		return nil, s.notFoundOr(err, "failed to update application status")
	}
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("application status changed", zap.String("application_id", id), zap.String("status", string(status)))
	return &dto.ApplicationStatusResult{Application: app.Application, UserMessage: statusMessage(status)}, nil
}

// AttachProject records the applicant's project link.
func (s *ApplicationService) AttachProject(ctx context.Context, id string, req dto.ProjectLinkRequest) (*models.ApplicationDetail, error) {
	req.ProjectLink = strings.TrimSpace(req.ProjectLink)
	if err := s.validator.Struct(req); err != nil {
		return nil, wrapValidation(err, "a valid project link is required")
	}
	if err := s.apps.SetProjectLink(ctx, id, req.ProjectLink, s.now().UTC()); err != nil {
		return nil, s.notFoundOr(err, "failed to attach project")
	}
	return s.Get(ctx, id)
}

func (s *ApplicationService) notFoundOr(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "application not found")
	}
	return wrapInternal(err, message)
}

func statusMessage(status models.ApplicationStatus) string {
	switch status {
	case models.ApplicationApproved:
		return "Your application has been approved."
	case models.ApplicationCanceled:
		return "Your application has been declined."
	default:
		return "Your application is under review."
	}
}
