package dto

import (
	"time"

	"github.com/noah-isme/intern-progress-api/internal/models"
	"github.com/noah-isme/intern-progress-api/internal/progression"
)

// CreateInternRequest enrolls an intern. Grade defaults to junior and the probation to start now.
type CreateInternRequest struct {
	Username           string     `json:"username" validate:"required,min=3,max=64"`
	Name               string     `json:"name" validate:"required,max=100"`
	LastName           string     `json:"lastName" validate:"max=100"`
	BranchID           string     `json:"branchId" validate:"required"`
	MentorID           string     `json:"mentorId" validate:"required"`
	Grade              string     `json:"grade"`
	ProbationStartDate *time.Time `json:"probationStartDate"`
	// LegacyLessons back-fills confirmed placeholder visits for interns migrated from paper records.
	LegacyLessons int `json:"legacyLessons" validate:"min=0,max=500"`
}

// UpdateInternRequest changes identity fields. Version must match the stored record.
type UpdateInternRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Name     string `json:"name" validate:"required,max=100"`
	LastName string `json:"lastName" validate:"max=100"`
	BranchID string `json:"branchId" validate:"required"`
	MentorID string `json:"mentorId" validate:"required"`
	Version  int    `json:"version" validate:"required,min=1"`
}

// PromoteRequest changes an intern's grade.
type PromoteRequest struct {
	Grade          string `json:"grade" validate:"required"`
	WithConcession bool   `json:"withConcession"`
	Note           string `json:"note" validate:"max=500"`
	PromotedBy     string `json:"promotedBy"`
}

// InternDetail is an intern with its audit trail.
type InternDetail struct {
	models.Intern
	PromotionHistory []models.PromotionRecord `json:"promotion_history"`
	EvaluatedMentors []string                 `json:"evaluated_mentors"`
}

// InternSummary identifies the intern a dashboard belongs to.
type InternSummary struct {
	ID       string       `json:"id"`
	Username string       `json:"username"`
	Name     string       `json:"name"`
	LastName string       `json:"lastName"`
	BranchID string       `json:"branchId"`
	MentorID string       `json:"mentorId"`
	Grade    models.Grade `json:"grade"`
	Score    float64      `json:"score"`
}

// InternDashboard is the dashboard payload served to interns and admins.
type InternDashboard struct {
	Intern InternSummary `json:"intern"`
	progression.Dashboard
}

// PromotionResponse reports a completed grade change.
type PromotionResponse struct {
	Intern            models.Intern          `json:"intern"`
	Record            models.PromotionRecord `json:"record"`
	WasWithConcession bool                   `json:"wasWithConcession"`
	Message           string                 `json:"message"`
}

// GradeEntry describes one rung of the grade ladder.
type GradeEntry struct {
	Grade             models.Grade `json:"grade"`
	Rank              int          `json:"rank"`
	LessonsPerMonth   int          `json:"lessonsPerMonth"`
	TrialPeriodMonths int          `json:"trialPeriodMonths"`
	Perks             []string     `json:"perks"`
}
