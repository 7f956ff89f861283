package dto

import (
	"time"

	"github.com/noah-isme/intern-progress-api/internal/models"
	"github.com/noah-isme/intern-progress-api/internal/progression"
)

// MentorStats summarises a mentor's month and outstanding ratings.
type MentorStats struct {
	Mentor         models.Mentor            `json:"mentor"`
	MonthLessons   int                      `json:"monthLessons"`
	MonthFeedbacks int                      `json:"monthFeedbacks"`
	TotalDebt      int                      `json:"totalDebt"`
	Details        []progression.DebtDetail `json:"details"`
}

// MentorDebtSummary is one mentor's entry in the all-mentors debt list.
type MentorDebtSummary struct {
	MentorID string `json:"mentorId"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	BranchID string `json:"branchId"`
	Count    int    `json:"count"`
}

// DebtReminder is the message published for a mentor with unrated lessons.
type DebtReminder struct {
	MentorID string    `json:"mentorId"`
	Name     string    `json:"name"`
	Count    int       `json:"count"`
	SentAt   time.Time `json:"sentAt"`
}

// ViolationRequest records a rule violation against an intern.
type ViolationRequest struct {
	RuleID             string     `json:"ruleId" validate:"required"`
	Date               *time.Time `json:"date"`
	Notes              string     `json:"notes" validate:"max=1000"`
	ConsequenceApplied bool       `json:"consequenceApplied"`
}

// RuleRequest adds an entry to the violation catalog.
type RuleRequest struct {
	Category    string `json:"category" validate:"required,oneof=green yellow red black"`
	Title       string `json:"title" validate:"required,max=200"`
	Example     string `json:"example" validate:"max=1000"`
	Consequence string `json:"consequence" validate:"max=500"`
}

// ViolationQuery filters the violation listing.
type ViolationQuery struct {
	InternID string     `form:"internId"`
	BranchID string     `form:"branchId"`
	Category string     `form:"category"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Page     int        `form:"page"`
	PageSize int        `form:"pageSize"`
}
