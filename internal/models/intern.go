package models

import (
	"time"

	"github.com/lib/pq"
)

// Intern is a participant progressing through the mentorship programme.
// ProbationPeriod, LessonsPerMonth and Perks mirror the grade table entry for Grade.
type Intern struct {
	ID                 string         `db:"id" json:"id"`
	Username           string         `db:"username" json:"username"`
	Name               string         `db:"name" json:"name"`
	LastName           string         `db:"last_name" json:"last_name"`
	BranchID           string         `db:"branch_id" json:"branch_id"`
	MentorID           string         `db:"mentor_id" json:"mentor_id"`
	Grade              Grade          `db:"grade" json:"grade"`
	Score              float64        `db:"score" json:"score"`
	ProbationStartDate time.Time      `db:"probation_start_date" json:"probation_start_date"`
	ProbationPeriod    int            `db:"probation_period" json:"probation_period"`
	LessonsPerMonth    int            `db:"lessons_per_month" json:"lessons_per_month"`
	Perks              pq.StringArray `db:"perks" json:"perks"`
	Version            int            `db:"version" json:"version"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// InternFilter encapsulates allowed search parameters for listing interns.
type InternFilter struct {
	Search   string
	BranchID string
	MentorID string
	Grade    Grade
	Page     int
	PageSize int
}

// PromotionRecord is an audit entry appended on every grade transition.
type PromotionRecord struct {
	ID             string    `db:"id" json:"id"`
	InternID       string    `db:"intern_id" json:"intern_id"`
	Date           time.Time `db:"promoted_at" json:"date"`
	FromGrade      Grade     `db:"from_grade" json:"from_grade"`
	ToGrade        Grade     `db:"to_grade" json:"to_grade"`
	WithConcession bool      `db:"with_concession" json:"with_concession"`
	Percentage     int       `db:"percentage" json:"percentage"`
	PromotedBy     string    `db:"promoted_by" json:"promoted_by"`
	Note           string    `db:"note" json:"note"`
}

// RatingInput aggregates the per-intern counters needed to rank interns.
type RatingInput struct {
	InternID           string  `db:"intern_id"`
	Name               string  `db:"name"`
	LastName           string  `db:"last_name"`
	BranchID           string  `db:"branch_id"`
	BranchName         string  `db:"branch_name"`
	Grade              Grade   `db:"grade"`
	AverageStars       float64 `db:"average_stars"`
	FeedbackCount      int     `db:"feedback_count"`
	LessonCount        int     `db:"lesson_count"`
	ConfirmedThisMonth int     `db:"confirmed_this_month"`
}
