package models

import "time"

// LessonStatus tracks whether a mentor has rated a visit.
type LessonStatus string

const (
	LessonPending   LessonStatus = "pending"
	LessonConfirmed LessonStatus = "confirmed"
)

// LessonVisit is an entry of the append-only attendance log.
type LessonVisit struct {
	ID         string       `db:"id" json:"id"`
	InternID   string       `db:"intern_id" json:"intern_id"`
	MentorID   string       `db:"mentor_id" json:"mentor_id"`
	Topic      string       `db:"topic" json:"topic"`
	Time       string       `db:"lesson_time" json:"time"`
	Group      string       `db:"lesson_group" json:"group"`
	Date       time.Time    `db:"visit_date" json:"date"`
	Status     LessonStatus `db:"status" json:"status"`
	VisitCount int          `db:"visit_count" json:"visit_count"`
	RatedAt    *time.Time   `db:"rated_at" json:"rated_at,omitempty"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
}

// PendingLesson is an unrated visit with the identity of the intern who attended.
type PendingLesson struct {
	LessonVisit
	InternName     string `db:"intern_name" json:"intern_name"`
	InternLastName string `db:"intern_last_name" json:"intern_last_name"`
	InternUsername string `db:"intern_username" json:"intern_username"`
}

// MentorDebtCount is the number of pending lessons owned by a mentor.
type MentorDebtCount struct {
	MentorID string `db:"mentor_id" json:"mentor_id"`
	Name     string `db:"name" json:"name"`
	LastName string `db:"last_name" json:"last_name"`
	BranchID string `db:"branch_id" json:"branch_id"`
	Count    int    `db:"debt_count" json:"count"`
}

// AttendanceFilter narrows the attendance statistics query.
type AttendanceFilter struct {
	BranchID string
	InternID string
	From     time.Time
	To       time.Time
}

// AttendanceRow is one intern's visits within an attendance window.
type AttendanceRow struct {
	InternID  string `db:"intern_id"`
	Name      string `db:"name"`
	LastName  string `db:"last_name"`
	BranchID  string `db:"branch_id"`
	Grade     Grade  `db:"grade"`
	Confirmed int    `db:"confirmed"`
	Pending   int    `db:"pending"`
}
