package models

import "time"

// Branch is a physical location of the programme.
type Branch struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Mentor runs lessons and rates the interns attending them.
type Mentor struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	LastName  string    `db:"last_name" json:"last_name"`
	BranchID  string    `db:"branch_id" json:"branch_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// MentorMonthStats counts a mentor's activity within a month.
type MentorMonthStats struct {
	Lessons   int `db:"lessons"`
	Feedbacks int `db:"feedbacks"`
}
