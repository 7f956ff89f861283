package models

import "time"

// Feedback is a mentor rating entry of the append-only feedback log.
type Feedback struct {
	ID        string    `db:"id" json:"id"`
	InternID  string    `db:"intern_id" json:"intern_id"`
	MentorID  string    `db:"mentor_id" json:"mentor_id"`
	LessonID  *string   `db:"lesson_id" json:"lesson_id,omitempty"`
	Stars     int       `db:"stars" json:"stars"`
	Text      string    `db:"feedback_text" json:"feedback"`
	WindowKey string    `db:"window_key" json:"-"`
	Date      time.Time `db:"created_at" json:"date"`
}
