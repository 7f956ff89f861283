package dto

import (
	"time"

	"github.com/noah-isme/intern-progress-api/internal/models"
	"github.com/noah-isme/intern-progress-api/internal/progression"
)

// RecordLessonRequest logs an intern's visit to a mentor's lesson.
// Repeating a known LessonID for the same mentor increments its visit count.
type RecordLessonRequest struct {
	MentorID string     `json:"mentorId" validate:"required"`
	LessonID string     `json:"lessonId" validate:"max=64"`
	Topic    string     `json:"topic" validate:"max=200"`
	Time     string     `json:"time" validate:"max=16"`
	Group    string     `json:"group" validate:"max=64"`
	Date     *time.Time `json:"date"`
}

// RecordLessonResponse is the stored visit and whether it was a new entry.
type RecordLessonResponse struct {
	Lesson   models.LessonVisit `json:"lesson"`
	Appended bool               `json:"appended"`
	Message  string             `json:"message"`
}

// RateLessonRequest is a mentor's rating of a pending lesson.
type RateLessonRequest struct {
	MentorID string `json:"mentorId" validate:"required"`
	Stars    int    `json:"stars" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback" validate:"max=2000"`
}

// RateLessonResponse is the confirmed lesson, the stored feedback and the intern's new score.
type RateLessonResponse struct {
	Lesson   models.LessonVisit `json:"lesson"`
	Feedback models.Feedback    `json:"feedback"`
	Score    float64            `json:"score"`
}

// AttendanceQuery selects the attendance statistics window.
type AttendanceQuery struct {
	Period   progression.Period `form:"period"`
	From     *time.Time         `form:"from" time_format:"2006-01-02"`
	To       *time.Time         `form:"to" time_format:"2006-01-02"`
	BranchID string             `form:"branchId"`
	InternID string             `form:"internId"`
}

// AttendanceStat is one intern's visits against the period norm.
type AttendanceStat struct {
	InternID   string       `json:"internId"`
	Name       string       `json:"name"`
	LastName   string       `json:"lastName"`
	BranchID   string       `json:"branchId"`
	Grade      models.Grade `json:"grade"`
	Confirmed  int          `json:"confirmed"`
	Pending    int          `json:"pending"`
	Total      int          `json:"total"`
	Norm       int          `json:"norm"`
	Percentage int          `json:"percentage"`
	MeetsNorm  bool         `json:"meetsNorm"`
}

// AttendanceReport is the attendance of every selected intern within one window.
type AttendanceReport struct {
	Period   progression.Period `json:"period"`
	From     time.Time          `json:"from"`
	To       time.Time          `json:"to"`
	Workdays int                `json:"workdays"`
	Norm     int                `json:"norm"`
	Interns  []AttendanceStat   `json:"interns"`
}
