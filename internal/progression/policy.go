package progression

import (
	"fmt"
	"time"

	"github.com/noah-isme/intern-progress-api/internal/models"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

// VisitPolicy guards the recording of new lesson visits. Zero values disable a guard.
type VisitPolicy struct {
	PendingLimit            int
	FeedbackRatioFloor      float64
	FeedbackRatioMinLessons int
	OwnMentorShare          float64
}

// DefaultVisitPolicy returns the programme's standard guards.
func DefaultVisitPolicy() VisitPolicy {
	return VisitPolicy{
		PendingLimit:            3,
		FeedbackRatioFloor:      0.7,
		FeedbackRatioMinLessons: 5,
		OwnMentorShare:          0.3,
	}
}

// VisitAttempt describes a visit about to be recorded against an intern's existing ledger.
type VisitAttempt struct {
	Intern        models.Intern
	MentorID      string
	LessonID      string
	Date          time.Time
	Lessons       []models.LessonVisit
	FeedbackCount int
}

// CheckVisit returns a policy rejection when the visit may not be recorded.
// Repeating a known (mentor, lesson) pair only increments its count and skips the guards.
func (e *Engine) CheckVisit(a VisitAttempt) error {
	p := e.Visits
	ledger := NewAttendanceLedger(a.Lessons)
	if a.LessonID != "" && ledger.Has(a.MentorID, a.LessonID) {
		return nil
	}

	day := e.Calendar.StartOfDay(a.Date)
	for _, l := range ledger.Between(day, day.AddDate(0, 0, 1)) {
		if l.MentorID == a.MentorID {
			return appErrors.Clone(appErrors.ErrPolicyRejected, "a lesson with this mentor is already recorded for that day")
		}
	}

	if p.PendingLimit > 0 && len(ledger.Pending()) >= p.PendingLimit {
		return appErrors.Clone(appErrors.ErrPolicyRejected,
			fmt.Sprintf("too many unrated lessons (limit %d): ask mentors to rate previous lessons first", p.PendingLimit))
	}

	total := ledger.Len()
	if p.FeedbackRatioFloor > 0 && total > p.FeedbackRatioMinLessons {
		ratio := float64(a.FeedbackCount) / float64(total)
		if ratio < p.FeedbackRatioFloor {
			return appErrors.Clone(appErrors.ErrPolicyRejected,
				fmt.Sprintf("feedback ratio too low (%.0f%%, minimum %.0f%%)", ratio*100, p.FeedbackRatioFloor*100))
		}
	}

	if p.OwnMentorShare > 0 && a.MentorID == a.Intern.MentorID {
		monthStart := e.Calendar.StartOfMonth(a.Date)
		month := ledger.Between(monthStart, monthStart.AddDate(0, 1, 0))
		own := 0
		for _, l := range month {
			if l.MentorID == a.Intern.MentorID {
				own++
			}
		}
		if float64(own+1)/float64(len(month)+1) > p.OwnMentorShare {
			return appErrors.Clone(appErrors.ErrPolicyRejected,
				fmt.Sprintf("lessons with the assigned mentor exceed %.0f%% of the month", p.OwnMentorShare*100))
		}
	}
	return nil
}
