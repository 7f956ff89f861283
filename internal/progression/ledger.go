package progression

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/intern-progress-api/internal/models"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

// AttendanceLedger is an intern's ordered list of lesson visits with an index by mentor and lesson.
type AttendanceLedger struct {
	entries []models.LessonVisit
	index   map[string]int
}

// NewAttendanceLedger copies entries into a ledger.
func NewAttendanceLedger(entries []models.LessonVisit) *AttendanceLedger {
	l := &AttendanceLedger{
		entries: make([]models.LessonVisit, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		l.Record(e)
	}
	return l
}

func visitKey(mentorID, lessonID string) string {
	return mentorID + "\x00" + lessonID
}

// Record increments the visit count of an existing (mentor, lesson) entry or appends a pending one.
// It reports whether a new entry was appended.
func (l *AttendanceLedger) Record(visit models.LessonVisit) (models.LessonVisit, bool) {
	key := visitKey(visit.MentorID, visit.ID)
	if i, ok := l.index[key]; ok && visit.ID != "" {
		inc := visit.VisitCount
		if inc <= 0 {
			inc = 1
		}
		l.entries[i].VisitCount += inc
		return l.entries[i], false
	}
	if visit.Status == "" {
		visit.Status = models.LessonPending
	}
	if visit.VisitCount <= 0 {
		visit.VisitCount = 1
	}
	l.entries = append(l.entries, visit)
	if visit.ID != "" {
		l.index[key] = len(l.entries) - 1
	}
	return visit, true
}

// Has reports whether the (mentor, lesson) pair is already recorded.
func (l *AttendanceLedger) Has(mentorID, lessonID string) bool {
	_, ok := l.index[visitKey(mentorID, lessonID)]
	return ok
}

// Confirm flips a pending lesson to confirmed. The first caller wins; later calls are rejected.
func (l *AttendanceLedger) Confirm(lessonID, mentorID string, at time.Time) (models.LessonVisit, error) {
	for i := range l.entries {
		e := &l.entries[i]
		if e.ID != lessonID {
			continue
		}
		if e.MentorID != mentorID {
			return models.LessonVisit{}, appErrors.Clone(appErrors.ErrPolicyRejected, "lesson belongs to another mentor")
		}
		if e.Status == models.LessonConfirmed {
			return models.LessonVisit{}, appErrors.Clone(appErrors.ErrPolicyRejected, "lesson already rated")
		}
		e.Status = models.LessonConfirmed
		ratedAt := at
		e.RatedAt = &ratedAt
		return *e, nil
	}
	return models.LessonVisit{}, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
}

// Entries returns a copy of the ledger in insertion order.
func (l *AttendanceLedger) Entries() []models.LessonVisit {
	return append([]models.LessonVisit(nil), l.entries...)
}

// Len counts distinct entries.
func (l *AttendanceLedger) Len() int { return len(l.entries) }

// TotalVisits sums visit counts over all entries.
func (l *AttendanceLedger) TotalVisits() int {
	total := 0
	for _, e := range l.entries {
		total += e.VisitCount
	}
	return total
}

// CountBetween counts entries with the given status dated within [from, to).
func (l *AttendanceLedger) CountBetween(status models.LessonStatus, from, to time.Time) int {
	n := 0
	for _, e := range l.entries {
		if e.Status == status && !e.Date.Before(from) && e.Date.Before(to) {
			n++
		}
	}
	return n
}

// ConfirmedSince counts confirmed entries dated at or after from.
func (l *AttendanceLedger) ConfirmedSince(from time.Time) int {
	n := 0
	for _, e := range l.entries {
		if e.Status == models.LessonConfirmed && !e.Date.Before(from) {
			n++
		}
	}
	return n
}

// Pending returns unrated entries.
func (l *AttendanceLedger) Pending() []models.LessonVisit {
	out := make([]models.LessonVisit, 0)
	for _, e := range l.entries {
		if e.Status == models.LessonPending {
			out = append(out, e)
		}
	}
	return out
}

// Between returns entries dated within [from, to).
func (l *AttendanceLedger) Between(from, to time.Time) []models.LessonVisit {
	out := make([]models.LessonVisit, 0)
	for _, e := range l.entries {
		if !e.Date.Before(from) && e.Date.Before(to) {
			out = append(out, e)
		}
	}
	return out
}

// Recent returns up to n entries, newest visit first.
func (l *AttendanceLedger) Recent(n int) []models.LessonVisit {
	out := l.Entries()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// FeedbackLedger is an intern's ordered list of mentor ratings, guarded by a rate limit.
type FeedbackLedger struct {
	entries []models.Feedback
	limit   RateLimit
}

// NewFeedbackLedger copies entries into a ledger.
func NewFeedbackLedger(entries []models.Feedback, limit RateLimit) *FeedbackLedger {
	return &FeedbackLedger{entries: append([]models.Feedback(nil), entries...), limit: limit}
}

// CanRate reports whether mentorID may rate the intern at now.
func (l *FeedbackLedger) CanRate(mentorID string, now time.Time) bool {
	return l.limit.Allows(l.entries, mentorID, now)
}

// Append validates and records a rating, stamping its window key.
func (l *FeedbackLedger) Append(fb models.Feedback) (models.Feedback, error) {
	if fb.Stars < 1 || fb.Stars > 5 {
		return models.Feedback{}, appErrors.Clone(appErrors.ErrValidation, "stars must be between 1 and 5")
	}
	if strings.TrimSpace(fb.MentorID) == "" {
		return models.Feedback{}, appErrors.Clone(appErrors.ErrValidation, "mentor is required")
	}
	if !l.CanRate(fb.MentorID, fb.Date) {
		return models.Feedback{}, appErrors.Clone(appErrors.ErrPolicyRejected,
			fmt.Sprintf("already rated this period: one rating per %s", l.limit.Label()))
	}
	fb.WindowKey = l.limit.Key(fb.Date)
	l.entries = append(l.entries, fb)
	return fb, nil
}

// Count returns the number of ratings.
func (l *FeedbackLedger) Count() int { return len(l.entries) }

// Average is the arithmetic mean of all stars, 0 when empty.
func (l *FeedbackLedger) Average() float64 {
	if len(l.entries) == 0 {
		return 0
	}
	sum := 0
	for _, fb := range l.entries {
		sum += fb.Stars
	}
	return float64(sum) / float64(len(l.entries))
}

// Recent returns up to n ratings, newest first.
func (l *FeedbackLedger) Recent(n int) []models.Feedback {
	out := append([]models.Feedback(nil), l.entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
