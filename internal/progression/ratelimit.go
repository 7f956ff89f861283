package progression

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/intern-progress-api/internal/models"
)

// FeedbackWindow is the bucket within which a mentor may rate an intern once.
type FeedbackWindow string

const (
	// WindowWeek numbers weeks from January 1st: days 1-7 are week 1.
	WindowWeek FeedbackWindow = "week"
	// WindowISOWeek uses ISO-8601 Monday-based weeks.
	WindowISOWeek FeedbackWindow = "isoweek"
	WindowMonth   FeedbackWindow = "month"
)

// ParseFeedbackWindow validates a configured window name. Empty means WindowWeek.
func ParseFeedbackWindow(raw string) (FeedbackWindow, error) {
	switch w := FeedbackWindow(strings.ToLower(strings.TrimSpace(raw))); w {
	case "":
		return WindowWeek, nil
	case WindowWeek, WindowISOWeek, WindowMonth:
		return w, nil
	default:
		return "", fmt.Errorf("unknown feedback window %q", raw)
	}
}

// RateLimit admits one feedback per intern and mentor per window.
type RateLimit struct {
	Window   FeedbackWindow
	Location *time.Location
}

// Key names the window containing t.
func (r RateLimit) Key(t time.Time) string {
	if r.Location != nil {
		t = t.In(r.Location)
	}
	switch r.Window {
	case WindowISOWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-IW%02d", year, week)
	case WindowMonth:
		return fmt.Sprintf("%04d-M%02d", t.Year(), int(t.Month()))
	default:
		return fmt.Sprintf("%04d-W%02d", t.Year(), (t.YearDay()-1)/7+1)
	}
}

// Label is the human name of the window used in rejections.
func (r RateLimit) Label() string {
	if r.Window == WindowMonth {
		return "month"
	}
	return "week"
}

// Allows reports whether mentorID has no feedback in the window containing now.
func (r RateLimit) Allows(existing []models.Feedback, mentorID string, now time.Time) bool {
	key := r.Key(now)
	for _, fb := range existing {
		if fb.MentorID != mentorID {
			continue
		}
		if r.Key(fb.Date) == key {
			return false
		}
	}
	return true
}
