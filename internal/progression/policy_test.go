package progression

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/intern-progress-api/internal/models"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

func pendingVisits(n int, from time.Time) []models.LessonVisit {
	out := make([]models.LessonVisit, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.LessonVisit{
			ID:       fmt.Sprintf("pending-%d", i),
			MentorID: fmt.Sprintf("mentor-p%d", i),
			Date:     from.AddDate(0, 0, i),
			Status:   models.LessonPending,
		})
	}
	return out
}

func TestCheckVisitRepeatBypassesGuards(t *testing.T) {
	engine := newTestEngine()
	lessons := pendingVisits(3, day(2024, 1, 10))

	err := engine.CheckVisit(VisitAttempt{
		Intern:   juniorIntern(day(2024, 1, 1)),
		MentorID: "mentor-p0",
		LessonID: "pending-0",
		Date:     day(2024, 1, 10),
		Lessons:  lessons,
	})
	assert.NoError(t, err)
}

func TestCheckVisitRejectsSameMentorSameDay(t *testing.T) {
	engine := newTestEngine()
	lessons := confirmedLessons(1, day(2024, 1, 10))
	intern := juniorIntern(day(2024, 1, 1))

	err := engine.CheckVisit(VisitAttempt{Intern: intern, MentorID: "mentor-x", LessonID: "other", Date: day(2024, 1, 10).Add(15 * time.Hour), Lessons: lessons})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPolicyRejected))

	err = engine.CheckVisit(VisitAttempt{Intern: intern, MentorID: "mentor-y", LessonID: "other", Date: day(2024, 1, 10).Add(15 * time.Hour), Lessons: lessons})
	assert.NoError(t, err)
}

func TestCheckVisitPendingLimit(t *testing.T) {
	engine := newTestEngine()
	intern := juniorIntern(day(2024, 1, 1))

	err := engine.CheckVisit(VisitAttempt{Intern: intern, MentorID: "mentor-z", LessonID: "new", Date: day(2024, 1, 20), Lessons: pendingVisits(2, day(2024, 1, 10))})
	assert.NoError(t, err)

	err = engine.CheckVisit(VisitAttempt{Intern: intern, MentorID: "mentor-z", LessonID: "new", Date: day(2024, 1, 20), Lessons: pendingVisits(3, day(2024, 1, 10))})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPolicyRejected))
	assert.Contains(t, err.Error(), "limit 3")
}

func TestCheckVisitFeedbackRatio(t *testing.T) {
	engine := newTestEngine()
	intern := juniorIntern(day(2024, 1, 1))
	attempt := VisitAttempt{Intern: intern, MentorID: "mentor-z", LessonID: "new", Date: day(2024, 1, 20)}

	attempt.Lessons = confirmedLessons(6, day(2024, 1, 2))
	attempt.FeedbackCount = 4
	err := engine.CheckVisit(attempt)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPolicyRejected))

	attempt.FeedbackCount = 5
	assert.NoError(t, engine.CheckVisit(attempt))

	attempt.Lessons = confirmedLessons(5, day(2024, 1, 2))
	attempt.FeedbackCount = 0
	assert.NoError(t, engine.CheckVisit(attempt))
}

func TestCheckVisitOwnMentorShare(t *testing.T) {
	engine := newTestEngine()
	intern := juniorIntern(day(2024, 1, 1))
	own := func(d int) models.LessonVisit {
		return models.LessonVisit{ID: fmt.Sprintf("own-%d", d), MentorID: intern.MentorID, Date: day(2024, 1, d), Status: models.LessonConfirmed}
	}
	attempt := VisitAttempt{Intern: intern, MentorID: intern.MentorID, LessonID: "new", Date: day(2024, 1, 25), FeedbackCount: 20}

	err := engine.CheckVisit(attempt)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPolicyRejected), "first own-mentor lesson of a month exceeds the share")

	attempt.Lessons = append(confirmedLessons(9, day(2024, 1, 1)), own(20), own(21))
	assert.NoError(t, engine.CheckVisit(attempt))

	attempt.Lessons = append(attempt.Lessons, own(22))
	err = engine.CheckVisit(attempt)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPolicyRejected))

	attempt.MentorID = "mentor-guest"
	assert.NoError(t, engine.CheckVisit(attempt))
}

func TestCheckVisitZeroPolicyDisablesGuards(t *testing.T) {
	engine := NewEngine(nil, nil, WindowWeek, ProrationElapsed, VisitPolicy{})
	intern := juniorIntern(day(2024, 1, 1))

	err := engine.CheckVisit(VisitAttempt{Intern: intern, MentorID: intern.MentorID, LessonID: "new", Date: day(2024, 1, 20), Lessons: pendingVisits(5, day(2024, 1, 10))})
	assert.NoError(t, err)
}
