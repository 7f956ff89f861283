package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-progress-api/internal/models"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

func pending(id, mentorID string, d time.Time) models.PendingLesson {
	return models.PendingLesson{
		LessonVisit: models.LessonVisit{ID: id, InternID: "intern-1", MentorID: mentorID, Date: d, Status: models.LessonPending},
		InternName:  "Aziz",
	}
}

func TestMentorServiceDebtNewestFirst(t *testing.T) {
	lessons := &fakeLessonStore{pending: []models.PendingLesson{
		pending("L1", "mentor-x", date(2024, 1, 3)),
		pending("L2", "mentor-x", date(2024, 1, 9)),
		pending("L3", "mentor-y", date(2024, 1, 5)),
	}}
	svc := NewMentorService(newFakeDirectory(), lessons, nil, nil)

	debt, err := svc.Debt(context.Background(), "mentor-x")
	require.NoError(t, err)
	assert.Equal(t, 2, debt.Count)
	require.Len(t, debt.Details, 2)
	assert.Equal(t, "L2", debt.Details[0].LessonID)
	assert.Equal(t, "Aziz", debt.Details[0].InternName)

	debt, err = svc.Debt(context.Background(), "mentor-own")
	require.NoError(t, err)
	assert.Zero(t, debt.Count)
	assert.NotNil(t, debt.Details)

	_, err = svc.Debt(context.Background(), "ghost")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestMentorServiceAllDebtOmitsZeroCounts(t *testing.T) {
	lessons := &fakeLessonStore{counts: []models.MentorDebtCount{
		{MentorID: "m1", Name: "Anvar", Count: 1},
		{MentorID: "m2", Name: "Bobur", Count: 0},
		{MentorID: "m3", Name: "Dilshod", Count: 4},
	}}
	svc := NewMentorService(newFakeDirectory(), lessons, nil, nil)

	out, err := svc.AllDebt(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "m3", out[0].MentorID)
	assert.Equal(t, 4, out[0].Count)
	assert.Equal(t, "m1", out[1].MentorID)
}

func TestMentorServiceStats(t *testing.T) {
	lessons := &fakeLessonStore{
		monthStats: models.MentorMonthStats{Lessons: 12, Feedbacks: 9},
		pending:    []models.PendingLesson{pending("L1", "mentor-x", date(2024, 1, 3))},
	}
	svc := NewMentorService(newFakeDirectory(), lessons, nil, nil)
	svc.now = fixedClock(date(2024, 1, 20))

	stats, err := svc.Stats(context.Background(), "mentor-x")
	require.NoError(t, err)
	assert.Equal(t, "Jasur", stats.Mentor.Name)
	assert.Equal(t, 12, stats.MonthLessons)
	assert.Equal(t, 9, stats.MonthFeedbacks)
	assert.Equal(t, 1, stats.TotalDebt)
	assert.Len(t, stats.Details, 1)
}

func TestMentorServiceListByBranch(t *testing.T) {
	dir := newFakeDirectory()
	dir.mentors["mentor-z"] = models.Mentor{ID: "mentor-z", Name: "Bekzod", BranchID: "branch-2"}
	svc := NewMentorService(dir, &fakeLessonStore{}, nil, nil)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	branch, err := svc.List(context.Background(), " branch-2 ")
	require.NoError(t, err)
	require.Len(t, branch, 1)
	assert.Equal(t, "mentor-z", branch[0].ID)

	none, err := svc.List(context.Background(), "branch-9")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
