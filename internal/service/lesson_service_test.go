package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-progress-api/internal/dto"
	"github.com/noah-isme/intern-progress-api/internal/models"
	"github.com/noah-isme/intern-progress-api/internal/progression"
	"github.com/noah-isme/intern-progress-api/internal/repository"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

type lessonFixture struct {
	svc      *LessonService
	lessons  *fakeLessonStore
	feedback *fakeFeedbackStore
	cache    *fakeCacheRepo
}

func newLessonFixture(now time.Time) *lessonFixture {
	f := &lessonFixture{
		lessons:  &fakeLessonStore{},
		feedback: &fakeFeedbackStore{},
		cache:    newFakeCacheRepo(),
	}
	f.svc = NewLessonService(LessonServiceParams{
		Interns:  newFakeInternStore(juniorIntern("intern-1", date(2024, 1, 1)), juniorIntern("intern-2", date(2024, 1, 1))),
		Mentors:  newFakeDirectory(),
		Lessons:  f.lessons,
		Feedback: f.feedback,
		Engine:   testEngine(),
		Cache:    NewCacheService(f.cache, nil, time.Minute, zap.NewNop(), true),
		Logger:   zap.NewNop(),
	})
	f.svc.now = fixedClock(now)
	return f
}

func TestLessonServiceRecordVisitAppendsWithDefaults(t *testing.T) {
	now := date(2024, 1, 15).Add(12 * time.Hour)
	f := newLessonFixture(now)

	res, err := f.svc.RecordVisit(context.Background(), "intern-1", dto.RecordLessonRequest{MentorID: "mentor-x"})
	require.NoError(t, err)
	assert.True(t, res.Appended)
	assert.Equal(t, "lesson recorded", res.Message)
	assert.Equal(t, "No topic", res.Lesson.Topic)
	assert.Equal(t, "00:00", res.Lesson.Time)
	assert.Equal(t, "General", res.Lesson.Group)
	assert.Equal(t, models.LessonPending, res.Lesson.Status)
	assert.Equal(t, now, res.Lesson.Date)
	assert.Equal(t, 1, res.Lesson.VisitCount)
	assert.Contains(t, f.cache.invalidated, "dash:intern:intern-1:*")
}

func TestLessonServiceRecordVisitGuardsAgainstConcurrentAdmission(t *testing.T) {
	f := newLessonFixture(date(2024, 1, 15).Add(12 * time.Hour))

	_, err := f.svc.RecordVisit(context.Background(), "intern-1", dto.RecordLessonRequest{MentorID: "mentor-x"})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, f.lessons.recordedAt)

	f.lessons.staleVersion = true
	_, err = f.svc.RecordVisit(context.Background(), "intern-1", dto.RecordLessonRequest{MentorID: "mentor-y"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
	assert.Len(t, f.lessons.lessons, 1)
}

func TestLessonServiceRecordVisitIncrementsKnownLesson(t *testing.T) {
	f := newLessonFixture(date(2024, 1, 15).Add(12 * time.Hour))
	f.lessons.lessons = []models.LessonVisit{{
		ID: "L1", InternID: "intern-1", MentorID: "mentor-x", Topic: "Maps",
		Date: date(2024, 1, 15).Add(9 * time.Hour), Status: models.LessonPending, VisitCount: 1,
	}}

	res, err := f.svc.RecordVisit(context.Background(), "intern-1", dto.RecordLessonRequest{MentorID: "mentor-x", LessonID: "L1"})
	require.NoError(t, err)
	assert.False(t, res.Appended)
	assert.Equal(t, "visit count incremented", res.Message)
	assert.Equal(t, 2, res.Lesson.VisitCount)
	assert.Len(t, f.lessons.lessons, 1)
}

func TestLessonServiceRecordVisitGuards(t *testing.T) {
	now := date(2024, 1, 15).Add(12 * time.Hour)

	t.Run("same mentor same day", func(t *testing.T) {
		f := newLessonFixture(now)
		f.lessons.lessons = visits("intern-1", "mentor-x", 1, date(2024, 1, 15), models.LessonConfirmed)
		_, err := f.svc.RecordVisit(context.Background(), "intern-1", dto.RecordLessonRequest{MentorID: "mentor-x"})
		assert.True(t, appErrors.HasCode(err, appErrors.ErrPolicyRejected))
	})

	t.Run("pending ceiling", func(t *testing.T) {
		f := newLessonFixture(now)
		f.lessons.lessons = visits("intern-1", "mentor-y", 3, date(2024, 1, 2), models.LessonPending)
		_, err := f.svc.RecordVisit(context.Background(), "intern-1", dto.RecordLessonRequest{MentorID: "mentor-x"})
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrPolicyRejected))
		assert.Contains(t, err.Error(), "limit 3")
		assert.Len(t, f.lessons.lessons, 3)
	})

	t.Run("own mentor share", func(t *testing.T) {
		f := newLessonFixture(now)
		_, err := f.svc.RecordVisit(context.Background(), "intern-1", dto.RecordLessonRequest{MentorID: "mentor-own"})
		assert.True(t, appErrors.HasCode(err, appErrors.ErrPolicyRejected))
	})

	t.Run("lesson id owned by another intern", func(t *testing.T) {
		f := newLessonFixture(now)
		f.lessons.lessons = []models.LessonVisit{{ID: "L9", InternID: "intern-2", MentorID: "mentor-x", Date: date(2024, 1, 10), Status: models.LessonPending, VisitCount: 1}}
		_, err := f.svc.RecordVisit(context.Background(), "intern-1", dto.RecordLessonRequest{MentorID: "mentor-x", LessonID: "L9"})
		assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
	})

	t.Run("unknown intern and mentor", func(t *testing.T) {
		f := newLessonFixture(now)
		_, err := f.svc.RecordVisit(context.Background(), "missing", dto.RecordLessonRequest{MentorID: "mentor-x"})
		assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
		_, err = f.svc.RecordVisit(context.Background(), "intern-1", dto.RecordLessonRequest{MentorID: "ghost"})
		assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
	})
}

func pendingL1() models.LessonVisit {
	return models.LessonVisit{
		ID: "L1", InternID: "intern-1", MentorID: "mentor-x", Topic: "Interfaces",
		Date: date(2024, 1, 12).Add(10 * time.Hour), Status: models.LessonPending, VisitCount: 1,
	}
}

func TestLessonServiceRateLessonConfirmsAndScores(t *testing.T) {
	now := date(2024, 1, 15).Add(12 * time.Hour)
	f := newLessonFixture(now)
	f.lessons.lessons = []models.LessonVisit{pendingL1()}
	f.feedback.score = 4.5

	res, err := f.svc.RateLesson(context.Background(), "L1", dto.RateLessonRequest{MentorID: "mentor-x", Stars: 4, Feedback: " solid "})
	require.NoError(t, err)
	assert.Equal(t, models.LessonConfirmed, res.Lesson.Status)
	require.NotNil(t, res.Lesson.RatedAt)
	assert.Equal(t, now, *res.Lesson.RatedAt)
	assert.Equal(t, 4.5, res.Score)
	assert.Equal(t, "2024-W03", res.Feedback.WindowKey)
	assert.Equal(t, "solid", res.Feedback.Text)
	require.NotNil(t, res.Feedback.LessonID)
	assert.Equal(t, "L1", *res.Feedback.LessonID)
	require.Len(t, f.feedback.rated, 1)
	assert.Equal(t, now, f.feedback.ratedAt)
	assert.Contains(t, f.cache.invalidated, "dash:intern:intern-1:*")
}

func TestLessonServiceRateLessonRejections(t *testing.T) {
	now := date(2024, 1, 15).Add(12 * time.Hour)
	ctx := context.Background()

	t.Run("another mentor", func(t *testing.T) {
		f := newLessonFixture(now)
		f.lessons.lessons = []models.LessonVisit{pendingL1()}
		_, err := f.svc.RateLesson(ctx, "L1", dto.RateLessonRequest{MentorID: "mentor-y", Stars: 5})
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrPolicyRejected))
		assert.Contains(t, err.Error(), "another mentor")
	})

	t.Run("already confirmed", func(t *testing.T) {
		f := newLessonFixture(now)
		lesson := pendingL1()
		lesson.Status = models.LessonConfirmed
		f.lessons.lessons = []models.LessonVisit{lesson}
		_, err := f.svc.RateLesson(ctx, "L1", dto.RateLessonRequest{MentorID: "mentor-x", Stars: 5})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already rated")
		assert.Empty(t, f.feedback.rated)
	})

	t.Run("window already used", func(t *testing.T) {
		f := newLessonFixture(now)
		f.lessons.lessons = []models.LessonVisit{pendingL1()}
		f.feedback.feedback = []models.Feedback{{InternID: "intern-1", MentorID: "mentor-x", Stars: 3, Date: date(2024, 1, 15).Add(8 * time.Hour)}}
		_, err := f.svc.RateLesson(ctx, "L1", dto.RateLessonRequest{MentorID: "mentor-x", Stars: 5})
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrPolicyRejected))
		assert.Contains(t, err.Error(), "one rating per week")
	})

	t.Run("lost race", func(t *testing.T) {
		f := newLessonFixture(now)
		f.lessons.lessons = []models.LessonVisit{pendingL1()}
		f.feedback.rateErr = repository.ErrLessonAlreadyRated
		_, err := f.svc.RateLesson(ctx, "L1", dto.RateLessonRequest{MentorID: "mentor-x", Stars: 5})
		assert.True(t, appErrors.HasCode(err, appErrors.ErrPolicyRejected))

		f.feedback.rateErr = repository.ErrFeedbackWindowTaken
		_, err = f.svc.RateLesson(ctx, "L1", dto.RateLessonRequest{MentorID: "mentor-x", Stars: 5})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "one rating per week")
	})

	t.Run("bad input", func(t *testing.T) {
		f := newLessonFixture(now)
		_, err := f.svc.RateLesson(ctx, "L1", dto.RateLessonRequest{MentorID: "mentor-x", Stars: 6})
		assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
		_, err = f.svc.RateLesson(ctx, "nope", dto.RateLessonRequest{MentorID: "mentor-x", Stars: 3})
		assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
	})
}

func TestLessonServiceAttendanceMonth(t *testing.T) {
	f := newLessonFixture(date(2024, 2, 15).Add(12 * time.Hour))
	f.lessons.attendance = []models.AttendanceRow{
		{InternID: "intern-1", Name: "Aziz", Grade: models.GradeJunior, Confirmed: 30, Pending: 20},
		{InternID: "intern-2", Name: "Bekzod", Grade: models.GradeJunior, Confirmed: 10},
	}

	report, err := f.svc.Attendance(context.Background(), dto.AttendanceQuery{BranchID: "branch-1"})
	require.NoError(t, err)
	assert.Equal(t, progression.PeriodMonth, report.Period)
	assert.Equal(t, date(2024, 2, 1), report.From)
	assert.Equal(t, date(2024, 3, 1), report.To)
	assert.Equal(t, 25, report.Workdays)
	assert.Equal(t, 50, report.Norm)
	require.Len(t, report.Interns, 2)
	assert.Equal(t, 50, report.Interns[0].Total)
	assert.Equal(t, 100, report.Interns[0].Percentage)
	assert.True(t, report.Interns[0].MeetsNorm)
	assert.Equal(t, 20, report.Interns[1].Percentage)
	assert.False(t, report.Interns[1].MeetsNorm)

	assert.Equal(t, "branch-1", f.lessons.lastFilter.BranchID)
	assert.Equal(t, time.Sunday, f.lessons.lastRestDay)
	assert.Equal(t, "UTC", f.lessons.lastTimezone)
}

func TestLessonServiceAttendanceCustomWindow(t *testing.T) {
	f := newLessonFixture(date(2024, 2, 15))
	from, to := date(2024, 2, 5), date(2024, 2, 10)

	report, err := f.svc.Attendance(context.Background(), dto.AttendanceQuery{Period: progression.PeriodCustom, From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, 6, report.Workdays)
	assert.Equal(t, 12, report.Norm)
	assert.Equal(t, date(2024, 2, 11), f.lessons.lastFilter.To)
	assert.NotNil(t, report.Interns)

	_, err = f.svc.Attendance(context.Background(), dto.AttendanceQuery{Period: progression.PeriodCustom})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
	_, err = f.svc.Attendance(context.Background(), dto.AttendanceQuery{Period: "year"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}
