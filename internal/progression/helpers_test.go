package progression

import (
	"time"

	"github.com/noah-isme/intern-progress-api/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestEngine() *Engine {
	return NewEngine(DefaultGradeTable(), NewCalendar(time.Sunday, time.UTC, 2), WindowWeek, ProrationElapsed, DefaultVisitPolicy())
}

func juniorIntern(start time.Time) models.Intern {
	return models.Intern{
		ID:                 "intern-1",
		Username:           "aziz",
		Name:               "Aziz",
		LastName:           "Karimov",
		MentorID:           "mentor-own",
		BranchID:           "branch-1",
		Grade:              models.GradeJunior,
		ProbationStartDate: start,
		ProbationPeriod:    1,
		LessonsPerMonth:    24,
	}
}

func confirmedLessons(n int, from time.Time) []models.LessonVisit {
	out := make([]models.LessonVisit, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.LessonVisit{
			ID:       "lesson-" + from.AddDate(0, 0, i).Format("0102"),
			InternID: "intern-1",
			MentorID: "mentor-x",
			Topic:    "Goroutines",
			Date:     from.AddDate(0, 0, i).Add(10 * time.Hour),
			Status:   models.LessonConfirmed,
		})
	}
	return out
}
