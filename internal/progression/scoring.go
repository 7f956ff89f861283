package progression

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/noah-isme/intern-progress-api/internal/models"
)

const (
	maxStars           = 5.0
	promotionThreshold = 50
	historyMonths      = 6
	recentItems        = 5
	anonymousMentor    = "Anonymous mentor"
)

// Proration selects how the monthly goal is scaled for a partial month.
type Proration string

const (
	// ProrationElapsed scales by calendar days elapsed, capped at 30.
	ProrationElapsed Proration = "elapsed"
	// ProrationWorkday scales by elapsed working days over the month's working days.
	ProrationWorkday Proration = "workday"
)

// ParseProration validates a configured proration mode. Empty means ProrationElapsed.
func ParseProration(raw string) (Proration, error) {
	switch p := Proration(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return ProrationElapsed, nil
	case ProrationElapsed, ProrationWorkday:
		return p, nil
	default:
		return "", fmt.Errorf("unknown proration mode %q", raw)
	}
}

// Engine turns an intern's ledgers into derived progression state.
type Engine struct {
	Grades    *GradeTable
	Calendar  *Calendar
	RateLimit RateLimit
	Proration Proration
	Visits    VisitPolicy
	// StrictConcession rejects concession promotions outside the near-deadline band.
	// Off by default: the flag is recorded and Dashboard.CanGetConcession stays advisory.
	StrictConcession bool
}

// NewEngine wires the engine collaborators. Nil collaborators fall back to defaults.
func NewEngine(grades *GradeTable, calendar *Calendar, window FeedbackWindow, proration Proration, visits VisitPolicy) *Engine {
	if grades == nil {
		grades = DefaultGradeTable()
	}
	if calendar == nil {
		calendar = NewCalendar(time.Sunday, time.UTC, 2)
	}
	if window == "" {
		window = WindowWeek
	}
	if proration == "" {
		proration = ProrationElapsed
	}
	return &Engine{
		Grades:    grades,
		Calendar:  calendar,
		RateLimit: RateLimit{Window: window, Location: calendar.Location()},
		Proration: proration,
		Visits:    visits,
	}
}

// TrialStats compares confirmed lessons since the probation start with the whole-trial target.
type TrialStats struct {
	TotalLessons       int `json:"totalLessons"`
	TargetLessons      int `json:"targetLessons"`
	ProgressPercentage int `json:"progressPercentage"`
}

// MonthCount is the number of confirmed lessons in a calendar month.
type MonthCount struct {
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	MonthName string    `json:"monthName"`
	FullDate  time.Time `json:"fullDate"`
	Count     int       `json:"count"`
}

// Review is a rating with the mentor identity removed.
type Review struct {
	Stars      int       `json:"stars"`
	Feedback   string    `json:"feedback"`
	Date       time.Time `json:"date"`
	MentorName string    `json:"mentorName"`
}

// Dashboard is the derived progression state of one intern.
type Dashboard struct {
	Grade                 models.Grade         `json:"grade"`
	LessonsConfirmed      int                  `json:"lessonsConfirmed"`
	LessonsPending        int                  `json:"lessonsPending"`
	TotalLessons          int                  `json:"totalLessons"`
	MonthlyGoal           int                  `json:"monthlyGoal"`
	AdjustedMonthlyGoal   int                  `json:"adjustedMonthlyGoal"`
	Percentage            int                  `json:"percentage"`
	AverageScore          float64              `json:"averageScore"`
	LessonsProgress       float64              `json:"lessonsProgress"`
	ScoreProgress         float64              `json:"scoreProgress"`
	OverallProgress       int                  `json:"overallProgress"`
	AutoPromotionEligible bool                 `json:"autoPromotionEligible"`
	Perks                 []string             `json:"perks"`
	Probation             ProbationStatus      `json:"probation"`
	NearDeadline          bool                 `json:"nearDeadline"`
	CanGetConcession      bool                 `json:"canGetConcession"`
	TrialStats            TrialStats           `json:"trialStats"`
	History               []MonthCount         `json:"history"`
	RecentLessons         []models.LessonVisit `json:"recentLessons"`
	RecentReviews         []Review             `json:"recentReviews"`
	GeneratedAt           time.Time            `json:"generatedAt"`
}

// ComputeDashboard derives the dashboard of intern from its full lesson and feedback ledgers.
func (e *Engine) ComputeDashboard(intern models.Intern, lessons []models.LessonVisit, feedback []models.Feedback, now time.Time) (Dashboard, error) {
	cfg, err := e.Grades.Lookup(intern.Grade)
	if err != nil {
		return Dashboard{}, err
	}
	tracker, err := ProbationFor(intern, e.Grades, e.Calendar.Location())
	if err != nil {
		return Dashboard{}, err
	}

	now = now.In(e.Calendar.Location())
	monthStart := e.Calendar.StartOfMonth(now)
	monthEnd := monthStart.AddDate(0, 1, 0)
	attendance := NewAttendanceLedger(lessons)
	ratings := NewFeedbackLedger(feedback, e.RateLimit)

	confirmed := attendance.CountBetween(models.LessonConfirmed, monthStart, monthEnd)
	goal := e.MonthlyGoal(cfg.LessonsPerMonth, tracker.Start(), now)
	average := ratings.Average()

	lessonsProgress := 0.0
	if goal > 0 {
		lessonsProgress = math.Min(float64(confirmed)/float64(goal)*100, 100)
	}
	scoreProgress := math.Min(average/maxStars*100, 100)
	overall := int(math.Round((lessonsProgress + scoreProgress) / 2))
	probation := tracker.Status(now)

	trialTarget := cfg.LessonsPerMonth * cfg.TrialPeriodMonths
	trialConfirmed := attendance.ConfirmedSince(tracker.Start())

	return Dashboard{
		Grade:                 intern.Grade,
		LessonsConfirmed:      confirmed,
		LessonsPending:        attendance.CountBetween(models.LessonPending, monthStart, monthEnd),
		TotalLessons:          attendance.TotalVisits(),
		MonthlyGoal:           cfg.LessonsPerMonth,
		AdjustedMonthlyGoal:   goal,
		Percentage:            percent(confirmed, goal),
		AverageScore:          round2(average),
		LessonsProgress:       round2(lessonsProgress),
		ScoreProgress:         round2(scoreProgress),
		OverallProgress:       overall,
		AutoPromotionEligible: overall >= promotionThreshold && probation.IsExpired,
		Perks:                 cfg.Perks,
		Probation:             probation,
		NearDeadline:          probation.State == ProbationNearDeadline,
		CanGetConcession:      tracker.CanConcedePromotion(overall, now),
		TrialStats: TrialStats{
			TotalLessons:       trialConfirmed,
			TargetLessons:      trialTarget,
			ProgressPercentage: percent(trialConfirmed, trialTarget),
		},
		History:       e.history(attendance, monthStart),
		RecentLessons: attendance.Recent(recentItems),
		RecentReviews: anonymise(ratings.Recent(recentItems)),
		GeneratedAt:   now,
	}, nil
}

// MonthlyGoal is the prorated quota for the month containing now.
func (e *Engine) MonthlyGoal(quota int, effectiveStart, now time.Time) int {
	if e.Proration == ProrationWorkday {
		return e.Calendar.MonthlyNorm(quota, effectiveStart, now)
	}
	return e.Calendar.ElapsedNorm(quota, effectiveStart, now)
}

// OverallProgress recomputes only the overall progress figure, as recorded on promotions.
func (e *Engine) OverallProgress(intern models.Intern, lessons []models.LessonVisit, feedback []models.Feedback, now time.Time) (int, error) {
	d, err := e.ComputeDashboard(intern, lessons, feedback, now)
	if err != nil {
		return 0, err
	}
	return d.OverallProgress, nil
}

func (e *Engine) history(attendance *AttendanceLedger, monthStart time.Time) []MonthCount {
	out := make([]MonthCount, 0, historyMonths)
	for i := historyMonths - 1; i >= 0; i-- {
		start := monthStart.AddDate(0, -i, 0)
		out = append(out, MonthCount{
			Year:      start.Year(),
			Month:     int(start.Month()),
			MonthName: start.Format("Jan"),
			FullDate:  start,
			Count:     attendance.CountBetween(models.LessonConfirmed, start, start.AddDate(0, 1, 0)),
		})
	}
	return out
}

func anonymise(feedback []models.Feedback) []Review {
	out := make([]Review, 0, len(feedback))
	for _, fb := range feedback {
		out = append(out, Review{Stars: fb.Stars, Feedback: fb.Text, Date: fb.Date, MentorName: anonymousMentor})
	}
	return out
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
