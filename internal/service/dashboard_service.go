package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/intern-progress-api/internal/dto"
	"github.com/noah-isme/intern-progress-api/internal/progression"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
	"github.com/noah-isme/intern-progress-api/pkg/export"
)

// DashboardService assembles intern dashboards, caching them per local day.
type DashboardService struct {
	interns  internReader
	lessons  lessonLedgerReader
	feedback feedbackLedgerReader
	engine   *progression.Engine
	cache    *CacheService
	pdf      *export.PDFExporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(interns internReader, lessons lessonLedgerReader, feedback feedbackLedgerReader, engine *progression.Engine, cache *CacheService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = progression.NewEngine(nil, nil, "", "", progression.DefaultVisitPolicy())
	}
	return &DashboardService{
		interns:  interns,
		lessons:  lessons,
		feedback: feedback,
		engine:   engine,
		cache:    cache,
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		now:      time.Now,
	}
}

// Dashboard returns the intern's derived progression state and whether it was served from cache.
func (s *DashboardService) Dashboard(ctx context.Context, internID string) (*dto.InternDashboard, bool, error) {
	now := s.now().In(s.engine.Calendar.Location())
	key := DashboardCacheKey(internID, now)
	var cached dto.InternDashboard
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}
	result, err := s.compute(ctx, internID, now)
	if err != nil {
		return nil, false, err
	}
	_ = s.cache.Set(ctx, key, result, 0)
	return result, false, nil
}

func (s *DashboardService) compute(ctx context.Context, internID string, now time.Time) (*dto.InternDashboard, error) {
	intern, err := s.interns.FindByID(ctx, internID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "intern not found")
		}
		return nil, wrapInternal(err, "failed to load intern")
	}
	lessons, err := s.lessons.ListByIntern(ctx, internID)
	if err != nil {
		return nil, wrapInternal(err, "failed to load lessons")
	}
	feedback, err := s.feedback.ListByIntern(ctx, internID)
	if err != nil {
		return nil, wrapInternal(err, "failed to load feedback")
	}

	dashboard, err := s.engine.ComputeDashboard(*intern, lessons, feedback, now)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrConfigIntegrity) {
			s.logger.Error("intern grade missing from grade table",
				zap.String("intern_id", internID),
				zap.String("grade", string(intern.Grade)))
		}
		return nil, passThrough(err, "failed to compute dashboard")
	}

	result := &dto.InternDashboard{
		Intern: dto.InternSummary{
			ID:       intern.ID,
			Username: intern.Username,
			Name:     intern.Name,
			LastName: intern.LastName,
			BranchID: intern.BranchID,
			MentorID: intern.MentorID,
			Grade:    intern.Grade,
			Score:    intern.Score,
		},
		Dashboard: dashboard,
	}
	return result, nil
}

// DashboardPDF renders the dashboard as a printable summary.
func (s *DashboardService) DashboardPDF(ctx context.Context, internID string) ([]byte, string, error) {
	d, _, err := s.Dashboard(ctx, internID)
	if err != nil {
		return nil, "", err
	}
	sections := []export.Section{
		{
			Heading: "Intern",
			Pairs: [][2]string{
				{"Name", strings.TrimSpace(d.Intern.Name + " " + d.Intern.LastName)},
				{"Username", d.Intern.Username},
				{"Grade", string(d.Grade)},
				{"Score", fmt.Sprintf("%.2f", d.Intern.Score)},
			},
		},
		{
			Heading: "This month",
			Pairs: [][2]string{
				{"Confirmed lessons", fmt.Sprintf("%d", d.LessonsConfirmed)},
				{"Pending lessons", fmt.Sprintf("%d", d.LessonsPending)},
				{"Goal", fmt.Sprintf("%d of %d", d.AdjustedMonthlyGoal, d.MonthlyGoal)},
				{"Plan completion", fmt.Sprintf("%d%%", d.Percentage)},
				{"Overall progress", fmt.Sprintf("%d%%", d.OverallProgress)},
			},
		},
		{
			Heading: "Probation",
			Pairs: [][2]string{
				{"State", string(d.Probation.State)},
				{"Days left", fmt.Sprintf("%d", d.Probation.DaysRemaining)},
				{"Trial lessons", fmt.Sprintf("%d of %d", d.TrialStats.TotalLessons, d.TrialStats.TargetLessons)},
				{"Auto promotion eligible", yesNo(d.AutoPromotionEligible)},
				{"Concession available", yesNo(d.CanGetConcession)},
			},
		},
	}
	history := export.Section{Heading: "History"}
	for _, m := range d.History {
		history.Pairs = append(history.Pairs, [2]string{fmt.Sprintf("%s %d", m.MonthName, m.Year), fmt.Sprintf("%d", m.Count)})
	}
	if len(history.Pairs) > 0 {
		sections = append(sections, history)
	}

	body, err := s.pdf.RenderSections("Intern dashboard", sections)
	if err != nil {
		return nil, "", wrapInternal(err, "failed to render dashboard")
	}
	return body, fmt.Sprintf("dashboard-%s-%s.pdf", d.Intern.Username, d.GeneratedAt.Format("20060102")), nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
