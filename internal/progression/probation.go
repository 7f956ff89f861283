package progression

import (
	"time"

	"github.com/noah-isme/intern-progress-api/internal/models"
)

// ProbationState is the phase of an intern's trial period.
type ProbationState string

const (
	ProbationActive       ProbationState = "ACTIVE"
	ProbationNearDeadline ProbationState = "NEAR_DEADLINE"
	ProbationExpired      ProbationState = "EXPIRED"
)

const (
	nearDeadlineDays = 7
	concessionMin    = 50
	concessionMax    = 60
)

// ProbationStatus is the trial window evaluated at a point in time.
type ProbationStatus struct {
	State         ProbationState `json:"state"`
	Grade         models.Grade   `json:"grade"`
	TrialMonths   int            `json:"trialMonths"`
	StartAt       time.Time      `json:"probationStartAt"`
	EndAt         time.Time      `json:"probationEndAt"`
	DaysRemaining int            `json:"daysLeft"`
	IsExpired     bool           `json:"isExpired"`
}

// ProbationTracker anchors an intern's trial window. The end is start plus the trial length in calendar months.
type ProbationTracker struct {
	grade       models.Grade
	start       time.Time
	trialMonths int
}

// StartProbation anchors a window at start for the given grade configuration.
func StartProbation(grade models.Grade, start time.Time, cfg models.GradeConfig) ProbationTracker {
	return ProbationTracker{grade: grade, start: start, trialMonths: cfg.TrialPeriodMonths}
}

// ProbationFor builds the tracker of an intern, failing on grades missing from the table.
func ProbationFor(intern models.Intern, grades *GradeTable, loc *time.Location) (ProbationTracker, error) {
	cfg, err := grades.Lookup(intern.Grade)
	if err != nil {
		return ProbationTracker{}, err
	}
	start := intern.ProbationStartDate
	if loc != nil {
		start = start.In(loc)
	}
	return StartProbation(intern.Grade, start, cfg), nil
}

// OnGradeChange restarts the window at now with the trial length of the new grade.
func (p *ProbationTracker) OnGradeChange(grades *GradeTable, grade models.Grade, now time.Time) (models.GradeConfig, error) {
	cfg, err := grades.Lookup(grade)
	if err != nil {
		return models.GradeConfig{}, err
	}
	p.grade = grade
	p.start = now
	p.trialMonths = cfg.TrialPeriodMonths
	return cfg, nil
}

// Start returns the window anchor.
func (p ProbationTracker) Start() time.Time { return p.start }

// End returns the instant the window closes.
func (p ProbationTracker) End() time.Time { return p.start.AddDate(0, p.trialMonths, 0) }

// Status evaluates the window at now.
func (p ProbationTracker) Status(now time.Time) ProbationStatus {
	end := p.End()
	status := ProbationStatus{
		Grade:       p.grade,
		TrialMonths: p.trialMonths,
		StartAt:     p.start,
		EndAt:       end,
	}
	if !now.Before(end) {
		status.State = ProbationExpired
		status.IsExpired = true
		return status
	}
	status.DaysRemaining = ceilDays(end.Sub(now))
	if status.DaysRemaining <= nearDeadlineDays {
		status.State = ProbationNearDeadline
	} else {
		status.State = ProbationActive
	}
	return status
}

// CanConcedePromotion allows an early promotion for borderline progress in the last week of the window.
func (p ProbationTracker) CanConcedePromotion(overallProgress int, now time.Time) bool {
	if overallProgress < concessionMin || overallProgress > concessionMax {
		return false
	}
	return p.Status(now).State == ProbationNearDeadline
}
