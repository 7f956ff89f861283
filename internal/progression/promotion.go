package progression

import (
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/intern-progress-api/internal/models"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

// PromotionOptions qualifies a grade transition.
type PromotionOptions struct {
	WithConcession bool
	Note           string
	ActorID        string
	// OverallProgress is the dashboard progress at the time of promotion, kept for audit.
	OverallProgress int
}

// PromotionResult is the intern after the transition and the history entry to append.
type PromotionResult struct {
	Intern            models.Intern          `json:"intern"`
	Record            models.PromotionRecord `json:"record"`
	WasWithConcession bool                   `json:"wasWithConcession"`
	Message           string                 `json:"message"`
}

// Promote moves intern to rawGrade. The grade, its derived quota fields and the probation start change together.
func (e *Engine) Promote(intern models.Intern, rawGrade string, opts PromotionOptions, now time.Time) (PromotionResult, error) {
	target, err := e.Grades.Parse(rawGrade)
	if err != nil {
		return PromotionResult{}, err
	}
	if target == intern.Grade {
		return PromotionResult{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("intern already holds grade %q", target))
	}

	if opts.WithConcession && e.StrictConcession {
		tracker, err := ProbationFor(intern, e.Grades, e.Calendar.Location())
		if err != nil {
			return PromotionResult{}, err
		}
		if !tracker.CanConcedePromotion(opts.OverallProgress, now) {
			return PromotionResult{}, appErrors.Clone(appErrors.ErrPolicyRejected,
				fmt.Sprintf("concession requires %d-%d%% progress within the last %d days of probation", concessionMin, concessionMax, nearDeadlineDays))
		}
	}

	tracker := ProbationTracker{}
	cfg, err := tracker.OnGradeChange(e.Grades, target, now)
	if err != nil {
		return PromotionResult{}, err
	}

	from := intern.Grade
	intern.Grade = target
	intern.ProbationStartDate = tracker.Start()
	intern.ProbationPeriod = cfg.TrialPeriodMonths
	intern.LessonsPerMonth = cfg.LessonsPerMonth
	intern.Perks = pq.StringArray(cfg.Perks)

	message := fmt.Sprintf("grade changed to %q", target)
	if opts.WithConcession {
		message += " with concession"
	}
	return PromotionResult{
		Intern: intern,
		Record: models.PromotionRecord{
			InternID:       intern.ID,
			Date:           now,
			FromGrade:      from,
			ToGrade:        target,
			WithConcession: opts.WithConcession,
			Percentage:     opts.OverallProgress,
			PromotedBy:     opts.ActorID,
			Note:           strings.TrimSpace(opts.Note),
		},
		WasWithConcession: opts.WithConcession,
		Message:           message,
	}, nil
}

// Enroll prepares a new intern at grade with derived fields and probation anchored at start.
func (e *Engine) Enroll(intern models.Intern, rawGrade string, start time.Time) (models.Intern, error) {
	if strings.TrimSpace(rawGrade) == "" {
		rawGrade = string(models.GradeJunior)
	}
	grade, err := e.Grades.Parse(rawGrade)
	if err != nil {
		return models.Intern{}, err
	}
	cfg, err := e.Grades.Lookup(grade)
	if err != nil {
		return models.Intern{}, err
	}
	intern.Grade = grade
	intern.Score = 0
	intern.ProbationStartDate = start
	intern.ProbationPeriod = cfg.TrialPeriodMonths
	intern.LessonsPerMonth = cfg.LessonsPerMonth
	intern.Perks = pq.StringArray(cfg.Perks)
	return intern, nil
}
