package progression

import (
	"math"
	"sort"
	"strings"

	"github.com/noah-isme/intern-progress-api/internal/models"
)

// Weights of the composite rating; each factor is scaled to the 0-5 star range first.
const (
	weightStars      = 0.5
	weightActivity   = 0.2
	weightPlan       = 0.2
	weightAttendance = 0.1
	// attendanceSaturation is the lesson count at which the logarithmic attendance factor reaches 1.
	attendanceSaturation = 30
	noBranch             = "No branch"
)

// RatingEntry is one intern's position in the rating list.
type RatingEntry struct {
	InternID       string       `json:"internId"`
	Name           string       `json:"name"`
	BranchID       string       `json:"branchId"`
	Branch         string       `json:"branch"`
	Grade          models.Grade `json:"grade"`
	AverageStars   float64      `json:"averageStars"`
	ActivityRate   float64      `json:"activityRate"`
	PlanCompletion float64      `json:"planCompletion"`
	Lessons        int          `json:"lessons"`
	Feedbacks      int          `json:"feedbacks"`
	RatingScore    float64      `json:"ratingScore"`
}

// BranchRating averages the rating scores of a branch's interns.
type BranchRating struct {
	BranchID     string  `json:"branchId"`
	Branch       string  `json:"branch"`
	Average      float64 `json:"average"`
	InternsCount int     `json:"internsCount"`
}

// RatingList ranks interns and branches by composite rating.
type RatingList struct {
	Interns  []RatingEntry  `json:"interns"`
	Branches []BranchRating `json:"branches"`
}

// Rank scores every intern. An intern whose grade is missing from the table aborts the ranking.
func (e *Engine) Rank(inputs []models.RatingInput) (RatingList, error) {
	entries := make([]RatingEntry, 0, len(inputs))
	for _, in := range inputs {
		cfg, err := e.Grades.Lookup(in.Grade)
		if err != nil {
			return RatingList{}, err
		}
		entries = append(entries, rate(in, cfg))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].RatingScore != entries[j].RatingScore {
			return entries[i].RatingScore > entries[j].RatingScore
		}
		return entries[i].Name < entries[j].Name
	})
	return RatingList{Interns: entries, Branches: rankBranches(entries)}, nil
}

func rate(in models.RatingInput, cfg models.GradeConfig) RatingEntry {
	activity := 0.0
	if in.LessonCount > 0 {
		activity = math.Min(float64(in.FeedbackCount)/float64(in.LessonCount), 1)
	}
	plan := 0.0
	if cfg.LessonsPerMonth > 0 {
		plan = math.Min(float64(in.ConfirmedThisMonth)/float64(cfg.LessonsPerMonth), 1)
	}
	attendance := math.Log(float64(in.LessonCount)+1) / math.Log(attendanceSaturation+1)
	if attendance > 1 {
		attendance = 1
	}
	score := in.AverageStars*weightStars +
		activity*maxStars*weightActivity +
		plan*maxStars*weightPlan +
		attendance*maxStars*weightAttendance

	branch := in.BranchName
	if branch == "" {
		branch = noBranch
	}
	return RatingEntry{
		InternID:       in.InternID,
		Name:           strings.TrimSpace(in.Name + " " + in.LastName),
		BranchID:       in.BranchID,
		Branch:         branch,
		Grade:          in.Grade,
		AverageStars:   round2(in.AverageStars),
		ActivityRate:   round2(activity),
		PlanCompletion: math.Round(plan*1000) / 10,
		Lessons:        in.LessonCount,
		Feedbacks:      in.FeedbackCount,
		RatingScore:    round2(score),
	}
}

func rankBranches(entries []RatingEntry) []BranchRating {
	type acc struct {
		id, name string
		sum      float64
		n        int
	}
	byBranch := map[string]*acc{}
	order := []string{}
	for _, e := range entries {
		a, ok := byBranch[e.Branch]
		if !ok {
			a = &acc{id: e.BranchID, name: e.Branch}
			byBranch[e.Branch] = a
			order = append(order, e.Branch)
		}
		a.sum += e.RatingScore
		a.n++
	}
	out := make([]BranchRating, 0, len(order))
	for _, name := range order {
		a := byBranch[name]
		out = append(out, BranchRating{BranchID: a.id, Branch: a.name, Average: round2(a.sum / float64(a.n)), InternsCount: a.n})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		return out[i].Branch < out[j].Branch
	})
	return out
}
