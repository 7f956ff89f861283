package progression

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/noah-isme/intern-progress-api/internal/models"
	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

// GradeTable maps every grade of the ladder to its quota parameters. It is read-only once built.
type GradeTable struct {
	ladder  []models.Grade
	configs map[models.Grade]models.GradeConfig
}

// NewGradeTable builds a table from an ordered ladder. Every ladder grade must have a config.
func NewGradeTable(ladder []models.Grade, configs map[models.Grade]models.GradeConfig) (*GradeTable, error) {
	if len(ladder) == 0 {
		return nil, fmt.Errorf("grade ladder is empty")
	}
	t := &GradeTable{
		ladder:  make([]models.Grade, 0, len(ladder)),
		configs: make(map[models.Grade]models.GradeConfig, len(ladder)),
	}
	seen := make(map[string]struct{}, len(ladder))
	for _, grade := range ladder {
		key := squash(string(grade))
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("grade %q listed twice", grade)
		}
		seen[key] = struct{}{}

		cfg, ok := configs[grade]
		if !ok {
			return nil, fmt.Errorf("grade %q has no configuration", grade)
		}
		if cfg.LessonsPerMonth <= 0 || cfg.TrialPeriodMonths <= 0 {
			return nil, fmt.Errorf("grade %q needs positive lessons_per_month and trial_period_months", grade)
		}
		cfg.Perks = clonePerks(cfg.Perks)
		t.ladder = append(t.ladder, grade)
		t.configs[grade] = cfg
	}
	return t, nil
}

const (
	perkOtherLessons   = "Access to the remaining lessons"
	perkKitchen        = "Use of the kitchen"
	perkLounge         = "Use of the lounge"
	perkStaffTrainings = "Staff trainings"
	perkAcademyEvents  = "Academy events and team building"
)

// DefaultGradeTable returns the programme's standard ladder.
func DefaultGradeTable() *GradeTable {
	t, err := NewGradeTable(
		[]models.Grade{models.GradeJunior, models.GradeStrongJunior, models.GradeMiddle, models.GradeStrongMiddle, models.GradeSenior},
		map[models.Grade]models.GradeConfig{
			models.GradeJunior:       {LessonsPerMonth: 24, TrialPeriodMonths: 1, Perks: []string{}},
			models.GradeStrongJunior: {LessonsPerMonth: 40, TrialPeriodMonths: 1, Perks: []string{perkOtherLessons}},
			models.GradeMiddle:       {LessonsPerMonth: 50, TrialPeriodMonths: 2, Perks: []string{perkOtherLessons, perkKitchen}},
			models.GradeStrongMiddle: {LessonsPerMonth: 60, TrialPeriodMonths: 2, Perks: []string{perkOtherLessons, perkKitchen, perkLounge}},
			models.GradeSenior: {LessonsPerMonth: 80, TrialPeriodMonths: 3, Perks: []string{
				perkOtherLessons, perkKitchen, perkLounge, perkStaffTrainings, perkAcademyEvents,
			}},
		},
	)
	if err != nil {
		panic(err)
	}
	return t
}

type gradeFile struct {
	Ladder []string                      `mapstructure:"ladder"`
	Grades map[string]models.GradeConfig `mapstructure:"grades"`
}

// LoadGradeTable reads a YAML grade table, e.g.
//
//	ladder: [junior, strongJunior, middle]
//	grades:
//	  junior: {lessons_per_month: 24, trial_period_months: 1, perks: [...]}
func LoadGradeTable(path string) (*GradeTable, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read grade table: %w", err)
	}
	var file gradeFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("decode grade table: %w", err)
	}

	// viper lower-cases map keys, so entries are matched to the ladder by their squashed form.
	bySquashed := make(map[string]models.GradeConfig, len(file.Grades))
	for key, cfg := range file.Grades {
		bySquashed[squash(key)] = cfg
	}
	ladder := make([]models.Grade, 0, len(file.Ladder))
	configs := make(map[models.Grade]models.GradeConfig, len(file.Ladder))
	for _, raw := range file.Ladder {
		grade := models.Grade(strings.TrimSpace(raw))
		ladder = append(ladder, grade)
		if cfg, ok := bySquashed[squash(raw)]; ok {
			configs[grade] = cfg
		}
	}
	return NewGradeTable(ladder, configs)
}

// Ladder returns the grades in ascending order.
func (t *GradeTable) Ladder() []models.Grade {
	return append([]models.Grade(nil), t.ladder...)
}

// Lookup returns the configuration for a grade stored on a record.
// A grade missing from the table is a configuration integrity failure, never defaulted.
func (t *GradeTable) Lookup(grade models.Grade) (models.GradeConfig, error) {
	cfg, ok := t.configs[grade]
	if !ok {
		return models.GradeConfig{}, appErrors.Clone(appErrors.ErrConfigIntegrity, fmt.Sprintf("grade %q is not in the grade table", grade))
	}
	cfg.Perks = clonePerks(cfg.Perks)
	return cfg, nil
}

// Parse canonicalises user input ("strong-junior", "Strong Junior", "strongJunior") into a ladder grade.
func (t *GradeTable) Parse(raw string) (models.Grade, error) {
	key := squash(raw)
	if key == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "grade is required")
	}
	for _, grade := range t.ladder {
		if squash(string(grade)) == key {
			return grade, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown grade %q, expected one of %s", raw, t.names()))
}

// Rank returns the ladder position of grade, or -1 when absent.
func (t *GradeTable) Rank(grade models.Grade) int {
	for i, g := range t.ladder {
		if g == grade {
			return i
		}
	}
	return -1
}

func (t *GradeTable) names() string {
	parts := make([]string, len(t.ladder))
	for i, g := range t.ladder {
		parts[i] = string(g)
	}
	return strings.Join(parts, ", ")
}

func clonePerks(perks []string) []string {
	out := make([]string, len(perks))
	copy(out, perks)
	return out
}

func squash(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch r {
		case '-', '_', ' ', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
