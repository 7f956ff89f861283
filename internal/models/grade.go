package models

// Grade is a rank on the intern progression ladder.
type Grade string

const (
	GradeJunior       Grade = "junior"
	GradeStrongJunior Grade = "strongJunior"
	GradeMiddle       Grade = "middle"
	GradeStrongMiddle Grade = "strongMiddle"
	GradeSenior       Grade = "senior"
)

// GradeConfig holds the quota parameters attached to a grade.
type GradeConfig struct {
	LessonsPerMonth   int      `mapstructure:"lessons_per_month" json:"lessons_per_month"`
	TrialPeriodMonths int      `mapstructure:"trial_period_months" json:"trial_period_months"`
	Perks             []string `mapstructure:"perks" json:"perks"`
}
