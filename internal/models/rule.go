package models

import "time"

// RuleCategory grades the severity of a rule.
type RuleCategory string

const (
	RuleGreen  RuleCategory = "green"
	RuleYellow RuleCategory = "yellow"
	RuleRed    RuleCategory = "red"
	RuleBlack  RuleCategory = "black"
)

// Valid reports whether the category is known.
func (c RuleCategory) Valid() bool {
	switch c {
	case RuleGreen, RuleYellow, RuleRed, RuleBlack:
		return true
	}
	return false
}

// Rule is an entry of the violation catalog.
type Rule struct {
	ID          string       `db:"id" json:"id"`
	Category    RuleCategory `db:"category" json:"category"`
	Title       string       `db:"title" json:"title"`
	Example     string       `db:"example" json:"example"`
	Consequence string       `db:"consequence" json:"consequence"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// Violation records an intern breaking a catalog rule.
type Violation struct {
	ID                 string    `db:"id" json:"id"`
	InternID           string    `db:"intern_id" json:"intern_id"`
	RuleID             string    `db:"rule_id" json:"rule_id"`
	Date               time.Time `db:"occurred_at" json:"date"`
	Notes              string    `db:"notes" json:"notes"`
	ConsequenceApplied bool      `db:"consequence_applied" json:"consequence_applied"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// ViolationDetail joins a violation with its rule and intern.
type ViolationDetail struct {
	Violation
	RuleTitle      string       `db:"rule_title" json:"rule_title"`
	RuleCategory   RuleCategory `db:"rule_category" json:"rule_category"`
	InternName     string       `db:"intern_name" json:"intern_name"`
	InternLastName string       `db:"intern_last_name" json:"intern_last_name"`
	BranchID       string       `db:"branch_id" json:"branch_id"`
}

// ViolationFilter narrows violation listings.
type ViolationFilter struct {
	InternID string
	BranchID string
	Category RuleCategory
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
