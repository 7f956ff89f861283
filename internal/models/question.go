package models

import "time"

// Difficulty rates an interview question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Points is the score a correct answer earns: easy 1, medium 2, hard 3.
func (d Difficulty) Points() int {
	switch d {
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 1
	}
}

// Valid reports whether the difficulty is known.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is an entry of the interview question bank.
type Question struct {
	ID         string     `db:"id" json:"id"`
	Text       string     `db:"text" json:"text"`
	Direction  Direction  `db:"direction" json:"direction"`
	Topic      string     `db:"topic" json:"topic"`
	Difficulty Difficulty `db:"difficulty" json:"difficulty"`
	Points     int        `db:"points" json:"points"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// QuestionFilter narrows question bank listings.
type QuestionFilter struct {
	Direction  Direction
	Difficulty Difficulty
	Topic      string
}
