package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors surfaced by repositories for conditions the service layer maps to typed errors.
var (
	ErrVersionConflict     = errors.New("record version changed")
	ErrDuplicateUsername   = errors.New("username already taken")
	ErrLessonAlreadyRated  = errors.New("lesson already rated")
	ErrFeedbackWindowTaken = errors.New("feedback window already used")
	ErrLessonOwnership     = errors.New("lesson recorded for another intern or mentor")
	ErrDuplicateRule       = errors.New("rule title already exists")
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint failure, optionally on a named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if string(pqErr.Code) != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
