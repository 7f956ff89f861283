package service

import (
	"errors"

	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

func wrapInternal(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func wrapValidation(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// passThrough keeps typed errors raised by the progression engine and wraps anything else as internal.
func passThrough(err error, message string) error {
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return typed
	}
	return wrapInternal(err, message)
}
