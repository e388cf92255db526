// Package common defines shared constants and sentinel errors used across
// server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")
	ErrorNoUpdates    = errors.New("no fields to update")

	// Recording lifecycle errors.
	ErrRecordingNotReady = errors.New("recording is not ready")
)
