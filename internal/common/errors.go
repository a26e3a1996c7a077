// Package common defines shared constants and sentinel errors used across
// the store, intake and transport layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrNotFound = errors.New("not found")

	// Input errors.
	ErrValidation      = errors.New("validation error")
	ErrIndexOutOfRange = errors.New("index out of range")

	// Image intake errors.
	ErrImageDecode = errors.New("image decode error")
	ErrImageTooBig = errors.New("image cannot be compressed below size limit")
	ErrDraftBusy   = errors.New("draft has image processing in flight")

	// Session errors.
	ErrInvalidToken   = errors.New("invalid token")
	ErrSessionExpired = errors.New("session expired")
)

// ValidationError carries per-field messages for a rejected input.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation error"
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
