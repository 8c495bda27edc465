// Package apperr holds the sentinel errors shared across EchoNotes packages.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation failed")
	ErrInvalidColor  = errors.New("invalid color")
)
