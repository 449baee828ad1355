package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// The more specific validation errors below all wrap it.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyOutline is returned when an outline has no chapters.
	ErrEmptyOutline = fmt.Errorf("%w: outline has no chapters", ErrValidation)

	// ErrMissingChapterTitle is returned when a chapter lacks a title.
	ErrMissingChapterTitle = fmt.Errorf("%w: chapter title cannot be empty", ErrValidation)

	// ErrEmptyOverview is returned when a project overview is required
	// but missing.
	ErrEmptyOverview = fmt.Errorf("%w: project overview cannot be empty", ErrValidation)
)
