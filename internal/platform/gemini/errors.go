package gemini

import "errors"

// Errors specific to the Gemini generator
var (
	// ErrEmptyPrompt is returned when a prompt would be sent with no
	// content.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)
