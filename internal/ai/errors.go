package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrExtraction marks any failed extraction: the model call failed, was rejected,
	// or returned something unusable.
	ErrExtraction = errors.New("palette extraction failed")

	// ErrFormat marks a model response that failed palette validation. It matches
	// ErrExtraction so callers can treat both identically.
	ErrFormat = fmt.Errorf("%w: unexpected AI response format", ErrExtraction)

	// ErrInvalidInput marks input rejected before the model is called.
	ErrInvalidInput = fmt.Errorf("%w: invalid input", ErrExtraction)

	// ErrNaming marks an empty or failed theme-name suggestion.
	ErrNaming = errors.New("theme name suggestion failed")
)

const (
	extractionFailedMessage = "AI could not extract a palette. Please try a different input."
	invalidInputMessage     = "Please paste some CSS, enter a URL, or choose a PNG, JPEG, or WEBP image."
)

// UserMessage converts an extraction error into the single message shown to the user.
// Format and call failures share one message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrInvalidInput) {
		return invalidInputMessage
	}
	return extractionFailedMessage
}
