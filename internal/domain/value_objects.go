package domain

import (
	"strings"
	"unicode/utf8"
)

// Length limits enforced by the value objects.
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 1000
)

// Title is a validated title value object (1-255 characters).
type Title struct {
	value string
}

// NewTitle creates a new Title, validating the input.
func NewTitle(s string) (Title, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return Title{}, NewValidationError("title", ErrTitleRequired)
	}

	if utf8.RuneCountInString(s) > MaxTitleLength {
		return Title{}, NewValidationError("title", ErrTitleTooLong)
	}

	return Title{value: s}, nil
}

// String returns the title value.
func (t Title) String() string {
	return t.value
}

// Description is an optional free-text value object (0-1000 characters).
type Description struct {
	value string
}

// NewDescription creates a new Description, validating the input.
func NewDescription(s string) (Description, error) {
	if utf8.RuneCountInString(s) > MaxDescriptionLength {
		return Description{}, NewValidationError("description", ErrDescriptionTooLong)
	}
	return Description{value: s}, nil
}

// String returns the description value.
func (d Description) String() string {
	return d.value
}

// IsBlankMessage reports whether a completion message carries no text.
func IsBlankMessage(msg *string) bool {
	return msg == nil || strings.TrimSpace(*msg) == ""
}
