package quilr_guardrail

import (
	"fmt"
	"strings"
)

type quilrViolationError struct {
	message string
}

func (e *quilrViolationError) Error() string {
	return e.message
}

func NewQuilrViolation(message string) error {
	return &quilrViolationError{message: message}
}

// blockMessage builds the rejection reason shown to the caller. Every
// detected category name appears in it.
func blockMessage(categories []string) string {
	if len(categories) == 0 {
		return "Content blocked by Quilr"
	}
	return fmt.Sprintf("Content blocked by Quilr: %s detected", strings.Join(categories, ", "))
}
