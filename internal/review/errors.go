package review

import (
	"errors"
	"fmt"
)

var (
	// ErrEnhanceInProgress is returned when an enhancement is requested while
	// another one is still outstanding.
	ErrEnhanceInProgress = errors.New("an enhancement is already in progress")
	// ErrCompleted is returned by operations that need an active step.
	ErrCompleted = errors.New("review is completed")
	// ErrNoEnhancer is returned when the controller has no AI gateway.
	ErrNoEnhancer = errors.New("no enhancement gateway configured")
)

// EnhancementError is returned when the gateway fails or returns nothing
// usable. Nothing is staged.
type EnhancementError struct {
	Section string
	Message string
	Cause   error
}

func (e *EnhancementError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("enhancement failed for %s: %s: %v", e.Section, e.Message, e.Cause)
	}
	return fmt.Sprintf("enhancement failed for %s: %s", e.Section, e.Message)
}

func (e *EnhancementError) Unwrap() error {
	return e.Cause
}
