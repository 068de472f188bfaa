package downloader

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when the user closed the path prompt without confirming.
var ErrCancelled = errors.New("download cancelled by user")

// PreparationError represents an unexpected failure before the command was issued.
type PreparationError struct {
	Stage string // resolve, prompt or build
	Err   error
}

func (e *PreparationError) Error() string {
	return fmt.Sprintf("failed to prepare download during %s: %v", e.Stage, e.Err)
}

func (e *PreparationError) Unwrap() error {
	return e.Err
}
