package bridge

import "fmt"

// UnreachableError means the request to the executor service could not complete:
// connection refused, DNS failure, reset, or a transport timeout.
type UnreachableError struct {
	URL string
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("executor unreachable at %s: %v", e.URL, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// ExecutorError means the executor answered with a non-2xx status.
type ExecutorError struct {
	StatusCode int    // HTTP status code returned by the executor
	Status     string // HTTP status text, used when Message is empty
	Message    string // "message" field of the JSON error body, if any
}

func (e *ExecutorError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Status
	}

	return fmt.Sprintf("executor responded with status %d: %s", e.StatusCode, msg)
}
