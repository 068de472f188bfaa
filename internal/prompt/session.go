package prompt

import (
	"strings"
	"sync"
)

// Exit says how a session was closed.
type Exit int

const (
	ExitPending Exit = iota
	ExitConfirmed
	ExitCancelled
	ExitDismissed
)

func (e Exit) String() string {
	switch e {
	case ExitConfirmed:
		return "confirmed"
	case ExitCancelled:
		return "cancelled"
	case ExitDismissed:
		return "dismissed"
	default:
		return "pending"
	}
}

// Session is one open path prompt. It resolves exactly once: the first of
// Confirm, Cancel or Dismiss wins and every later call is ignored.
type Session struct {
	defaultValue string

	once sync.Once
	done chan struct{}

	path string
	ok   bool
	exit Exit

	onClose func()
}

func newSession(defaultValue string, onClose func()) *Session {
	return &Session{
		defaultValue: defaultValue,
		done:         make(chan struct{}),
		onClose:      onClose,
	}
}

// Default is the value the input is pre-filled with.
func (s *Session) Default() string {
	return s.defaultValue
}

// Confirm resolves the session with the trimmed input. An empty input is a
// valid answer meaning the executor's default location.
func (s *Session) Confirm(input string) bool {
	return s.resolve(strings.TrimSpace(input), true, ExitConfirmed)
}

// Cancel resolves the session without a path.
func (s *Session) Cancel() bool {
	return s.resolve("", false, ExitCancelled)
}

// Dismiss resolves the session without a path after a click outside the modal.
func (s *Session) Dismiss() bool {
	return s.resolve("", false, ExitDismissed)
}

// Done is closed once the session has resolved.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Result returns the chosen path; ok is false when the prompt was cancelled
// or dismissed. Only meaningful after Done is closed.
func (s *Session) Result() (path string, ok bool) {
	return s.path, s.ok
}

// Exit returns how the session closed.
func (s *Session) Exit() Exit {
	select {
	case <-s.done:
		return s.exit
	default:
		return ExitPending
	}
}

func (s *Session) resolve(path string, ok bool, exit Exit) bool {
	fired := false

	s.once.Do(func() {
		s.path, s.ok, s.exit = path, ok, exit
		fired = true

		if s.onClose != nil {
			s.onClose()
		}

		close(s.done)
	})

	return fired
}
