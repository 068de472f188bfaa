package prompt

import (
	"context"
	"errors"
	"sync"

	"github.com/italolelis/spotdl_exporter/internal/logctx"
)

// ErrAlreadyOpen is returned when a prompt is requested while another one is still open.
var ErrAlreadyOpen = errors.New("a path prompt is already open")

// Surface renders the modal. Show must pre-fill the input with s.Default() and
// route the confirm, cancel and backdrop interactions to s. Hide is called once
// per session after it resolved; it must not block.
type Surface interface {
	Show(s *Session)
	Hide(s *Session)
}

// Modal hands out at most one open Session at a time.
type Modal struct {
	surface Surface

	mu   sync.Mutex
	open *Session
}

func NewModal(surface Surface) *Modal {
	return &Modal{surface: surface}
}

// Prompt shows the modal pre-filled with defaultValue and waits for the user.
// ok is false when the user cancelled or clicked outside the modal. There is no
// timeout; ctx cancellation dismisses the prompt.
func (m *Modal) Prompt(ctx context.Context, defaultValue string) (path string, ok bool, err error) {
	logger := logctx.LoggerFromContext(ctx)

	m.mu.Lock()
	if m.open != nil {
		m.mu.Unlock()

		return "", false, ErrAlreadyOpen
	}

	var s *Session
	s = newSession(defaultValue, func() {
		m.mu.Lock()
		if m.open == s {
			m.open = nil
		}
		m.mu.Unlock()

		m.surface.Hide(s)
	})
	m.open = s
	m.mu.Unlock()

	m.surface.Show(s)

	select {
	case <-s.Done():
	case <-ctx.Done():
		s.Dismiss()

		return "", false, ctx.Err()
	}

	path, ok = s.Result()

	logger.Debug("path prompt closed", "exit", s.Exit().String())

	return path, ok, nil
}

// IsOpen reports whether a prompt is waiting for the user.
func (m *Modal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.open != nil
}
