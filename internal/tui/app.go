package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/italolelis/spotdl_exporter/internal/prompt"
)

// App bridges goroutines outside the Bubble Tea loop into it. It serves as
// the prompt surface and as a notifier.
type App struct {
	mu      sync.RWMutex
	program *tea.Program
	now     func() time.Time
}

func NewApp() *App {
	return &App{now: time.Now}
}

// Attach sets the program messages are delivered to. Messages sent before
// Attach are dropped.
func (a *App) Attach(p *tea.Program) {
	a.mu.Lock()
	a.program = p
	a.mu.Unlock()
}

func (a *App) send(msg tea.Msg) {
	a.mu.RLock()
	p := a.program
	a.mu.RUnlock()

	if p != nil {
		p.Send(msg)
	}
}

// Show opens the path modal for s.
func (a *App) Show(s *prompt.Session) {
	a.send(promptShowMsg{session: s})
}

// Hide closes the modal of s. It may be called from within Update, so it
// never blocks.
func (a *App) Hide(s *prompt.Session) {
	go a.send(promptHideMsg{session: s})
}

// Notify shows a toast.
func (a *App) Notify(text string) error {
	a.send(toastMsg{text: text, at: a.now()})

	return nil
}

// Refresh asks the view to re-render the screen. It never blocks.
func (a *App) Refresh() {
	go a.send(screenChangedMsg{})
}
