package host

import (
	"errors"
	"sync"

	"github.com/italolelis/spotdl_exporter/internal/content"
	"github.com/italolelis/spotdl_exporter/internal/htmlpage"
)

// ErrNoContainer is returned when the trigger is mounted before the action bar exists.
var ErrNoContainer = errors.New("action bar is not rendered")

// Snapshot is a consistent copy of the screen state for rendering.
type Snapshot struct {
	Location  string
	Page      *htmlpage.Page
	Loading   bool
	ActionBar bool
	Trigger   bool
}

// Screen is the host UI state shared by the page loader, the presence
// controller and the terminal view. It is safe for concurrent use.
type Screen struct {
	mu         sync.RWMutex
	location   string
	page       *htmlpage.Page
	loading    bool
	actionBar  bool
	trigger    bool
	generation uint64
	onChange   func()

	navigations chan string
	mutations   chan struct{}
}

func NewScreen(location string) *Screen {
	return &Screen{
		location:    location,
		loading:     true,
		navigations: make(chan string, 1),
		mutations:   make(chan struct{}, 1),
	}
}

// OnChange registers a callback invoked after every state change.
func (s *Screen) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Navigations streams location changes. Only the latest pending location is kept.
func (s *Screen) Navigations() <-chan string {
	return s.navigations
}

// Mutations signals structural changes of the screen. Signals coalesce.
func (s *Screen) Mutations() <-chan struct{} {
	return s.mutations
}

// Navigate moves to path and tears the current page down. The returned
// generation must be passed to SetPage once the new page is available.
func (s *Screen) Navigate(path string) uint64 {
	s.mu.Lock()
	s.location = path
	s.page = nil
	s.loading = true
	s.actionBar = false
	s.trigger = false
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.publishNavigation(path)
	s.changed()

	return gen
}

// SetPage renders the page loaded for generation gen. Stale loads are ignored.
func (s *Screen) SetPage(gen uint64, page *htmlpage.Page) bool {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()

		return false
	}

	s.page = page
	s.loading = false
	s.actionBar = true
	s.mu.Unlock()

	s.publishMutation()
	s.changed()

	return true
}

// RebuildActionBar re-renders the action bar, silently dropping the trigger.
func (s *Screen) RebuildActionBar() {
	s.mu.Lock()
	if !s.actionBar {
		s.mu.Unlock()

		return
	}

	s.trigger = false
	s.mu.Unlock()

	s.publishMutation()
	s.changed()
}

func (s *Screen) CurrentPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.location
}

func (s *Screen) HasContainer() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.actionBar
}

func (s *Screen) HasTrigger() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.trigger
}

// MountTrigger inserts the trigger into the action bar. Mounting twice is a no-op.
func (s *Screen) MountTrigger() error {
	s.mu.Lock()
	if !s.actionBar {
		s.mu.Unlock()

		return ErrNoContainer
	}

	if s.trigger {
		s.mu.Unlock()

		return nil
	}

	s.trigger = true
	s.mu.Unlock()

	s.changed()

	return nil
}

func (s *Screen) UnmountTrigger() {
	s.mu.Lock()
	if !s.trigger {
		s.mu.Unlock()

		return
	}

	s.trigger = false
	s.mu.Unlock()

	s.changed()
}

// Titles exposes the rendered page for title lookups.
func (s *Screen) Titles() content.TitleSource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.page
}

func (s *Screen) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Location:  s.location,
		Page:      s.page,
		Loading:   s.loading,
		ActionBar: s.actionBar,
		Trigger:   s.trigger,
	}
}

func (s *Screen) publishNavigation(path string) {
	for {
		select {
		case s.navigations <- path:
			return
		default:
		}

		// drop the stale pending location
		select {
		case <-s.navigations:
		default:
		}
	}
}

func (s *Screen) publishMutation() {
	select {
	case s.mutations <- struct{}{}:
	default:
	}
}

func (s *Screen) changed() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()

	if fn != nil {
		fn()
	}
}
