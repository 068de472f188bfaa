package prompt_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/italolelis/spotdl_exporter/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSurface answers every shown session with the given action.
type scriptedSurface struct {
	answer func(s *prompt.Session)
	shown  chan *prompt.Session
	hidden atomic.Int32
}

func newScriptedSurface(answer func(s *prompt.Session)) *scriptedSurface {
	return &scriptedSurface{answer: answer, shown: make(chan *prompt.Session, 4)}
}

func (f *scriptedSurface) Show(s *prompt.Session) {
	f.shown <- s
	if f.answer != nil {
		go f.answer(s)
	}
}

func (f *scriptedSurface) Hide(*prompt.Session) {
	f.hidden.Add(1)
}

func TestModal_Prompt(t *testing.T) {
	tests := []struct {
		name     string
		answer   func(s *prompt.Session)
		wantPath string
		wantOK   bool
		wantExit prompt.Exit
	}{
		{"confirm path", func(s *prompt.Session) { s.Confirm("C:/Music") }, "C:/Music", true, prompt.ExitConfirmed},
		{"confirm trims", func(s *prompt.Session) { s.Confirm("  /music \n") }, "/music", true, prompt.ExitConfirmed},
		{"confirm empty", func(s *prompt.Session) { s.Confirm("") }, "", true, prompt.ExitConfirmed},
		{"confirm blank", func(s *prompt.Session) { s.Confirm("   ") }, "", true, prompt.ExitConfirmed},
		{"cancel", func(s *prompt.Session) { s.Cancel() }, "", false, prompt.ExitCancelled},
		{"click outside", func(s *prompt.Session) { s.Dismiss() }, "", false, prompt.ExitDismissed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface := newScriptedSurface(tt.answer)
			m := prompt.NewModal(surface)

			path, ok, err := m.Prompt(context.Background(), "/last")
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantOK, ok)

			s := <-surface.shown
			assert.Equal(t, "/last", s.Default())
			assert.Equal(t, tt.wantExit, s.Exit())
			assert.EqualValues(t, 1, surface.hidden.Load())
			assert.False(t, m.IsOpen())
		})
	}
}

func TestSession_ResolvesOnce(t *testing.T) {
	surface := newScriptedSurface(nil)
	m := prompt.NewModal(surface)

	done := make(chan struct{})

	go func() {
		defer close(done)

		_, _, _ = m.Prompt(context.Background(), "")
	}()

	s := <-surface.shown

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			var fired bool

			switch i % 3 {
			case 0:
				fired = s.Confirm("/music")
			case 1:
				fired = s.Cancel()
			default:
				fired = s.Dismiss()
			}

			if fired {
				wins.Add(1)
			}
		}(i)
	}

	wg.Wait()
	<-done

	assert.EqualValues(t, 1, wins.Load())
	assert.EqualValues(t, 1, surface.hidden.Load())
}

func TestSession_LaterCallsIgnored(t *testing.T) {
	surface := newScriptedSurface(nil)
	m := prompt.NewModal(surface)

	done := make(chan struct{})

	var (
		path string
		ok   bool
	)

	go func() {
		defer close(done)

		path, ok, _ = m.Prompt(context.Background(), "")
	}()

	s := <-surface.shown
	assert.True(t, s.Confirm("/music"))
	assert.False(t, s.Cancel())
	assert.False(t, s.Dismiss())
	assert.False(t, s.Confirm("/other"))

	<-done

	assert.Equal(t, "/music", path)
	assert.True(t, ok)
	assert.EqualValues(t, 1, surface.hidden.Load())
}

func TestModal_SingleOpenPrompt(t *testing.T) {
	surface := newScriptedSurface(nil)
	m := prompt.NewModal(surface)

	done := make(chan struct{})

	go func() {
		defer close(done)

		_, _, _ = m.Prompt(context.Background(), "")
	}()

	s := <-surface.shown
	assert.True(t, m.IsOpen())

	_, ok, err := m.Prompt(context.Background(), "")
	assert.ErrorIs(t, err, prompt.ErrAlreadyOpen)
	assert.False(t, ok)
	assert.Len(t, surface.shown, 0, "no second modal is shown")

	s.Cancel()
	<-done

	go func() { _, _, _ = m.Prompt(context.Background(), "") }()

	select {
	case s2 := <-surface.shown:
		s2.Cancel()
	case <-time.After(time.Second):
		t.Fatal("a new prompt can be opened after the first closed")
	}
}

func TestModal_ContextCancelDismisses(t *testing.T) {
	surface := newScriptedSurface(nil)
	m := prompt.NewModal(surface)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		<-surface.shown
		cancel()
	}()

	_, ok, err := m.Prompt(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
	assert.False(t, m.IsOpen())
}
