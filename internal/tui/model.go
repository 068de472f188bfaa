package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/italolelis/spotdl_exporter/internal/content"
	"github.com/italolelis/spotdl_exporter/internal/downloader"
	"github.com/italolelis/spotdl_exporter/internal/host"
	"github.com/italolelis/spotdl_exporter/internal/prompt"
)

const (
	maxToasts    = 5
	refreshEvery = time.Second

	// actionBarRow is the screen row the action bar is drawn on.
	actionBarRow = 5
)

var kindLabels = map[content.Kind]string{
	content.KindPlaylist: "Playlist",
	content.KindTrack:    "Track",
}

const helpText = "enter: open location | ctrl+d: download | ctrl+r: re-render | ctrl+c: quit"

// Messages used with Bubble Tea ------------------------------------------------

type screenChangedMsg struct{}

type toastMsg struct {
	text string
	at   time.Time
}

type promptShowMsg struct{ session *prompt.Session }

type promptHideMsg struct{ session *prompt.Session }

type pageLoadedMsg struct {
	path string
	err  error
}

type downloadDoneMsg struct{ outcome downloader.Outcome }

type tickMsg time.Time

// Runner starts one download of the current page.
type Runner interface {
	Run(ctx context.Context) downloader.Outcome
}

// Opener loads a location into the screen.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// Model -----------------------------------------------------------------------

type Model struct {
	ctx      context.Context
	screen   *host.Screen
	opener   Opener
	runner   Runner
	resolver *content.Resolver

	location  textinput.Model
	pathInput textinput.Model
	session   *prompt.Session

	toasts  []toastMsg
	running int
	status  string
	now     func() time.Time
}

func NewModel(ctx context.Context, screen *host.Screen, opener Opener, runner Runner, resolver *content.Resolver) Model {
	loc := textinput.New()
	loc.Prompt = "location> "
	loc.Placeholder = "/playlist/<id>, /track/<id> or an open.spotify.com link"
	loc.CharLimit = 512
	loc.Width = 60
	loc.SetValue(screen.CurrentPath())
	loc.Focus()

	path := textinput.New()
	path.Prompt = "> "
	path.Placeholder = "leave empty for the spotDL default location"
	path.CharLimit = 1024
	path.Width = 50

	return Model{
		ctx:       ctx,
		screen:    screen,
		opener:    opener,
		runner:    runner,
		resolver:  resolver,
		location:  loc,
		pathInput: path,
		status:    helpText,
		now:       time.Now,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.open(m.screen.CurrentPath()), tick())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.session != nil {
			return m.updatePrompt(msg)
		}

		switch msg.String() {
		case "enter":
			path := content.NormalizeLocation(m.location.Value())
			m.location.SetValue(path)

			return m, m.open(path)
		case "ctrl+d":
			return m.trigger()
		case "ctrl+r":
			m.screen.RebuildActionBar()

			return m, nil
		}
	case tea.MouseMsg:
		if msg.Type != tea.MouseLeft {
			return m, nil
		}

		if m.session != nil {
			top, bottom := m.modalRows()
			if msg.Y < top || msg.Y > bottom {
				m.session.Dismiss()
				m = m.closePrompt()
			}

			return m, nil
		}

		if msg.Y == actionBarRow {
			return m.trigger()
		}

		return m, nil
	case promptShowMsg:
		m.session = msg.session
		m.pathInput.SetValue(msg.session.Default())
		m.pathInput.CursorEnd()
		m.pathInput.Focus()
		m.location.Blur()

		return m, textinput.Blink
	case promptHideMsg:
		if m.session == msg.session {
			m = m.closePrompt()
		}

		return m, nil
	case toastMsg:
		m.toasts = append(m.toasts, msg)
		if len(m.toasts) > maxToasts {
			m.toasts = m.toasts[len(m.toasts)-maxToasts:]
		}

		return m, nil
	case pageLoadedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("could not load %s: %v", msg.path, msg.err)
		} else {
			m.status = helpText
		}

		return m, nil
	case downloadDoneMsg:
		m.running--
		m.status = fmt.Sprintf("last download: %s", msg.outcome)

		return m, nil
	case tickMsg:
		return m, tick()
	case screenChangedMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.location, cmd = m.location.Update(msg)

	return m, cmd
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.session.Confirm(m.pathInput.Value())

		return m.closePrompt(), nil
	case "esc":
		m.session.Cancel()

		return m.closePrompt(), nil
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)

	return m, cmd
}

// closePrompt forgets the session and returns focus to the location bar.
func (m Model) closePrompt() Model {
	m.session = nil
	m.pathInput.Blur()
	m.pathInput.SetValue("")
	m.location.Focus()

	return m
}

func (m Model) trigger() (tea.Model, tea.Cmd) {
	if !m.screen.HasTrigger() {
		return m, nil
	}

	m.running++
	ctx, runner := m.ctx, m.runner

	return m, func() tea.Msg {
		return downloadDoneMsg{outcome: runner.Run(ctx)}
	}
}

func (m Model) open(path string) tea.Cmd {
	ctx, opener := m.ctx, m.opener

	return func() tea.Msg {
		return pageLoadedMsg{path: path, err: opener.Open(ctx, path)}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// View implements tea.Model
func (m Model) View() string {
	base := m.baseView()
	if m.session == nil {
		return base
	}

	return base + "\n" + m.modalView()
}

// modalRows returns the first and last screen rows covered by the modal.
func (m Model) modalRows() (int, int) {
	top := lipgloss.Height(m.baseView())

	return top, top + lipgloss.Height(m.modalView()) - 1
}

func (m Model) baseView() string {
	snap := m.screen.Snapshot()

	var b strings.Builder

	b.WriteString(titleStyle.Render("spotDL exporter") + "\n\n")
	b.WriteString(m.location.View() + "\n\n")
	b.WriteString(headerStyle.Render(m.heading(snap)) + "\n")
	b.WriteString(m.actionBar(snap) + "\n\n")

	for _, t := range m.toasts {
		b.WriteString(toastStyle.Render("• "+t.text) + " " + dimStyle.Render(humanize.RelTime(t.at, m.now(), "ago", "from now")) + "\n")
	}

	if len(m.toasts) > 0 {
		b.WriteString("\n")
	}

	status := m.status
	if m.running > 0 {
		status = fmt.Sprintf("%d download(s) running | %s", m.running, status)
	}

	b.WriteString(statusBarStyle.Render(status))

	return b.String()
}

func (m Model) heading(snap host.Snapshot) string {
	if snap.Loading {
		return "Loading " + snap.Location + "…"
	}

	ref, err := m.resolver.Resolve(snap.Location, snap.Page)
	if err != nil {
		return snap.Location
	}

	return fmt.Sprintf("%s · %s", kindLabels[ref.Kind], ref.DisplayName)
}

func (m Model) actionBar(snap host.Snapshot) string {
	if !snap.ActionBar {
		return dimStyle.Render("…")
	}

	bar := controlStyle.Render("▶ Play") + controlStyle.Render("♡") + controlStyle.Render("⋯")
	if snap.Trigger {
		bar += " " + triggerStyle.Render("⬇ Download")
	}

	return bar
}

func (m Model) modalView() string {
	body := strings.Join([]string{
		headerStyle.Render("Download to"),
		m.pathInput.View(),
		dimStyle.Render("enter: confirm | esc: cancel | click outside: dismiss"),
	}, "\n")

	return modalStyle.Render(body)
}
