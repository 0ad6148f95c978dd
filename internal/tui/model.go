package tui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spiffcs/slaclock/internal/menubar"
)

// statusDuration is how long a status note stays on screen.
const statusDuration = 3 * time.Second

// Model is the Bubble Tea model for the live SLA display.
type Model struct {
	display  menubar.Display
	now      time.Time
	spinner  spinner.Model
	progress progress.Model
	events   <-chan Event
	actions  chan<- Action
	open     func(url string) tea.Cmd
	cursor   int
	status   string
	quitting bool
	width    int
}

// doneMsg signals that all events have been processed.
type doneMsg struct{}

// clearStatusMsg is a message to clear the status
type clearStatusMsg struct{}

// ModelOption is a functional option for configuring a Model.
type ModelOption func(*Model)

// WithOpener replaces the function used to open ticket links.
func WithOpener(open func(url string) tea.Cmd) ModelOption {
	return func(m *Model) {
		m.open = open
	}
}

// NewModel creates a new TUI model. Key presses that change settings are
// sent on actions; a nil actions channel disables them.
func NewModel(events <-chan Event, actions chan<- Action, opts ...ModelOption) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	p := progress.New(
		progress.WithScaledGradient("#60a5fa", "#dc2626"),
		progress.WithWidth(25),
		progress.WithoutPercentage(),
	)

	m := Model{
		display:  menubar.Display{Loading: true},
		spinner:  s,
		progress: p,
		events:   events,
		actions:  actions,
		open:     openURL,
	}

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForEvent(m.events),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case DisplayEvent:
		m.display = msg.Display
		m.now = msg.Now
		if m.cursor >= len(m.display.Items) {
			m.cursor = max(len(m.display.Items)-1, 0)
		}
		return m, waitForEvent(m.events)

	case StatusEvent:
		m.status = msg.Message
		return m, tea.Batch(clearStatusAfter(statusDuration), waitForEvent(m.events))

	case clearStatusMsg:
		m.status = ""
		return m, nil

	case DoneEvent, doneMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// handleKey processes keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.display.Items)-1 {
			m.cursor++
		}
		return m, nil

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "t":
		return m.request(ActionToggleTimerView, "Switching view")
	case "h":
		return m.request(ActionToggleHideClock, "Toggling clock")
	case "p":
		return m.request(ActionToggleFilterPending, "Toggling pending filter")
	case "r":
		return m.request(ActionReload, "Reloading mailbox")

	case "enter", "o":
		return m.openSelected()
	}

	return m, nil
}

// request forwards a to the watcher and shows note until it answers.
func (m Model) request(a Action, note string) (tea.Model, tea.Cmd) {
	if !SendAction(m.actions, a) {
		note = "Busy, try again"
	}
	m.status = note
	return m, clearStatusAfter(statusDuration)
}

// openSelected opens the selected ticket in the default browser
func (m Model) openSelected() (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.display.Items) {
		return m, nil
	}
	item := m.display.Items[m.cursor]
	if !item.Enabled || item.URL == "" {
		m.status = "No link available"
		return m, clearStatusAfter(statusDuration)
	}
	return m, m.open(item.URL)
}

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")

	d := m.display
	switch {
	case d.Loading:
		fmt.Fprintf(&b, "  %s Loading mailbox...\n", m.spinner.View())
	default:
		icon := iconClock
		if d.Idle {
			icon = iconIdle
		}
		title := d.Title
		if title == "" {
			title = "·"
		}
		fmt.Fprintf(&b, "  %s %s", icon, titleStyle.Render(title))
		if d.Header != "" {
			fmt.Fprintf(&b, "  %s", headerStyle.Render(d.Header))
		}
		b.WriteString("\n")
		if bar := m.elapsedBar(); bar != "" {
			fmt.Fprintf(&b, "    %s\n", bar)
		}
	}

	if len(d.Items) > 0 {
		b.WriteString("\n")
	}
	for i, it := range d.Items {
		prefix := "  "
		style := itemStyle
		switch {
		case !it.Enabled:
			style = disabledStyle
		case i == m.cursor:
			prefix = "> "
			style = selectedStyle
		}
		fmt.Fprintf(&b, "  %s%s\n", prefix, style.Render(it.Label))
	}

	if d.Message != "" {
		fmt.Fprintf(&b, "\n  %s\n", messageStyle.Render(d.Message))
	}
	if d.Dropped > 0 {
		fmt.Fprintf(&b, "  %s\n", warnStyle.Render(fmt.Sprintf("%d conversations could not be read", d.Dropped)))
	}
	if m.status != "" {
		fmt.Fprintf(&b, "\n  %s\n", statusStyle.Render(m.status))
	}

	b.WriteString(footerStyle.Render("  t timer/clock · h hide · p pending · r reload · enter open · q quit"))
	b.WriteString("\n")

	return b.String()
}

// elapsedBar shows how much of the nearest ticket's allowance has been
// used since its SLA clock started, or "" when nothing is tracked.
func (m Model) elapsedBar() string {
	if len(m.display.Ranked) == 0 || m.now.IsZero() {
		return ""
	}
	t := m.display.Ranked[0]
	start := t.ClockStart
	if start.IsZero() {
		start = t.WaitingSince
	}
	total := t.DueAt.Sub(start)
	if total <= 0 {
		return m.progress.ViewAs(1)
	}
	used := float64(m.now.Sub(start)) / float64(total)
	return m.progress.ViewAs(min(max(used, 0), 1))
}

// waitForEvent creates a command that waits for the next event.
func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return doneMsg{}
		}
		return event
	}
}

// clearStatusAfter returns a command that clears the status after a delay
func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// openURL opens a URL in the default browser
func openURL(url string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd

		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", url)
		case "linux":
			cmd = exec.Command("xdg-open", url)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		default:
			return nil
		}

		_ = cmd.Start()
		return nil
	}
}
