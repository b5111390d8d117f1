package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gmacarthur/innersync-desktop/internal/adapters/driving/tui/components/status"
	"github.com/gmacarthur/innersync-desktop/internal/adapters/driving/tui/keymap"
	"github.com/gmacarthur/innersync-desktop/internal/adapters/driving/tui/messages"
	"github.com/gmacarthur/innersync-desktop/internal/adapters/driving/tui/styles"
	"github.com/gmacarthur/innersync-desktop/internal/core/domain"
)

const (
	// eventBuffer is the subscription buffer. Dropped events are harmless
	// because every event carries the full snapshot.
	eventBuffer = 16

	// defaultHistoryRows is used before the terminal size is known.
	defaultHistoryRows = 10

	// chromeHeight is the number of lines used around the history table.
	chromeHeight = 14

	timeLayout = "2006-01-02 15:04:05"
)

// App is the dashboard following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for engine calls.
	ctx context.Context

	styles  *styles.Styles
	keymap  *keymap.KeyMap
	spinner spinner.Model
	bar     *status.Bar

	// events is the engine subscription; nil once closed.
	events      <-chan domain.Event
	unsubscribe func()

	// snapshot is the last status seen from the engine.
	snapshot domain.SyncStatus

	// offset is the number of history rows scrolled past, newest first.
	offset int

	showHelp bool

	// pending is true while a sync started from the dashboard is in flight.
	pending bool

	width  int
	height int

	// ready indicates the terminal size is known.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the dashboard and subscribes to engine events.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(s.Theme().Secondary)

	events, unsubscribe := ports.Sync.Subscribe(eventBuffer)

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		spinner:     sp,
		bar:         status.NewBar(s, km),
		events:      events,
		unsubscribe: unsubscribe,
		snapshot:    ports.Sync.Status(),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("innersync"),
		a.spinner.Tick,
		a.listen(),
	)
}

// listen waits for the next engine event.
func (a *App) listen() tea.Cmd {
	events := a.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return messages.EventsClosed{}
		}
		return messages.EventReceived{Event: ev}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.bar.SetWidth(msg.Width)
		a.clampOffset()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.EventReceived:
		a.snapshot = msg.Event.Status
		a.clampOffset()
		return a, a.listen()

	case messages.EventsClosed:
		a.events = nil
		a.snapshot = a.ports.Sync.Status()
		a.bar.SetInfo("Sync engine stopped")
		return a, nil

	case messages.SyncFinished:
		a.pending = false
		a.snapshot = a.ports.Sync.Status()
		a.clampOffset()
		if msg.Err != nil {
			a.bar.SetError(msg.Err.Error())
			return a, nil
		}
		a.bar.SetInfo(describeResult(msg.Result))
		return a, nil

	case messages.ActionCompleted:
		a.snapshot = a.ports.Sync.Status()
		a.clampOffset()
		if msg.Err != nil {
			a.bar.SetError(fmt.Sprintf("%s: %v", msg.Action, msg.Err))
			return a, nil
		}
		a.bar.SetInfo(actionDone(msg.Action))
		return a, nil

	case messages.ErrorOccurred:
		if msg.Err != nil {
			a.bar.SetError(msg.Err.Error())
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()

	switch {
	case keymap.Matches(k, a.keymap.Quit):
		a.Close()
		return a, tea.Quit

	case keymap.Matches(k, a.keymap.Help):
		a.showHelp = !a.showHelp
		return a, nil

	case keymap.Matches(k, a.keymap.Sync):
		if a.pending {
			return a, nil
		}
		a.pending = true
		a.bar.SetInfo("Syncing...")
		return a, a.syncCmd()

	case keymap.Matches(k, a.keymap.Pause):
		if a.snapshot.Paused {
			return a, a.actionCmd(messages.ActionResume, a.ports.Sync.Resume)
		}
		return a, a.actionCmd(messages.ActionPause, a.ports.Sync.Pause)

	case keymap.Matches(k, a.keymap.Clear):
		a.offset = 0
		return a, a.actionCmd(messages.ActionClearHistory, a.ports.Sync.ClearHistory)

	case keymap.Matches(k, a.keymap.Up):
		if a.offset > 0 {
			a.offset--
		}
		return a, nil

	case keymap.Matches(k, a.keymap.Down):
		a.offset++
		a.clampOffset()
		return a, nil
	}

	return a, nil
}

// syncCmd runs a sync and reports its result.
func (a *App) syncCmd() tea.Cmd {
	ctx := a.ctx
	svc := a.ports.Sync
	return func() tea.Msg {
		result, err := svc.SyncNow(ctx, domain.TriggerManual)
		return messages.SyncFinished{Result: result, Err: err}
	}
}

// actionCmd runs an engine call and reports completion.
func (a *App) actionCmd(action messages.Action, fn func(context.Context) error) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return messages.ActionCompleted{Action: action, Err: fn(ctx)}
	}
}

func (a *App) historyRows() int {
	if !a.ready || a.height == 0 {
		return defaultHistoryRows
	}
	rows := a.height - chromeHeight
	if rows < 3 {
		rows = 3
	}
	return rows
}

func (a *App) clampOffset() {
	maxOffset := len(a.snapshot.History) - a.historyRows()
	if maxOffset < 0 {
		maxOffset = 0
	}
	if a.offset > maxOffset {
		a.offset = maxOffset
	}
	if a.offset < 0 {
		a.offset = 0
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("innersync"))
	b.WriteString("\n\n")
	b.WriteString(a.viewState())
	b.WriteString("\n")
	b.WriteString(a.viewWatchFiles())
	b.WriteString("\n\n")
	b.WriteString(a.viewHistory())
	b.WriteString("\n")
	if a.showHelp {
		b.WriteString(a.viewHelp())
		b.WriteString("\n")
	}
	b.WriteString(a.bar.View())
	return b.String()
}

func (a *App) viewState() string {
	s := a.snapshot

	label := string(s.State)
	if s.Paused {
		label += " (paused)"
	}
	line := "State: " + a.styles.StateBadge(s.State, s.Paused).Render(label)
	if s.Running || a.pending {
		line += " " + a.spinner.View()
	}

	var b strings.Builder
	b.WriteString(line)
	b.WriteString("\n")

	lastRun := "never"
	if !s.LastRun.IsZero() {
		lastRun = fmt.Sprintf("%s (%s)", s.LastRun.Local().Format(timeLayout), since(s.LastRun, time.Now()))
	}
	b.WriteString(a.styles.Muted.Render("Last run: ") + lastRun)
	if s.LastResult != nil {
		b.WriteString("  ")
		b.WriteString(a.styles.RunStatus(s.LastResult.Status).Render(describeResult(*s.LastResult)))
	}
	return b.String()
}

func (a *App) viewWatchFiles() string {
	if len(a.snapshot.WatchFiles) == 0 {
		return a.styles.Muted.Render("Watching: nothing")
	}
	return a.styles.Muted.Render("Watching: ") + strings.Join(a.snapshot.WatchFiles, ", ")
}

func (a *App) viewHistory() string {
	history := a.snapshot.History
	if len(history) == 0 {
		return a.styles.Subtitle.Render("History") + "\n" + a.styles.Muted.Render("No runs yet")
	}

	// Newest first.
	start := len(history) - 1 - a.offset
	rows := make([][]string, 0, a.historyRows())
	for i := start; i >= 0 && len(rows) < a.historyRows(); i-- {
		e := history[i]
		rows = append(rows, []string{
			e.Timestamp.Local().Format(timeLayout),
			string(e.Status),
			e.Trigger,
			entryDetail(e),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(a.styles.Theme().Border)).
		Headers("TIME", "STATUS", "TRIGGER", "DETAIL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return a.styles.TableHeader.BorderBottom(false).Padding(0, 1)
			}
			if col == 1 && row >= 0 && row < len(rows) {
				return a.styles.RunStatus(domain.RunStatus(rows[row][1])).Padding(0, 1)
			}
			return a.styles.Normal.Padding(0, 1)
		})

	title := fmt.Sprintf("History (%d)", len(history))
	return a.styles.Subtitle.Render(title) + "\n" + t.String()
}

func (a *App) viewHelp() string {
	var lines []string
	for _, group := range a.keymap.FullHelp() {
		hints := make([]string, 0, len(group))
		for _, binding := range group {
			h := binding.Help()
			hints = append(hints, fmt.Sprintf("%-6s %s", h.Key, h.Desc))
		}
		lines = append(lines, strings.Join(hints, "    "))
	}
	return a.styles.Help.Render(strings.Join(lines, "\n"))
}

// Run starts the dashboard and blocks until it exits.
func (a *App) Run() error {
	defer a.Close()

	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && a.ctx.Err() != nil {
		return nil
	}
	return err
}

// Close ends the event subscription. It is safe to call more than once.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// Snapshot returns the last status seen.
func (a *App) Snapshot() domain.SyncStatus {
	return a.snapshot
}

// Offset returns the history scroll offset.
func (a *App) Offset() int {
	return a.offset
}

// ShowHelp reports whether the full help is visible.
func (a *App) ShowHelp() bool {
	return a.showHelp
}

// Bar returns the status bar.
func (a *App) Bar() *status.Bar {
	return a.bar
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.bar.SetWidth(width)
}

// describeResult renders a run result for one line of output.
func describeResult(r domain.RunResult) string {
	out := string(r.Status)
	switch {
	case r.Reason != "":
		out += ": " + r.Reason
	case r.Message != "":
		out += ": " + r.Message
	}
	return out
}

func entryDetail(e domain.HistoryEntry) string {
	var parts []string
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.PayloadHash != "" {
		hash := e.PayloadHash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		parts = append(parts, hash)
	}
	return strings.Join(parts, " · ")
}

func actionDone(action messages.Action) string {
	switch action {
	case messages.ActionPause:
		return "Paused"
	case messages.ActionResume:
		return "Resumed"
	case messages.ActionClearHistory:
		return "History cleared"
	default:
		return fmt.Sprintf("%s done", action)
	}
}

// since formats how long ago t was, for compact displays.
func since(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t).Round(time.Second)
	if d < time.Second {
		return "just now"
	}
	return d.String() + " ago"
}
