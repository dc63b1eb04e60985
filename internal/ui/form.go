package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/apiwatchdog/internal/logtail"
	"github.com/five82/apiwatchdog/internal/poll"
	"github.com/five82/apiwatchdog/internal/prefs"
	"github.com/five82/apiwatchdog/internal/provider"
	"github.com/five82/apiwatchdog/internal/state"
)

// Intervals are the polling intervals offered by the form, in seconds.
var Intervals = []int{5, 10, 15, 20, 25, 30, 60, 120, 300, 600, 1200, 1800, 3600}

// Request is the form content handed to the Starter.
type Request struct {
	Kind     provider.Kind
	Interval int
	Query    string
	LogFile  string
	// BarMinutes is the stock bar size; zero uses the provider default.
	BarMinutes int
}

// Session is a watch started from the form.
type Session interface {
	Snapshot() state.Snapshot
	State() poll.State
	LogFile() string
	// Stop prevents further cycles; a cycle in flight completes.
	Stop()
}

// Starter validates a request and starts polling. Validation failures are
// shown inline and leave the form editable.
type Starter func(Request) (Session, error)

// Options configure the form.
type Options struct {
	Start     Starter
	Prefs     prefs.Prefs
	PrefsPath string
	// Initial overrides the remembered values, for example from CLI flags.
	Initial  *Request
	PollTick time.Duration
	LogLines int
}

type field int

const (
	fieldProvider field = iota
	fieldInterval
	fieldQuery
	fieldLogFile
	fieldCount
)

const (
	defaultPollTick = time.Second
	defaultLogLines = 200
)

// Model is the root application state for Bubble Tea.
type Model struct {
	start     Starter
	prefsPath string
	pollTick  time.Duration
	logLines  int
	keys      keyMap

	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool

	// Form
	focus    field
	kind     provider.Kind
	interval int // index into Intervals
	query    textinput.Model
	logFile  textinput.Model
	formErr  error
	// barMinutes comes from the command line; the form has no field for it.
	barMinutes int

	// Running
	session     Session
	snapshot    state.Snapshot
	pollState   poll.State
	logViewport viewport.Model
	lastRefresh time.Time
	stopped     bool
}

// New creates the form model from remembered preferences and opts.Initial.
func New(opts Options) Model {
	p := opts.Prefs
	if p.Theme == "" {
		p = prefs.Default()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = defaultPollTick
	}
	logLines := opts.LogLines
	if logLines <= 0 {
		logLines = defaultLogLines
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	kind, err := provider.ParseKind(p.Provider)
	if err != nil {
		kind = provider.KindWeather
	}
	req := Request{Kind: kind, Interval: p.Interval, Query: p.Query, LogFile: p.LogFile}
	if opts.Initial != nil {
		req = *opts.Initial
	}

	query := textinput.New()
	query.CharLimit = 128
	query.SetValue(req.Query)

	logFile := textinput.New()
	logFile.CharLimit = 512
	logFile.Placeholder = prefs.DefaultLogFile
	logFile.SetValue(req.LogFile)

	m := Model{
		start:     opts.Start,
		prefsPath: prefsPath,
		pollTick:  pollTick,
		logLines:  logLines,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(p.Theme),
		kind:      req.Kind,
		interval:  intervalIndex(req.Interval),
		query:     query,
		logFile:   logFile,

		barMinutes: req.BarMinutes,
	}
	m.setPlaceholder()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.EnterAltScreen
}

// Session returns the running session, if monitoring was started.
func (m Model) Session() Session {
	return m.session
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeLogViewport()
		return m, nil

	case tickMsg:
		if m.session == nil || m.stopped {
			return m, nil
		}
		return m, tea.Batch(refreshCmd(m.session, m.logLines), tickCmd(m.pollTick))

	case refreshMsg:
		m.snapshot = msg.snapshot
		m.pollState = msg.state
		m.lastRefresh = time.Now()
		m.setLogContent(msg.lines)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.session != nil {
		return m.renderRunning()
	}
	return m.renderForm()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.session != nil {
		return m.handleRunningKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextField):
		return m, m.focusField((m.focus + 1) % fieldCount)
	case key.Matches(msg, m.keys.PrevField):
		return m, m.focusField((m.focus + fieldCount - 1) % fieldCount)
	case msg.Type == tea.KeyEnter:
		return m.submit()
	}

	if m.editingText() {
		return m.updateInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Start):
		return m.submit()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
	case key.Matches(msg, m.keys.Left):
		m.shiftChoice(-1)
	case key.Matches(msg, m.keys.Right):
		m.shiftChoice(1)
	}
	return m, nil
}

func (m Model) handleRunningKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Stop):
		m.session.Stop()
		m.stopped = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
	default:
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case fieldQuery:
		m.query, cmd = m.query.Update(msg)
	case fieldLogFile:
		m.logFile, cmd = m.logFile.Update(msg)
	}
	m.formErr = nil
	return m, cmd
}

func (m Model) editingText() bool {
	return m.focus == fieldQuery || m.focus == fieldLogFile
}

func (m *Model) focusField(f field) tea.Cmd {
	m.focus = f
	m.query.Blur()
	m.logFile.Blur()
	switch f {
	case fieldQuery:
		return m.query.Focus()
	case fieldLogFile:
		return m.logFile.Focus()
	}
	return nil
}

func (m *Model) shiftChoice(delta int) {
	switch m.focus {
	case fieldProvider:
		n := len(provider.Kinds)
		for i, k := range provider.Kinds {
			if k == m.kind {
				m.kind = provider.Kinds[(i+delta+n)%n]
				break
			}
		}
		m.setPlaceholder()
	case fieldInterval:
		n := len(Intervals)
		m.interval = (m.interval + delta + n) % n
	}
	m.formErr = nil
}

func (m *Model) setPlaceholder() {
	if m.kind == provider.KindStock {
		m.query.Placeholder = "Stock symbol, e.g. AAPL"
	} else {
		m.query.Placeholder = "Location, e.g. London,uk"
	}
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.savePrefs()
}

// request returns the trimmed form content.
func (m Model) request() Request {
	return Request{
		Kind:     m.kind,
		Interval: Intervals[m.interval],
		Query:    strings.TrimSpace(m.query.Value()),
		LogFile:  strings.TrimSpace(m.logFile.Value()),

		BarMinutes: m.barMinutes,
	}
}

// validate catches empty inputs before the starter sees them.
func (r Request) validate() error {
	var problems []string
	if r.Query == "" {
		if r.Kind == provider.KindStock {
			problems = append(problems, "Please enter a stock symbol")
		} else {
			problems = append(problems, "Please enter a location")
		}
	}
	if r.LogFile == "" {
		problems = append(problems, "Please enter a log file")
	}
	if r.Interval <= 0 {
		problems = append(problems, "Please choose an interval")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	req := m.request()
	if err := req.validate(); err != nil {
		m.formErr = err
		return m, nil
	}
	if m.start == nil {
		m.formErr = errors.New("monitoring is not available")
		return m, nil
	}
	session, err := m.start(req)
	if err != nil {
		m.formErr = err
		return m, nil
	}

	m.formErr = nil
	m.session = session
	m.query.Blur()
	m.logFile.Blur()
	m.resizeLogViewport()
	m.savePrefs()
	return m, tea.Batch(refreshCmd(session, m.logLines), tickCmd(m.pollTick))
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	req := m.request()
	_ = prefs.Save(m.prefsPath, prefs.Prefs{
		Theme:    m.theme.Name,
		Provider: req.Kind.String(),
		Interval: req.Interval,
		Query:    req.Query,
		LogFile:  req.LogFile,
	})
}

func intervalIndex(seconds int) int {
	for i, v := range Intervals {
		if v == seconds {
			return i
		}
	}
	for i, v := range Intervals {
		if v > seconds {
			return i
		}
	}
	if seconds > 0 {
		return len(Intervals) - 1
	}
	return 0
}

func intervalLabel(seconds int) string {
	if seconds < 60 {
		return strconv.Itoa(seconds) + " seconds"
	}
	return fmt.Sprintf("%d seconds (%s)", seconds, humanizeDuration(time.Duration(seconds)*time.Second))
}

// Messages

type tickMsg time.Time

type refreshMsg struct {
	snapshot state.Snapshot
	state    poll.State
	lines    []string
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func refreshCmd(s Session, maxLines int) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(s.LogFile(), maxLines)
		if err != nil {
			lines = []string{"unable to read log: " + err.Error()}
		}
		return refreshMsg{snapshot: s.Snapshot(), state: s.State(), lines: lines}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled. Sessions created through opts.Start are owned by the caller.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
