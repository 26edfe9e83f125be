// Package tui is the dashboard itself: a bubbletea model fed by the shared
// event bus. The model is the bus's single consumer; every mutation of
// dashboard state happens inside Update, so events for one identifier always
// apply in arrival order.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/Dicklesworthstone/assoc/internal/browse"
	"github.com/Dicklesworthstone/assoc/internal/config"
	"github.com/Dicklesworthstone/assoc/internal/events"
	"github.com/Dicklesworthstone/assoc/internal/gitstatus"
	"github.com/Dicklesworthstone/assoc/internal/paths"
	"github.com/Dicklesworthstone/assoc/internal/plan"
	"github.com/Dicklesworthstone/assoc/internal/runner"
	"github.com/Dicklesworthstone/assoc/internal/session"
	"github.com/Dicklesworthstone/assoc/internal/team"
	"github.com/Dicklesworthstone/assoc/internal/todo"
	"github.com/Dicklesworthstone/assoc/internal/tracker"
	"github.com/Dicklesworthstone/assoc/internal/transcript"
	"github.com/Dicklesworthstone/assoc/internal/tui/layout"
	"github.com/Dicklesworthstone/assoc/internal/tui/theme"
)

// Options wires the dashboard to its collaborators. Nil Poller, Supervisor
// or Linear simply disable the corresponding features.
type Options struct {
	ProjectPath string
	ClaudeHome  string
	Config      config.Config
	Bus         *events.Bus
	Poller      *tracker.Poller
	Supervisor  *runner.Supervisor

	// Tracker availability, detected at startup.
	Repo          string
	IssuesRepo    string
	User          string
	JiraAvailable bool
	Linear        *tracker.LinearClient
}

// BusMsg wraps one bus message for the tea runtime.
type BusMsg struct {
	Inner events.Msg
}

// WatchStatusMsg reports the watcher's degraded state.
type WatchStatusMsg struct {
	Degraded bool
	Missing  []string
}

// busClosedMsg ends the wait-for-event loop.
type busClosedMsg struct{}

// issuesMsg is a one-off GitHub issues fetch (open/closed toggle).
type issuesMsg struct {
	state  string
	issues []tracker.GitHubIssue
	err    error
}

// jiraDetailMsg carries a full issue fetched for the detail pane.
type jiraDetailMsg struct {
	issue tracker.JiraIssue
	err   error
}

// jiraSearchMsg carries ad-hoc Jira search results.
type jiraSearchMsg struct {
	query  string
	issues []tracker.JiraIssue
	err    error
}

// actionMsg reports a fire-and-forget tracker mutation.
type actionMsg struct {
	name    string
	refresh string // integration to refresh on success, or ""
	err     error
}

// Model is the dashboard state. Value receiver throughout; Update returns
// the modified copy.
type Model struct {
	opts  Options
	keys  KeyMap
	theme theme.Theme

	width  int
	height int
	tier   layout.Tier

	tabs   []Tab
	active Tab

	cursor [tabCount]int
	scroll [tabCount]int
	pane   [tabCount]int

	// Derived directories.
	projectDir string
	teamsDir   string
	tasksDir   string
	todosDir   string
	plansDir   string

	// Sessions.
	sessions    []session.Session
	reader      *transcript.Reader
	items       []transcript.Item
	loadedID    string
	subagents   []session.Subagent
	subagentIdx int // -1 means the main transcript
	follow      bool

	// Teams.
	teams      []string
	teamCfg    team.Config
	tasks      []team.Task
	leadInbox  []team.InboxMessage
	statuses   map[string]team.AgentStatus
	memberIdx  int
	taskIdx    int
	loadedTeam string

	// Todos.
	todos []todo.File

	// Git.
	git      gitstatus.Status
	gitItems []gitstatus.FlatItem
	diff     []gitstatus.Line
	diffPath string

	// Git browse mode.
	gitBrowse  bool
	fbEntries  []browse.Entry
	fbExpanded map[string]bool
	fbContent  *browse.Content
	fbPath     string
	fbRendered string

	// Plans.
	plans        []plan.File
	planRendered string
	planPath     string
	mdRenderer   *glamour.TermRenderer

	// Trackers.
	prItems     []tracker.PRItem
	issueItems  []tracker.IssueItem
	issuesState string // "open" or "closed"
	jiraItems   []tracker.JiraItem
	jiraDetail  *tracker.JiraIssue
	jiraQuery   string // non-empty while showing search results
	linearItems []tracker.LinearItem
	trackerErr  map[Tab]string
	trackerAt   map[Tab]time.Time

	// Workers.
	workers    []runner.Worker
	hasWorkers bool

	modal modal

	lastErr       string
	watchDegraded bool
	watchMissing  []string
	lastUpdate    time.Time
}

// New builds the model and performs the initial synchronous loads. Tracker
// data arrives later through the bus.
func New(opts Options) Model {
	m := Model{
		opts:        opts,
		keys:        DefaultKeyMap(),
		theme:       theme.Current(),
		subagentIdx: -1,
		issuesState: "open",
		trackerErr:  make(map[Tab]string),
		trackerAt:   make(map[Tab]time.Time),
		lastUpdate:  time.Now(),
	}
	m.projectDir = paths.ProjectDir(opts.ClaudeHome, opts.ProjectPath)
	m.teamsDir = paths.TeamsDir(opts.ClaudeHome)
	m.tasksDir = paths.TasksDir(opts.ClaudeHome)
	m.todosDir = paths.TodosDir(opts.ClaudeHome)
	m.plansDir = paths.PlansDir(opts.ClaudeHome)

	m = m.reloadSessions()
	m = m.reloadTeamList()
	m = m.reloadTodos()
	m = m.reloadGit()
	m = m.reloadPlans()

	m.tabs = m.visibleTabs()
	if len(m.tabs) > 0 {
		m.active = m.tabs[0]
	}
	if len(m.sessions) > 0 {
		m = m.openSession(0)
	}
	return m
}

// Init starts the wait-for-event loop.
func (m Model) Init() tea.Cmd {
	return waitFor(m.opts.Bus)
}

// waitFor blocks on the bus and forwards the next message into the tea
// queue. Update re-arms it after every bus message.
func waitFor(bus *events.Bus) tea.Cmd {
	return func() tea.Msg {
		msg, ok := bus.Next()
		if !ok {
			return busClosedMsg{}
		}
		return BusMsg{Inner: msg}
	}
}

// Update is the single consumer of all dashboard events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tier = layout.TierForWidth(msg.Width)
		m.mdRenderer = nil // re-wrap markdown at the new width
		m.planPath = ""
		if m.fbContent != nil && m.fbContent.Kind == browse.ContentMarkdown {
			m, m.fbRendered = m.renderMarkdown(m.fbContent.Body)
		}
		return m, nil

	case BusMsg:
		m = m.apply(msg.Inner)
		return m, waitFor(m.opts.Bus)

	case busClosedMsg:
		return m, tea.Quit

	case issuesMsg:
		if msg.err != nil {
			m.trackerErr[TabIssues] = msg.err.Error()
		} else {
			m.issuesState = msg.state
			m.issueItems = tracker.CategorizeIssues(msg.issues, m.opts.User)
			m.trackerErr[TabIssues] = ""
			m.trackerAt[TabIssues] = time.Now()
			m.cursor[TabIssues] = 0
			m = m.snapCursor()
		}
		return m, nil

	case jiraDetailMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		} else {
			issue := msg.issue
			m.jiraDetail = &issue
		}
		return m, nil

	case jiraSearchMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		} else {
			m.jiraQuery = msg.query
			m.jiraItems = tracker.CategorizeJiraIssues(msg.issues)
			m.cursor[TabJira] = 0
			m = m.snapCursor()
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.lastErr = msg.name + ": " + msg.err.Error()
			return m, nil
		}
		m.lastErr = ""
		if msg.refresh != "" && m.opts.Poller != nil {
			m.opts.Poller.Refresh(msg.refresh)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handleKey routes one key press, modal first.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal.kind != modalNone {
		return m.handleModalKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.modal = modal{kind: modalHelp}
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		return m.cycleTab(1), nil

	case key.Matches(msg, m.keys.PrevTab):
		return m.cycleTab(-1), nil

	case key.Matches(msg, m.keys.JumpTab):
		n := int(msg.String()[0] - '0')
		if n >= 1 && n <= len(m.tabs) {
			m = m.switchTab(m.tabs[n-1])
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		return m.move(1), nil

	case key.Matches(msg, m.keys.Up):
		return m.move(-1), nil

	case key.Matches(msg, m.keys.Top):
		return m.moveEnd(false), nil

	case key.Matches(msg, m.keys.Bottom):
		return m.moveEnd(true), nil

	case key.Matches(msg, m.keys.Left):
		return m.cyclePane(-1), nil

	case key.Matches(msg, m.keys.Right):
		return m.cyclePane(1), nil

	case key.Matches(msg, m.keys.Select):
		return m.selectCurrent()

	case key.Matches(msg, m.keys.Follow):
		if m.active == TabSessions {
			m.follow = !m.follow
			if m.follow && len(m.sessions) > 0 {
				m = m.openSession(0)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Subagent):
		if m.active == TabSessions {
			m = m.cycleSubagent()
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m.refreshActive(), nil

	case key.Matches(msg, m.keys.Delete):
		return m.confirmDelete(), nil

	case key.Matches(msg, m.keys.Kill):
		if m.active == TabProcesses && m.opts.Supervisor != nil {
			if w, ok := m.selectedWorker(); ok && !w.State.Terminal() {
				m.opts.Supervisor.Kill(w.ID)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		if m.active == TabProcesses && m.opts.Supervisor != nil {
			if w, ok := m.selectedWorker(); ok {
				if err := m.opts.Supervisor.Dismiss(w.ID); err != nil {
					m.lastErr = err.Error()
				} else {
					m = m.reloadWorkers()
				}
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Prompt):
		return m.openSpawnModal(), nil

	case key.Matches(msg, m.keys.Open):
		if url, ok := m.selectedURL(); ok {
			tracker.OpenURL(url)
		}
		return m, nil
	}

	// Tab-local extras that have no global binding.
	switch msg.String() {
	case "b":
		if m.active == TabGit {
			return m.toggleGitBrowse(), nil
		}
	case "backspace":
		if m.active == TabGit && m.gitBrowse {
			return m.browseBackspace(), nil
		}
	case "v":
		if m.active == TabIssues {
			return m.toggleIssuesState()
		}
	case "t":
		if m.active == TabJira {
			return m.openTransitionModal(), nil
		}
	case "/":
		if m.active == TabJira {
			return m.openJiraSearchModal(), nil
		}
	case "n":
		if m.active == TabIssues {
			return m.openIssueModal(inputIssueNew, nil), nil
		}
	case "e":
		if m.active == TabIssues {
			if item, ok := m.selectedIssue(); ok {
				return m.openIssueModal(inputIssueEdit, item), nil
			}
		}
	case "c":
		if m.active == TabIssues {
			return m.confirmIssueStateChange(), nil
		}
	case "C":
		if m.active == TabIssues {
			if item, ok := m.selectedIssue(); ok {
				return m.openIssueModal(inputIssueComment, item), nil
			}
		}
	}
	return m, nil
}

// cycleTab moves to the next or previous visible tab.
func (m Model) cycleTab(delta int) Model {
	if len(m.tabs) == 0 {
		return m
	}
	idx := 0
	for i, t := range m.tabs {
		if t == m.active {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(m.tabs)) % len(m.tabs)
	return m.switchTab(m.tabs[idx])
}

func (m Model) switchTab(t Tab) Model {
	m.active = t
	return m.snapCursor()
}

// move shifts the list cursor (or scrolls the detail pane) on the active tab.
func (m Model) move(delta int) Model {
	if m.detailFocused() {
		cur := m.scroll[m.active]
		if cur == pinnedBottom {
			cur = m.maxScroll()
		}
		m.scroll[m.active] = clamp(cur+delta, 0, m.maxScroll())
		if m.active == TabSessions {
			m.follow = false
		}
		return m
	}

	switch {
	case m.active == TabTeams && m.pane[TabTeams] == 1:
		m.memberIdx = clamp(m.memberIdx+delta, 0, len(m.teamCfg.Members)-1)
		return m
	case m.active == TabTeams && m.pane[TabTeams] == 2:
		m.taskIdx = clamp(m.taskIdx+delta, 0, len(m.tasks)-1)
		return m
	}

	n, selectable := m.listRows()
	if n == 0 {
		return m
	}
	cur := m.cursor[m.active]
	for next := cur + delta; next >= 0 && next < n; next += delta {
		if selectable(next) {
			cur = next
			break
		}
	}
	m.cursor[m.active] = cur
	return m.onSelectionChanged()
}

// moveEnd jumps to the first or last selectable row, or pins the detail
// scroll to an edge.
func (m Model) moveEnd(bottom bool) Model {
	if m.detailFocused() {
		if bottom {
			m.scroll[m.active] = m.maxScroll()
		} else {
			m.scroll[m.active] = 0
		}
		return m
	}
	n, selectable := m.listRows()
	if n == 0 {
		return m
	}
	if bottom {
		for i := n - 1; i >= 0; i-- {
			if selectable(i) {
				m.cursor[m.active] = i
				break
			}
		}
	} else {
		for i := 0; i < n; i++ {
			if selectable(i) {
				m.cursor[m.active] = i
				break
			}
		}
	}
	return m.onSelectionChanged()
}

// cyclePane moves focus between the tab's panes.
func (m Model) cyclePane(delta int) Model {
	n := m.paneCount()
	if n <= 1 {
		return m
	}
	m.pane[m.active] = clamp(m.pane[m.active]+delta, 0, n-1)
	return m
}

// paneCount is the number of focusable panes on the active tab.
func (m Model) paneCount() int {
	switch m.active {
	case TabTeams:
		return 4 // teams, members, tasks, detail
	default:
		return 2 // list, detail
	}
}

// detailFocused reports whether the focused pane is a scrolling detail pane.
func (m Model) detailFocused() bool {
	if m.active == TabTeams {
		return m.pane[TabTeams] == 3
	}
	return m.pane[m.active] == 1
}

// snapCursor re-clamps the cursor after a data reload and keeps it off
// header rows.
func (m Model) snapCursor() Model {
	n, selectable := m.listRows()
	if n == 0 {
		m.cursor[m.active] = 0
		return m
	}
	cur := clamp(m.cursor[m.active], 0, n-1)
	if !selectable(cur) {
		for i := cur + 1; i < n; i++ {
			if selectable(i) {
				cur = i
				break
			}
		}
	}
	if !selectable(cur) {
		for i := cur - 1; i >= 0; i-- {
			if selectable(i) {
				cur = i
				break
			}
		}
	}
	m.cursor[m.active] = cur
	m.memberIdx = clamp(m.memberIdx, 0, max(0, len(m.teamCfg.Members)-1))
	m.taskIdx = clamp(m.taskIdx, 0, max(0, len(m.tasks)-1))
	return m.onSelectionChanged()
}

// Run starts the dashboard in the alternate screen and blocks until quit.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
