package tui

import (
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/Dicklesworthstone/assoc/internal/events"
	"github.com/Dicklesworthstone/assoc/internal/gitstatus"
	"github.com/Dicklesworthstone/assoc/internal/plan"
	"github.com/Dicklesworthstone/assoc/internal/runner"
	"github.com/Dicklesworthstone/assoc/internal/session"
	"github.com/Dicklesworthstone/assoc/internal/team"
	"github.com/Dicklesworthstone/assoc/internal/todo"
	"github.com/Dicklesworthstone/assoc/internal/tracker"
	"github.com/Dicklesworthstone/assoc/internal/transcript"
	"github.com/Dicklesworthstone/assoc/internal/watch"
)

// apply dispatches one bus message. Each message reloads exactly the domain
// it names; everything else keeps its current snapshot.
func (m Model) apply(msg events.Msg) Model {
	switch msg := msg.(type) {
	case events.TickMsg:
		// Redraw only.
		return m

	case WatchStatusMsg:
		m.watchDegraded = msg.Degraded
		m.watchMissing = msg.Missing
		return m

	case watch.Event:
		m.lastUpdate = time.Now()
		return m.applyWatch(msg)

	case tracker.Result:
		m.lastUpdate = time.Now()
		return m.applyPoll(msg)

	case runner.StateMsg:
		m.hasWorkers = true
		m.lastUpdate = time.Now()
		m = m.reloadWorkers()
		m.tabs = m.visibleTabs()
		return m

	case runner.ProgressMsg:
		return m.reloadWorkers()

	case runner.OutputMsg:
		return m.reloadWorkers()
	}
	return m
}

// applyWatch reloads the one domain a filesystem event names.
func (m Model) applyWatch(ev watch.Event) Model {
	switch ev.Domain {
	case watch.DomainSessionIndex:
		m = m.reloadSessions()
		if m.follow && len(m.sessions) > 0 && m.sessions[0].ID != m.loadedID {
			m = m.openSession(0)
		}
		// Keep the cursor on the loaded session when the list reorders.
		for i, s := range m.sessions {
			if s.ID == m.loadedID {
				m.cursor[TabSessions] = i
				break
			}
		}
		return m.snapCursor()

	case watch.DomainTranscript:
		if ev.Kind == watch.Removed {
			m = m.reloadSessions()
			if ev.ID == m.loadedID {
				m.reader = nil
				m.items = nil
				m.loadedID = ""
				if len(m.sessions) > 0 {
					m = m.openSession(0)
				}
			}
			return m.snapCursor()
		}
		if m.follow && ev.ID != m.loadedID {
			m = m.reloadSessions()
			if len(m.sessions) > 0 {
				m = m.openSession(0)
			}
			return m
		}
		if ev.ID == m.loadedID && m.subagentIdx < 0 {
			m = m.readTranscript()
		}
		return m

	case watch.DomainSubagentTranscript:
		if m.subagentIdx >= 0 && m.reader != nil && m.reader.Path() == ev.ID {
			m = m.readTranscript()
		}
		return m

	case watch.DomainTeamConfig, watch.DomainTeamInbox, watch.DomainTaskFile:
		m = m.reloadTeamList()
		if ev.ID == m.loadedTeam {
			m = m.reloadTeam(ev.ID)
		}
		return m.snapCursor()

	case watch.DomainTodoFile:
		m = m.reloadTodos()
		return m.snapCursor()

	case watch.DomainPlanFile:
		m = m.reloadPlans()
		m.planPath = "" // force re-render of the selected plan
		return m.snapCursor()

	case watch.DomainGitStatus:
		m = m.reloadGit()
		if m.diffPath != "" {
			m = m.loadDiffFor(m.diffPath)
		}
		return m.snapCursor()
	}
	return m
}

// applyPoll stores one integration's fetch outcome.
func (m Model) applyPoll(res tracker.Result) Model {
	tab, ok := integrationTab(res.Name)
	if !ok {
		return m
	}
	m.trackerAt[tab] = res.FetchedAt

	if res.Err != nil {
		m.trackerErr[tab] = res.Err.Error()
		m.lastErr = res.Name + ": " + res.Err.Error()
		return m
	}
	m.trackerErr[tab] = ""

	switch tab {
	case TabPRs:
		if prs, ok := res.Payload.([]tracker.PullRequest); ok {
			m.prItems = tracker.CategorizePRs(prs, m.opts.User)
		}
	case TabIssues:
		// The poller only fetches open issues; leave a closed-issue view
		// alone until the operator toggles back.
		if m.issuesState != "open" {
			return m
		}
		if issues, ok := res.Payload.([]tracker.GitHubIssue); ok {
			m.issueItems = tracker.CategorizeIssues(issues, m.opts.User)
		}
	case TabJira:
		// Ad-hoc search results stay until the next manual refresh.
		if m.jiraQuery != "" {
			return m
		}
		if issues, ok := res.Payload.([]tracker.JiraIssue); ok {
			m.jiraItems = tracker.CategorizeJiraIssues(issues)
		}
	case TabLinear:
		if issues, ok := res.Payload.([]tracker.LinearIssue); ok {
			m.linearItems = tracker.CategorizeLinearIssues(issues)
		}
	}
	return m.snapCursor()
}

func integrationTab(name string) (Tab, bool) {
	switch name {
	case tracker.IntegrationGitHubPRs:
		return TabPRs, true
	case tracker.IntegrationGitHubIssues:
		return TabIssues, true
	case tracker.IntegrationJira:
		return TabJira, true
	case tracker.IntegrationLinear:
		return TabLinear, true
	}
	return 0, false
}

// reloadSessions re-reads the session index (newest first).
func (m Model) reloadSessions() Model {
	sessions, err := session.Load(m.projectDir)
	if err != nil {
		m.sessions = nil
		return m
	}
	m.sessions = sessions
	return m
}

// openSession loads the transcript tail of the session at list index i.
func (m Model) openSession(i int) Model {
	if i < 0 || i >= len(m.sessions) {
		return m
	}
	s := m.sessions[i]
	m.cursor[TabSessions] = i
	m.loadedID = s.ID
	m.subagents = session.FindSubagents(m.projectDir, s.ID)
	m.subagentIdx = -1
	m.reader = transcript.NewReader(s.Path, m.opts.Config.TailLines())
	m.items = nil
	m.scroll[TabSessions] = pinnedBottom
	return m.readTranscript()
}

// cycleSubagent rotates main transcript -> subagent 0 -> ... -> main.
func (m Model) cycleSubagent() Model {
	if len(m.subagents) == 0 || m.loadedID == "" {
		return m
	}
	next := m.subagentIdx + 1
	if next >= len(m.subagents) {
		next = -1
	}
	m.subagentIdx = next

	path := ""
	if next < 0 {
		for _, s := range m.sessions {
			if s.ID == m.loadedID {
				path = s.Path
				break
			}
		}
	} else {
		path = m.subagents[next].Path
	}
	if path == "" {
		return m
	}
	m.reader = transcript.NewReader(path, m.opts.Config.TailLines())
	m.items = nil
	m.scroll[TabSessions] = pinnedBottom
	return m.readTranscript()
}

// readTranscript appends newly available transcript items.
func (m Model) readTranscript() Model {
	if m.reader == nil {
		return m
	}
	items, err := m.reader.Read()
	if err != nil {
		m.lastErr = err.Error()
		return m
	}
	m.items = append(m.items, items...)
	return m
}

// reloadTeamList re-reads team names and keeps the current team loaded.
func (m Model) reloadTeamList() Model {
	teams, err := team.List(m.teamsDir)
	if err != nil {
		m.teams = nil
		return m
	}
	m.teams = teams
	if m.loadedTeam == "" && len(teams) > 0 {
		m = m.reloadTeam(teams[0])
	}
	return m
}

// reloadTeam loads one team's config, tasks, lead inbox and derived
// member statuses.
func (m Model) reloadTeam(name string) Model {
	cfg, err := team.LoadConfig(m.teamsDir, name)
	if err != nil {
		return m
	}
	m.loadedTeam = name
	m.teamCfg = cfg

	tasks, _ := team.LoadTasks(m.tasksDir, name)
	m.tasks = tasks

	inbox, _ := team.LoadInbox(m.teamsDir, name, cfg.Lead())
	m.leadInbox = inbox

	names := make([]string, 0, len(cfg.Members))
	for _, member := range cfg.Members {
		names = append(names, member.Name)
	}
	m.statuses = team.DeriveAllStatuses(names, inbox, tasks)
	return m
}

func (m Model) reloadTodos() Model {
	files, err := todo.LoadAll(m.todosDir)
	if err != nil {
		m.todos = nil
		return m
	}
	m.todos = files
	return m
}

func (m Model) reloadGit() Model {
	status, _ := gitstatus.Load(m.opts.ProjectPath)
	m.git = status
	m.gitItems = status.FlatList()
	return m
}

// loadDiffFor refreshes the diff pane for one path if it is still listed.
func (m Model) loadDiffFor(path string) Model {
	for _, item := range m.gitItems {
		if item.IsEntry && item.Entry.Path == path {
			lines, err := gitstatus.LoadDiff(m.opts.ProjectPath, item.Entry)
			if err != nil {
				m.lastErr = err.Error()
				return m
			}
			m.diff = lines
			m.diffPath = path
			return m
		}
	}
	m.diff = nil
	m.diffPath = ""
	return m
}

func (m Model) reloadPlans() Model {
	files, err := plan.LoadAll(m.plansDir)
	if err != nil {
		m.plans = nil
		return m
	}
	m.plans = files
	return m
}

// reloadWorkers refreshes worker snapshots from the supervisor.
func (m Model) reloadWorkers() Model {
	if m.opts.Supervisor == nil {
		return m
	}
	m.workers = m.opts.Supervisor.Workers()
	if len(m.workers) > 0 {
		m.hasWorkers = true
	}
	return m
}

// onSelectionChanged loads the detail data the new selection needs.
func (m Model) onSelectionChanged() Model {
	switch m.active {
	case TabSessions:
		if m.pane[TabSessions] == 0 {
			i := m.cursor[TabSessions]
			if i >= 0 && i < len(m.sessions) && m.sessions[i].ID != m.loadedID {
				m.follow = false
				m = m.openSession(i)
			}
		}

	case TabTeams:
		if m.pane[TabTeams] == 0 {
			i := m.cursor[TabTeams]
			if i >= 0 && i < len(m.teams) && m.teams[i] != m.loadedTeam {
				m = m.reloadTeam(m.teams[i])
			}
		}

	case TabGit:
		if m.gitBrowse {
			break
		}
		i := m.cursor[TabGit]
		if i >= 0 && i < len(m.gitItems) && m.gitItems[i].IsEntry {
			entry := m.gitItems[i].Entry
			if entry.Path != m.diffPath {
				m = m.loadDiffFor(entry.Path)
			}
		}

	case TabPlans:
		i := m.cursor[TabPlans]
		if i >= 0 && i < len(m.plans) && m.plans[i].Path != m.planPath {
			m = m.renderPlan(m.plans[i])
		}

	case TabJira:
		m.jiraDetail = nil
	}
	return m
}

// renderPlan renders one plan's markdown for the detail pane.
func (m Model) renderPlan(f plan.File) Model {
	m, m.planRendered = m.renderMarkdown(f.Body)
	m.planPath = f.Path
	m.scroll[TabPlans] = 0
	return m
}

// renderMarkdown runs body through the shared width-aware renderer, falling
// back to the raw text when glamour fails.
func (m Model) renderMarkdown(body string) (Model, string) {
	if m.mdRenderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(m.detailWidth()),
		)
		if err != nil {
			return m, body
		}
		m.mdRenderer = r
	}
	out, err := m.mdRenderer.Render(body)
	if err != nil {
		return m, body
	}
	return m, out
}
