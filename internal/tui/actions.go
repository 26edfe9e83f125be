package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/assoc/internal/browse"
	"github.com/Dicklesworthstone/assoc/internal/events"
	"github.com/Dicklesworthstone/assoc/internal/plan"
	"github.com/Dicklesworthstone/assoc/internal/runner"
	"github.com/Dicklesworthstone/assoc/internal/session"
	"github.com/Dicklesworthstone/assoc/internal/todo"
	"github.com/Dicklesworthstone/assoc/internal/tracker"
	"github.com/Dicklesworthstone/assoc/internal/tui/layout"
)

// actionTimeout bounds one user-initiated tracker call.
const actionTimeout = tracker.DefaultFetchTimeout

// refreshActive re-requests the active tab's data. Tracker tabs go through
// the poller (in-flight fetches make this a no-op); local tabs reload from
// disk.
func (m Model) refreshActive() Model {
	switch m.active {
	case TabPRs, TabIssues, TabJira, TabLinear:
		if m.active == TabJira {
			m.jiraQuery = ""
		}
		if m.active == TabIssues {
			m.issuesState = "open"
		}
		if m.opts.Poller != nil {
			name, _ := tabIntegration(m.active)
			m.opts.Poller.Refresh(name)
		}
		return m
	case TabSessions:
		m = m.reloadSessions()
	case TabTeams:
		m = m.reloadTeamList()
		if m.loadedTeam != "" {
			m = m.reloadTeam(m.loadedTeam)
		}
	case TabTodos:
		m = m.reloadTodos()
	case TabGit:
		if m.gitBrowse {
			m.fbEntries = browse.BuildTree(m.opts.ProjectPath, m.fbExpanded)
			break
		}
		m = m.reloadGit()
		if m.diffPath != "" {
			m = m.loadDiffFor(m.diffPath)
		}
	case TabPlans:
		m = m.reloadPlans()
		m.planPath = ""
	case TabProcesses:
		m = m.reloadWorkers()
	}
	return m.snapCursor()
}

func tabIntegration(t Tab) (string, bool) {
	switch t {
	case TabPRs:
		return tracker.IntegrationGitHubPRs, true
	case TabIssues:
		return tracker.IntegrationGitHubIssues, true
	case TabJira:
		return tracker.IntegrationJira, true
	case TabLinear:
		return tracker.IntegrationLinear, true
	}
	return "", false
}

// confirmDelete opens the confirm modal for the selected artifact. Deletes
// are the only writes the dashboard makes to Claude state.
func (m Model) confirmDelete() Model {
	switch m.active {
	case TabSessions:
		if s, ok := m.selectedSession(); ok {
			m.modal = modal{
				kind:    modalConfirm,
				confirm: confirmDeleteSession,
				title:   fmt.Sprintf("Delete session %q?", layout.Truncate(s.Title(), 40)),
				index:   m.cursor[TabSessions],
			}
		}
	case TabTodos:
		if f, ok := m.selectedTodo(); ok {
			m.modal = modal{
				kind:    modalConfirm,
				confirm: confirmDeleteTodo,
				title:   fmt.Sprintf("Delete todo file %q?", f.DisplayName()),
				index:   m.cursor[TabTodos],
			}
		}
	case TabPlans:
		if f, ok := m.selectedPlan(); ok {
			m.modal = modal{
				kind:    modalConfirm,
				confirm: confirmDeletePlan,
				title:   fmt.Sprintf("Delete plan %q?", f.DisplayName()),
				index:   m.cursor[TabPlans],
			}
		}
	}
	return m
}

// performDelete executes a confirmed delete and reloads the domain. The
// watcher would reload it anyway; doing it here keeps the UI snappy when
// watching is degraded.
func (m Model) performDelete(kind confirmKind, index int) Model {
	var err error
	switch kind {
	case confirmDeleteSession:
		if index >= 0 && index < len(m.sessions) {
			err = session.Delete(m.sessions[index])
			if err == nil {
				events.EmitArtifactDelete(m.opts.ProjectPath, "session", m.sessions[index].ID)
				m = m.reloadSessions()
				if len(m.sessions) > 0 {
					m = m.openSession(0)
				} else {
					m.reader = nil
					m.items = nil
					m.loadedID = ""
				}
			}
		}
	case confirmDeleteTodo:
		if index >= 0 && index < len(m.todos) {
			err = todo.Delete(m.todos[index])
			if err == nil {
				events.EmitArtifactDelete(m.opts.ProjectPath, "todo", m.todos[index].Filename)
				m = m.reloadTodos()
			}
		}
	case confirmDeletePlan:
		if index >= 0 && index < len(m.plans) {
			err = plan.Delete(m.plans[index])
			if err == nil {
				events.EmitArtifactDelete(m.opts.ProjectPath, "plan", m.plans[index].Filename)
				m = m.reloadPlans()
				m.planPath = ""
			}
		}
	}
	if err != nil {
		m.lastErr = err.Error()
	}
	return m.snapCursor()
}

// toggleIssuesState switches the issues tab between open and closed issues.
// Closed issues are fetched once, outside the poll schedule.
func (m Model) toggleIssuesState() (tea.Model, tea.Cmd) {
	state := "closed"
	if m.issuesState == "closed" {
		state = "open"
	}
	repo := m.opts.IssuesRepo
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		issues, err := tracker.ListIssues(ctx, repo, state)
		return issuesMsg{state: state, issues: issues, err: err}
	}
}

// confirmIssueStateChange opens the close (or reopen) confirm for the
// selected GitHub issue.
func (m Model) confirmIssueStateChange() Model {
	item, ok := m.selectedIssue()
	if !ok {
		return m
	}
	kind := confirmCloseIssue
	verb := "Close"
	if m.issuesState == "closed" {
		kind = confirmReopenIssue
		verb = "Reopen"
	}
	m.modal = modal{
		kind:    modalConfirm,
		confirm: kind,
		title:   fmt.Sprintf("%s issue #%d?", verb, item.Number),
		index:   item.Number,
	}
	return m
}

// issueStateCmd closes or reopens a GitHub issue.
func (m Model) issueStateCmd(kind confirmKind, number int) tea.Cmd {
	repo := m.opts.IssuesRepo
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		var err error
		name := "close issue"
		if kind == confirmReopenIssue {
			name = "reopen issue"
			err = tracker.ReopenIssue(ctx, repo, number)
		} else {
			err = tracker.CloseIssue(ctx, repo, number)
		}
		return actionMsg{name: name, refresh: tracker.IntegrationGitHubIssues, err: err}
	}
}

// jiraTransitionCmd moves a Jira issue to a new status.
func jiraTransitionCmd(key, status string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		err := tracker.TransitionIssue(ctx, key, status)
		return actionMsg{name: "transition " + key, refresh: tracker.IntegrationJira, err: err}
	}
}

// jiraViewCmd fetches one issue's full detail.
func jiraViewCmd(key string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		issue, err := tracker.ViewIssue(ctx, key)
		return jiraDetailMsg{issue: issue, err: err}
	}
}

// jiraSearchCmd runs an ad-hoc key or label search.
func jiraSearchCmd(query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		issues, err := tracker.SearchIssues(ctx, query)
		return jiraSearchMsg{query: query, issues: issues, err: err}
	}
}

// selectCurrent handles Enter on the active tab.
func (m Model) selectCurrent() (tea.Model, tea.Cmd) {
	switch m.active {
	case TabSessions:
		i := m.cursor[TabSessions]
		if i >= 0 && i < len(m.sessions) {
			m.follow = false
			m = m.openSession(i)
		}
		return m, nil

	case TabTeams:
		if m.pane[TabTeams] == 0 {
			i := m.cursor[TabTeams]
			if i >= 0 && i < len(m.teams) {
				m = m.reloadTeam(m.teams[i])
			}
		}
		return m, nil

	case TabGit:
		if m.gitBrowse {
			return m.browseSelect(), nil
		}
		i := m.cursor[TabGit]
		if i >= 0 && i < len(m.gitItems) && m.gitItems[i].IsEntry {
			m = m.loadDiffFor(m.gitItems[i].Entry.Path)
		}
		return m, nil

	case TabPlans:
		if f, ok := m.selectedPlan(); ok {
			m = m.renderPlan(f)
		}
		return m, nil

	case TabJira:
		if issue, ok := m.selectedJira(); ok {
			return m, jiraViewCmd(issue.Key)
		}
		return m, nil

	case TabPRs, TabIssues, TabLinear:
		if url, ok := m.selectedURL(); ok {
			tracker.OpenURL(url)
		}
		return m, nil
	}
	return m, nil
}

// openSpawnModal prefills the worker prompt from the selected ticket.
func (m Model) openSpawnModal() Model {
	if m.opts.Supervisor == nil {
		return m
	}
	ticket, ok := m.selectedTicket()
	if !ok {
		return m
	}
	m.modal = m.newInputModal(inputSpawnPrompt, fmt.Sprintf("Spawn worker for %s (ctrl+s spawns)", ticket.Key), tracker.BuildPrompt(ticket))
	m.modal.ticket = ticket
	return m
}

// spawnWorker hands a prompt to the supervisor and jumps to the Processes
// tab so the new worker is immediately visible.
func (m Model) spawnWorker(ticket tracker.Ticket, prompt string) Model {
	id, err := m.opts.Supervisor.Spawn(ticket, prompt, m.opts.ProjectPath)
	if err != nil {
		m.lastErr = err.Error()
		return m
	}
	m.hasWorkers = true
	m = m.reloadWorkers()
	m.tabs = m.visibleTabs()
	m.active = TabProcesses
	for i, w := range m.workers {
		if w.ID == id {
			m.cursor[TabProcesses] = i
			break
		}
	}
	return m
}

// Selection helpers. All clamp on read; reloads never leave a stale index
// pointing past the end.

func (m Model) selectedSession() (session.Session, bool) {
	i := m.cursor[TabSessions]
	if i < 0 || i >= len(m.sessions) {
		return session.Session{}, false
	}
	return m.sessions[i], true
}

func (m Model) selectedTodo() (todo.File, bool) {
	i := m.cursor[TabTodos]
	if i < 0 || i >= len(m.todos) {
		return todo.File{}, false
	}
	return m.todos[i], true
}

func (m Model) selectedPlan() (plan.File, bool) {
	i := m.cursor[TabPlans]
	if i < 0 || i >= len(m.plans) {
		return plan.File{}, false
	}
	return m.plans[i], true
}

func (m Model) selectedPR() (*tracker.PullRequest, bool) {
	i := m.cursor[TabPRs]
	if i < 0 || i >= len(m.prItems) || m.prItems[i].PR == nil {
		return nil, false
	}
	return m.prItems[i].PR, true
}

func (m Model) selectedIssue() (*tracker.GitHubIssue, bool) {
	i := m.cursor[TabIssues]
	if i < 0 || i >= len(m.issueItems) || m.issueItems[i].Issue == nil {
		return nil, false
	}
	return m.issueItems[i].Issue, true
}

func (m Model) selectedJira() (*tracker.JiraIssue, bool) {
	i := m.cursor[TabJira]
	if i < 0 || i >= len(m.jiraItems) || m.jiraItems[i].Issue == nil {
		return nil, false
	}
	return m.jiraItems[i].Issue, true
}

func (m Model) selectedLinear() (*tracker.LinearIssue, bool) {
	i := m.cursor[TabLinear]
	if i < 0 || i >= len(m.linearItems) || m.linearItems[i].Issue == nil {
		return nil, false
	}
	return m.linearItems[i].Issue, true
}

func (m Model) selectedWorker() (runner.Worker, bool) {
	i := m.cursor[TabProcesses]
	if i < 0 || i >= len(m.workers) {
		return runner.Worker{}, false
	}
	return m.workers[i], true
}

// selectedTicket normalizes the active tab's selection for worker spawning.
func (m Model) selectedTicket() (tracker.Ticket, bool) {
	switch m.active {
	case TabPRs:
		if pr, ok := m.selectedPR(); ok {
			return tracker.TicketFromPR(*pr), true
		}
	case TabIssues:
		if issue, ok := m.selectedIssue(); ok {
			return tracker.TicketFromIssue(*issue), true
		}
	case TabJira:
		if issue, ok := m.selectedJira(); ok {
			return tracker.TicketFromJira(*issue), true
		}
	case TabLinear:
		if issue, ok := m.selectedLinear(); ok {
			return tracker.TicketFromLinear(*issue), true
		}
	}
	return tracker.Ticket{}, false
}

// selectedURL is the browseable URL of the active tab's selection.
func (m Model) selectedURL() (string, bool) {
	switch m.active {
	case TabPRs:
		if pr, ok := m.selectedPR(); ok {
			return pr.URL, pr.URL != ""
		}
	case TabIssues:
		if issue, ok := m.selectedIssue(); ok {
			return issue.URL, issue.URL != ""
		}
	case TabJira:
		if issue, ok := m.selectedJira(); ok {
			return issue.URL, issue.URL != ""
		}
	case TabLinear:
		if issue, ok := m.selectedLinear(); ok {
			return issue.URL, issue.URL != ""
		}
	}
	return "", false
}
