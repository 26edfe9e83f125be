package tui

// Tab identifies one dashboard view.
type Tab int

const (
	TabSessions Tab = iota
	TabTeams
	TabTodos
	TabGit
	TabPlans
	TabPRs
	TabIssues
	TabJira
	TabLinear
	TabProcesses

	tabCount
)

// Title returns the tab bar label.
func (t Tab) Title() string {
	switch t {
	case TabSessions:
		return "Sessions"
	case TabTeams:
		return "Teams"
	case TabTodos:
		return "Todos"
	case TabGit:
		return "Git"
	case TabPlans:
		return "Plans"
	case TabPRs:
		return "PRs"
	case TabIssues:
		return "Issues"
	case TabJira:
		return "Jira"
	case TabLinear:
		return "Linear"
	case TabProcesses:
		return "Procs"
	}
	return "?"
}

// configKey is the [tabs] toggle name for local-state tabs, or "".
func (t Tab) configKey() string {
	switch t {
	case TabSessions:
		return "sessions"
	case TabTeams:
		return "teams"
	case TabTodos:
		return "todos"
	case TabGit:
		return "git"
	case TabPlans:
		return "plans"
	}
	return ""
}

// isTracker reports whether the tab is fed by the remote poller.
func (t Tab) isTracker() bool {
	switch t {
	case TabPRs, TabIssues, TabJira, TabLinear:
		return true
	}
	return false
}

// visibleTabs computes the tab bar for the current configuration and state.
// Local tabs honor the config toggles; tracker tabs appear only when their
// CLI or credentials were detected; Processes appears once a worker exists.
func (m Model) visibleTabs() []Tab {
	var tabs []Tab
	for t := TabSessions; t < tabCount; t++ {
		switch {
		case t.configKey() != "":
			if m.opts.Config.TabEnabled(t.configKey()) {
				tabs = append(tabs, t)
			}
		case t == TabPRs:
			if m.opts.Repo != "" {
				tabs = append(tabs, t)
			}
		case t == TabIssues:
			if m.opts.IssuesRepo != "" {
				tabs = append(tabs, t)
			}
		case t == TabJira:
			if m.opts.JiraAvailable {
				tabs = append(tabs, t)
			}
		case t == TabLinear:
			if m.opts.Linear != nil {
				tabs = append(tabs, t)
			}
		case t == TabProcesses:
			if m.hasWorkers {
				tabs = append(tabs, t)
			}
		}
	}
	return tabs
}
