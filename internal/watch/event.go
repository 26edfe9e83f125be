// Package watch turns raw filesystem notifications under the Claude home
// and the project's .git directory into debounced, classified change events.
package watch

import "fmt"

// Kind is the coalesced change kind for a path.
type Kind int

const (
	// Created is reported for paths first observed during the window.
	Created Kind = iota
	// Modified is reported for content changes.
	Modified
	// Removed is reported when the path is gone. A remove observed during
	// a window outranks any write in the same window.
	Removed
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Domain names the piece of dashboard state a change belongs to. The
// consumer reloads exactly one domain per event.
type Domain int

const (
	// DomainSessionIndex is the per-project sessions-index.json.
	DomainSessionIndex Domain = iota
	// DomainTranscript is a session transcript; ID is the session id.
	DomainTranscript
	// DomainSubagentTranscript is a subagent transcript; ID is the path.
	DomainSubagentTranscript
	// DomainTeamConfig is a team's config.json; ID is the team name.
	DomainTeamConfig
	// DomainTeamInbox is a file under a team's inboxes/; ID is the team name.
	DomainTeamInbox
	// DomainTaskFile is a task JSON under tasks/<team>/; ID is the team name.
	DomainTaskFile
	// DomainTodoFile is a todo JSON; ID is the path.
	DomainTodoFile
	// DomainPlanFile is a plan markdown file; ID is the path.
	DomainPlanFile
	// DomainGitStatus covers .git index/HEAD/refs changes; ID is empty.
	DomainGitStatus
)

func (d Domain) String() string {
	switch d {
	case DomainSessionIndex:
		return "session_index"
	case DomainTranscript:
		return "transcript"
	case DomainSubagentTranscript:
		return "subagent_transcript"
	case DomainTeamConfig:
		return "team_config"
	case DomainTeamInbox:
		return "team_inbox"
	case DomainTaskFile:
		return "task_file"
	case DomainTodoFile:
		return "todo_file"
	case DomainPlanFile:
		return "plan_file"
	case DomainGitStatus:
		return "git_status"
	}
	return "unknown"
}

// Event is one debounced, classified change.
type Event struct {
	Domain Domain
	// ID identifies the changed entity within the domain: a session id,
	// team name, or file path depending on the domain.
	ID   string
	Kind Kind
}

func (e Event) String() string {
	return fmt.Sprintf("%s(%s) %s", e.Domain, e.ID, e.Kind)
}
