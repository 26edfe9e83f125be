package team

// AgentStatus is a member's derived working state. It comes from the lead's
// inbox (what the agent last reported) and task ownership, since agents
// have no status file of their own.
type AgentStatus int

const (
	// StatusStarting: in the config but never heard from.
	StatusStarting AgentStatus = iota
	// StatusWorking: owns an in-progress task, or last message is routine.
	StatusWorking
	// StatusIdle: last message from the agent is an idle notification.
	StatusIdle
	// StatusShutDown: last message from the agent approves shutdown.
	StatusShutDown
)

// Icon returns the member-list marker.
func (s AgentStatus) Icon() string {
	switch s {
	case StatusStarting:
		return "[~]"
	case StatusWorking:
		return "[>]"
	case StatusIdle:
		return "[z]"
	case StatusShutDown:
		return "[x]"
	}
	return "[?]"
}

// Label returns the human-readable status name.
func (s AgentStatus) Label() string {
	switch s {
	case StatusStarting:
		return "starting"
	case StatusWorking:
		return "working"
	case StatusIdle:
		return "idle"
	case StatusShutDown:
		return "shut down"
	}
	return "unknown"
}

// DeriveStatus computes a member's status from the lead's inbox (sorted
// most recent first) and the team's task list.
func DeriveStatus(memberName string, leadInbox []InboxMessage, tasks []Task) AgentStatus {
	var latest *InboxMessage
	for i := range leadInbox {
		if leadInbox[i].From == memberName {
			latest = &leadInbox[i]
			break
		}
	}

	if latest != nil {
		switch latest.Type() {
		case "shutdown_approved":
			return StatusShutDown
		case "idle_notification":
			return StatusIdle
		}
	}

	for _, task := range tasks {
		if task.Owner == memberName && task.Status == TaskInProgress {
			return StatusWorking
		}
	}

	if latest == nil {
		return StatusStarting
	}
	return StatusWorking
}

// DeriveAllStatuses computes statuses for every member name.
func DeriveAllStatuses(memberNames []string, leadInbox []InboxMessage, tasks []Task) map[string]AgentStatus {
	statuses := make(map[string]AgentStatus, len(memberNames))
	for _, name := range memberNames {
		statuses[name] = DeriveStatus(name, leadInbox, tasks)
	}
	return statuses
}
