package tracker

import (
	"fmt"
	"strings"
)

// TicketSource identifies which tracker a ticket came from.
type TicketSource int

const (
	SourceGitHubPR TicketSource = iota
	SourceGitHubIssue
	SourceJira
	SourceLinear
)

func (s TicketSource) String() string {
	switch s {
	case SourceGitHubPR:
		return "GitHub PR"
	case SourceGitHubIssue:
		return "GitHub Issue"
	case SourceJira:
		return "Jira"
	case SourceLinear:
		return "Linear"
	}
	return "?"
}

// ShortLabel is the compact tag used in the process list.
func (s TicketSource) ShortLabel() string {
	switch s {
	case SourceGitHubPR:
		return "PR"
	case SourceGitHubIssue:
		return "GH"
	case SourceJira:
		return "JIRA"
	case SourceLinear:
		return "LIN"
	}
	return "?"
}

// Field is one labeled detail line in a ticket prompt.
type Field struct {
	Name  string
	Value string
}

// Ticket is the tracker-agnostic payload handed to a spawned worker.
type Ticket struct {
	Source      TicketSource
	Key         string
	Title       string
	Description string
	Labels      []string
	URL         string
	Extra       []Field
}

// TicketFromPR builds a ticket from a pull request.
func TicketFromPR(pr PullRequest) Ticket {
	extra := []Field{
		{"Branch", pr.HeadRefName},
		{"Base", pr.BaseRefName},
		{"Author", pr.Author.Login},
	}
	if pr.ReviewDecision != "" {
		extra = append(extra, Field{"Review Status", pr.ReviewDecision})
	}
	return Ticket{
		Source: SourceGitHubPR,
		Key:    fmt.Sprintf("#%d", pr.Number),
		Title:  pr.Title,
		Description: fmt.Sprintf(
			"GitHub PR #%d - %s\nBranch: %s -> %s\nAdditions: %d, Deletions: %d",
			pr.Number, pr.Title, pr.HeadRefName, pr.BaseRefName, pr.Additions, pr.Deletions),
		Labels: labelNames(pr.Labels),
		URL:    pr.URL,
		Extra:  extra,
	}
}

// TicketFromIssue builds a ticket from a GitHub issue.
func TicketFromIssue(issue GitHubIssue) Ticket {
	extra := []Field{
		{"Author", issue.Author.Login},
		{"State", issue.State},
	}
	if len(issue.Assignees) > 0 {
		logins := make([]string, len(issue.Assignees))
		for i, a := range issue.Assignees {
			logins[i] = a.Login
		}
		extra = append(extra, Field{"Assignees", strings.Join(logins, ", ")})
	}
	if issue.Milestone != nil {
		extra = append(extra, Field{"Milestone", issue.Milestone.Title})
	}
	return Ticket{
		Source:      SourceGitHubIssue,
		Key:         fmt.Sprintf("#%d", issue.Number),
		Title:       issue.Title,
		Description: issue.Body,
		Labels:      labelNames(issue.Labels),
		URL:         issue.URL,
		Extra:       extra,
	}
}

// TicketFromJira builds a ticket from a Jira issue.
func TicketFromJira(issue JiraIssue) Ticket {
	return Ticket{
		Source:      SourceJira,
		Key:         issue.Key,
		Title:       issue.Summary,
		Description: issue.Description,
		Labels:      issue.Labels,
		URL:         issue.URL,
		Extra: []Field{
			{"Status", issue.StatusName},
			{"Type", issue.IssueType},
			{"Priority", issue.Priority},
		},
	}
}

// TicketFromLinear builds a ticket from a Linear issue.
func TicketFromLinear(issue LinearIssue) Ticket {
	labels := make([]string, 0, len(issue.Labels.Nodes))
	for _, l := range issue.Labels.Nodes {
		labels = append(labels, l.Name)
	}
	return Ticket{
		Source:      SourceLinear,
		Key:         issue.Identifier,
		Title:       issue.Title,
		Description: issue.Description,
		Labels:      labels,
		URL:         issue.URL,
		Extra: []Field{
			{"Status", issue.State.Name},
			{"Priority", issue.PriorityLabel},
		},
	}
}

func labelNames(labels []Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	return names
}

// BuildPrompt renders the default worker prompt for a ticket: plan,
// implement, test, check, then open a PR.
func BuildPrompt(t Ticket) string {
	labels := "None"
	if len(t.Labels) > 0 {
		labels = strings.Join(t.Labels, ", ")
	}

	extra := ""
	if len(t.Extra) > 0 {
		var lines []string
		for _, f := range t.Extra {
			lines = append(lines, fmt.Sprintf("- %s: %s", f.Name, f.Value))
		}
		extra = "\n## Additional Details\n" + strings.Join(lines, "\n")
	}

	description := t.Description
	if description == "" {
		description = "No description provided."
	}

	return fmt.Sprintf(`You are implementing a feature/fix based on the following ticket.

## Ticket Information
- Source: %s
- Key: %s
- Title: %s
- Labels: %s
- URL: %s
%s

## Description
%s

## Instructions

Please complete this ticket by following these steps:

1. **Planning Phase**: Analyze the ticket requirements thoroughly. Read relevant code in the codebase to understand the current architecture. Create a detailed implementation plan.

2. **Implementation Phase**: Implement the changes described in the ticket. Follow existing code patterns and conventions. Write clean, well-structured code.

3. **Testing Phase**: Run the existing test suite and ensure all tests pass. If the changes warrant new tests, write them. Fix any test failures.

4. **Quality Check**: Run linters and formatters. Fix any warnings or errors. Ensure the code meets project standards.

5. **PR Creation**: Create a new git branch for this work. Commit all changes with clear, descriptive commit messages. Push the branch and create a pull request with a summary of the changes.

Work as a team: use subagents to run tasks in parallel where possible. For example, you might have one agent handle implementation while another prepares tests, or split implementation across multiple modules.

Do not ask for user input. Work autonomously to completion.`,
		t.Source, t.Key, t.Title, labels, t.URL, extra, description)
}
