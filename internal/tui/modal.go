package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/assoc/internal/tracker"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalHelp
	modalConfirm
	modalInput
	modalPick
)

type confirmKind int

const (
	confirmDeleteSession confirmKind = iota
	confirmDeleteTodo
	confirmDeletePlan
	confirmCloseIssue
	confirmReopenIssue
)

type inputKind int

const (
	inputSpawnPrompt inputKind = iota
	inputIssueNew
	inputIssueEdit
	inputIssueComment
	inputJiraSearch
)

// modal is the single overlay; kind selects which fields matter.
type modal struct {
	kind  modalKind
	title string

	// Confirm.
	confirm confirmKind
	index   int

	// Input.
	input  inputKind
	ta     textarea.Model
	ticket tracker.Ticket
	number int

	// Pick list (Jira transitions).
	pick    []string
	pickIdx int
	pickKey string
}

// newInputModal builds a focused textarea modal sized to the terminal.
func (m Model) newInputModal(kind inputKind, title, initial string) modal {
	ta := textarea.New()
	ta.CharLimit = 0
	ta.SetValue(initial)
	ta.Focus()

	width := m.width - 10
	if width < 20 {
		width = 60
	}
	height := m.height / 2
	if height < 5 {
		height = 10
	}
	if kind == inputJiraSearch {
		height = 1
	}
	ta.SetWidth(width)
	ta.SetHeight(height)

	return modal{kind: modalInput, input: kind, title: title, ta: ta}
}

// openIssueModal opens the create, edit or comment editor for GitHub issues.
func (m Model) openIssueModal(kind inputKind, issue *tracker.GitHubIssue) Model {
	switch kind {
	case inputIssueNew:
		m.modal = m.newInputModal(kind, "New issue (first line is the title, ctrl+s submits)", "")
	case inputIssueEdit:
		initial := issue.Title + "\n\n" + issue.Body
		m.modal = m.newInputModal(kind, fmt.Sprintf("Edit issue #%d (first line is the title, ctrl+s submits)", issue.Number), initial)
		m.modal.number = issue.Number
	case inputIssueComment:
		m.modal = m.newInputModal(kind, fmt.Sprintf("Comment on issue #%d (ctrl+s submits)", issue.Number), "")
		m.modal.number = issue.Number
	}
	return m
}

// openJiraSearchModal opens the single-line key or label search.
func (m Model) openJiraSearchModal() Model {
	m.modal = m.newInputModal(inputJiraSearch, "Jira search (issue key or label, enter submits)", "")
	return m
}

// openTransitionModal lists the selected Jira issue's target statuses.
func (m Model) openTransitionModal() Model {
	issue, ok := m.selectedJira()
	if !ok {
		return m
	}
	options := tracker.StatusOptions(issue.StatusName)
	if len(options) == 0 {
		return m
	}
	m.modal = modal{
		kind:    modalPick,
		title:   fmt.Sprintf("Transition %s (current: %s)", issue.Key, issue.StatusName),
		pick:    options,
		pickKey: issue.Key,
	}
	return m
}

// handleModalKey routes keys while a modal is open.
func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal.kind {
	case modalHelp:
		m.modal = modal{}
		return m, nil

	case modalConfirm:
		switch msg.String() {
		case "y", "Y", "enter":
			mod := m.modal
			m.modal = modal{}
			switch mod.confirm {
			case confirmCloseIssue, confirmReopenIssue:
				return m, m.issueStateCmd(mod.confirm, mod.index)
			default:
				return m.performDelete(mod.confirm, mod.index), nil
			}
		case "n", "N", "esc", "q":
			m.modal = modal{}
		}
		return m, nil

	case modalPick:
		switch msg.String() {
		case "esc", "q":
			m.modal = modal{}
		case "j", "down":
			m.modal.pickIdx = clamp(m.modal.pickIdx+1, 0, len(m.modal.pick)-1)
		case "k", "up":
			m.modal.pickIdx = clamp(m.modal.pickIdx-1, 0, len(m.modal.pick)-1)
		case "enter":
			mod := m.modal
			m.modal = modal{}
			if len(mod.pick) > 0 {
				return m, jiraTransitionCmd(mod.pickKey, mod.pick[mod.pickIdx])
			}
		}
		return m, nil

	case modalInput:
		switch msg.Type {
		case tea.KeyEsc:
			m.modal = modal{}
			return m, nil
		case tea.KeyCtrlS:
			return m.submitInput()
		case tea.KeyEnter:
			if m.modal.input == inputJiraSearch {
				return m.submitInput()
			}
		}
		var cmd tea.Cmd
		m.modal.ta, cmd = m.modal.ta.Update(msg)
		return m, cmd
	}

	m.modal = modal{}
	return m, nil
}

// submitInput dispatches a completed input modal.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	mod := m.modal
	m.modal = modal{}
	text := strings.TrimSpace(mod.ta.Value())

	switch mod.input {
	case inputSpawnPrompt:
		if text == "" {
			return m, nil
		}
		return m.spawnWorker(mod.ticket, text), nil

	case inputJiraSearch:
		if text == "" {
			return m, nil
		}
		return m, jiraSearchCmd(text)

	case inputIssueNew:
		title, body := splitTitleBody(text)
		if title == "" {
			return m, nil
		}
		return m, createIssueCmd(m.opts.IssuesRepo, title, body)

	case inputIssueEdit:
		title, body := splitTitleBody(text)
		if title == "" {
			return m, nil
		}
		return m, editIssueCmd(m.opts.IssuesRepo, mod.number, title, body)

	case inputIssueComment:
		if text == "" {
			return m, nil
		}
		return m, commentIssueCmd(m.opts.IssuesRepo, mod.number, text)
	}
	return m, nil
}

// splitTitleBody separates an editor buffer into its first line and the
// rest.
func splitTitleBody(text string) (title, body string) {
	title, body, _ = strings.Cut(text, "\n")
	return strings.TrimSpace(title), strings.TrimSpace(body)
}

func createIssueCmd(repo, title, body string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		err := tracker.CreateIssue(ctx, repo, title, body)
		return actionMsg{name: "create issue", refresh: tracker.IntegrationGitHubIssues, err: err}
	}
}

func editIssueCmd(repo string, number int, title, body string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		err := tracker.EditIssue(ctx, repo, number, title, body)
		return actionMsg{name: "edit issue", refresh: tracker.IntegrationGitHubIssues, err: err}
	}
}

func commentIssueCmd(repo string, number int, body string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		err := tracker.CommentIssue(ctx, repo, number, body)
		return actionMsg{name: "comment issue", refresh: tracker.IntegrationGitHubIssues, err: err}
	}
}
