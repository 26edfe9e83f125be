package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/assoc/internal/gitstatus"
	"github.com/Dicklesworthstone/assoc/internal/runner"
	"github.com/Dicklesworthstone/assoc/internal/transcript"
	"github.com/Dicklesworthstone/assoc/internal/tui/layout"
	"github.com/Dicklesworthstone/assoc/internal/tui/styles"
)

// listRows reports the active tab's row count and which rows are selectable
// (section headers are not).
func (m Model) listRows() (int, func(int) bool) {
	all := func(int) bool { return true }
	switch m.active {
	case TabSessions:
		return len(m.sessions), all
	case TabTeams:
		return len(m.teams), all
	case TabTodos:
		return len(m.todos), all
	case TabGit:
		if m.gitBrowse {
			return len(m.fbEntries), all
		}
		items := m.gitItems
		return len(items), func(i int) bool { return items[i].IsEntry }
	case TabPlans:
		return len(m.plans), all
	case TabPRs:
		items := m.prItems
		return len(items), func(i int) bool { return items[i].PR != nil }
	case TabIssues:
		items := m.issueItems
		return len(items), func(i int) bool { return items[i].Issue != nil }
	case TabJira:
		items := m.jiraItems
		return len(items), func(i int) bool { return items[i].Issue != nil }
	case TabLinear:
		items := m.linearItems
		return len(items), func(i int) bool { return items[i].Issue != nil }
	case TabProcesses:
		return len(m.workers), all
	}
	return 0, all
}

func (m Model) rowStyles() (selected, header, normal, dim lipgloss.Style) {
	selected = lipgloss.NewStyle().Foreground(m.theme.Base).Background(m.theme.Primary).Bold(true)
	header = lipgloss.NewStyle().Foreground(m.theme.Subtext).Bold(true)
	normal = lipgloss.NewStyle().Foreground(m.theme.Text)
	dim = lipgloss.NewStyle().Foreground(m.theme.Overlay)
	return
}

// listLines renders the active tab's list rows at the given inner width.
func (m Model) listLines(width int) []string {
	sel, header, normal, dim := m.rowStyles()
	cur := m.cursor[m.active]

	row := func(i int, text string) string {
		text = styles.PadTo(text, width)
		if i == cur {
			return sel.Render(text)
		}
		return normal.Render(text)
	}

	var lines []string
	switch m.active {
	case TabSessions:
		for i, s := range m.sessions {
			marker := "  "
			if s.ID == m.loadedID {
				marker = "> "
			}
			meta := fmt.Sprintf(" %s %dm", s.Modified.Format("01/02 15:04"), s.MessageCount)
			text := marker + layout.Truncate(s.Title(), width-len(meta)-2) + meta
			lines = append(lines, row(i, text))
		}

	case TabTeams:
		for i, name := range m.teams {
			lines = append(lines, row(i, " "+name))
		}

	case TabTodos:
		for i, f := range m.todos {
			text := fmt.Sprintf(" %s  %d/%d", f.DisplayName(), f.Done(), len(f.Items))
			lines = append(lines, row(i, text))
		}

	case TabGit:
		if m.gitBrowse {
			return m.browseListLines(width)
		}
		for i, item := range m.gitItems {
			if !item.IsEntry {
				lines = append(lines, header.Render(styles.PadTo(item.Header, width)))
				continue
			}
			text := fmt.Sprintf(" %c %s", item.Entry.StatusChar, item.Entry.Path)
			lines = append(lines, row(i, text))
		}
		if len(m.gitItems) == 0 {
			lines = append(lines, dim.Render(" clean worktree"))
		}

	case TabPlans:
		for i, f := range m.plans {
			meta := " " + f.Modified.Format("01/02 15:04")
			text := " " + layout.Truncate(f.Title, width-len(meta)-1) + meta
			lines = append(lines, row(i, text))
		}

	case TabPRs:
		for i, item := range m.prItems {
			if item.PR == nil {
				lines = append(lines, header.Render(styles.PadTo(item.Header, width)))
				continue
			}
			pr := item.PR
			draft := ""
			if pr.IsDraft {
				draft = " [draft]"
			}
			text := fmt.Sprintf(" #%-5d %s %-2s%s %s", pr.Number, pr.ReviewIcon(), pr.SizeLabel(), draft, pr.Title)
			lines = append(lines, row(i, text))
		}

	case TabIssues:
		for i, item := range m.issueItems {
			if item.Issue == nil {
				lines = append(lines, header.Render(styles.PadTo(item.Header, width)))
				continue
			}
			text := fmt.Sprintf(" #%-5d %s", item.Issue.Number, item.Issue.Title)
			lines = append(lines, row(i, text))
		}

	case TabJira:
		for i, item := range m.jiraItems {
			if item.Issue == nil {
				h := item.HeaderName
				if item.HeaderCategory != "" && item.HeaderCategory != h {
					h += " (" + item.HeaderCategory + ")"
				}
				lines = append(lines, header.Render(styles.PadTo(h, width)))
				continue
			}
			text := fmt.Sprintf(" %-10s %s", item.Issue.Key, item.Issue.Summary)
			lines = append(lines, row(i, text))
		}

	case TabLinear:
		for i, item := range m.linearItems {
			if item.Issue == nil {
				lines = append(lines, header.Render(styles.PadTo(item.HeaderName, width)))
				continue
			}
			text := fmt.Sprintf(" %-8s %s %s", item.Issue.Identifier, item.Issue.PriorityIcon(), item.Issue.Title)
			lines = append(lines, row(i, text))
		}

	case TabProcesses:
		for i, w := range m.workers {
			text := fmt.Sprintf("%s%-12s %s", w.StatusIcon(), layout.Truncate(w.Label, 12), w.StatusText())
			lines = append(lines, row(i, text))
		}
	}

	if len(lines) == 0 {
		lines = append(lines, dim.Render(" (empty)"))
	}
	return lines
}

// detailLines renders the active tab's detail pane content.
func (m Model) detailLines() []string {
	width := m.detailWidth()
	switch m.active {
	case TabSessions:
		return m.transcriptLines(width)
	case TabTeams:
		return m.teamDetailLines(width)
	case TabTodos:
		return m.todoDetailLines(width)
	case TabGit:
		if m.gitBrowse {
			return m.browseDetailLines(width)
		}
		return m.diffLines()
	case TabPlans:
		if m.planRendered == "" {
			return []string{"select a plan"}
		}
		return strings.Split(strings.TrimRight(m.planRendered, "\n"), "\n")
	case TabPRs:
		return m.prDetailLines(width)
	case TabIssues:
		return m.issueDetailLines(width)
	case TabJira:
		return m.jiraDetailLines(width)
	case TabLinear:
		return m.linearDetailLines(width)
	case TabProcesses:
		return m.workerDetailLines(width)
	}
	return nil
}

// transcriptLines formats the loaded transcript with timestamp and kind
// prefixes, wrapping long entries under the prefix.
func (m Model) transcriptLines(width int) []string {
	var lines []string
	dim := lipgloss.NewStyle().Foreground(m.theme.Overlay)

	if m.loadedID != "" {
		head := m.loadedID
		if m.subagentIdx >= 0 && m.subagentIdx < len(m.subagents) {
			head += "  [subagent " + m.subagents[m.subagentIdx].AgentID + "]"
		} else if len(m.subagents) > 0 {
			head += fmt.Sprintf("  [%d subagents, s to view]", len(m.subagents))
		}
		lines = append(lines, dim.Render(styles.FitLine(head, width)), "")
	}

	const prefixWidth = 14 // "15:04:05 KIND "
	indent := strings.Repeat(" ", prefixWidth)
	body := width - prefixWidth
	if body < 10 {
		body = 10
	}

	for _, item := range m.items {
		ts := "        "
		if !item.Timestamp.IsZero() {
			ts = item.Timestamp.Format("15:04:05")
		}
		prefix := ts + " " + item.Kind.Label() + " "
		style := m.kindStyle(item.Kind)
		for j, l := range strings.Split(styles.Wrap(item.Text, body), "\n") {
			if j == 0 {
				lines = append(lines, style.Render(prefix)+l)
			} else {
				lines = append(lines, indent+l)
			}
		}
	}

	if m.reader != nil && m.reader.ParseSkips() > 0 {
		lines = append(lines, "", dim.Render(fmt.Sprintf("(%d malformed lines skipped)", m.reader.ParseSkips())))
	}
	if len(lines) == 0 {
		lines = append(lines, "no session loaded")
	}
	return lines
}

func (m Model) kindStyle(k transcript.ItemKind) lipgloss.Style {
	switch k {
	case transcript.KindUser:
		return lipgloss.NewStyle().Foreground(m.theme.Green).Bold(true)
	case transcript.KindAssistant:
		return lipgloss.NewStyle().Foreground(m.theme.Session)
	case transcript.KindToolUse:
		return lipgloss.NewStyle().Foreground(m.theme.Blue)
	case transcript.KindSystem:
		return lipgloss.NewStyle().Foreground(m.theme.Yellow)
	default:
		return lipgloss.NewStyle().Foreground(m.theme.Overlay)
	}
}

func (m Model) todoDetailLines(width int) []string {
	f, ok := m.selectedTodo()
	if !ok {
		return []string{"no todo files"}
	}
	var lines []string
	for _, item := range f.Items {
		for j, l := range strings.Split(styles.Wrap(item.DisplayText(), width-4), "\n") {
			if j == 0 {
				lines = append(lines, item.StatusIcon()+" "+l)
			} else {
				lines = append(lines, "    "+l)
			}
		}
	}
	return lines
}

func (m Model) diffLines() []string {
	if m.diffPath == "" {
		return []string{"select a file"}
	}
	add := lipgloss.NewStyle().Foreground(m.theme.Success)
	del := lipgloss.NewStyle().Foreground(m.theme.Error)
	hunk := lipgloss.NewStyle().Foreground(m.theme.Blue)
	head := lipgloss.NewStyle().Foreground(m.theme.Subtext).Bold(true)

	lines := make([]string, 0, len(m.diff))
	for _, l := range m.diff {
		switch l.Kind {
		case gitstatus.LineAdd:
			lines = append(lines, add.Render(l.Text))
		case gitstatus.LineRemove:
			lines = append(lines, del.Render(l.Text))
		case gitstatus.LineHunk:
			lines = append(lines, hunk.Render(l.Text))
		case gitstatus.LineHeader:
			lines = append(lines, head.Render(l.Text))
		default:
			lines = append(lines, l.Text)
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "no diff")
	}
	return lines
}

func (m Model) prDetailLines(width int) []string {
	pr, ok := m.selectedPR()
	if !ok {
		return []string{"no pull request selected"}
	}
	var lines []string
	add := func(s string) { lines = append(lines, styles.Wrap(s, width)) }

	add(fmt.Sprintf("#%d %s", pr.Number, pr.Title))
	lines = append(lines, "")
	add("author:    " + pr.Author.Login)
	add(fmt.Sprintf("branch:    %s -> %s", pr.HeadRefName, pr.BaseRefName))
	add(fmt.Sprintf("size:      %s (+%d -%d)", pr.SizeLabel(), pr.Additions, pr.Deletions))
	review := pr.ReviewDecision
	if review == "" {
		review = "none"
	}
	add("review:    " + review)
	if pr.IsDraft {
		add("draft:     yes")
	}
	if len(pr.Labels) > 0 {
		names := make([]string, len(pr.Labels))
		for i, l := range pr.Labels {
			names[i] = l.Name
		}
		add("labels:    " + strings.Join(names, ", "))
	}
	if len(pr.Assignees) > 0 {
		names := make([]string, len(pr.Assignees))
		for i, a := range pr.Assignees {
			names[i] = a.Login
		}
		add("assignees: " + strings.Join(names, ", "))
	}
	add("updated:   " + pr.UpdatedAt)
	add("url:       " + pr.URL)
	return lines
}

func (m Model) issueDetailLines(width int) []string {
	issue, ok := m.selectedIssue()
	if !ok {
		return []string{"no issue selected"}
	}
	var lines []string
	add := func(s string) { lines = append(lines, styles.Wrap(s, width)) }

	add(fmt.Sprintf("#%d %s", issue.Number, issue.Title))
	lines = append(lines, "")
	add("author:    " + issue.Author.Login)
	add("state:     " + issue.State)
	if len(issue.Assignees) > 0 {
		names := make([]string, len(issue.Assignees))
		for i, a := range issue.Assignees {
			names[i] = a.Login
		}
		add("assignees: " + strings.Join(names, ", "))
	}
	if len(issue.Labels) > 0 {
		names := make([]string, len(issue.Labels))
		for i, l := range issue.Labels {
			names[i] = l.Name
		}
		add("labels:    " + strings.Join(names, ", "))
	}
	if issue.Milestone != nil {
		add("milestone: " + issue.Milestone.Title)
	}
	add("updated:   " + issue.UpdatedAt)
	add("url:       " + issue.URL)

	if issue.Body != "" {
		lines = append(lines, "")
		lines = append(lines, strings.Split(styles.Wrap(issue.Body, width), "\n")...)
	}
	if n := len(issue.Comments); n > 0 {
		lines = append(lines, "", fmt.Sprintf("--- %d comments ---", n))
		start := n - 3
		if start < 0 {
			start = 0
		}
		for _, c := range issue.Comments[start:] {
			lines = append(lines, "", c.Author.Login+" ("+c.CreatedAt+"):")
			lines = append(lines, strings.Split(styles.Wrap(c.Body, width), "\n")...)
		}
	}
	return lines
}

func (m Model) jiraDetailLines(width int) []string {
	issue, ok := m.selectedJira()
	if !ok {
		return []string{"no issue selected"}
	}
	// A full view fetch replaces the list entry's sparse fields.
	if m.jiraDetail != nil && m.jiraDetail.Key == issue.Key {
		issue = m.jiraDetail
	}

	var lines []string
	add := func(s string) { lines = append(lines, styles.Wrap(s, width)) }

	add(issue.Key + " " + issue.Summary)
	lines = append(lines, "")
	status := issue.StatusName
	if issue.StatusCategory != "" {
		status += " (" + issue.StatusCategory + ")"
	}
	add("status:   " + status)
	if issue.IssueType != "" {
		add("type:     " + issue.IssueType)
	}
	if issue.Priority != "" {
		add("priority: " + issue.Priority)
	}
	if len(issue.Labels) > 0 {
		add("labels:   " + strings.Join(issue.Labels, ", "))
	}
	if issue.URL != "" {
		add("url:      " + issue.URL)
	}
	if issue.Description != "" {
		lines = append(lines, "")
		lines = append(lines, strings.Split(styles.Wrap(issue.Description, width), "\n")...)
	} else if m.jiraDetail == nil {
		lines = append(lines, "", "(enter loads the full description)")
	}
	return lines
}

func (m Model) linearDetailLines(width int) []string {
	issue, ok := m.selectedLinear()
	if !ok {
		return []string{"no issue selected"}
	}
	var lines []string
	add := func(s string) { lines = append(lines, styles.Wrap(s, width)) }

	add(issue.Identifier + " " + issue.Title)
	lines = append(lines, "")
	add(fmt.Sprintf("state:    %s (%s)", issue.State.Name, issue.State.Type))
	if issue.PriorityLabel != "" {
		add(fmt.Sprintf("priority: %s %s", issue.PriorityIcon(), issue.PriorityLabel))
	}
	if issue.Team != nil {
		add("team:     " + issue.Team.Name)
	}
	if issue.Assignee != nil {
		add("assignee: " + issue.Assignee.Name)
	}
	if len(issue.Labels.Nodes) > 0 {
		names := make([]string, len(issue.Labels.Nodes))
		for i, l := range issue.Labels.Nodes {
			names[i] = l.Name
		}
		add("labels:   " + strings.Join(names, ", "))
	}
	add("updated:  " + issue.UpdatedAt)
	add("url:      " + issue.URL)
	if issue.Description != "" {
		lines = append(lines, "")
		lines = append(lines, strings.Split(styles.Wrap(issue.Description, width), "\n")...)
	}
	return lines
}

func (m Model) workerDetailLines(width int) []string {
	w, ok := m.selectedWorker()
	if !ok {
		return []string{"no workers"}
	}
	dim := lipgloss.NewStyle().Foreground(m.theme.Overlay)
	var lines []string
	add := func(s string) { lines = append(lines, styles.Wrap(s, width)) }

	add(fmt.Sprintf("%s  %s", w.Label, w.Title))
	add("status:  " + w.StatusText())
	if w.SessionID != "" {
		add("session: " + w.SessionID)
	}
	add("source:  " + w.Source.String())
	lines = append(lines, "")

	if len(w.Progress) > 0 {
		lines = append(lines, "Progress:")
		for _, p := range w.Progress {
			marker := "  . "
			switch p.Kind {
			case runner.ProgressSession:
				marker = "  @ "
			case runner.ProgressTool:
				marker = "  > "
			}
			add(marker + p.Text)
		}
		lines = append(lines, "")
	}

	if len(w.Errors) > 0 {
		lines = append(lines, "Stderr:")
		start := len(w.Errors) - 5
		if start < 0 {
			start = 0
		}
		for _, e := range w.Errors[start:] {
			add("  " + e)
		}
		lines = append(lines, "")
	}

	if len(w.Output) > 0 {
		lines = append(lines, dim.Render("Raw output (tail):"))
		start := len(w.Output) - 30
		if start < 0 {
			start = 0
		}
		for _, o := range w.Output[start:] {
			lines = append(lines, dim.Render(styles.FitLine("  "+o, width)))
		}
	}
	return lines
}
