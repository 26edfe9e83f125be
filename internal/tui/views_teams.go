package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/assoc/internal/tui/layout"
	"github.com/Dicklesworthstone/assoc/internal/tui/styles"
)

// teamsBody lays out the Teams tab: teams, members and tasks stacked on the
// left, the detail pane on the right. h/l moves focus through all four.
func (m Model) teamsBody(h int) string {
	left, right := layout.SplitProportions(m.width)
	focus := m.pane[TabTeams]

	if right == 0 {
		switch focus {
		case 0:
			return m.teamListPane(m.width, h, true)
		case 1:
			return m.memberPane(m.width, h, true)
		case 2:
			return m.taskPane(m.width, h, true)
		default:
			return m.detailPane(m.width, h, true)
		}
	}

	t1 := h / 3
	if t1 < 4 {
		t1 = 4
	}
	t2 := t1
	t3 := h - t1 - t2
	if t3 < 4 {
		t3 = 4
	}

	leftCol := lipgloss.JoinVertical(lipgloss.Left,
		m.teamListPane(left, t1, focus == 0),
		m.memberPane(left, t2, focus == 1),
		m.taskPane(left, t3, focus == 2),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, leftCol, m.detailPane(right, h, focus == 3))
}

// subPane renders a titled, windowed list keeping the cursor visible.
func (m Model) subPane(title string, lines []string, cursor, width, height int, focused bool) string {
	inner := height - 3 // borders and title
	if inner < 1 {
		inner = 1
	}
	offset := 0
	if cursor >= inner {
		offset = cursor - inner + 1
	}
	if offset > len(lines)-inner {
		offset = len(lines) - inner
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + inner
	if end > len(lines) {
		end = len(lines)
	}

	titleStyle := lipgloss.NewStyle().Foreground(m.theme.Team).Bold(true)
	content := titleStyle.Render(title)
	if len(lines) > 0 {
		content += "\n" + strings.Join(lines[offset:end], "\n")
	}
	return m.paneStyle(width, height, focused).Render(content)
}

func (m Model) teamListPane(width, height int, focused bool) string {
	sel, _, normal, dim := m.rowStyles()
	var lines []string
	for i, name := range m.teams {
		text := styles.PadTo(" "+name, width-2)
		if i == m.cursor[TabTeams] {
			lines = append(lines, sel.Render(text))
		} else {
			lines = append(lines, normal.Render(text))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, dim.Render(" no teams"))
	}
	return m.subPane(fmt.Sprintf("Teams (%d)", len(m.teams)), lines, m.cursor[TabTeams], width, height, focused)
}

func (m Model) memberPane(width, height int, focused bool) string {
	sel, _, normal, dim := m.rowStyles()
	var lines []string
	for i, member := range m.teamCfg.Members {
		status := m.statuses[member.Name]
		text := fmt.Sprintf(" %s %s (%s)", status.Icon(), member.Name, status.Label())
		text = styles.PadTo(text, width-2)
		if i == m.memberIdx {
			lines = append(lines, sel.Render(text))
		} else {
			lines = append(lines, normal.Render(text))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, dim.Render(" no members"))
	}
	return m.subPane(fmt.Sprintf("Members (%d)", len(m.teamCfg.Members)), lines, m.memberIdx, width, height, focused)
}

func (m Model) taskPane(width, height int, focused bool) string {
	sel, _, normal, dim := m.rowStyles()
	var lines []string
	for i, task := range m.tasks {
		owner := ""
		if task.Owner != "" {
			owner = " @" + task.Owner
		}
		text := fmt.Sprintf(" %s #%s %s%s", task.Status.Icon(), task.ID, task.Subject, owner)
		text = styles.PadTo(text, width-2)
		if i == m.taskIdx {
			lines = append(lines, sel.Render(text))
		} else {
			lines = append(lines, normal.Render(text))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, dim.Render(" no tasks"))
	}
	return m.subPane(fmt.Sprintf("Tasks (%d)", len(m.tasks)), lines, m.taskIdx, width, height, focused)
}

// teamDetailLines is the right pane: team summary, the selected task, and
// the lead's inbox (most recent first).
func (m Model) teamDetailLines(width int) []string {
	if m.loadedTeam == "" {
		return []string{"no team selected"}
	}
	dim := lipgloss.NewStyle().Foreground(m.theme.Overlay)
	title := lipgloss.NewStyle().Foreground(m.theme.Team).Bold(true)

	var lines []string
	add := func(s string) { lines = append(lines, styles.Wrap(s, width)) }

	lines = append(lines, title.Render(m.teamCfg.Name))
	if m.teamCfg.Description != "" {
		add(m.teamCfg.Description)
	}
	add("lead: " + m.teamCfg.Lead())
	lines = append(lines, "")

	if m.taskIdx >= 0 && m.taskIdx < len(m.tasks) {
		task := m.tasks[m.taskIdx]
		lines = append(lines, title.Render(fmt.Sprintf("Task #%s %s", task.ID, task.Status.Icon())))
		add(task.Subject)
		if task.Owner != "" {
			add("owner: " + task.Owner)
		}
		if len(task.BlockedBy) > 0 {
			add("blocked by: " + strings.Join(task.BlockedBy, ", "))
		}
		if task.Description != "" {
			lines = append(lines, strings.Split(styles.Wrap(task.Description, width), "\n")...)
		}
		lines = append(lines, "")
	}

	lines = append(lines, title.Render(fmt.Sprintf("Inbox: %s (%d)", m.teamCfg.Lead(), len(m.leadInbox))))
	for _, msg := range m.leadInbox {
		meta := msg.DisplayTime()
		if msg.From != "" {
			meta += " " + msg.From
		}
		lines = append(lines, dim.Render(strings.TrimSpace(meta)))
		lines = append(lines, strings.Split(styles.Wrap(msg.DisplayText(), width-2), "\n")...)
	}
	if len(m.leadInbox) == 0 {
		lines = append(lines, dim.Render("(empty)"))
	}
	return lines
}
