package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/assoc/internal/tui/layout"
	"github.com/Dicklesworthstone/assoc/internal/tui/styles"
)

// pinnedBottom marks a detail scroll stuck to the newest content.
const pinnedBottom = -1

// View renders the full frame: tab bar, body, status line.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "starting..."
	}
	var b strings.Builder
	b.WriteString(m.tabBar())
	b.WriteString("\n")
	b.WriteString(styles.Divider(m.width, m.theme.Surface1))
	b.WriteString("\n")
	b.WriteString(m.bodyView())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) bodyHeight() int {
	h := m.height - 3 // tab bar, divider, status line
	if h < 1 {
		h = 1
	}
	return h
}

// detailWidth is the detail pane's inner text width.
func (m Model) detailWidth() int {
	if m.width <= 0 {
		return 78
	}
	_, right := layout.SplitProportions(m.width)
	if right == 0 {
		right = m.width
	}
	w := right - 2
	if w < 10 {
		w = 10
	}
	return w
}

func (m Model) detailHeight() int {
	h := m.bodyHeight() - 2
	if h < 1 {
		h = 1
	}
	return h
}

// maxScroll is the highest valid detail scroll offset.
func (m Model) maxScroll() int {
	n := len(m.detailLines()) - m.detailHeight()
	if n < 0 {
		return 0
	}
	return n
}

// tabBar renders the numbered tab strip.
func (m Model) tabBar() string {
	activeStyle := lipgloss.NewStyle().
		Foreground(m.theme.Base).
		Background(m.theme.Primary).
		Bold(true).
		Padding(0, 1)
	idleStyle := lipgloss.NewStyle().
		Foreground(m.theme.Subtext).
		Padding(0, 1)

	parts := make([]string, 0, len(m.tabs))
	for i, t := range m.tabs {
		label := fmt.Sprintf("%d:%s", i+1, t.Title())
		if t == TabProcesses && m.runningWorkers() > 0 {
			label = fmt.Sprintf("%s(%d)", label, m.runningWorkers())
		}
		if t == m.active {
			parts = append(parts, activeStyle.Render(label))
		} else {
			parts = append(parts, idleStyle.Render(label))
		}
	}
	return styles.FitLine(lipgloss.JoinHorizontal(lipgloss.Top, parts...), m.width)
}

func (m Model) runningWorkers() int {
	n := 0
	for _, w := range m.workers {
		if !w.State.Terminal() {
			n++
		}
	}
	return n
}

// bodyView renders the active tab, or the modal overlay.
func (m Model) bodyView() string {
	if m.modal.kind != modalNone {
		return m.modalView()
	}

	h := m.bodyHeight()
	left, right := layout.SplitProportions(m.width)

	if m.active == TabTeams {
		return m.teamsBody(h)
	}

	if right == 0 {
		// Narrow terminal: one pane at a time, h/l switches.
		if m.detailFocused() {
			return m.detailPane(m.width, h, true)
		}
		return m.listPane(m.width, h, true)
	}

	listFocused := m.pane[m.active] == 0
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.listPane(left, h, listFocused),
		m.detailPane(right, h, !listFocused),
	)
}

// paneStyle frames one pane; the focused pane gets the accent border.
func (m Model) paneStyle(width, height int, focused bool) lipgloss.Style {
	border := m.theme.Surface1
	if focused {
		border = m.theme.Primary
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width - 2).
		Height(height - 2)
}

// listPane renders the active tab's list with the cursor kept in view.
func (m Model) listPane(width, height int, focused bool) string {
	inner := height - 2
	lines := m.listLines(width - 2)
	cur := m.cursor[m.active]

	offset := 0
	if cur >= inner {
		offset = cur - inner + 1
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
	return m.paneStyle(width, height, focused).Render(strings.Join(lines[offset:end], "\n"))
}

// detailPane renders the scrolling detail content.
func (m Model) detailPane(width, height int, focused bool) string {
	inner := height - 2
	lines := m.detailLines()

	offset := m.scroll[m.active]
	if offset == pinnedBottom || (m.active == TabSessions && m.follow) {
		offset = len(lines) - inner
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
	return m.paneStyle(width, height, focused).Render(strings.Join(lines[offset:end], "\n"))
}

// statusLine summarizes health: errors, watch state, workers, last update.
func (m Model) statusLine() string {
	var parts []string

	if m.lastErr != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(m.theme.Error).Render("! "+m.lastErr))
	}
	if m.watchDegraded {
		msg := "watch degraded"
		if len(m.watchMissing) > 0 {
			msg += ": " + strings.Join(m.watchMissing, ", ")
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(m.theme.Warning).Render(msg))
	}
	if err := m.trackerErr[m.active]; err != "" && m.active.isTracker() {
		parts = append(parts, lipgloss.NewStyle().Foreground(m.theme.Warning).Render(m.active.Title()+": "+err))
	}
	if m.follow && m.active == TabSessions {
		parts = append(parts, lipgloss.NewStyle().Foreground(m.theme.Success).Render("FOLLOW"))
	}
	if n := m.runningWorkers(); n > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(m.theme.Worker).Render(fmt.Sprintf("%d running", n)))
	}

	dim := lipgloss.NewStyle().Foreground(m.theme.Overlay)
	parts = append(parts, dim.Render("updated "+m.lastUpdate.Format("15:04:05")))
	parts = append(parts, dim.Render("? help  q quit"))

	return styles.FitLine(strings.Join(parts, dim.Render("  |  ")), m.width)
}

// modalView centers the open modal over the body area.
func (m Model) modalView() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Primary).
		Padding(0, 1)
	title := lipgloss.NewStyle().Foreground(m.theme.Primary).Bold(true)

	var content string
	switch m.modal.kind {
	case modalHelp:
		content = title.Render("Keys") + "\n\n" + m.helpText()

	case modalConfirm:
		content = title.Render(m.modal.title) + "\n\n" + "y confirm    n cancel"

	case modalPick:
		var b strings.Builder
		b.WriteString(title.Render(m.modal.title))
		b.WriteString("\n\n")
		for i, opt := range m.modal.pick {
			if i == m.modal.pickIdx {
				b.WriteString(lipgloss.NewStyle().
					Foreground(m.theme.Base).
					Background(m.theme.Primary).
					Render(" " + opt + " "))
			} else {
				b.WriteString(" " + opt)
			}
			b.WriteString("\n")
		}
		b.WriteString("\nenter apply    esc cancel")
		content = b.String()

	case modalInput:
		content = title.Render(m.modal.title) + "\n\n" + m.modal.ta.View()
	}

	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, box.Render(content))
}

func (m Model) helpText() string {
	lines := []string{
		"tab / shift+tab   cycle tabs        1-9   jump to tab",
		"j/k               move              h/l   switch pane",
		"g/G               top / bottom      enter select / open",
		"f                 follow newest     s     cycle subagents",
		"r                 refresh           o     open in browser",
		"d                 delete artifact   p     spawn worker from ticket",
		"x                 kill worker       D     dismiss finished worker",
		"",
		"Git tab:     b browse files   backspace collapse / to parent",
		"Issues tab:  n new   e edit   c close/reopen   C comment   v open/closed",
		"Jira tab:    t transition   / search",
	}
	return strings.Join(lines, "\n")
}
