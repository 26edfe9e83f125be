package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/assoc/internal/browse"
	"github.com/Dicklesworthstone/assoc/internal/tui/styles"
)

// toggleGitBrowse flips the Git tab between the status view and the
// repository browser. Entering browse mode builds the tree; leaving it drops
// the loaded preview.
func (m Model) toggleGitBrowse() Model {
	if m.active != TabGit {
		return m
	}
	m.gitBrowse = !m.gitBrowse
	if m.gitBrowse {
		if m.fbExpanded == nil {
			m.fbExpanded = make(map[string]bool)
		}
		m.fbEntries = browse.BuildTree(m.opts.ProjectPath, m.fbExpanded)
	}
	m.cursor[TabGit] = 0
	m.scroll[TabGit] = 0
	m.pane[TabGit] = 0
	m.fbContent = nil
	m.fbPath = ""
	m.fbRendered = ""
	return m.snapCursor()
}

// browseSelect handles Enter on a tree row: directories toggle expansion,
// files load into the preview pane.
func (m Model) browseSelect() Model {
	i := m.cursor[TabGit]
	if i < 0 || i >= len(m.fbEntries) {
		return m
	}
	e := m.fbEntries[i]
	if e.Dir {
		if m.fbExpanded[e.Path] {
			delete(m.fbExpanded, e.Path)
		} else {
			m.fbExpanded[e.Path] = true
		}
		m.fbEntries = browse.BuildTree(m.opts.ProjectPath, m.fbExpanded)
		return m.snapCursor()
	}

	content, err := browse.ReadContent(e.Path)
	if err != nil {
		m.lastErr = err.Error()
		return m
	}
	m.fbContent = &content
	m.fbPath = e.Path
	m.fbRendered = ""
	if content.Kind == browse.ContentMarkdown {
		m, m.fbRendered = m.renderMarkdown(content.Body)
	}
	m.scroll[TabGit] = 0
	m.pane[TabGit] = 1
	return m
}

// browseBackspace collapses the selected directory, or jumps the cursor to
// the parent entry.
func (m Model) browseBackspace() Model {
	i := m.cursor[TabGit]
	if i < 0 || i >= len(m.fbEntries) {
		return m
	}
	e := m.fbEntries[i]
	if e.Dir && m.fbExpanded[e.Path] {
		delete(m.fbExpanded, e.Path)
		m.fbEntries = browse.BuildTree(m.opts.ProjectPath, m.fbExpanded)
		return m.snapCursor()
	}
	parent := filepath.Dir(e.Path)
	for j := i - 1; j >= 0; j-- {
		if m.fbEntries[j].Path == parent {
			m.cursor[TabGit] = j
			break
		}
	}
	return m
}

// browseListLines renders the tree pane with two-space depth indents and
// expansion arrows on directories.
func (m Model) browseListLines(width int) []string {
	sel, _, normal, dim := m.rowStyles()
	dirStyle := lipgloss.NewStyle().Foreground(m.theme.Blue)
	cur := m.cursor[TabGit]

	var lines []string
	for i, e := range m.fbEntries {
		marker := "  "
		if e.Dir {
			marker = "> "
			if m.fbExpanded[e.Path] {
				marker = "v "
			}
		}
		text := styles.PadTo(strings.Repeat("  ", e.Depth)+marker+e.Name, width)
		switch {
		case i == cur:
			lines = append(lines, sel.Render(text))
		case e.Dir:
			lines = append(lines, dirStyle.Render(text))
		default:
			lines = append(lines, normal.Render(text))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, dim.Render(" (empty)"))
	}
	return lines
}

// browseDetailLines renders the preview pane for the loaded file.
func (m Model) browseDetailLines(width int) []string {
	if m.fbContent == nil {
		return []string{"select a file to view"}
	}
	switch m.fbContent.Kind {
	case browse.ContentBinary:
		return []string{"binary file, cannot display"}
	case browse.ContentTooLarge:
		return []string{"file too large (>1MB)"}
	case browse.ContentMarkdown:
		return strings.Split(strings.TrimRight(m.fbRendered, "\n"), "\n")
	}

	num := lipgloss.NewStyle().Foreground(m.theme.Overlay)
	gutter := len(fmt.Sprintf("%d", len(m.fbContent.Lines)))
	lines := make([]string, 0, len(m.fbContent.Lines))
	for i, l := range m.fbContent.Lines {
		prefix := num.Render(fmt.Sprintf("%*d ", gutter, i+1))
		lines = append(lines, prefix+styles.FitLine(l, width-gutter-1))
	}
	return lines
}
