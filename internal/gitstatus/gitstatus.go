// Package gitstatus reads the project's git state through the porcelain
// interface and renders per-file diffs for the git tab.
package gitstatus

import (
	"fmt"
	"os/exec"
	"strings"
)

// Section is the porcelain column a file change belongs to.
type Section int

const (
	Staged Section = iota
	Unstaged
	Untracked
)

func (s Section) String() string {
	switch s {
	case Staged:
		return "Staged"
	case Unstaged:
		return "Changes"
	case Untracked:
		return "Untracked"
	}
	return "?"
}

// Entry is one changed file in one section. A file with both staged and
// unstaged changes appears twice.
type Entry struct {
	Path       string
	Section    Section
	StatusChar byte
}

// Status is the parsed porcelain output.
type Status struct {
	Staged    []Entry
	Unstaged  []Entry
	Untracked []Entry
}

// IsEmpty reports a clean worktree.
func (s Status) IsEmpty() bool {
	return len(s.Staged) == 0 && len(s.Unstaged) == 0 && len(s.Untracked) == 0
}

// TotalFiles counts entries across all sections.
func (s Status) TotalFiles() int {
	return len(s.Staged) + len(s.Unstaged) + len(s.Untracked)
}

// FlatItem is a row of the git file list: a section header or a file.
type FlatItem struct {
	Header  string
	Entry   Entry
	IsEntry bool
}

// FlatList renders the three sections into one selectable list.
func (s Status) FlatList() []FlatItem {
	var items []FlatItem
	appendSection := func(name string, entries []Entry) {
		if len(entries) == 0 {
			return
		}
		items = append(items, FlatItem{Header: fmt.Sprintf("%s (%d)", name, len(entries))})
		for _, e := range entries {
			items = append(items, FlatItem{Entry: e, IsEntry: true})
		}
	}
	appendSection("Staged", s.Staged)
	appendSection("Changes", s.Unstaged)
	appendSection("Untracked", s.Untracked)
	return items
}

// Load runs `git status --porcelain -z` in cwd. A missing git binary or a
// non-repo directory yields an empty status, not an error: the git tab
// simply shows a clean slate.
func Load(cwd string) (Status, error) {
	out, err := exec.Command("git", "-C", cwd, "status", "--porcelain", "-z").Output()
	if err != nil {
		return Status{}, nil
	}
	return ParsePorcelain(string(out)), nil
}

// ParsePorcelain parses NUL-delimited `git status --porcelain -z` output.
// With -z paths arrive verbatim, never C-quoted, so they can be handed
// straight back to git diff. A rename or copy record is followed by the
// origin path as its own NUL field; only the destination is kept.
func ParsePorcelain(out string) Status {
	var status Status
	records := strings.Split(out, "\x00")
	for i := 0; i < len(records); i++ {
		line := records[i]
		if len(line) < 4 {
			continue
		}
		indexChar := line[0]
		worktreeChar := line[1]
		path := line[3:]
		if indexChar == 'R' || indexChar == 'C' || worktreeChar == 'R' || worktreeChar == 'C' {
			i++ // skip the origin path field
		}

		if indexChar == '?' && worktreeChar == '?' {
			status.Untracked = append(status.Untracked, Entry{
				Path: path, Section: Untracked, StatusChar: '?',
			})
			continue
		}
		if indexChar != ' ' && indexChar != '?' {
			status.Staged = append(status.Staged, Entry{
				Path: path, Section: Staged, StatusChar: indexChar,
			})
		}
		if worktreeChar != ' ' && worktreeChar != '?' {
			status.Unstaged = append(status.Unstaged, Entry{
				Path: path, Section: Unstaged, StatusChar: worktreeChar,
			})
		}
	}
	return status
}
