package gitstatus

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineKind classifies diff pane rows for styling.
type LineKind int

const (
	LineHeader LineKind = iota
	LineHunk
	LineAdd
	LineRemove
	LineContext
)

// Line is one row of the diff pane.
type Line struct {
	Kind LineKind
	Text string
}

const (
	maxUntrackedBytes = 1 << 20
	maxUntrackedLines = 200
)

// LoadDiff renders the diff for one entry: `git diff` for tracked files,
// a synthesized all-additions diff for untracked ones.
func LoadDiff(cwd string, entry Entry) ([]Line, error) {
	switch entry.Section {
	case Untracked:
		return untrackedDiff(cwd, entry.Path), nil
	case Staged:
		return gitDiff(cwd, entry.Path, true)
	default:
		return gitDiff(cwd, entry.Path, false)
	}
}

func gitDiff(cwd, path string, staged bool) ([]Line, error) {
	args := []string{"-C", cwd, "diff"}
	if staged {
		args = append(args, "--cached")
	}
	args = append(args, "--", path)

	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return nil, fmt.Errorf("git diff %s: %w", path, err)
	}
	return ParseDiffOutput(string(out)), nil
}

// ParseDiffOutput classifies unified diff lines.
func ParseDiffOutput(out string) []Line {
	var lines []Line
	for _, raw := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if raw == "" && len(lines) == 0 {
			continue
		}
		var kind LineKind
		switch {
		case strings.HasPrefix(raw, "diff "),
			strings.HasPrefix(raw, "index "),
			strings.HasPrefix(raw, "--- "),
			strings.HasPrefix(raw, "+++ "):
			kind = LineHeader
		case strings.HasPrefix(raw, "@@"):
			kind = LineHunk
		case strings.HasPrefix(raw, "+"):
			kind = LineAdd
		case strings.HasPrefix(raw, "-"):
			kind = LineRemove
		default:
			kind = LineContext
		}
		lines = append(lines, Line{Kind: kind, Text: raw})
	}
	return lines
}

// untrackedDiff renders a new file as an all-additions diff against the
// empty string, capped for size and screened for binary content.
func untrackedDiff(cwd, path string) []Line {
	full := filepath.Join(cwd, path)

	if info, err := os.Stat(full); err == nil && info.Size() > maxUntrackedBytes {
		return []Line{{Kind: LineHeader, Text: "(file too large to display)"}}
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return []Line{{Kind: LineHeader, Text: "(cannot read file)"}}
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return []Line{{Kind: LineHeader, Text: "(binary file)"}}
	}

	lines := []Line{{Kind: LineHeader, Text: "new file: " + path}}
	lines = append(lines, DiffStrings("", string(data))...)
	return lines
}

// DiffStrings produces add/remove/context rows for two text versions using
// a line-granularity diff.
func DiffStrings(before, after string) []Line {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var lines []Line
	count := 0
	for _, d := range diffs {
		for _, text := range splitDiffLines(d.Text) {
			if count >= maxUntrackedLines {
				lines = append(lines, Line{Kind: LineContext, Text: fmt.Sprintf("... (truncated at %d lines)", maxUntrackedLines)})
				return lines
			}
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				lines = append(lines, Line{Kind: LineAdd, Text: "+" + text})
			case diffmatchpatch.DiffDelete:
				lines = append(lines, Line{Kind: LineRemove, Text: "-" + text})
			default:
				lines = append(lines, Line{Kind: LineContext, Text: " " + text})
			}
			count++
		}
	}
	return lines
}

func splitDiffLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
