// Package browse builds the flattened file tree and content previews behind
// the Git tab's repository browser.
package browse

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// maxDepth caps tree recursion so a pathological layout or symlink loop
// cannot hang a rebuild.
const maxDepth = 20

// maxFileSize is the largest file the preview pane will load.
const maxFileSize = 1 << 20

// Entry is one visible row of the flattened tree. Depth is the indent level
// below the repository root.
type Entry struct {
	Name  string
	Path  string
	Dir   bool
	Depth int
}

// BuildTree flattens the repository under root into display order:
// directories before files, case-insensitive within each group. Only
// directories present in expanded are descended into. .git and gitignored
// paths never appear.
func BuildTree(root string, expanded map[string]bool) []Entry {
	ignored := ignoredPaths(root)
	var entries []Entry
	appendDir(&entries, root, root, 0, expanded, ignored)
	return entries
}

func appendDir(entries *[]Entry, root, dir string, depth int, expanded, ignored map[string]bool) {
	if depth >= maxDepth {
		return
	}
	items, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsDir() != items[j].IsDir() {
			return items[i].IsDir()
		}
		return strings.ToLower(items[i].Name()) < strings.ToLower(items[j].Name())
	})
	for _, item := range items {
		name := item.Name()
		if name == ".git" {
			continue
		}
		path := filepath.Join(dir, name)
		if isIgnored(root, path, ignored) {
			continue
		}
		*entries = append(*entries, Entry{Name: name, Path: path, Dir: item.IsDir(), Depth: depth})
		if item.IsDir() && expanded[path] {
			appendDir(entries, root, path, depth+1, expanded, ignored)
		}
	}
}

// ignoredPaths asks git for every ignored file and directory under root in
// one batch. Outside a repository, or without git, nothing is ignored.
func ignoredPaths(root string) map[string]bool {
	out, err := exec.Command("git", "-C", root,
		"ls-files", "--others", "--ignored", "--exclude-standard", "--directory").Output()
	if err != nil {
		return nil
	}
	ignored := make(map[string]bool)
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSuffix(strings.TrimSpace(line), "/")
		if line == "" {
			continue
		}
		ignored[filepath.Join(root, line)] = true
	}
	return ignored
}

// isIgnored checks the path and every ancestor below root, since git lists
// an ignored directory once rather than each file inside it.
func isIgnored(root, path string, ignored map[string]bool) bool {
	if len(ignored) == 0 {
		return false
	}
	for p := path; len(p) > len(root); p = filepath.Dir(p) {
		if ignored[p] {
			return true
		}
	}
	return false
}

// ContentKind classifies what the preview pane should show for a file.
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentMarkdown
	ContentBinary
	ContentTooLarge
)

// Content is one loaded file preview. Lines is set for text, Body for
// markdown awaiting rendering.
type Content struct {
	Kind  ContentKind
	Lines []string
	Body  string
}

// ReadContent loads a file for the preview pane. Files over maxFileSize and
// non-UTF-8 data are classified rather than loaded.
func ReadContent(path string) (Content, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Content{}, err
	}
	if info.Size() > maxFileSize {
		return Content{Kind: ContentTooLarge}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Content{}, err
	}
	if !utf8.Valid(data) {
		return Content{Kind: ContentBinary}, nil
	}
	text := strings.TrimRight(string(data), "\n")
	if strings.EqualFold(filepath.Ext(path), ".md") {
		return Content{Kind: ContentMarkdown, Body: text}, nil
	}
	return Content{Kind: ContentText, Lines: strings.Split(text, "\n")}, nil
}
