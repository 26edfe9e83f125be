// Package todo loads the agent todo lists under <claudeHome>/todos: one
// JSON array of items per file.
package todo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Item is a single todo entry.
type Item struct {
	Content    string `json:"content"`
	Status     string `json:"status"`
	ActiveForm string `json:"activeForm"`
}

// DisplayText returns the item text, or a placeholder for empty items.
func (i Item) DisplayText() string {
	if i.Content == "" {
		return "(empty)"
	}
	return i.Content
}

// StatusIcon returns the checkbox marker for the item.
func (i Item) StatusIcon() string {
	switch i.Status {
	case "completed":
		return "[X]"
	case "in_progress":
		return "[=]"
	default:
		return "[ ]"
	}
}

// File is one todo file with its items.
type File struct {
	Path     string
	Filename string
	Items    []Item
}

// DisplayName truncates the UUID-heavy filenames for the list pane.
func (f File) DisplayName() string {
	name := f.Filename
	runes := []rune(name)
	if len(runes) > 30 {
		return string(runes[:27]) + "..."
	}
	return name
}

// Done returns how many items are completed.
func (f File) Done() int {
	n := 0
	for _, item := range f.Items {
		if item.Status == "completed" {
			n++
		}
	}
	return n
}

// Load reads a single todo file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading todo file: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return File{}, fmt.Errorf("parsing todo file: %w", err)
	}
	return File{
		Path:     path,
		Filename: filepath.Base(path),
		Items:    items,
	}, nil
}

// LoadAll reads every todo file in the directory, sorted by filename.
// Empty and malformed files are skipped.
func LoadAll(todosDir string) ([]File, error) {
	entries, err := os.ReadDir(todosDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading todos dir: %w", err)
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		f, err := Load(filepath.Join(todosDir, entry.Name()))
		if err != nil || len(f.Items) == 0 {
			continue
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Filename < files[j].Filename })
	return files, nil
}

// Delete removes a todo file.
func Delete(f File) error {
	if err := os.Remove(f.Path); err != nil {
		return fmt.Errorf("deleting todo file: %w", err)
	}
	return nil
}
