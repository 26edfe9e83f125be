// Package plan loads the markdown plan files under <claudeHome>/plans.
// A plan's title comes from its YAML frontmatter, falling back to the first
// heading, then the filename.
package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// File is one plan with its raw markdown body (frontmatter stripped).
type File struct {
	Path     string
	Filename string
	Title    string
	Modified time.Time
	Body     string
}

// DisplayName returns the filename without the .md suffix.
func (f File) DisplayName() string {
	return strings.TrimSuffix(f.Filename, ".md")
}

type frontmatter struct {
	Title string `yaml:"title"`
}

// Load reads and parses one plan file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading plan: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat plan: %w", err)
	}

	body := string(data)
	f := File{
		Path:     path,
		Filename: filepath.Base(path),
		Modified: info.ModTime(),
	}

	if fm, rest, ok := splitFrontmatter(body); ok {
		var meta frontmatter
		if err := yaml.Unmarshal([]byte(fm), &meta); err == nil {
			f.Title = meta.Title
		}
		body = rest
	}
	f.Body = body

	if f.Title == "" {
		f.Title = firstHeading(body)
	}
	if f.Title == "" {
		f.Title = f.DisplayName()
	}
	return f, nil
}

// LoadAll reads every plan in the directory, newest first. Unreadable files
// are skipped.
func LoadAll(plansDir string) ([]File, error) {
	entries, err := os.ReadDir(plansDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading plans dir: %w", err)
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		f, err := Load(filepath.Join(plansDir, entry.Name()))
		if err != nil {
			continue
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Modified.After(files[j].Modified) })
	return files, nil
}

// Delete removes a plan file.
func Delete(f File) error {
	if err := os.Remove(f.Path); err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	return nil
}

// splitFrontmatter separates a leading "---" YAML block from the body.
func splitFrontmatter(s string) (fm, rest string, ok bool) {
	if !strings.HasPrefix(s, "---\n") && !strings.HasPrefix(s, "---\r\n") {
		return "", s, false
	}
	content := s[strings.IndexByte(s, '\n')+1:]
	for _, delim := range []string{"\n---\n", "\n---\r\n"} {
		if i := strings.Index(content, delim); i >= 0 {
			return content[:i], content[i+len(delim):], true
		}
	}
	if strings.HasSuffix(content, "\n---") {
		return content[:len(content)-4], "", true
	}
	return "", s, false
}

// firstHeading returns the text of the first markdown heading.
func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
	}
	return ""
}
