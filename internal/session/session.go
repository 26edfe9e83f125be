// Package session lists the Claude Code sessions of one project: the
// sessions-index.json when present, otherwise the transcript files
// themselves.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// IndexFileName is the per-project session index.
const IndexFileName = "sessions-index.json"

// Session is one entry of the session list, newest first.
type Session struct {
	ID           string    `json:"sessionId"`
	Summary      string    `json:"summary"`
	FirstPrompt  string    `json:"firstPrompt"`
	MessageCount int       `json:"messageCount"`
	GitBranch    string    `json:"gitBranch"`
	Created      time.Time `json:"created"`
	Modified     time.Time `json:"modified"`

	// Path is the transcript file, resolved during loading.
	Path string `json:"-"`
}

// Title returns the best available one-line description.
func (s Session) Title() string {
	if s.Summary != "" {
		return s.Summary
	}
	if s.FirstPrompt != "" {
		return firstLine(s.FirstPrompt)
	}
	return s.ID
}

type index struct {
	Entries []Session `json:"entries"`
}

// Load returns the project's sessions, newest first. A missing or
// unparsable index falls back to scanning the transcript files directly.
func Load(projectDir string) ([]Session, error) {
	sessions, err := loadIndex(projectDir)
	if err != nil {
		sessions, err = scanTranscripts(projectDir)
		if err != nil {
			return nil, err
		}
	}

	for i := range sessions {
		if sessions[i].Path == "" {
			sessions[i].Path = filepath.Join(projectDir, sessions[i].ID+".jsonl")
		}
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Modified.After(sessions[j].Modified)
	})
	return sessions, nil
}

func loadIndex(projectDir string) ([]Session, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, IndexFileName))
	if err != nil {
		return nil, err
	}
	var idx index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", IndexFileName, err)
	}
	return idx.Entries, nil
}

// scanTranscripts builds session entries from *.jsonl files when no index
// exists. The file stem is the session id.
func scanTranscripts(projectDir string) ([]Session, error) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, fmt.Errorf("reading project dir: %w", err)
	}

	var sessions []Session
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".jsonl")
		sessions = append(sessions, Session{
			ID:       id,
			Modified: info.ModTime(),
			Path:     filepath.Join(projectDir, entry.Name()),
		})
	}
	return sessions, nil
}

// Subagent is a subagent transcript belonging to a session.
type Subagent struct {
	AgentID string
	Path    string
}

// FindSubagents scans <projectDir>/<sessionID>/subagents/ for agent
// transcripts, sorted by agent id.
func FindSubagents(projectDir, sessionID string) []Subagent {
	dir := filepath.Join(projectDir, sessionID, "subagents")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var results []Subagent
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		id := strings.TrimSuffix(name, ".jsonl")
		id = strings.TrimPrefix(id, "agent-")
		if id == "" {
			continue
		}
		results = append(results, Subagent{
			AgentID: id,
			Path:    filepath.Join(dir, name),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].AgentID < results[j].AgentID })
	return results
}

// Delete removes a session's transcript file. The watcher picks up the
// removal and the index entry disappears on its next rewrite.
func Delete(s Session) error {
	if err := os.Remove(s.Path); err != nil {
		return fmt.Errorf("deleting transcript: %w", err)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
