package watch

import (
	"path/filepath"
	"strings"
)

// Classifier maps raw filesystem paths to change events. Paths that match
// no rule are dropped without error; raw notification noise is expected.
type Classifier struct {
	// ProjectDir is <claudeHome>/projects/<encoded>.
	ProjectDir string
	// TeamsDir, TasksDir, TodosDir, PlansDir are the shared state roots.
	TeamsDir string
	TasksDir string
	TodosDir string
	PlansDir string
	// GitDir is the project's .git directory.
	GitDir string
}

// Classify returns the event for a path, or ok=false when the path is not
// dashboard-relevant.
func (c *Classifier) Classify(path string, kind Kind) (Event, bool) {
	p := norm(path)

	// .git first: only index, HEAD and refs matter, the rest of the
	// directory churns constantly (lock files, packed objects).
	if git := norm(c.GitDir); git != "" && under(p, git) {
		rel := relOf(p, git)
		if rel == "index" || rel == "HEAD" || strings.HasPrefix(rel, "refs/") {
			return Event{Domain: DomainGitStatus, Kind: kind}, true
		}
		return Event{}, false
	}

	if proj := norm(c.ProjectDir); proj != "" && under(p, proj) {
		rel := relOf(p, proj)
		if rel == "sessions-index.json" {
			return Event{Domain: DomainSessionIndex, Kind: kind}, true
		}
		if strings.HasSuffix(rel, ".jsonl") {
			if strings.Contains(rel, "/subagents/") {
				return Event{Domain: DomainSubagentTranscript, ID: path, Kind: kind}, true
			}
			return Event{Domain: DomainTranscript, ID: stem(rel), Kind: kind}, true
		}
		return Event{}, false
	}

	if teams := norm(c.TeamsDir); teams != "" && under(p, teams) {
		rel := relOf(p, teams)
		team, rest, ok := strings.Cut(rel, "/")
		if !ok || team == "" {
			return Event{}, false
		}
		if filepath.Base(rest) == "config.json" {
			return Event{Domain: DomainTeamConfig, ID: team, Kind: kind}, true
		}
		if rest == "inboxes" || strings.HasPrefix(rest, "inboxes/") {
			return Event{Domain: DomainTeamInbox, ID: team, Kind: kind}, true
		}
		return Event{}, false
	}

	if tasks := norm(c.TasksDir); tasks != "" && under(p, tasks) {
		rel := relOf(p, tasks)
		team, _, _ := strings.Cut(rel, "/")
		if team != "" && strings.HasSuffix(rel, ".json") {
			return Event{Domain: DomainTaskFile, ID: team, Kind: kind}, true
		}
		return Event{}, false
	}

	if todos := norm(c.TodosDir); todos != "" && under(p, todos) {
		if strings.HasSuffix(p, ".json") {
			return Event{Domain: DomainTodoFile, ID: path, Kind: kind}, true
		}
		return Event{}, false
	}

	if plans := norm(c.PlansDir); plans != "" && under(p, plans) {
		if strings.HasSuffix(p, ".md") {
			return Event{Domain: DomainPlanFile, ID: path, Kind: kind}, true
		}
		return Event{}, false
	}

	return Event{}, false
}

// norm converts a path to forward slashes and strips any trailing slash so
// prefix checks behave the same on every platform.
func norm(p string) string {
	s := strings.ReplaceAll(p, `\`, "/")
	return strings.TrimSuffix(s, "/")
}

// under reports whether p equals root or sits below it.
func under(p, root string) bool {
	return p == root || strings.HasPrefix(p, root+"/")
}

// relOf returns the portion of p below root ("" when p == root).
func relOf(p, root string) string {
	if p == root {
		return ""
	}
	return strings.TrimPrefix(p, root+"/")
}

// stem returns the filename without directories or extension.
func stem(p string) string {
	base := p
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}
