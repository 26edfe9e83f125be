package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Dicklesworthstone/assoc/internal/events"
	"github.com/Dicklesworthstone/assoc/internal/paths"
	"github.com/Dicklesworthstone/assoc/internal/runner"
	"github.com/Dicklesworthstone/assoc/internal/tracker"
	"github.com/Dicklesworthstone/assoc/internal/watch"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func appendFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
}

func userLine(text string) string {
	return fmt.Sprintf(`{"type":"user","timestamp":"2024-01-01T10:00:00Z","message":{"role":"user","content":%q}}`+"\n", text)
}

func indexJSON(ids ...string) string {
	out := `{"entries":[`
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		// Later entries are older.
		mod := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC).Add(-time.Duration(i) * time.Hour)
		out += fmt.Sprintf(`{"sessionId":%q,"summary":"work on %s","modified":%q}`, id, id, mod.Format(time.RFC3339))
	}
	return out + `]}`
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	home := t.TempDir()
	project := t.TempDir()
	projDir := paths.ProjectDir(home, project)

	writeFile(t, filepath.Join(projDir, "s1.jsonl"), userLine("first in s1"))
	writeFile(t, filepath.Join(projDir, "s2.jsonl"), userLine("first in s2"))
	writeFile(t, filepath.Join(projDir, "sessions-index.json"), indexJSON("s1", "s2"))

	return New(Options{
		ProjectPath: project,
		ClaudeHome:  home,
		Bus:         events.NewBus(16),
	})
}

func TestNewLoadsNewestSession(t *testing.T) {
	m := newTestModel(t)
	if m.loadedID != "s1" {
		t.Fatalf("loaded session = %q, want s1", m.loadedID)
	}
	if len(m.items) != 1 {
		t.Fatalf("items = %d, want 1", len(m.items))
	}
	if m.items[0].Text != "first in s1" {
		t.Errorf("item text = %q", m.items[0].Text)
	}
}

func TestTranscriptEventReloadsOnlyLoadedSession(t *testing.T) {
	m := newTestModel(t)
	projDir := m.projectDir

	// A todo file appears on disk, but no todo event has arrived yet.
	writeFile(t, filepath.Join(m.todosDir, "agent.json"),
		`[{"content":"do things","status":"pending"}]`)

	appendFile(t, filepath.Join(projDir, "s2.jsonl"), userLine("second in s2"))
	m = m.apply(watch.Event{Domain: watch.DomainTranscript, ID: "s2", Kind: watch.Modified})

	if len(m.items) != 1 {
		t.Errorf("s2 event must not touch the loaded s1 transcript, items = %d", len(m.items))
	}
	if len(m.todos) != 0 {
		t.Errorf("transcript event must not reload todos")
	}

	appendFile(t, filepath.Join(projDir, "s1.jsonl"), userLine("second in s1"))
	m = m.apply(watch.Event{Domain: watch.DomainTranscript, ID: "s1", Kind: watch.Modified})

	if len(m.items) != 2 {
		t.Fatalf("items after s1 append = %d, want 2", len(m.items))
	}
	if m.items[1].Text != "second in s1" {
		t.Errorf("appended item = %q", m.items[1].Text)
	}

	m = m.apply(watch.Event{Domain: watch.DomainTodoFile, ID: "agent.json", Kind: watch.Created})
	if len(m.todos) != 1 {
		t.Errorf("todo event should reload todos, got %d files", len(m.todos))
	}
}

func TestFollowSwitchesToNewestSession(t *testing.T) {
	m := newTestModel(t)
	m.follow = true

	writeFile(t, filepath.Join(m.projectDir, "s3.jsonl"), userLine("brand new"))
	writeFile(t, filepath.Join(m.projectDir, "sessions-index.json"), indexJSON("s3", "s1", "s2"))

	m = m.apply(watch.Event{Domain: watch.DomainSessionIndex, Kind: watch.Modified})
	if m.loadedID != "s3" {
		t.Fatalf("follow should open the newest session, loaded %q", m.loadedID)
	}
	if len(m.items) != 1 || m.items[0].Text != "brand new" {
		t.Errorf("unexpected transcript: %+v", m.items)
	}
}

func TestLoadedTranscriptRemovedFallsBack(t *testing.T) {
	m := newTestModel(t)
	if err := os.Remove(filepath.Join(m.projectDir, "s1.jsonl")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(m.projectDir, "sessions-index.json"), indexJSON("s2"))

	m = m.apply(watch.Event{Domain: watch.DomainTranscript, ID: "s1", Kind: watch.Removed})
	if m.loadedID != "s2" {
		t.Fatalf("loaded = %q, want fallback to s2", m.loadedID)
	}
}

func TestSessionIndexReloadKeepsCursorOnLoadedSession(t *testing.T) {
	m := newTestModel(t)

	// A new session appears above the loaded one.
	writeFile(t, filepath.Join(m.projectDir, "s3.jsonl"), userLine("other work"))
	writeFile(t, filepath.Join(m.projectDir, "sessions-index.json"), indexJSON("s3", "s1", "s2"))

	m = m.apply(watch.Event{Domain: watch.DomainSessionIndex, Kind: watch.Modified})
	if m.loadedID != "s1" {
		t.Fatalf("reload must not switch sessions without follow, loaded %q", m.loadedID)
	}
	if m.cursor[TabSessions] != 1 {
		t.Errorf("cursor = %d, want 1 (s1's new position)", m.cursor[TabSessions])
	}
}

func TestApplyPollCategorizesPRs(t *testing.T) {
	m := newTestModel(t)
	m.opts.User = "alice"

	res := tracker.Result{
		Name: tracker.IntegrationGitHubPRs,
		Payload: []tracker.PullRequest{
			{Number: 1, Title: "mine", Author: tracker.Actor{Login: "alice"}},
			{Number: 2, Title: "theirs", Author: tracker.Actor{Login: "bob"}},
		},
		FetchedAt: time.Now(),
	}
	m = m.apply(res)

	if len(m.prItems) != 4 {
		t.Fatalf("prItems = %d, want 2 headers + 2 rows", len(m.prItems))
	}
	if m.prItems[0].Header != "My PRs (1)" {
		t.Errorf("first header = %q", m.prItems[0].Header)
	}
	if m.trackerErr[TabPRs] != "" {
		t.Errorf("trackerErr = %q", m.trackerErr[TabPRs])
	}
}

func TestApplyPollErrorSurfacedOnce(t *testing.T) {
	m := newTestModel(t)
	m.prItems = tracker.CategorizePRs([]tracker.PullRequest{{Number: 9, Title: "keep"}}, "alice")

	res := tracker.Result{
		Name:      tracker.IntegrationGitHubPRs,
		Err:       errors.New("gh failed: boom"),
		FetchedAt: time.Now(),
	}
	m = m.apply(res)

	if m.trackerErr[TabPRs] != "gh failed: boom" {
		t.Errorf("trackerErr = %q", m.trackerErr[TabPRs])
	}
	if len(m.prItems) == 0 {
		t.Error("a failed poll must keep the previous snapshot")
	}
}

func TestJiraSearchResultsSurvivePoll(t *testing.T) {
	m := newTestModel(t)
	m.jiraQuery = "PROJ-1"
	m.jiraItems = tracker.CategorizeJiraIssues([]tracker.JiraIssue{{Key: "PROJ-1", Summary: "searched", StatusName: "To Do"}})

	res := tracker.Result{
		Name:      tracker.IntegrationJira,
		Payload:   []tracker.JiraIssue{{Key: "PROJ-2", Summary: "polled", StatusName: "To Do"}},
		FetchedAt: time.Now(),
	}
	m = m.apply(res)

	found := false
	for _, item := range m.jiraItems {
		if item.Issue != nil && item.Issue.Key == "PROJ-1" {
			found = true
		}
	}
	if !found {
		t.Error("poll result must not replace active search results")
	}
}

func TestWorkerEventRevealsProcessesTab(t *testing.T) {
	m := newTestModel(t)
	m.opts.Supervisor = runner.NewSupervisor(m.opts.ProjectPath, func(any) {})

	for _, tab := range m.tabs {
		if tab == TabProcesses {
			t.Fatal("Processes tab should be hidden before any worker exists")
		}
	}

	m = m.apply(runner.StateMsg{WorkerID: 1, State: runner.StateRunning})

	found := false
	for _, tab := range m.tabs {
		if tab == TabProcesses {
			found = true
		}
	}
	if !found {
		t.Error("Processes tab should appear after the first worker event")
	}
}

func TestWatchStatusUpdatesStatusLine(t *testing.T) {
	m := newTestModel(t)
	m = m.apply(WatchStatusMsg{Degraded: true, Missing: []string{"/gone"}})
	if !m.watchDegraded || len(m.watchMissing) != 1 {
		t.Error("watch status not recorded")
	}
	m = m.apply(WatchStatusMsg{Degraded: false})
	if m.watchDegraded {
		t.Error("watch recovery not recorded")
	}
}
