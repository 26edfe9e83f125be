package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type eventCollector struct {
	mu     sync.Mutex
	events []Event
}

func (c *eventCollector) handle(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *eventCollector) waitFor(t *testing.T, timeout time.Duration, match func(Event) bool) Event {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		for _, ev := range c.events {
			if match(ev) {
				c.mu.Unlock()
				return ev
			}
		}
		c.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no matching event within %v", timeout)
	return Event{}
}

func newTestWatcher(t *testing.T, claude string, opts ...Option) (*Watcher, *eventCollector) {
	t.Helper()
	classifier := &Classifier{
		ProjectDir: filepath.Join(claude, "projects", "-home-me-code"),
		TeamsDir:   filepath.Join(claude, "teams"),
		TasksDir:   filepath.Join(claude, "tasks"),
		TodosDir:   filepath.Join(claude, "todos"),
		PlansDir:   filepath.Join(claude, "plans"),
	}
	col := &eventCollector{}
	w, err := New(classifier, col.handle, append([]Option{WithDebounceWindow(20 * time.Millisecond)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { w.Close() })
	return w, col
}

func TestWatcherDeliversClassifiedEvents(t *testing.T) {
	claude := t.TempDir()
	projectDir := filepath.Join(claude, "projects", "-home-me-code")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatal(err)
	}

	w, col := newTestWatcher(t, claude)
	if err := w.AddRoot(Root{Path: projectDir, Recursive: true}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(projectDir, "abc-123.jsonl")
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ev := col.waitFor(t, 3*time.Second, func(ev Event) bool {
		return ev.Domain == DomainTranscript
	})
	if ev.ID != "abc-123" {
		t.Errorf("session id = %q, want abc-123", ev.ID)
	}
}

func TestWatcherBurstYieldsOneEvent(t *testing.T) {
	claude := t.TempDir()
	projectDir := filepath.Join(claude, "projects", "-home-me-code")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatal(err)
	}

	w, col := newTestWatcher(t, claude)
	if err := w.AddRoot(Root{Path: projectDir, Recursive: true}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(projectDir, "burst.jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if _, err := f.WriteString("{}\n"); err != nil {
			t.Fatal(err)
		}
	}
	f.Close()

	col.waitFor(t, 3*time.Second, func(ev Event) bool {
		return ev.Domain == DomainTranscript && ev.ID == "burst"
	})
	// Allow any straggling window to close, then confirm no flood.
	time.Sleep(100 * time.Millisecond)

	col.mu.Lock()
	count := 0
	for _, ev := range col.events {
		if ev.Domain == DomainTranscript && ev.ID == "burst" {
			count++
		}
	}
	col.mu.Unlock()

	// One event for the burst; a second is tolerable if the writes
	// straddled a window boundary, a flood is not.
	if count == 0 || count > 2 {
		t.Errorf("got %d transcript events for burst, want 1 (2 across a boundary)", count)
	}
}

func TestWatcherNewSubdirectoryIsWatched(t *testing.T) {
	claude := t.TempDir()
	projectDir := filepath.Join(claude, "projects", "-home-me-code")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatal(err)
	}

	w, col := newTestWatcher(t, claude)
	if err := w.AddRoot(Root{Path: projectDir, Recursive: true}); err != nil {
		t.Fatal(err)
	}

	subDir := filepath.Join(projectDir, "abc-123", "subagents")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher a moment to register the new directories.
	time.Sleep(200 * time.Millisecond)

	path := filepath.Join(subDir, "agent-a5c425e.jsonl")
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	col.waitFor(t, 3*time.Second, func(ev Event) bool {
		return ev.Domain == DomainSubagentTranscript
	})
}

func TestWatcherMissingRootDegradesAndRecovers(t *testing.T) {
	claude := t.TempDir()
	teamsDir := filepath.Join(claude, "teams")

	var statusMu sync.Mutex
	var statuses []bool
	w, col := newTestWatcher(t, claude,
		WithRetryInterval(50*time.Millisecond),
		WithStatusHandler(func(degraded bool, missing []string) {
			statusMu.Lock()
			statuses = append(statuses, degraded)
			statusMu.Unlock()
		}),
	)

	// teams/ does not exist yet: the watcher degrades but keeps running.
	if err := w.AddRoot(Root{Path: teamsDir, Recursive: true}); err != nil {
		t.Fatal(err)
	}
	if !w.Degraded() {
		t.Fatal("watcher should be degraded with a missing root")
	}

	teamDir := filepath.Join(teamsDir, "alpha")
	if err := os.MkdirAll(teamDir, 0755); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for w.Degraded() && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if w.Degraded() {
		t.Fatal("watcher did not recover after root appeared")
	}

	// The recovered root must actually deliver events.
	if err := os.WriteFile(filepath.Join(teamDir, "config.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	ev := col.waitFor(t, 3*time.Second, func(ev Event) bool {
		return ev.Domain == DomainTeamConfig
	})
	if ev.ID != "alpha" {
		t.Errorf("team = %q, want alpha", ev.ID)
	}

	statusMu.Lock()
	defer statusMu.Unlock()
	if len(statuses) < 2 || statuses[0] != true || statuses[len(statuses)-1] != false {
		t.Errorf("status transitions = %v, want degraded then recovered", statuses)
	}
}
