package team

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupTeam(t *testing.T) (teamsDir, tasksDir string) {
	t.Helper()
	base := t.TempDir()
	teamsDir = filepath.Join(base, "teams")
	tasksDir = filepath.Join(base, "tasks")

	teamDir := filepath.Join(teamsDir, "alpha")
	if err := os.MkdirAll(filepath.Join(teamDir, "inboxes"), 0755); err != nil {
		t.Fatal(err)
	}
	config := `{"name":"alpha","leadAgentName":"lead","members":[
		{"name":"lead","agentType":"claude","model":"opus"},
		{"name":"worker-1","agentType":"claude","model":"sonnet"}
	]}`
	if err := os.WriteFile(filepath.Join(teamDir, "config.json"), []byte(config), 0644); err != nil {
		t.Fatal(err)
	}

	taskDir := filepath.Join(tasksDir, "alpha")
	if err := os.MkdirAll(taskDir, 0755); err != nil {
		t.Fatal(err)
	}
	tasks := map[string]string{
		"10.json": `{"id":"10","subject":"later","status":"pending"}`,
		"2.json":  `{"id":"2","subject":"build","status":"in_progress","owner":"worker-1"}`,
		"1.json":  `{"id":"1","subject":"plan","status":"completed","owner":"lead"}`,
	}
	for name, content := range tasks {
		if err := os.WriteFile(filepath.Join(taskDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return teamsDir, tasksDir
}

func TestListAndLoadConfig(t *testing.T) {
	teamsDir, _ := setupTeam(t)

	names, err := List(teamsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "alpha" {
		t.Fatalf("names = %v", names)
	}

	cfg, err := LoadConfig(teamsDir, "alpha")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Lead() != "lead" || len(cfg.Members) != 2 {
		t.Errorf("config = %+v", cfg)
	}
}

func TestListMissingDirIsEmpty(t *testing.T) {
	names, err := List(filepath.Join(t.TempDir(), "nope"))
	if err != nil || names != nil {
		t.Fatalf("names = %v, err = %v", names, err)
	}
}

func TestLoadTasksNumericOrder(t *testing.T) {
	_, tasksDir := setupTeam(t)

	tasks, err := LoadTasks(tasksDir, "alpha")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(tasks))
	}
	if tasks[0].ID != "1" || tasks[1].ID != "2" || tasks[2].ID != "10" {
		t.Errorf("order = %s, %s, %s", tasks[0].ID, tasks[1].ID, tasks[2].ID)
	}
	if tasks[1].Status.Icon() != "[=]" {
		t.Errorf("in_progress icon = %q", tasks[1].Status.Icon())
	}
}

func TestLoadInboxSortedNewestFirst(t *testing.T) {
	teamsDir, _ := setupTeam(t)
	inbox := `[
		{"from":"worker-1","text":"first","timestamp":"2026-01-01T09:00:00Z"},
		{"from":"worker-1","text":"{\"type\":\"idle_notification\",\"from\":\"worker-1\"}","timestamp":"2026-01-01T11:00:00Z"},
		{"from":"lead","text":"{\"type\":\"task_assignment\",\"taskId\":\"2\",\"subject\":\"build\"}","timestamp":"2026-01-01T10:00:00Z"}
	]`
	path := filepath.Join(teamsDir, "alpha", "inboxes", "lead.json")
	if err := os.WriteFile(path, []byte(inbox), 0644); err != nil {
		t.Fatal(err)
	}

	messages, err := LoadInbox(teamsDir, "alpha", "lead")
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(messages))
	}
	if messages[0].Type() != "idle_notification" {
		t.Errorf("newest first: got %q", messages[0].Text)
	}
	if got := messages[0].DisplayText(); got != "worker-1 is idle" {
		t.Errorf("DisplayText = %q", got)
	}
	if got := messages[1].DisplayText(); got != "[Task #2] build" {
		t.Errorf("DisplayText = %q", got)
	}
	if got := messages[2].DisplayText(); got != "first" {
		t.Errorf("DisplayText = %q", got)
	}
}

func TestLoadInboxMissingIsEmpty(t *testing.T) {
	teamsDir, _ := setupTeam(t)
	messages, err := LoadInbox(teamsDir, "alpha", "ghost")
	if err != nil || messages != nil {
		t.Fatalf("messages = %v, err = %v", messages, err)
	}
}

func TestDeriveStatus(t *testing.T) {
	ts := func(s string) *time.Time {
		v, err := time.Parse(time.RFC3339, s)
		if err != nil {
			t.Fatal(err)
		}
		return &v
	}
	tasks := []Task{
		{ID: "2", Status: TaskInProgress, Owner: "busy"},
		{ID: "3", Status: TaskCompleted, Owner: "chatty"},
	}
	inbox := []InboxMessage{
		{From: "sleepy", Text: `{"type":"idle_notification"}`, Timestamp: ts("2026-01-01T12:00:00Z")},
		{From: "gone", Text: `{"type":"shutdown_approved"}`, Timestamp: ts("2026-01-01T11:00:00Z")},
		{From: "chatty", Text: "making progress", Timestamp: ts("2026-01-01T10:00:00Z")},
		{From: "busy", Text: `{"type":"idle_notification"}`, Timestamp: ts("2026-01-01T09:00:00Z")},
	}

	tests := []struct {
		member string
		want   AgentStatus
	}{
		{"sleepy", StatusIdle},
		{"gone", StatusShutDown},
		{"chatty", StatusWorking},
		{"silent", StatusStarting},
		// Idle report but owns an in-progress task: the report wins,
		// idle/shutdown reports outrank ownership.
		{"busy", StatusIdle},
	}
	for _, tt := range tests {
		t.Run(tt.member, func(t *testing.T) {
			if got := DeriveStatus(tt.member, inbox, tasks); got != tt.want {
				t.Errorf("DeriveStatus(%s) = %s, want %s", tt.member, got.Label(), tt.want.Label())
			}
		})
	}
}
