package watch

import (
	"testing"
)

func testClassifier() *Classifier {
	return &Classifier{
		ProjectDir: "/home/me/.claude/projects/-home-me-code",
		TeamsDir:   "/home/me/.claude/teams",
		TasksDir:   "/home/me/.claude/tasks",
		TodosDir:   "/home/me/.claude/todos",
		PlansDir:   "/home/me/.claude/plans",
		GitDir:     "/home/me/code/.git",
	}
}

func TestClassify(t *testing.T) {
	c := testClassifier()

	tests := []struct {
		name       string
		path       string
		wantDomain Domain
		wantID     string
		wantOK     bool
	}{
		{
			name:       "git index",
			path:       "/home/me/code/.git/index",
			wantDomain: DomainGitStatus,
			wantOK:     true,
		},
		{
			name:       "git HEAD",
			path:       "/home/me/code/.git/HEAD",
			wantDomain: DomainGitStatus,
			wantOK:     true,
		},
		{
			name:       "git ref",
			path:       "/home/me/code/.git/refs/heads/main",
			wantDomain: DomainGitStatus,
			wantOK:     true,
		},
		{
			name:   "git object noise dropped",
			path:   "/home/me/code/.git/objects/ab/cdef",
			wantOK: false,
		},
		{
			name:   "git lock noise dropped",
			path:   "/home/me/code/.git/index.lock",
			wantOK: false,
		},
		{
			name:       "session index",
			path:       "/home/me/.claude/projects/-home-me-code/sessions-index.json",
			wantDomain: DomainSessionIndex,
			wantOK:     true,
		},
		{
			name:       "transcript",
			path:       "/home/me/.claude/projects/-home-me-code/abc-123.jsonl",
			wantDomain: DomainTranscript,
			wantID:     "abc-123",
			wantOK:     true,
		},
		{
			name:       "nested transcript",
			path:       "/home/me/.claude/projects/-home-me-code/sub/def-456.jsonl",
			wantDomain: DomainTranscript,
			wantID:     "def-456",
			wantOK:     true,
		},
		{
			name:       "subagent transcript",
			path:       "/home/me/.claude/projects/-home-me-code/abc-123/subagents/agent-a5c425e.jsonl",
			wantDomain: DomainSubagentTranscript,
			wantID:     "/home/me/.claude/projects/-home-me-code/abc-123/subagents/agent-a5c425e.jsonl",
			wantOK:     true,
		},
		{
			name:   "project non-jsonl dropped",
			path:   "/home/me/.claude/projects/-home-me-code/notes.txt",
			wantOK: false,
		},
		{
			name:       "team config",
			path:       "/home/me/.claude/teams/alpha/config.json",
			wantDomain: DomainTeamConfig,
			wantID:     "alpha",
			wantOK:     true,
		},
		{
			name:       "team inbox",
			path:       "/home/me/.claude/teams/alpha/inboxes/lead.json",
			wantDomain: DomainTeamInbox,
			wantID:     "alpha",
			wantOK:     true,
		},
		{
			name:   "team misc dropped",
			path:   "/home/me/.claude/teams/alpha/scratch.txt",
			wantOK: false,
		},
		{
			name:       "task file",
			path:       "/home/me/.claude/tasks/alpha/3.json",
			wantDomain: DomainTaskFile,
			wantID:     "alpha",
			wantOK:     true,
		},
		{
			name:       "todo file",
			path:       "/home/me/.claude/todos/abc-agent.json",
			wantDomain: DomainTodoFile,
			wantID:     "/home/me/.claude/todos/abc-agent.json",
			wantOK:     true,
		},
		{
			name:       "plan file",
			path:       "/home/me/.claude/plans/refactor.md",
			wantDomain: DomainPlanFile,
			wantID:     "/home/me/.claude/plans/refactor.md",
			wantOK:     true,
		},
		{
			name:   "plan non-md dropped",
			path:   "/home/me/.claude/plans/refactor.md.bak",
			wantOK: false,
		},
		{
			name:   "unrelated path dropped",
			path:   "/tmp/whatever.json",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := c.Classify(tt.path, Modified)
			if ok != tt.wantOK {
				t.Fatalf("Classify(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if ev.Domain != tt.wantDomain {
				t.Errorf("domain = %s, want %s", ev.Domain, tt.wantDomain)
			}
			if ev.ID != tt.wantID {
				t.Errorf("id = %q, want %q", ev.ID, tt.wantID)
			}
			if ev.Kind != Modified {
				t.Errorf("kind = %s, want modified", ev.Kind)
			}
		})
	}
}

func TestClassifyWindowsSeparators(t *testing.T) {
	c := &Classifier{
		ProjectDir: `C:\Users\me\.claude\projects\C--dev-myproject`,
		GitDir:     `C:\dev\myproject\.git`,
	}

	ev, ok := c.Classify(`C:\Users\me\.claude\projects\C--dev-myproject\abc.jsonl`, Created)
	if !ok || ev.Domain != DomainTranscript || ev.ID != "abc" {
		t.Fatalf("windows transcript: ok=%v ev=%+v", ok, ev)
	}

	ev, ok = c.Classify(`C:\dev\myproject\.git\refs\heads\main`, Modified)
	if !ok || ev.Domain != DomainGitStatus {
		t.Fatalf("windows git ref: ok=%v ev=%+v", ok, ev)
	}
}
