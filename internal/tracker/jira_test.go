package tracker

import (
	"context"
	"strings"
	"testing"
)

func TestParseJiraIssuesFlat(t *testing.T) {
	data := `[
	  {
	    "key": "PROJ-1",
	    "summary": "Fix login",
	    "statusName": "In Progress",
	    "statusCategory": "In Progress",
	    "issueType": "Bug",
	    "priority": "High",
	    "labels": ["auth", "urgent"],
	    "description": "Users cannot log in.",
	    "self": "https://acme.atlassian.net/rest/api/2/issue/10001"
	  }
	]`

	issues, err := parseJiraIssues([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 1 {
		t.Fatalf("got %d issues", len(issues))
	}
	issue := issues[0]
	if issue.Key != "PROJ-1" || issue.Summary != "Fix login" {
		t.Errorf("issue = %+v", issue)
	}
	if issue.StatusName != "In Progress" || issue.Priority != "High" {
		t.Errorf("status = %q priority = %q", issue.StatusName, issue.Priority)
	}
	if len(issue.Labels) != 2 || issue.Labels[0] != "auth" {
		t.Errorf("labels = %v", issue.Labels)
	}
	if issue.URL != "https://acme.atlassian.net/browse/PROJ-1" {
		t.Errorf("url = %q", issue.URL)
	}
}

func TestParseJiraIssuesNestedFields(t *testing.T) {
	data := `{"issues": [
	  {
	    "key": "OPS-9",
	    "fields": {
	      "summary": "Rotate certs",
	      "status": {"name": "To Do", "statusCategory": {"name": "To Do"}},
	      "issuetype": {"name": "Task"},
	      "priority": {"name": "Medium"},
	      "labels": ["infra"],
	      "description": {
	        "type": "doc",
	        "content": [
	          {"type": "paragraph", "content": [{"type": "text", "text": "Certs expire "}, {"type": "text", "text": "soon."}]},
	          {"type": "paragraph", "content": [{"type": "text", "text": "Rotate them."}]}
	        ]
	      }
	    }
	  }
	]}`

	issues, err := parseJiraIssues([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 1 {
		t.Fatalf("got %d issues", len(issues))
	}
	issue := issues[0]
	if issue.Summary != "Rotate certs" || issue.StatusName != "To Do" {
		t.Errorf("issue = %+v", issue)
	}
	if issue.IssueType != "Task" || issue.Priority != "Medium" {
		t.Errorf("type = %q priority = %q", issue.IssueType, issue.Priority)
	}
	want := "Certs expire soon.\nRotate them."
	if issue.Description != want {
		t.Errorf("description = %q, want %q", issue.Description, want)
	}
}

func TestParseJiraIssueMissingKeySkipped(t *testing.T) {
	issues, err := parseJiraIssues([]byte(`[{"summary": "no key"}, {"key": "A-1"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 1 || issues[0].Key != "A-1" {
		t.Errorf("issues = %+v", issues)
	}
}

func TestParseJiraIssueStatusDefaultsUnknown(t *testing.T) {
	issues, err := parseJiraIssues([]byte(`[{"key": "A-1"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if issues[0].StatusName != "Unknown" {
		t.Errorf("status = %q", issues[0].StatusName)
	}
}

func TestValidProjectKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"PROJ", true},
		{"A1_B", true},
		{"X", true},
		{"", false},
		{"1ABC", false},
		{"proj", false},
		{"PROJ-1", false},
		{"AB C", false},
	}
	for _, tt := range tests {
		if got := validProjectKey(tt.key); got != tt.want {
			t.Errorf("validProjectKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestLooksLikeJiraKey(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"PROJ-123", true},
		{"A-1", true},
		{"proj-123", false},
		{"no dash", false},
		{"-123", false},
		{"needs-fix", false},
	}
	for _, tt := range tests {
		if got := looksLikeJiraKey(tt.query); got != tt.want {
			t.Errorf("looksLikeJiraKey(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestStatusOptionsExcludesCurrent(t *testing.T) {
	options := StatusOptions("in progress")
	for _, o := range options {
		if strings.EqualFold(o, "In Progress") {
			t.Errorf("options %v include current status", options)
		}
	}
	if len(options) != 3 {
		t.Errorf("got %d options, want 3", len(options))
	}
}

func TestCategorizeJiraIssues(t *testing.T) {
	issues := []JiraIssue{
		{Key: "A-1", StatusName: "Backlog", StatusCategory: "To Do"},
		{Key: "A-2", StatusName: "In Review", StatusCategory: "In Progress"},
		{Key: "A-3", StatusName: "Backlog", StatusCategory: "To Do"},
		{Key: "A-4", StatusName: "Blocked", StatusCategory: "Weird"},
	}

	items := CategorizeJiraIssues(issues)

	var headers []string
	for _, item := range items {
		if item.Issue == nil {
			headers = append(headers, item.HeaderName)
		}
	}
	want := []string{"In Review", "Backlog", "Blocked"}
	if len(headers) != len(want) {
		t.Fatalf("headers = %v", headers)
	}
	for i := range want {
		if headers[i] != want[i] {
			t.Errorf("header %d = %q, want %q", i, headers[i], want[i])
		}
	}
	// Both Backlog issues sit under one header.
	if items[3].Issue.Key != "A-1" || items[4].Issue.Key != "A-3" {
		t.Errorf("backlog group = %+v, %+v", items[3], items[4])
	}
}

func TestSearchMyIssuesRejectsBadProjectKey(t *testing.T) {
	_, err := SearchMyIssues(context.Background(), "bad key", "")
	if err == nil || !strings.Contains(err.Error(), "invalid Jira project key") {
		t.Errorf("err = %v", err)
	}
}
