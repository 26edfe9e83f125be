package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// JiraIssue is a normalized work item from acli. The CLI emits either a
// flat object or the REST shape with a nested "fields" object; parsing
// accepts both.
type JiraIssue struct {
	Key            string
	Summary        string
	StatusName     string
	StatusCategory string
	IssueType      string
	Priority       string
	Labels         []string
	Description    string
	URL            string
}

// Common statuses offered in the transition popup. acli has no
// get-transitions command, so a fixed list stands in.
var commonJiraStatuses = []string{"To Do", "In Progress", "In Review", "Done"}

// SearchMyIssues lists issues assigned to the current user that are not
// Done. A project key scopes the query; a custom JQL replaces it entirely.
func SearchMyIssues(ctx context.Context, projectKey, customJQL string) ([]JiraIssue, error) {
	jql := customJQL
	if jql == "" {
		jql = "assignee = currentUser() AND statusCategory not in (Done)"
		if projectKey != "" {
			if !validProjectKey(projectKey) {
				return nil, fmt.Errorf("invalid Jira project key %q: must match [A-Z][A-Z0-9_]+", projectKey)
			}
			jql += fmt.Sprintf(" AND project = %q", projectKey)
		}
		jql += " ORDER BY status ASC, updated DESC"
	}
	return searchJQL(ctx, jql)
}

// SearchIssues looks up issues by key or label. A query shaped like an
// issue key (PROJ-123) searches by key, anything else by label.
func SearchIssues(ctx context.Context, query string) ([]JiraIssue, error) {
	safe := strings.ReplaceAll(query, `\`, `\\`)
	safe = strings.ReplaceAll(safe, `"`, `\"`)
	var jql string
	if looksLikeJiraKey(query) {
		jql = fmt.Sprintf(`key = "%s"`, safe)
	} else {
		jql = fmt.Sprintf(`labels = "%s"`, safe)
	}
	return searchJQL(ctx, jql)
}

func searchJQL(ctx context.Context, jql string) ([]JiraIssue, error) {
	out, err := runCLI(ctx, "acli", "jira", "workitem", "search", "--jql", jql, "--json")
	if err != nil {
		return nil, err
	}
	return parseJiraIssues(out)
}

// ViewIssue fetches full details for one issue, including its description.
func ViewIssue(ctx context.Context, key string) (JiraIssue, error) {
	out, err := runCLI(ctx, "acli", "jira", "workitem", "view", key, "--json")
	if err != nil {
		return JiraIssue{}, err
	}

	var value any
	if err := json.Unmarshal(out, &value); err != nil {
		return JiraIssue{}, fmt.Errorf("parsing acli output: %w", err)
	}
	// The output may be a single object or a one-element array.
	if arr, ok := value.([]any); ok {
		if len(arr) == 0 {
			return JiraIssue{}, errors.New("empty response from acli")
		}
		value = arr[0]
	}
	issue, ok := parseJiraIssue(value)
	if !ok {
		return JiraIssue{}, errors.New("failed to parse issue from acli output")
	}
	return issue, nil
}

// TransitionIssue moves an issue to a new status by name.
func TransitionIssue(ctx context.Context, key, statusName string) error {
	_, err := runCLI(ctx, "acli", "jira", "workitem", "transition",
		"--key", key, "--status", statusName, "--yes")
	return err
}

// StatusOptions returns transition targets, excluding the current status.
func StatusOptions(currentStatus string) []string {
	var options []string
	for _, s := range commonJiraStatuses {
		if !strings.EqualFold(s, currentStatus) {
			options = append(options, s)
		}
	}
	return options
}

// JiraItem is a row of the Jira list: a status group header or an issue.
type JiraItem struct {
	HeaderName     string
	HeaderCategory string
	Issue          *JiraIssue
}

// CategorizeJiraIssues groups issues by status name, In Progress statuses
// first, then To Do, then the rest. Within a category, groups keep their
// order of first appearance.
func CategorizeJiraIssues(issues []JiraIssue) []JiraItem {
	type group struct {
		name     string
		category string
	}
	var order []group
	for _, issue := range issues {
		seen := false
		for _, g := range order {
			if g.name == issue.StatusName {
				seen = true
				break
			}
		}
		if !seen {
			order = append(order, group{issue.StatusName, issue.StatusCategory})
		}
	}
	rank := func(category string) int {
		switch category {
		case "In Progress":
			return 0
		case "To Do":
			return 1
		}
		return 2
	}
	sort.SliceStable(order, func(i, j int) bool { return rank(order[i].category) < rank(order[j].category) })

	var items []JiraItem
	for _, g := range order {
		items = append(items, JiraItem{HeaderName: g.name, HeaderCategory: g.category})
		for i := range issues {
			if issues[i].StatusName == g.name {
				items = append(items, JiraItem{Issue: &issues[i]})
			}
		}
	}
	return items
}

func validProjectKey(key string) bool {
	if key == "" || key[0] < 'A' || key[0] > 'Z' {
		return false
	}
	for _, c := range key {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '_' {
			return false
		}
	}
	return true
}

// looksLikeJiraKey reports whether a query is shaped like PROJ-123.
func looksLikeJiraKey(query string) bool {
	prefix, _, found := strings.Cut(query, "-")
	if !found || prefix == "" {
		return false
	}
	for _, c := range prefix {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// parseJiraIssues handles a bare array, an {"issues": [...]} wrapper, or a
// single object.
func parseJiraIssues(data []byte) ([]JiraIssue, error) {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("parsing acli output: %w", err)
	}

	var arr []any
	switch v := value.(type) {
	case []any:
		arr = v
	case map[string]any:
		if wrapped, ok := v["issues"].([]any); ok {
			arr = wrapped
		} else {
			arr = []any{v}
		}
	default:
		return nil, errors.New("unexpected JSON format from acli")
	}

	var issues []JiraIssue
	for _, item := range arr {
		if issue, ok := parseJiraIssue(item); ok {
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

func parseJiraIssue(v any) (JiraIssue, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return JiraIssue{}, false
	}
	key, ok := obj["key"].(string)
	if !ok {
		return JiraIssue{}, false
	}

	issue := JiraIssue{
		Key:     key,
		Summary: firstString(obj, "summary", "fields.summary"),
	}

	issue.StatusName = firstString(obj,
		"statusName", "status_name", "status.name", "fields.status.name")
	if issue.StatusName == "" {
		issue.StatusName = "Unknown"
	}
	issue.StatusCategory = firstNamed(obj,
		"statusCategory", "status_category",
		"status.statusCategory.name", "fields.status.statusCategory.name")
	issue.IssueType = firstNamed(obj,
		"issueType", "issue_type", "issuetype.name", "fields.issuetype.name")
	issue.Priority = firstNamed(obj, "priority", "fields.priority")

	for _, path := range []string{"labels", "fields.labels"} {
		if arr, ok := lookupPath(obj, path).([]any); ok {
			for _, item := range arr {
				if s, ok := item.(string); ok {
					issue.Labels = append(issue.Labels, s)
				}
			}
			break
		}
	}

	for _, path := range []string{"description", "fields.description"} {
		switch desc := lookupPath(obj, path).(type) {
		case string:
			issue.Description = desc
		case map[string]any:
			// Atlassian Document Format: flatten to plain text.
			issue.Description = extractADFText(desc)
		}
		if issue.Description != "" {
			break
		}
	}

	issue.URL = browseURL(obj, key)
	return issue, true
}

// browseURL builds a browsable link from the REST "self" URL, an explicit
// "url" field, or the JIRA_URL environment variable.
func browseURL(obj map[string]any, key string) string {
	base := ""
	if self, ok := obj["self"].(string); ok {
		if i := strings.Index(self, "/rest/"); i >= 0 {
			base = self[:i]
		}
	}
	if base == "" {
		if u, ok := obj["url"].(string); ok {
			base = u
		}
	}
	if base == "" {
		base = os.Getenv("JIRA_URL")
	}
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/browse/" + key
}

// extractADFText recursively flattens an ADF document to plain text,
// inserting newlines after block-level nodes.
func extractADFText(v map[string]any) string {
	var buf strings.Builder
	adfText(v, &buf)
	return strings.TrimSpace(buf.String())
}

func adfText(v map[string]any, buf *strings.Builder) {
	if text, ok := v["text"].(string); ok {
		buf.WriteString(text)
	}
	if content, ok := v["content"].([]any); ok {
		for _, child := range content {
			if node, ok := child.(map[string]any); ok {
				adfText(node, buf)
			}
		}
	}
	switch v["type"] {
	case "paragraph", "heading", "bulletList", "orderedList", "listItem":
		buf.WriteByte('\n')
	}
}

// lookupPath walks dot-separated keys through nested objects.
func lookupPath(obj map[string]any, path string) any {
	var cur any = obj
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// firstString returns the first path that resolves to a string.
func firstString(obj map[string]any, paths ...string) string {
	for _, path := range paths {
		if s, ok := lookupPath(obj, path).(string); ok {
			return s
		}
	}
	return ""
}

// firstNamed is firstString but also accepts {"name": "..."} objects.
func firstNamed(obj map[string]any, paths ...string) string {
	for _, path := range paths {
		switch v := lookupPath(obj, path).(type) {
		case string:
			return v
		case map[string]any:
			if name, ok := v["name"].(string); ok {
				return name
			}
		}
	}
	return ""
}
