package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Actor is a GitHub user reference as gh reports it.
type Actor struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

// Label is a repository label.
type Label struct {
	Name string `json:"name"`
}

// PullRequest mirrors the fields requested from `gh pr list --json`.
type PullRequest struct {
	Number         int     `json:"number"`
	Title          string  `json:"title"`
	State          string  `json:"state"`
	Author         Actor   `json:"author"`
	URL            string  `json:"url"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
	HeadRefName    string  `json:"headRefName"`
	BaseRefName    string  `json:"baseRefName"`
	IsDraft        bool    `json:"isDraft"`
	Additions      int     `json:"additions"`
	Deletions      int     `json:"deletions"`
	ReviewDecision string  `json:"reviewDecision"`
	Assignees      []Actor `json:"assignees"`
	Labels         []Label `json:"labels"`
}

// SizeLabel buckets a PR by total changed lines.
func (pr PullRequest) SizeLabel() string {
	switch total := pr.Additions + pr.Deletions; {
	case total < 10:
		return "XS"
	case total < 50:
		return "S"
	case total < 250:
		return "M"
	case total < 1000:
		return "L"
	default:
		return "XL"
	}
}

// ReviewIcon renders the review decision as a fixed-width marker.
func (pr PullRequest) ReviewIcon() string {
	switch pr.ReviewDecision {
	case "APPROVED":
		return "[+]"
	case "CHANGES_REQUESTED":
		return "[!]"
	case "REVIEW_REQUIRED":
		return "[?]"
	}
	return "[ ]"
}

// Milestone is a GitHub milestone reference.
type Milestone struct {
	Title string `json:"title"`
}

// IssueComment is one comment on a GitHub issue.
type IssueComment struct {
	Author    Actor  `json:"author"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

// GitHubIssue mirrors the fields requested from `gh issue list --json`.
type GitHubIssue struct {
	Number    int            `json:"number"`
	Title     string         `json:"title"`
	State     string         `json:"state"`
	URL       string         `json:"url"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt string         `json:"updatedAt"`
	Author    Actor          `json:"author"`
	Labels    []Label        `json:"labels"`
	Assignees []Actor        `json:"assignees"`
	Body      string         `json:"body"`
	Comments  []IssueComment `json:"comments"`
	Milestone *Milestone     `json:"milestone"`
}

const ghListLimit = "100"

var prListFields = strings.Join([]string{
	"number", "title", "state", "author", "url", "createdAt", "updatedAt",
	"headRefName", "baseRefName", "isDraft", "additions", "deletions",
	"reviewDecision", "assignees", "labels",
}, ",")

var issueListFields = strings.Join([]string{
	"number", "title", "state", "url", "createdAt", "updatedAt",
	"author", "labels", "assignees", "body", "comments", "milestone",
}, ",")

// ListOpenPRs fetches open pull requests for owner/repo via gh.
func ListOpenPRs(ctx context.Context, repo string) ([]PullRequest, error) {
	out, err := runCLI(ctx, "gh", "pr", "list",
		"--repo", repo,
		"--state", "open",
		"--limit", ghListLimit,
		"--json", prListFields)
	if err != nil {
		return nil, err
	}
	var prs []PullRequest
	if err := json.Unmarshal(out, &prs); err != nil {
		return nil, fmt.Errorf("parsing gh pr list output: %w", err)
	}
	return prs, nil
}

// ListIssues fetches issues in the given state for owner/repo via gh.
func ListIssues(ctx context.Context, repo, state string) ([]GitHubIssue, error) {
	out, err := runCLI(ctx, "gh", "issue", "list",
		"--repo", repo,
		"--state", state,
		"--limit", ghListLimit,
		"--json", issueListFields)
	if err != nil {
		return nil, err
	}
	var issues []GitHubIssue
	if err := json.Unmarshal(out, &issues); err != nil {
		return nil, fmt.Errorf("parsing gh issue list output: %w", err)
	}
	return issues, nil
}

// RepoHasIssues reports whether the repo has its issue tracker enabled.
// Any gh failure reads as disabled.
func RepoHasIssues(ctx context.Context, repo string) bool {
	out, err := runCLI(ctx, "gh", "repo", "view", repo,
		"--json", "hasIssuesEnabled", "--jq", ".hasIssuesEnabled")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) == "true"
}

// PRItem is a row of the PR list: a section header or a pull request.
type PRItem struct {
	Header string
	PR     *PullRequest
}

// CategorizePRs splits PRs into My PRs, Assigned to Me, and Other Open,
// newest-updated first within each section. Empty sections are omitted.
func CategorizePRs(prs []PullRequest, currentUser string) []PRItem {
	var mine, assigned, other []*PullRequest
	for i := range prs {
		pr := &prs[i]
		switch {
		case strings.EqualFold(pr.Author.Login, currentUser):
			mine = append(mine, pr)
		case anyLogin(pr.Assignees, currentUser):
			assigned = append(assigned, pr)
		default:
			other = append(other, pr)
		}
	}

	var items []PRItem
	appendSection := func(name string, group []*PullRequest) {
		if len(group) == 0 {
			return
		}
		sort.SliceStable(group, func(i, j int) bool { return group[i].UpdatedAt > group[j].UpdatedAt })
		items = append(items, PRItem{Header: fmt.Sprintf("%s (%d)", name, len(group))})
		for _, pr := range group {
			items = append(items, PRItem{PR: pr})
		}
	}
	appendSection("My PRs", mine)
	appendSection("Assigned to Me", assigned)
	appendSection("Other Open", other)
	return items
}

// IssueItem is a row of the issue list: a section header or an issue.
type IssueItem struct {
	Header string
	Issue  *GitHubIssue
}

// CategorizeIssues splits issues into Assigned to Me, My Issues, and Other.
// Assignment wins over authorship when both apply.
func CategorizeIssues(issues []GitHubIssue, currentUser string) []IssueItem {
	var assigned, mine, other []*GitHubIssue
	for i := range issues {
		issue := &issues[i]
		switch {
		case anyLogin(issue.Assignees, currentUser):
			assigned = append(assigned, issue)
		case strings.EqualFold(issue.Author.Login, currentUser):
			mine = append(mine, issue)
		default:
			other = append(other, issue)
		}
	}

	var items []IssueItem
	appendSection := func(name string, group []*GitHubIssue) {
		if len(group) == 0 {
			return
		}
		sort.SliceStable(group, func(i, j int) bool { return group[i].UpdatedAt > group[j].UpdatedAt })
		items = append(items, IssueItem{Header: fmt.Sprintf("%s (%d)", name, len(group))})
		for _, issue := range group {
			items = append(items, IssueItem{Issue: issue})
		}
	}
	appendSection("Assigned to Me", assigned)
	appendSection("My Issues", mine)
	appendSection("Other", other)
	return items
}

func anyLogin(actors []Actor, login string) bool {
	for _, a := range actors {
		if strings.EqualFold(a.Login, login) {
			return true
		}
	}
	return false
}

// CreateIssue opens a new issue.
func CreateIssue(ctx context.Context, repo, title, body string) error {
	args := []string{"issue", "create", "--repo", repo, "--title", title}
	if body != "" {
		args = append(args, "--body", body)
	}
	_, err := runCLI(ctx, "gh", args...)
	return err
}

// EditIssue rewrites an issue's title and body.
func EditIssue(ctx context.Context, repo string, number int, title, body string) error {
	_, err := runCLI(ctx, "gh", "issue", "edit", strconv.Itoa(number),
		"--repo", repo, "--title", title, "--body", body)
	return err
}

// CloseIssue closes an issue.
func CloseIssue(ctx context.Context, repo string, number int) error {
	_, err := runCLI(ctx, "gh", "issue", "close", strconv.Itoa(number), "--repo", repo)
	return err
}

// ReopenIssue reopens a closed issue.
func ReopenIssue(ctx context.Context, repo string, number int) error {
	_, err := runCLI(ctx, "gh", "issue", "reopen", strconv.Itoa(number), "--repo", repo)
	return err
}

// CommentIssue adds a comment to an issue.
func CommentIssue(ctx context.Context, repo string, number int, body string) error {
	_, err := runCLI(ctx, "gh", "issue", "comment", strconv.Itoa(number),
		"--repo", repo, "--body", body)
	return err
}
