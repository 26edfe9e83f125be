package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

const linearEndpoint = "https://api.linear.app/graphql"

// LinearIssue is one work item from Linear's GraphQL API.
type LinearIssue struct {
	Identifier    string       `json:"identifier"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Priority      int          `json:"priority"`
	PriorityLabel string       `json:"priorityLabel"`
	State         LinearState  `json:"state"`
	Assignee      *LinearUser  `json:"assignee"`
	Labels        LinearLabels `json:"labels"`
	URL           string       `json:"url"`
	Team          *LinearTeam  `json:"team"`
	CreatedAt     string       `json:"createdAt"`
	UpdatedAt     string       `json:"updatedAt"`
}

// LinearState is a workflow state. Type is one of Linear's fixed state
// categories: triage, backlog, unstarted, started, completed, canceled.
type LinearState struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
}

// LinearUser is an assignee reference.
type LinearUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LinearLabels wraps the GraphQL connection shape.
type LinearLabels struct {
	Nodes []LinearLabel `json:"nodes"`
}

// LinearLabel is one issue label.
type LinearLabel struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// LinearTeam is the owning team.
type LinearTeam struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// PriorityIcon renders the numeric priority as a fixed-width marker.
func (i LinearIssue) PriorityIcon() string {
	switch i.Priority {
	case 1:
		return "!!!"
	case 2:
		return "!! "
	case 3:
		return "!  "
	case 4:
		return ".  "
	}
	return "   "
}

// LinearClient fetches issues from Linear. Email, when set, switches from
// the viewer's assigned issues to a filtered issues query; TeamKey narrows
// either query to one team.
type LinearClient struct {
	APIKey  string
	Email   string
	TeamKey string

	// Endpoint and HTTPClient are overridable for tests.
	Endpoint   string
	HTTPClient *http.Client
}

// FetchMyIssues lists open issues for the configured user, excluding
// completed and canceled states, most recently updated first.
func (c *LinearClient) FetchMyIssues(ctx context.Context) ([]LinearIssue, error) {
	query := buildLinearQuery(c.Email, c.TeamKey)
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, err
	}

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = linearEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.APIKey)

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linear request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading linear response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("linear API returned %s", resp.Status)
	}
	return parseLinearResponse(data, c.Email != "")
}

func buildLinearQuery(email, teamKey string) string {
	filters := []string{`state: { type: { nin: ["completed", "canceled"] } }`}
	if teamKey != "" {
		filters = append(filters, fmt.Sprintf(`team: { key: { eq: %q } }`, teamKey))
	}
	filterStr := strings.Join(filters, ", ")

	const nodeFields = `nodes { identifier title description priority priorityLabel ` +
		`state { name type color } assignee { name email } labels { nodes { name color } } ` +
		`url team { name key } createdAt updatedAt }`

	if email != "" {
		return fmt.Sprintf(
			`query { issues(filter: { assignee: { email: { eq: %q } }, %s }, first: 50, orderBy: updatedAt) { %s } }`,
			email, filterStr, nodeFields)
	}
	return fmt.Sprintf(
		`query { viewer { assignedIssues(filter: { %s }, first: 50, orderBy: updatedAt) { %s } } }`,
		filterStr, nodeFields)
}

func parseLinearResponse(data []byte, usedIssuesQuery bool) ([]LinearIssue, error) {
	var resp struct {
		Data struct {
			Issues *struct {
				Nodes []LinearIssue `json:"nodes"`
			} `json:"issues"`
			Viewer *struct {
				AssignedIssues struct {
					Nodes []LinearIssue `json:"nodes"`
				} `json:"assignedIssues"`
			} `json:"viewer"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing linear response: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("linear API error: %s", resp.Errors[0].Message)
	}

	if usedIssuesQuery {
		if resp.Data.Issues == nil {
			return nil, fmt.Errorf("unexpected response structure from Linear API")
		}
		return resp.Data.Issues.Nodes, nil
	}
	if resp.Data.Viewer == nil {
		return nil, fmt.Errorf("unexpected response structure from Linear API")
	}
	return resp.Data.Viewer.AssignedIssues.Nodes, nil
}

// LinearItem is a row of the Linear list: a state group header or an issue.
type LinearItem struct {
	HeaderName string
	HeaderType string
	Issue      *LinearIssue
}

// CategorizeLinearIssues groups issues by workflow state, started states
// first, then unstarted, then backlog, then anything else.
func CategorizeLinearIssues(issues []LinearIssue) []LinearItem {
	type group struct {
		name      string
		stateType string
	}
	var order []group
	for _, issue := range issues {
		seen := false
		for _, g := range order {
			if g.name == issue.State.Name {
				seen = true
				break
			}
		}
		if !seen {
			order = append(order, group{issue.State.Name, issue.State.Type})
		}
	}
	rank := func(stateType string) int {
		switch stateType {
		case "started":
			return 0
		case "unstarted":
			return 1
		case "backlog":
			return 2
		}
		return 3
	}
	sort.SliceStable(order, func(i, j int) bool { return rank(order[i].stateType) < rank(order[j].stateType) })

	var items []LinearItem
	for _, g := range order {
		items = append(items, LinearItem{HeaderName: g.name, HeaderType: g.stateType})
		for i := range issues {
			if issues[i].State.Name == g.name {
				items = append(items, LinearItem{Issue: &issues[i]})
			}
		}
	}
	return items
}
