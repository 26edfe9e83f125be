package team

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// InboxMessage is one entry of an agent's inbox file. The text field may
// itself be a JSON-encoded structured message.
type InboxMessage struct {
	From      string     `json:"from"`
	Text      string     `json:"text"`
	Timestamp *time.Time `json:"timestamp"`
	Read      *bool      `json:"read"`
	Color     string     `json:"color"`
}

// LoadInbox reads teams/<team>/inboxes/<agent>.json, most recent first.
// A missing inbox is an empty inbox.
func LoadInbox(teamsDir, teamName, agentName string) ([]InboxMessage, error) {
	path := filepath.Join(teamsDir, teamName, "inboxes", agentName+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading inbox: %w", err)
	}

	var messages []InboxMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("parsing inbox: %w", err)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		a, b := messages[i].Timestamp, messages[j].Timestamp
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return messages, nil
}

// Type returns the structured message type when the text is JSON, or "".
func (m InboxMessage) Type() string {
	if !strings.HasPrefix(m.Text, "{") {
		return ""
	}
	var payload struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(m.Text), &payload); err != nil {
		return ""
	}
	return payload.Type
}

// DisplayText returns a one-line human summary of the message, decoding
// structured JSON payloads where recognized.
func (m InboxMessage) DisplayText() string {
	if !strings.HasPrefix(m.Text, "{") {
		return m.Text
	}
	var val map[string]json.RawMessage
	if err := json.Unmarshal([]byte(m.Text), &val); err != nil {
		return m.Text
	}
	return formatStructured(val, m.Text)
}

// DisplayTime formats the timestamp for the inbox pane, or "".
func (m InboxMessage) DisplayTime() string {
	if m.Timestamp == nil {
		return ""
	}
	return m.Timestamp.Format("01/02 15:04")
}

func rawString(val map[string]json.RawMessage, key string) string {
	raw, ok := val[key]
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func formatStructured(val map[string]json.RawMessage, original string) string {
	switch rawString(val, "type") {
	case "task_assignment":
		subject := rawString(val, "subject")
		if subject == "" {
			subject = "(no subject)"
		}
		taskID := rawString(val, "taskId")
		if taskID == "" {
			taskID = "?"
		}
		return fmt.Sprintf("[Task #%s] %s", taskID, subject)
	case "idle_notification":
		agent := rawString(val, "from")
		if agent == "" {
			agent = rawString(val, "agentName")
		}
		if agent == "" {
			agent = "agent"
		}
		return agent + " is idle"
	case "shutdown_request":
		return "Shutdown requested"
	case "shutdown_approved":
		return "Shutdown approved"
	case "plan_approval_request":
		from := rawString(val, "from")
		if from == "" {
			from = "agent"
		}
		return "Plan approval requested by " + from
	case "plan_approval_response":
		var approved bool
		if raw, ok := val["approve"]; ok {
			json.Unmarshal(raw, &approved)
		}
		if approved {
			return "Plan approved"
		}
		if content := rawString(val, "content"); content != "" {
			return "Plan rejected: " + content
		}
		return "Plan rejected"
	case "task_completed":
		taskID := rawString(val, "taskId")
		if taskID == "" {
			taskID = "?"
		}
		return fmt.Sprintf("Task #%s completed", taskID)
	case "message":
		if content := rawString(val, "content"); content != "" {
			return content
		}
		return original
	default:
		msgType := rawString(val, "type")
		content := rawString(val, "content")
		if content == "" {
			content = rawString(val, "subject")
		}
		if content != "" {
			return fmt.Sprintf("[%s] %s", msgType, content)
		}
		return original
	}
}
