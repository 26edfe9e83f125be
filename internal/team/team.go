// Package team loads agent team state: team configs, task lists and agent
// inboxes, plus the per-member status derived from them.
package team

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Member is one agent in a team config.
type Member struct {
	Name      string `json:"name"`
	AgentType string `json:"agentType"`
	Model     string `json:"model"`
	Color     string `json:"color"`
}

// Config is a team's config.json.
type Config struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	LeadAgent   string   `json:"leadAgentName"`
	Members     []Member `json:"members"`
}

// Lead returns the configured lead agent name, defaulting to "team-lead".
func (c Config) Lead() string {
	if c.LeadAgent != "" {
		return c.LeadAgent
	}
	return "team-lead"
}

// List returns the names of all teams under teamsDir, sorted.
func List(teamsDir string) ([]string, error) {
	entries, err := os.ReadDir(teamsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading teams dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// LoadConfig reads teams/<name>/config.json.
func LoadConfig(teamsDir, name string) (Config, error) {
	data, err := os.ReadFile(filepath.Join(teamsDir, name, "config.json"))
	if err != nil {
		return Config{}, fmt.Errorf("reading team config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing team config: %w", err)
	}
	if cfg.Name == "" {
		cfg.Name = name
	}
	return cfg, nil
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// Icon returns the marker shown in the task list.
func (s TaskStatus) Icon() string {
	switch s {
	case TaskCompleted:
		return "[X]"
	case TaskInProgress:
		return "[=]"
	default:
		return "[ ]"
	}
}

// Task is one task JSON under tasks/<team>/.
type Task struct {
	ID          string     `json:"id"`
	Subject     string     `json:"subject"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Owner       string     `json:"owner"`
	BlockedBy   []string   `json:"blockedBy"`
}

// LoadTasks reads every task file of a team, ordered by numeric id where
// possible. Malformed files are skipped.
func LoadTasks(tasksDir, teamName string) ([]Task, error) {
	dir := filepath.Join(tasksDir, teamName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading tasks dir: %w", err)
	}

	var tasks []Task
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var task Task
		if err := json.Unmarshal(data, &task); err != nil {
			continue
		}
		tasks = append(tasks, task)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		a, aerr := strconv.Atoi(tasks[i].ID)
		b, berr := strconv.Atoi(tasks[j].ID)
		if aerr == nil && berr == nil {
			return a < b
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}
