// Package config loads the per-project .assoc.toml file. A missing or
// unparsable file yields the defaults; configuration problems are never
// fatal to the dashboard.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is looked up in the project working directory.
const ConfigFileName = ".assoc.toml"

// Defaults for the display section.
const (
	DefaultTickRateMS  = 250
	DefaultDebounceMS  = 200
	DefaultTailLines   = 200
	DefaultPollSeconds = 60
)

// Config is the parsed .assoc.toml.
type Config struct {
	Display DisplayConfig `toml:"display"`
	Tabs    TabsConfig    `toml:"tabs"`
	GitHub  GitHubConfig  `toml:"github"`
	Jira    JiraConfig    `toml:"jira"`
	Linear  LinearConfig  `toml:"linear"`
}

// DisplayConfig tunes the event loop timings.
type DisplayConfig struct {
	TickRateMS int `toml:"tick_rate_ms"`
	DebounceMS int `toml:"debounce_ms"`
	TailLines  int `toml:"tail_lines"`
}

// TabsConfig enables or disables dashboard tabs. Disabled tabs also drop
// their watch roots and polls. Pointers distinguish "absent" from "false".
type TabsConfig struct {
	Sessions *bool `toml:"sessions"`
	Teams    *bool `toml:"teams"`
	Todos    *bool `toml:"todos"`
	Git      *bool `toml:"git"`
	Plans    *bool `toml:"plans"`
}

// GitHubConfig configures the PR and issue trackers. Repo overrides
// detection from the git origin remote.
type GitHubConfig struct {
	Repo   string             `toml:"repo"`
	Issues GitHubIssuesConfig `toml:"issues"`
}

// GitHubIssuesConfig configures the issues tab separately from PRs.
type GitHubIssuesConfig struct {
	Enabled *bool  `toml:"enabled"`
	Repo    string `toml:"repo"`
}

// JiraConfig scopes the Jira query. JQL replaces the default query entirely.
type JiraConfig struct {
	Project string `toml:"project"`
	JQL     string `toml:"jql"`
}

// LinearConfig holds Linear API access. An empty APIKey disables the tab.
type LinearConfig struct {
	APIKey   string `toml:"api_key"`
	Username string `toml:"username"`
	Team     string `toml:"team"`
}

// Load reads .assoc.toml from dir. Returns defaults when the file is
// missing or malformed.
func Load(dir string) Config {
	var cfg Config
	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if err != nil {
		return cfg
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// TickRate returns the redraw tick interval.
func (c Config) TickRate() time.Duration {
	if c.Display.TickRateMS > 0 {
		return time.Duration(c.Display.TickRateMS) * time.Millisecond
	}
	return DefaultTickRateMS * time.Millisecond
}

// Debounce returns the watcher coalescing window.
func (c Config) Debounce() time.Duration {
	if c.Display.DebounceMS > 0 {
		return time.Duration(c.Display.DebounceMS) * time.Millisecond
	}
	return DefaultDebounceMS * time.Millisecond
}

// TailLines returns how many lines to load from the end of a transcript on
// first open.
func (c Config) TailLines() int {
	if c.Display.TailLines > 0 {
		return c.Display.TailLines
	}
	return DefaultTailLines
}

func enabled(b *bool) bool { return b == nil || *b }

// TabEnabled reports whether a local-state tab (and its watch roots) is on.
func (c Config) TabEnabled(name string) bool {
	switch name {
	case "sessions":
		return enabled(c.Tabs.Sessions)
	case "teams":
		return enabled(c.Tabs.Teams)
	case "todos":
		return enabled(c.Tabs.Todos)
	case "git":
		return enabled(c.Tabs.Git)
	case "plans":
		return enabled(c.Tabs.Plans)
	}
	return true
}

// GitHubIssuesEnabled reports whether the GitHub issues tab is on. It
// defaults to on whenever a repo is resolvable.
func (c Config) GitHubIssuesEnabled() bool {
	return enabled(c.GitHub.Issues.Enabled)
}

// GitHubIssuesRepo returns the repo for the issues tab, falling back to the
// PR repo.
func (c Config) GitHubIssuesRepo() string {
	if c.GitHub.Issues.Repo != "" {
		return c.GitHub.Issues.Repo
	}
	return c.GitHub.Repo
}
