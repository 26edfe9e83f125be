// Package paths resolves Claude Code's on-disk layout: the Claude home
// directory and the encoded per-project directory names under projects/.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// EnvClaudeHome overrides the Claude home directory when set.
const EnvClaudeHome = "ASSOC_CLAUDE_HOME"

// ClaudeHome returns the base directory for all Claude Code data.
// Honors the ASSOC_CLAUDE_HOME override, otherwise ~/.claude.
func ClaudeHome() string {
	if p := os.Getenv(EnvClaudeHome); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claude"
	}
	return filepath.Join(home, ".claude")
}

// EncodeProjectPath converts an absolute project path into the directory
// name Claude Code uses under projects/. The encoding is two ordered
// substitutions: the drive-root separator sequence (":\" or ":/") collapses
// to "--" first, then every remaining separator collapses to "-".
//
//	C:\dev\myproject -> C--dev-myproject
//	/home/me/code    -> -home-me-code
func EncodeProjectPath(path string) string {
	s := strings.ReplaceAll(path, `:\`, "--")
	s = strings.ReplaceAll(s, ":/", "--")
	s = strings.ReplaceAll(s, `\`, "-")
	s = strings.ReplaceAll(s, "/", "-")
	return s
}

// ProjectDir returns the transcript directory for a project:
// <claudeHome>/projects/<encoded>.
func ProjectDir(claudeHome, projectPath string) string {
	return filepath.Join(claudeHome, "projects", EncodeProjectPath(projectPath))
}

// TeamsDir, TasksDir, TodosDir and PlansDir locate the shared (non
// per-project) state roots under the Claude home.
func TeamsDir(claudeHome string) string { return filepath.Join(claudeHome, "teams") }

func TasksDir(claudeHome string) string { return filepath.Join(claudeHome, "tasks") }

func TodosDir(claudeHome string) string { return filepath.Join(claudeHome, "todos") }

func PlansDir(claudeHome string) string { return filepath.Join(claudeHome, "plans") }
