package tracker

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// IsAvailable reports whether a CLI tool responds to --version.
func IsAvailable(cmd string) bool {
	return exec.Command(cmd, "--version").Run() == nil
}

// OpenURL opens an http(s) URL in the default browser. Non-web URLs are
// ignored.
func OpenURL(url string) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return
	}
	switch runtime.GOOS {
	case "darwin":
		_ = exec.Command("open", url).Start()
	case "windows":
		_ = exec.Command("cmd", "/C", "start", "", url).Start()
	default:
		_ = exec.Command("xdg-open", url).Start()
	}
}

// DetectRepo resolves the owner/repo slug from the origin remote, walking
// up parent directories when cwd itself is not a repository.
func DetectRepo(cwd string) string {
	if repo := remoteSlug(cwd); repo != "" {
		return repo
	}
	for dir := filepath.Dir(cwd); ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return remoteSlug(dir)
		}
		if dir == filepath.Dir(dir) {
			return ""
		}
	}
}

func remoteSlug(dir string) string {
	out, err := exec.Command("git", "-C", dir, "remote", "get-url", "origin").Output()
	if err != nil {
		return ""
	}
	return parseRepoURL(strings.TrimSpace(string(out)))
}

// parseRepoURL extracts owner/repo from SSH and HTTPS GitHub remotes.
func parseRepoURL(url string) string {
	for _, prefix := range []string{"git@github.com:", "https://github.com/"} {
		if rest, ok := strings.CutPrefix(url, prefix); ok {
			return strings.TrimSuffix(rest, ".git")
		}
	}
	return ""
}

// DetectUser returns the authenticated gh login, or "" when gh is missing
// or unauthenticated.
func DetectUser() string {
	out, err := exec.Command("gh", "api", "user", "--jq", ".login").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
