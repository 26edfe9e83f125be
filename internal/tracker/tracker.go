// Package tracker fetches work items from remote issue trackers: GitHub
// pull requests and issues through the gh CLI, Jira through acli, and
// Linear through its GraphQL API. A fixed-interval poller refreshes each
// integration independently and never overlaps fetches.
package tracker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// runCLI executes a command and returns its stdout. On failure the error
// carries the trimmed stderr so the status line can show something useful.
func runCLI(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			msg := strings.TrimSpace(string(bytes.TrimRight(exitErr.Stderr, "\n")))
			return nil, fmt.Errorf("%s failed: %s", name, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
