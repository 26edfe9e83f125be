// Package runner spawns and supervises headless Claude Code workers. Each
// worker runs `claude -p <prompt>` with stream-json output; its lines feed a
// small state machine that tracks progress and the final result.
package runner

import (
	"fmt"

	"github.com/Dicklesworthstone/assoc/internal/tracker"
)

// MaxOutputLines caps the retained raw output per stream.
const MaxOutputLines = 10_000

// State is a worker's lifecycle stage. Completed, Failed and Killed are
// terminal: no later line or exit can change them.
type State int

const (
	StateStarting State = iota
	StateRunning
	StateCompleted
	StateFailed
	StateKilled
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateCompleted:
		return "DONE"
	case StateFailed:
		return "FAILED"
	case StateKilled:
		return "KILLED"
	}
	return "?"
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateKilled
}

// ProgressKind classifies a parsed progress item.
type ProgressKind int

const (
	ProgressSession ProgressKind = iota
	ProgressTool
	ProgressText
)

// ProgressItem is one human-readable line of worker progress.
type ProgressItem struct {
	Kind ProgressKind
	Text string
}

// Worker is a snapshot of one spawned process.
type Worker struct {
	ID        int
	Label     string
	Title     string
	Source    tracker.TicketSource
	Prompt    string
	Cwd       string
	State     State
	Reason    string
	CostUSD   float64
	SessionID string
	Progress  []ProgressItem
	Output    []string
	Errors    []string
}

// StatusIcon renders the state as a fixed-width marker.
func (w Worker) StatusIcon() string {
	switch w.State {
	case StateStarting:
		return " ~ "
	case StateRunning:
		return " * "
	case StateCompleted:
		return " + "
	default:
		return " x "
	}
}

// StatusText is the state plus the failure reason or final cost.
func (w Worker) StatusText() string {
	switch w.State {
	case StateCompleted:
		return fmt.Sprintf("%s ($%.2f)", w.State, w.CostUSD)
	case StateFailed:
		if w.Reason != "" {
			return fmt.Sprintf("%s: %s", w.State, w.Reason)
		}
	}
	return w.State.String()
}

// ring is a bounded line buffer that drops the oldest lines.
type ring struct {
	lines []string
	start int
}

func (r *ring) push(line string) {
	if len(r.lines) < MaxOutputLines {
		r.lines = append(r.lines, line)
		return
	}
	r.lines[r.start] = line
	r.start = (r.start + 1) % len(r.lines)
}

func (r *ring) snapshot() []string {
	out := make([]string, 0, len(r.lines))
	out = append(out, r.lines[r.start:]...)
	out = append(out, r.lines[:r.start]...)
	return out
}

func (r *ring) len() int { return len(r.lines) }
