package runner

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"sync"

	"github.com/Dicklesworthstone/assoc/internal/events"
	"github.com/Dicklesworthstone/assoc/internal/tracker"
	"github.com/Dicklesworthstone/assoc/internal/transcript"
)

// OutputMsg announces one raw line from a worker's stdout or stderr.
type OutputMsg struct {
	WorkerID int
	Line     string
	Stderr   bool
}

// StateMsg announces a worker state transition.
type StateMsg struct {
	WorkerID int
	State    State
}

// ProgressMsg announces a new parsed progress item.
type ProgressMsg struct {
	WorkerID int
}

const textSnippetLen = 80

// streamLine is one stream-json line from claude's headless mode. Only the
// fields the state machine reads are declared.
type streamLine struct {
	Type         string              `json:"type"`
	Subtype      string              `json:"subtype"`
	SessionID    string              `json:"session_id"`
	IsError      bool                `json:"is_error"`
	Result       string              `json:"result"`
	TotalCostUSD float64             `json:"total_cost_usd"`
	Message      *transcript.Message `json:"message"`
}

type proc struct {
	worker   Worker
	stdout   ring
	stderr   ring
	progress []ProgressItem
	cmd      *exec.Cmd
}

// Supervisor owns every spawned worker. All mutation happens under one lock;
// callers read copies.
type Supervisor struct {
	project string
	publish func(any)

	// command builds the worker process; replaced in tests.
	command func(prompt, cwd string) *exec.Cmd

	mu     sync.Mutex
	procs  map[int]*proc
	order  []int
	nextID int
}

// NewSupervisor creates a supervisor publishing worker messages through
// publish. The project name only labels the event log.
func NewSupervisor(project string, publish func(any)) *Supervisor {
	return &Supervisor{
		project: project,
		publish: publish,
		command: claudeCommand,
		procs:   make(map[int]*proc),
		nextID:  1,
	}
}

func claudeCommand(prompt, cwd string) *exec.Cmd {
	cmd := exec.Command("claude",
		"-p", prompt,
		"--dangerously-skip-permissions",
		"--output-format", "stream-json",
		"--verbose")
	cmd.Dir = cwd
	return cmd
}

// Spawn starts a worker for the ticket and returns its ID.
func (s *Supervisor) Spawn(ticket tracker.Ticket, prompt, cwd string) (int, error) {
	cmd := s.command(prompt, cwd)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("spawning worker: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 0, fmt.Errorf("spawning worker: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("spawning worker: %w", err)
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.procs[id] = &proc{
		worker: Worker{
			ID:     id,
			Label:  ticket.Key,
			Title:  ticket.Title,
			Source: ticket.Source,
			Prompt: prompt,
			Cwd:    cwd,
			State:  StateStarting,
		},
		cmd: cmd,
	}
	s.order = append(s.order, id)
	s.mu.Unlock()

	events.EmitWorker(events.EventWorkerSpawn, s.project, strconv.Itoa(id), ticket.Key, ticket.Source.String())

	var readers sync.WaitGroup
	readers.Add(2)
	go func() {
		defer readers.Done()
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			s.handleLine(id, scanner.Text(), false)
		}
	}()
	go func() {
		defer readers.Done()
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			s.handleLine(id, scanner.Text(), true)
		}
	}()
	go func() {
		readers.Wait()
		s.finish(id, cmd.Wait())
	}()

	return id, nil
}

// handleLine records one output line and advances the state machine for
// stdout lines that parse as stream-json.
func (s *Supervisor) handleLine(id int, line string, isStderr bool) {
	s.mu.Lock()
	p, ok := s.procs[id]
	if !ok {
		s.mu.Unlock()
		return
	}

	var msgs []any
	if isStderr {
		p.stderr.push(line)
	} else {
		p.stdout.push(line)
		msgs = s.parseLine(p, line)
	}
	s.mu.Unlock()

	s.publish(OutputMsg{WorkerID: id, Line: line, Stderr: isStderr})
	for _, msg := range msgs {
		s.publish(msg)
	}
}

// parseLine interprets one stream-json line. Called with the lock held;
// returns messages to publish after unlock.
func (s *Supervisor) parseLine(p *proc, line string) []any {
	var sl streamLine
	if err := json.Unmarshal([]byte(line), &sl); err != nil || sl.Type == "" {
		return nil
	}

	var msgs []any
	w := &p.worker
	if w.State == StateStarting {
		w.State = StateRunning
		msgs = append(msgs, StateMsg{WorkerID: w.ID, State: StateRunning})
	}

	switch sl.Type {
	case "system":
		if sl.Subtype == "init" && sl.SessionID != "" && w.SessionID == "" {
			w.SessionID = sl.SessionID
			p.progress = append(p.progress, ProgressItem{Kind: ProgressSession, Text: "session " + sl.SessionID})
			msgs = append(msgs, ProgressMsg{WorkerID: w.ID})
		}
	case "assistant":
		if sl.Message == nil {
			break
		}
		added := false
		for _, block := range sl.Message.Content.Blocks {
			switch block.Type {
			case "tool_use":
				p.progress = append(p.progress, ProgressItem{Kind: ProgressTool, Text: block.Name})
				added = true
			case "text":
				if text := truncateRunes(block.Text, textSnippetLen); text != "" {
					p.progress = append(p.progress, ProgressItem{Kind: ProgressText, Text: text})
					added = true
				}
			}
		}
		if text := truncateRunes(sl.Message.Content.Text, textSnippetLen); text != "" {
			p.progress = append(p.progress, ProgressItem{Kind: ProgressText, Text: text})
			added = true
		}
		if added {
			msgs = append(msgs, ProgressMsg{WorkerID: w.ID})
		}
	case "result":
		if w.State.Terminal() {
			break
		}
		if sl.IsError || (sl.Subtype != "" && sl.Subtype != "success") {
			reason := sl.Result
			if reason == "" {
				reason = sl.Subtype
			}
			w.State = StateFailed
			w.Reason = reason
			events.EmitWorker(events.EventWorkerFailed, s.project, strconv.Itoa(w.ID), w.Label, w.Source.String())
		} else {
			w.State = StateCompleted
			w.CostUSD = sl.TotalCostUSD
			events.EmitWorker(events.EventWorkerDone, s.project, strconv.Itoa(w.ID), w.Label, w.Source.String())
		}
		msgs = append(msgs, StateMsg{WorkerID: w.ID, State: w.State})
	}
	return msgs
}

// finish settles a worker's state once the process exits. A terminal result
// line (or a kill) always wins; otherwise the exit status decides.
func (s *Supervisor) finish(id int, waitErr error) {
	s.mu.Lock()
	p, ok := s.procs[id]
	if !ok || p.worker.State.Terminal() {
		s.mu.Unlock()
		return
	}
	w := &p.worker
	w.State = StateFailed
	switch {
	case waitErr == nil:
		// Exit zero but no result marker: the stream was cut short.
		w.Reason = "exited without result"
	default:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			w.Reason = fmt.Sprintf("exited with status %d", exitErr.ExitCode())
		} else {
			w.Reason = waitErr.Error()
		}
	}
	state := w.State
	label, source := w.Label, w.Source.String()
	s.mu.Unlock()

	events.EmitWorker(events.EventWorkerFailed, s.project, strconv.Itoa(id), label, source)
	s.publish(StateMsg{WorkerID: id, State: state})
}

// Kill terminates a running worker. The transition to Killed is immediate;
// the signal is fire and forget.
func (s *Supervisor) Kill(id int) {
	s.mu.Lock()
	p, ok := s.procs[id]
	if !ok || p.worker.State.Terminal() {
		s.mu.Unlock()
		return
	}
	p.worker.State = StateKilled
	cmd := p.cmd
	label, source := p.worker.Label, p.worker.Source.String()
	s.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	events.EmitWorker(events.EventWorkerKilled, s.project, strconv.Itoa(id), label, source)
	s.publish(StateMsg{WorkerID: id, State: StateKilled})
}

// Dismiss drops a terminal worker from the list.
func (s *Supervisor) Dismiss(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.procs[id]
	if !ok {
		return fmt.Errorf("no worker %d", id)
	}
	if !p.worker.State.Terminal() {
		return fmt.Errorf("worker %d is still running", id)
	}
	delete(s.procs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Worker returns a snapshot of one worker.
func (s *Supervisor) Worker(id int) (Worker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.procs[id]
	if !ok {
		return Worker{}, false
	}
	return snapshot(p), true
}

// Workers returns snapshots of all workers in spawn order.
func (s *Supervisor) Workers() []Worker {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Worker, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, snapshot(s.procs[id]))
	}
	return out
}

// RunningCount counts workers not yet in a terminal state.
func (s *Supervisor) RunningCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.procs {
		if !p.worker.State.Terminal() {
			n++
		}
	}
	return n
}

func snapshot(p *proc) Worker {
	w := p.worker
	w.Progress = append([]ProgressItem(nil), p.progress...)
	w.Output = p.stdout.snapshot()
	w.Errors = p.stderr.snapshot()
	return w
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
