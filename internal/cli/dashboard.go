package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/assoc/internal/config"
	"github.com/Dicklesworthstone/assoc/internal/events"
	"github.com/Dicklesworthstone/assoc/internal/paths"
	"github.com/Dicklesworthstone/assoc/internal/runner"
	"github.com/Dicklesworthstone/assoc/internal/tracker"
	"github.com/Dicklesworthstone/assoc/internal/tui"
	"github.com/Dicklesworthstone/assoc/internal/watch"
)

// detectTimeout bounds the startup tracker probes (gh auth, repo lookup).
const detectTimeout = 10 * time.Second

func runDashboard() error {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return fmt.Errorf("assoc is an interactive dashboard and needs a terminal")
	}
	if _, _, err := term.GetSize(int(fd)); err != nil {
		return fmt.Errorf("reading terminal size: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	cfg := config.Load(cwd)
	home := paths.ClaudeHome()
	bus := events.NewBus(events.DefaultBufferSize)

	watcher, err := startWatcher(cfg, cwd, home, bus)
	if err != nil {
		return err
	}
	defer watcher.Close()

	det := detectTrackers(cfg, cwd)
	poller := startPoller(cfg, det, bus)
	defer poller.Stop()

	supervisor := runner.NewSupervisor(cwd, func(msg any) { bus.Publish(msg) })

	done := make(chan struct{})
	go tick(cfg.TickRate(), bus, done)
	defer close(done)

	events.Emit(events.EventAppStart, cwd, nil)
	defer events.Emit(events.EventAppQuit, cwd, nil)
	defer bus.Close()

	return tui.Run(tui.Options{
		ProjectPath:   cwd,
		ClaudeHome:    home,
		Config:        cfg,
		Bus:           bus,
		Poller:        poller,
		Supervisor:    supervisor,
		Repo:          det.repo,
		IssuesRepo:    det.issuesRepo,
		User:          det.user,
		JiraAvailable: det.jira,
		Linear:        det.linear,
	})
}

// startWatcher registers the roots for every enabled local tab. Missing
// roots are fine; the watcher retries them and reports degraded status.
func startWatcher(cfg config.Config, cwd, home string, bus *events.Bus) (*watch.Watcher, error) {
	classifier := &watch.Classifier{}
	var roots []watch.Root

	if cfg.TabEnabled("sessions") {
		classifier.ProjectDir = paths.ProjectDir(home, cwd)
		roots = append(roots, watch.Root{Path: classifier.ProjectDir, Recursive: true})
	}
	if cfg.TabEnabled("teams") {
		classifier.TeamsDir = paths.TeamsDir(home)
		classifier.TasksDir = paths.TasksDir(home)
		roots = append(roots,
			watch.Root{Path: classifier.TeamsDir, Recursive: true},
			watch.Root{Path: classifier.TasksDir, Recursive: true},
		)
	}
	if cfg.TabEnabled("todos") {
		classifier.TodosDir = paths.TodosDir(home)
		roots = append(roots, watch.Root{Path: classifier.TodosDir, Recursive: true})
	}
	if cfg.TabEnabled("plans") {
		classifier.PlansDir = paths.PlansDir(home)
		roots = append(roots, watch.Root{Path: classifier.PlansDir})
	}
	if cfg.TabEnabled("git") {
		// Non-recursive: index and HEAD live at the top level, and the rest
		// of .git churns far too much to watch whole.
		if gitDir := filepath.Join(cwd, ".git"); dirExists(gitDir) {
			classifier.GitDir = gitDir
			roots = append(roots, watch.Root{Path: gitDir})
		}
	}

	watcher, err := watch.New(classifier,
		func(ev watch.Event) { bus.Publish(ev) },
		watch.WithDebounceWindow(cfg.Debounce()),
		watch.WithErrorHandler(func(err error) {
			events.EmitError(cwd, "watch", err.Error())
		}),
		watch.WithStatusHandler(func(degraded bool, missing []string) {
			bus.Publish(tui.WatchStatusMsg{Degraded: degraded, Missing: missing})
			if degraded {
				events.Emit(events.EventWatchDegraded, cwd, map[string]interface{}{"missing": missing})
			} else {
				events.Emit(events.EventWatchRestored, cwd, nil)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("starting filesystem watcher: %w", err)
	}

	for _, root := range roots {
		if err := watcher.AddRoot(root); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watching %s: %w", root.Path, err)
		}
	}
	events.Emit(events.EventWatchStart, cwd, nil)
	return watcher, nil
}

// detection is what the startup probes found. Empty or false fields hide
// the corresponding tabs.
type detection struct {
	repo       string
	issuesRepo string
	user       string
	jira       bool
	linear     *tracker.LinearClient
}

func detectTrackers(cfg config.Config, cwd string) detection {
	var det detection

	if tracker.IsAvailable("gh") {
		det.repo = cfg.GitHub.Repo
		if det.repo == "" {
			det.repo = tracker.DetectRepo(cwd)
		}
		if det.repo != "" {
			det.user = tracker.DetectUser()
			if cfg.GitHubIssuesEnabled() {
				repo := cfg.GitHubIssuesRepo()
				if repo == "" {
					repo = det.repo
				}
				ctx, cancel := context.WithTimeout(context.Background(), detectTimeout)
				if tracker.RepoHasIssues(ctx, repo) {
					det.issuesRepo = repo
				}
				cancel()
			}
		}
	}

	det.jira = tracker.IsAvailable("acli")

	if cfg.Linear.APIKey != "" {
		det.linear = &tracker.LinearClient{
			APIKey:  cfg.Linear.APIKey,
			Email:   cfg.Linear.Username,
			TeamKey: cfg.Linear.Team,
		}
	}
	return det
}

// startPoller registers one fetcher per detected integration and starts the
// poll loops. An empty poller is still returned so manual refresh is a no-op
// rather than a nil dereference.
func startPoller(cfg config.Config, det detection, bus *events.Bus) *tracker.Poller {
	poller := tracker.NewPoller(tracker.DefaultPollInterval, tracker.DefaultFetchTimeout,
		func(res tracker.Result) { bus.Publish(res) })

	if det.repo != "" {
		repo := det.repo
		poller.Register(tracker.FetchFunc{
			Integration: tracker.IntegrationGitHubPRs,
			Run: func(ctx context.Context) (any, error) {
				return tracker.ListOpenPRs(ctx, repo)
			},
		})
	}
	if det.issuesRepo != "" {
		repo := det.issuesRepo
		poller.Register(tracker.FetchFunc{
			Integration: tracker.IntegrationGitHubIssues,
			Run: func(ctx context.Context) (any, error) {
				return tracker.ListIssues(ctx, repo, "open")
			},
		})
	}
	if det.jira {
		project, jql := cfg.Jira.Project, cfg.Jira.JQL
		poller.Register(tracker.FetchFunc{
			Integration: tracker.IntegrationJira,
			Run: func(ctx context.Context) (any, error) {
				return tracker.SearchMyIssues(ctx, project, jql)
			},
		})
	}
	if det.linear != nil {
		client := det.linear
		poller.Register(tracker.FetchFunc{
			Integration: tracker.IntegrationLinear,
			Run: func(ctx context.Context) (any, error) {
				return client.FetchMyIssues(ctx)
			},
		})
	}

	poller.Start()
	return poller
}

// tick publishes the redraw heartbeat on the shared bus so redraws never
// interleave inside an update.
func tick(rate time.Duration, bus *events.Bus, done <-chan struct{}) {
	t := time.NewTicker(rate)
	defer t.Stop()
	for {
		select {
		case now := <-t.C:
			bus.Publish(events.TickMsg{At: now})
		case <-done:
			return
		}
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
