package tracker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultPollInterval is the fixed refresh cadence per integration.
	DefaultPollInterval = 60 * time.Second
	// DefaultFetchTimeout bounds one fetch attempt.
	DefaultFetchTimeout = 30 * time.Second
)

// Integration names shared between fetcher registration and the dashboard's
// result dispatch.
const (
	IntegrationGitHubPRs    = "github-prs"
	IntegrationGitHubIssues = "github-issues"
	IntegrationJira         = "jira"
	IntegrationLinear       = "linear"
)

// Fetcher is one polled integration.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (any, error)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc struct {
	Integration string
	Run         func(ctx context.Context) (any, error)
}

func (f FetchFunc) Name() string                           { return f.Integration }
func (f FetchFunc) Fetch(ctx context.Context) (any, error) { return f.Run(ctx) }

// Result is the outcome of one fetch, delivered via the publish callback.
// Payload holds the integration's native slice type on success.
type Result struct {
	Name      string
	Payload   any
	Err       error
	FetchedAt time.Time
}

type pollState struct {
	fetcher  Fetcher
	inFlight atomic.Bool
}

// Poller refreshes each registered integration on a fixed interval. At most
// one fetch per integration is ever in flight: a tick or manual refresh that
// lands mid-fetch is skipped, not queued. Failures are reported through the
// publish callback and the cadence continues unchanged.
type Poller struct {
	interval time.Duration
	timeout  time.Duration
	publish  func(Result)

	mu     sync.Mutex
	states []*pollState

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewPoller creates a poller. Zero durations take the defaults.
func NewPoller(interval, timeout time.Duration, publish func(Result)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Poller{
		interval: interval,
		timeout:  timeout,
		publish:  publish,
		stop:     make(chan struct{}),
	}
}

// Register adds an integration. Must be called before Start.
func (p *Poller) Register(f Fetcher) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, &pollState{fetcher: f})
}

// Start begins polling every registered integration, fetching once
// immediately and then on each interval tick.
func (p *Poller) Start() {
	p.mu.Lock()
	states := p.states
	p.mu.Unlock()

	for _, st := range states {
		p.wg.Add(1)
		go p.loop(st)
	}
}

func (p *Poller) loop(st *pollState) {
	defer p.wg.Done()

	p.fetch(st)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.fetch(st)
		}
	}
}

// Refresh triggers an immediate fetch for the named integration, ignoring
// the interval. It reports false when the integration is unknown or a fetch
// is already running.
func (p *Poller) Refresh(name string) bool {
	p.mu.Lock()
	var target *pollState
	for _, st := range p.states {
		if st.fetcher.Name() == name {
			target = st
			break
		}
	}
	p.mu.Unlock()

	if target == nil {
		return false
	}
	return p.fetch(target)
}

// RefreshAll triggers an immediate fetch for every integration not already
// mid-fetch.
func (p *Poller) RefreshAll() {
	p.mu.Lock()
	states := p.states
	p.mu.Unlock()
	for _, st := range states {
		p.fetch(st)
	}
}

// fetch runs one guarded fetch, reporting whether it actually started.
func (p *Poller) fetch(st *pollState) bool {
	if !st.inFlight.CompareAndSwap(false, true) {
		return false
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer st.inFlight.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		payload, err := st.fetcher.Fetch(ctx)
		p.publish(Result{
			Name:      st.fetcher.Name(),
			Payload:   payload,
			Err:       err,
			FetchedAt: time.Now(),
		})
	}()
	return true
}

// Stop halts all polling loops and waits for in-flight fetches to publish.
func (p *Poller) Stop() {
	close(p.stop)
	p.wg.Wait()
}
