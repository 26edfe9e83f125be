package watch

import (
	"sync"
	"time"
)

// DefaultDebounceWindow is the default coalescing window.
const DefaultDebounceWindow = 200 * time.Millisecond

// Debouncer coalesces rapid notifications per path: however many raw events
// land on one path within the window, the callback fires once with the
// merged kind. Distinct paths debounce independently.
type Debouncer struct {
	window time.Duration
	emit   func(path string, kind Kind)

	mu      sync.Mutex
	pending map[string]*pendingChange
	closed  bool
}

type pendingChange struct {
	kind  Kind
	timer *time.Timer
}

// NewDebouncer creates a per-path debouncer. If window is 0,
// DefaultDebounceWindow is used.
func NewDebouncer(window time.Duration, emit func(path string, kind Kind)) *Debouncer {
	if window == 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{
		window:  window,
		emit:    emit,
		pending: make(map[string]*pendingChange),
	}
}

// Observe records a raw notification for a path. The first observation in a
// window starts the timer; later ones only merge into the pending kind, so
// the callback fires exactly once per path per window.
func (d *Debouncer) Observe(path string, kind Kind) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	if p, ok := d.pending[path]; ok {
		p.kind = mergeKinds(p.kind, kind)
		return
	}

	p := &pendingChange{kind: kind}
	p.timer = time.AfterFunc(d.window, func() { d.fire(path) })
	d.pending[path] = p
}

func (d *Debouncer) fire(path string) {
	d.mu.Lock()
	p, ok := d.pending[path]
	if ok {
		delete(d.pending, path)
	}
	closed := d.closed
	d.mu.Unlock()

	if !ok || closed {
		return
	}
	d.emit(path, p.kind)
}

// Close cancels all pending timers. No callbacks fire after Close returns.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	for path, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, path)
	}
}

// Window returns the coalescing window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}

// mergeKinds combines two kinds observed for one path within a window.
// A remove wins over anything that came before it; a create followed by
// writes is still a create.
func mergeKinds(prev, next Kind) Kind {
	if next == Removed || prev == Removed {
		return Removed
	}
	if prev == Created {
		return Created
	}
	return next
}
