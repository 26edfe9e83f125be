package watch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned when operations are called on a closed Watcher.
var ErrClosed = errors.New("watch: watcher is closed")

// DefaultRetryInterval is how often missing roots are re-registered.
const DefaultRetryInterval = 5 * time.Second

// Root is a directory the watcher covers. Recursive roots also watch every
// subdirectory, present and future.
type Root struct {
	Path      string
	Recursive bool
}

// Handler receives classified change events.
type Handler func(Event)

// StatusHandler is notified when the watcher enters or leaves the degraded
// state. missing lists the root paths that are currently unwatchable.
type StatusHandler func(degraded bool, missing []string)

// ErrorHandler is called for non-fatal watch errors.
type ErrorHandler func(err error)

// Watcher registers filesystem roots, debounces raw notifications per path
// and delivers classified events. Unwatchable roots degrade the watcher
// instead of stopping it: registration is retried on an interval until the
// root appears.
type Watcher struct {
	fs            *fsnotify.Watcher
	debouncer     *Debouncer
	classifier    *Classifier
	handler       Handler
	statusHandler StatusHandler
	errorHandler  ErrorHandler
	retryInterval time.Duration

	mu       sync.Mutex
	roots    []Root
	missing  map[string]Root
	watched  map[string]bool
	degraded bool
	closed   bool
	closeCh  chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceWindow sets the per-path coalescing window.
func WithDebounceWindow(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debouncer = NewDebouncer(d, w.observeDone)
		}
	}
}

// WithRetryInterval sets how often unwatchable roots are retried.
func WithRetryInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.retryInterval = d
		}
	}
}

// WithStatusHandler sets the degraded-state callback.
func WithStatusHandler(h StatusHandler) Option {
	return func(w *Watcher) {
		w.statusHandler = h
	}
}

// WithErrorHandler sets the non-fatal error callback.
func WithErrorHandler(h ErrorHandler) Option {
	return func(w *Watcher) {
		w.errorHandler = h
	}
}

// New creates a Watcher. Failing to allocate the underlying fsnotify
// watcher is the only fatal condition.
func New(classifier *Classifier, handler Handler, opts ...Option) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fs:            fs,
		classifier:    classifier,
		handler:       handler,
		retryInterval: DefaultRetryInterval,
		missing:       make(map[string]Root),
		watched:       make(map[string]bool),
		closeCh:       make(chan struct{}),
	}
	w.debouncer = NewDebouncer(DefaultDebounceWindow, w.observeDone)

	for _, opt := range opts {
		opt(w)
	}

	go w.run()
	go w.retryLoop()

	return w, nil
}

// AddRoot registers a root. A root that cannot be watched right now (it
// does not exist yet, or is unreadable) marks the watcher degraded and is
// retried until it can be registered.
func (w *Watcher) AddRoot(root Root) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	w.roots = append(w.roots, root)
	if err := w.registerLocked(root); err != nil {
		w.missing[root.Path] = root
		w.updateStatusLocked()
		return nil
	}
	w.updateStatusLocked()
	return nil
}

// registerLocked adds a root (and, when recursive, its subdirectories) to
// fsnotify. Must be called with w.mu held.
func (w *Watcher) registerLocked(root Root) error {
	info, err := os.Stat(root.Path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("watch root %s is not a directory", root.Path)
	}

	if !root.Recursive {
		if err := w.fs.Add(root.Path); err != nil {
			return err
		}
		w.watched[root.Path] = true
		return nil
	}

	return filepath.WalkDir(root.Path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root.Path {
				return err
			}
			// Skip subtrees we cannot read, keep walking the rest.
			if w.errorHandler != nil {
				w.errorHandler(fmt.Errorf("walking %s: %w", path, err))
			}
			return filepath.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if w.watched[path] {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			if path == root.Path {
				return err
			}
			if w.errorHandler != nil {
				w.errorHandler(fmt.Errorf("watching %s: %w", path, err))
			}
			return nil
		}
		w.watched[path] = true
		return nil
	})
}

// updateStatusLocked recomputes the degraded flag and notifies on change.
// Must be called with w.mu held.
func (w *Watcher) updateStatusLocked() {
	degraded := len(w.missing) > 0
	if degraded == w.degraded {
		return
	}
	w.degraded = degraded

	if w.statusHandler == nil {
		return
	}
	missing := make([]string, 0, len(w.missing))
	for p := range w.missing {
		missing = append(missing, p)
	}
	sort.Strings(missing)
	go w.statusHandler(degraded, missing)
}

// Degraded reports whether any root is currently unwatchable.
func (w *Watcher) Degraded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.degraded
}

// Close stops the watcher. Pending debounced events are discarded.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.debouncer.Close()
	return w.fs.Close()
}

// run consumes raw fsnotify events.
func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleRaw(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if w.errorHandler != nil {
				w.errorHandler(err)
			}
		case <-w.closeCh:
			return
		}
	}
}

// handleRaw maps one fsnotify event into the debouncer, registering newly
// created directories under recursive roots along the way.
func (w *Watcher) handleRaw(ev fsnotify.Event) {
	var kind Kind
	switch {
	case ev.Op.Has(fsnotify.Create):
		kind = Created
	case ev.Op.Has(fsnotify.Write):
		kind = Modified
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		kind = Removed
	default:
		// Chmod-only events carry no content change.
		return
	}

	if kind == Created {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.maybeWatchNewDir(ev.Name)
			// Directory creations themselves are not dashboard state;
			// the files inside will produce their own events.
			return
		}
	}

	if kind == Removed {
		w.mu.Lock()
		if w.watched[ev.Name] {
			delete(w.watched, ev.Name)
		}
		// A removed root puts us back into degraded retry.
		for _, root := range w.roots {
			if root.Path == ev.Name {
				w.missing[root.Path] = root
			}
		}
		w.updateStatusLocked()
		w.mu.Unlock()
	}

	w.debouncer.Observe(ev.Name, kind)
}

// maybeWatchNewDir starts watching a directory created under a recursive
// root. The whole subtree is walked: children may already exist by the time
// the create notification for the parent arrives.
func (w *Watcher) maybeWatchNewDir(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	covered := false
	for _, root := range w.roots {
		if root.Recursive && strings.HasPrefix(path, root.Path+string(os.PathSeparator)) {
			covered = true
			break
		}
	}
	if !covered {
		return
	}

	filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() || w.watched[p] {
			return nil
		}
		if addErr := w.fs.Add(p); addErr != nil {
			if w.errorHandler != nil {
				w.errorHandler(fmt.Errorf("watching new dir %s: %w", p, addErr))
			}
			return nil
		}
		w.watched[p] = true
		return nil
	})
}

// retryLoop re-registers missing roots until they become watchable.
func (w *Watcher) retryLoop() {
	ticker := time.NewTicker(w.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.retryMissing()
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) retryMissing() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || len(w.missing) == 0 {
		return
	}
	for path, root := range w.missing {
		if err := w.registerLocked(root); err != nil {
			continue
		}
		delete(w.missing, path)
	}
	w.updateStatusLocked()
}

// observeDone receives debounced (path, kind) pairs, classifies them and
// hands relevant ones to the handler.
func (w *Watcher) observeDone(path string, kind Kind) {
	ev, ok := w.classifier.Classify(path, kind)
	if !ok {
		return
	}
	if w.handler != nil {
		w.handler(ev)
	}
}
