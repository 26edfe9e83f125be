package watch

import (
	"sync"
	"testing"
	"time"
)

type emitRecorder struct {
	mu    sync.Mutex
	calls []struct {
		path string
		kind Kind
	}
}

func (r *emitRecorder) emit(path string, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, struct {
		path string
		kind Kind
	}{path, kind})
}

func (r *emitRecorder) snapshot() []struct {
	path string
	kind Kind
} {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]struct {
		path string
		kind Kind
	}, len(r.calls))
	copy(out, r.calls)
	return out
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	rec := &emitRecorder{}
	d := NewDebouncer(30*time.Millisecond, rec.emit)
	defer d.Close()

	for i := 0; i < 20; i++ {
		d.Observe("/a/file.jsonl", Modified)
	}

	time.Sleep(100 * time.Millisecond)

	calls := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("got %d emissions, want exactly 1", len(calls))
	}
	if calls[0].path != "/a/file.jsonl" || calls[0].kind != Modified {
		t.Errorf("emission = %+v", calls[0])
	}
}

func TestDebouncerPathsAreIndependent(t *testing.T) {
	rec := &emitRecorder{}
	d := NewDebouncer(30*time.Millisecond, rec.emit)
	defer d.Close()

	d.Observe("/a", Modified)
	d.Observe("/b", Modified)
	d.Observe("/a", Modified)

	time.Sleep(100 * time.Millisecond)

	calls := rec.snapshot()
	if len(calls) != 2 {
		t.Fatalf("got %d emissions, want 2", len(calls))
	}
	seen := map[string]bool{}
	for _, c := range calls {
		seen[c.path] = true
	}
	if !seen["/a"] || !seen["/b"] {
		t.Errorf("paths emitted: %v", seen)
	}
}

func TestDebouncerRemoveWinsWithinWindow(t *testing.T) {
	rec := &emitRecorder{}
	d := NewDebouncer(30*time.Millisecond, rec.emit)
	defer d.Close()

	d.Observe("/a", Modified)
	d.Observe("/a", Removed)
	d.Observe("/a", Modified)

	time.Sleep(100 * time.Millisecond)

	calls := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("got %d emissions, want 1", len(calls))
	}
	if calls[0].kind != Removed {
		t.Errorf("kind = %s, want removed", calls[0].kind)
	}
}

func TestDebouncerCreateThenWriteIsCreate(t *testing.T) {
	rec := &emitRecorder{}
	d := NewDebouncer(30*time.Millisecond, rec.emit)
	defer d.Close()

	d.Observe("/a", Created)
	d.Observe("/a", Modified)

	time.Sleep(100 * time.Millisecond)

	calls := rec.snapshot()
	if len(calls) != 1 || calls[0].kind != Created {
		t.Fatalf("calls = %+v, want single create", calls)
	}
}

func TestDebouncerNewWindowAfterFire(t *testing.T) {
	rec := &emitRecorder{}
	d := NewDebouncer(20*time.Millisecond, rec.emit)
	defer d.Close()

	d.Observe("/a", Modified)
	time.Sleep(60 * time.Millisecond)
	d.Observe("/a", Modified)
	time.Sleep(60 * time.Millisecond)

	if calls := rec.snapshot(); len(calls) != 2 {
		t.Fatalf("got %d emissions, want 2 (one per window)", len(calls))
	}
}

func TestDebouncerCloseCancelsPending(t *testing.T) {
	rec := &emitRecorder{}
	d := NewDebouncer(30*time.Millisecond, rec.emit)

	d.Observe("/a", Modified)
	d.Close()

	time.Sleep(80 * time.Millisecond)

	if calls := rec.snapshot(); len(calls) != 0 {
		t.Fatalf("got %d emissions after close, want 0", len(calls))
	}
}

func TestMergeKinds(t *testing.T) {
	tests := []struct {
		prev, next, want Kind
	}{
		{Modified, Modified, Modified},
		{Modified, Removed, Removed},
		{Removed, Created, Removed},
		{Created, Modified, Created},
		{Created, Removed, Removed},
	}
	for _, tt := range tests {
		if got := mergeKinds(tt.prev, tt.next); got != tt.want {
			t.Errorf("mergeKinds(%s, %s) = %s, want %s", tt.prev, tt.next, got, tt.want)
		}
	}
}
