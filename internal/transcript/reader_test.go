package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func userLine(n int) string {
	return fmt.Sprintf(`{"type":"user","message":{"role":"user","content":"msg %d"}}`+"\n", n)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func appendFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
}

func TestTailLoadReturnsLastNLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	content := ""
	for i := 0; i < 5000; i++ {
		content += userLine(i)
	}
	writeFile(t, path, content)

	r := NewReader(path, 200)
	items, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 200 {
		t.Fatalf("got %d items, want 200", len(items))
	}
	for i, item := range items {
		want := fmt.Sprintf("msg %d", 4800+i)
		if item.Text != want {
			t.Fatalf("item %d = %q, want %q", i, item.Text, want)
		}
	}
}

func TestTailLoadSmallFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	writeFile(t, path, userLine(0)+userLine(1))

	r := NewReader(path, 200)
	items, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
}

func TestAppendedLinesReturnedOnceInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	writeFile(t, path, userLine(0))

	r := NewReader(path, 200)
	if _, err := r.Read(); err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 3; i++ {
		appendFile(t, path, userLine(i))
	}

	items, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	for i, item := range items {
		want := fmt.Sprintf("msg %d", i+1)
		if item.Text != want {
			t.Errorf("item %d = %q, want %q", i, item.Text, want)
		}
	}

	// Nothing new: nothing returned, nothing re-returned.
	items, err = r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("re-read returned %d items, want 0", len(items))
	}
}

func TestPartialLineHeldBackUntilTerminated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	writeFile(t, path, userLine(0))

	r := NewReader(path, 200)
	if _, err := r.Read(); err != nil {
		t.Fatal(err)
	}
	offsetAfterLoad := r.Offset()

	full := userLine(1)
	half := full[:len(full)/2]
	appendFile(t, path, half)

	items, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("partial line surfaced: %+v", items)
	}
	if r.Offset() != offsetAfterLoad {
		t.Fatalf("cursor moved into a partial line: %d", r.Offset())
	}

	appendFile(t, path, full[len(full)/2:])
	items, err = r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Text != "msg 1" {
		t.Fatalf("items after completion = %+v", items)
	}
	if r.ParseSkips() != 0 {
		t.Errorf("parse skips = %d, want 0", r.ParseSkips())
	}
}

func TestTruncationResetsToFreshTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	content := ""
	for i := 0; i < 50; i++ {
		content += userLine(i)
	}
	writeFile(t, path, content)

	r := NewReader(path, 10)
	if _, err := r.Read(); err != nil {
		t.Fatal(err)
	}

	// Replace with a much shorter file.
	writeFile(t, path, userLine(900)+userLine(901))

	items, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items after truncation, want 2", len(items))
	}
	if items[0].Text != "msg 900" || items[1].Text != "msg 901" {
		t.Errorf("items = %+v", items)
	}
}

func TestMalformedLinesCountedNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	writeFile(t, path, userLine(0)+"{not json}\n"+userLine(1)+"also not json\n"+userLine(2))

	r := NewReader(path, 200)
	items, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if r.ParseSkips() != 2 {
		t.Errorf("parse skips = %d, want 2", r.ParseSkips())
	}
}

func TestFileWithNoNewlineYieldsNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	writeFile(t, path, `{"type":"user","message":{"content":"incomplete"}}`)

	r := NewReader(path, 200)
	items, err := r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %+v, want none", items)
	}

	// Completing the line surfaces it.
	appendFile(t, path, "\n")
	items, err = r.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Text != "incomplete" {
		t.Fatalf("items = %+v", items)
	}
}
