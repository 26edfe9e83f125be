package events

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoggerWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	l, err := NewLogger(LoggerOptions{Path: path, Enabled: true})
	if err != nil {
		t.Fatal(err)
	}

	if err := l.LogEvent(EventWorkerSpawn, "/proj", WorkerData{WorkerID: "w1", Ticket: "#42", Source: "github_pr"}); err != nil {
		t.Fatal(err)
	}
	if err := l.LogEvent(EventError, "/proj", ErrorData{ErrorType: "poll", Message: "boom"}); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var got []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("malformed log line: %v", err)
		}
		got = append(got, e)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Type != EventWorkerSpawn || got[0].Project != "/proj" {
		t.Errorf("first entry = %+v", got[0])
	}
	if got[0].Data["worker_id"] != "w1" {
		t.Errorf("worker_id = %v", got[0].Data["worker_id"])
	}
	if got[1].Type != EventError {
		t.Errorf("second entry type = %s", got[1].Type)
	}
}

func TestDisabledLoggerWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	l, err := NewLogger(LoggerOptions{Path: path, Enabled: false})
	if err != nil {
		t.Fatal(err)
	}
	if err := l.LogEvent(EventAppStart, "", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("disabled logger created a file")
	}
}
