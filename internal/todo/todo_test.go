package todo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.json":      `[{"content":"write tests","status":"in_progress"},{"content":"ship","status":"pending"}]`,
		"a.json":      `[{"content":"done thing","status":"completed"}]`,
		"empty.json":  `[]`,
		"broken.json": `{not json`,
		"notes.txt":   `ignore me`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := LoadAll(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d files, want 2 (empty and malformed skipped)", len(got))
	}
	if got[0].Filename != "a.json" || got[1].Filename != "b.json" {
		t.Errorf("order = %s, %s", got[0].Filename, got[1].Filename)
	}
	if got[0].Done() != 1 {
		t.Errorf("Done = %d", got[0].Done())
	}
	if got[1].Items[0].StatusIcon() != "[=]" {
		t.Errorf("icon = %q", got[1].Items[0].StatusIcon())
	}
}

func TestLoadAllMissingDir(t *testing.T) {
	got, err := LoadAll(filepath.Join(t.TempDir(), "nope"))
	if err != nil || got != nil {
		t.Fatalf("got %v, err %v", got, err)
	}
}

func TestDisplayNameTruncation(t *testing.T) {
	f := File{Filename: strings.Repeat("a", 40) + ".json"}
	name := f.DisplayName()
	if len([]rune(name)) != 30 || !strings.HasSuffix(name, "...") {
		t.Errorf("DisplayName = %q", name)
	}
	short := File{Filename: "short.json"}
	if short.DisplayName() != "short.json" {
		t.Errorf("short name mangled: %q", short.DisplayName())
	}
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.json")
	if err := os.WriteFile(path, []byte(`[{"content":"x"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := Delete(f); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still exists")
	}
}
