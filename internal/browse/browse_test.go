package browse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func entryNames(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

func TestBuildTreeCollapsedShowsOnlyTopLevel(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main")
	writeFile(t, filepath.Join(root, "internal", "a.go"), "package internal")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/main")

	entries := BuildTree(root, nil)
	got := entryNames(entries)
	want := []string{"internal", "main.go"}
	if len(got) != len(want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entries = %v, want %v", got, want)
		}
	}
	if !entries[0].Dir || entries[1].Dir {
		t.Error("internal should be a directory and main.go a file")
	}
	for _, e := range entries {
		if e.Depth != 0 {
			t.Errorf("%s depth = %d, want 0", e.Name, e.Depth)
		}
	}
}

func TestBuildTreeExpandsMarkedDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main")
	writeFile(t, filepath.Join(root, "internal", "a.go"), "package internal")
	writeFile(t, filepath.Join(root, "internal", "deep", "b.go"), "package deep")

	expanded := map[string]bool{filepath.Join(root, "internal"): true}
	entries := BuildTree(root, expanded)
	got := entryNames(entries)
	want := []string{"internal", "deep", "a.go", "main.go"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	if entries[1].Depth != 1 || entries[2].Depth != 1 {
		t.Errorf("children of internal should be at depth 1, got %d and %d",
			entries[1].Depth, entries[2].Depth)
	}
}

func TestBuildTreeSortsDirsFirstCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "B.go"), "x")
	writeFile(t, filepath.Join(root, "a.go"), "x")
	writeFile(t, filepath.Join(root, "zdir", "c"), "x")

	got := entryNames(BuildTree(root, nil))
	want := []string{"zdir", "a.go", "B.go"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("entries = %v, want %v", got, want)
	}
}

func TestReadContentText(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "notes.txt")
	writeFile(t, path, "line one\nline two\n")

	c, err := ReadContent(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Kind != ContentText {
		t.Fatalf("kind = %d, want text", c.Kind)
	}
	if len(c.Lines) != 2 || c.Lines[1] != "line two" {
		t.Errorf("lines = %v", c.Lines)
	}
}

func TestReadContentMarkdown(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "README.md")
	writeFile(t, path, "# Title\n\nbody\n")

	c, err := ReadContent(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Kind != ContentMarkdown {
		t.Fatalf("kind = %d, want markdown", c.Kind)
	}
	if !strings.HasPrefix(c.Body, "# Title") {
		t.Errorf("body = %q", c.Body)
	}
}

func TestReadContentBinary(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "blob")
	if err := os.WriteFile(path, []byte{0x00, 0xff, 0xfe, 0x01}, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := ReadContent(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Kind != ContentBinary {
		t.Errorf("kind = %d, want binary", c.Kind)
	}
}

func TestReadContentTooLarge(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "big.txt")
	writeFile(t, path, strings.Repeat("a", maxFileSize+1))

	c, err := ReadContent(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Kind != ContentTooLarge {
		t.Errorf("kind = %d, want too-large", c.Kind)
	}
	if len(c.Lines) != 0 {
		t.Error("too-large content should not carry lines")
	}
}
