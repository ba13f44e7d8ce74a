package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchProjectReportsProjectFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "scripts"), 0o755); err != nil {
		t.Fatal(err)
	}
	filename := filepath.Join(root, "project.yaml")
	if err := os.WriteFile(filename, []byte("sprites: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := WatchProject(filename)
	if err != nil {
		t.Fatalf("WatchProject: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(root, "scripts", "mover.tengo")
	if err := os.WriteFile(script, []byte("x := 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-w.Events:
		if name != script {
			t.Fatalf("event for %s, want %s", name, script)
		}
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatalf("no event for %s", script)
	}
}

func TestIsProjectFile(t *testing.T) {
	tests := map[string]bool{
		"project.yaml":    true,
		"a/b/MOVER.TENGO": true,
		"costume.svg":     true,
		"README.md":       false,
		"project.yaml~":   false,
	}
	for name, want := range tests {
		if got := isProjectFile(name); got != want {
			t.Errorf("isProjectFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
