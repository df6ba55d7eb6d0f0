package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_ReloadOnExternalEdit(t *testing.T) {
	folder := t.TempDir()
	path := FolderFile(folder)
	writeFile(t, path, `{"robotcode":{"robocop":{"enabled":true}}}`)

	s := NewStore("")
	if !s.GetBool(folder, KeyRobocopEnabled) {
		t.Fatal("initial read")
	}

	w, err := NewWatcher(s, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	if err := w.AddFolder(folder); err != nil {
		t.Fatalf("AddFolder() error = %v", err)
	}

	reloaded := make(chan Change, 1)
	s.Notifier().Subscribe(func(c Change) {
		if c.Reload() {
			select {
			case reloaded <- c:
			default:
			}
		}
	})

	writeFile(t, path, `{"robotcode":{"robocop":{"enabled":false}}}`)

	select {
	case c := <-reloaded:
		if c.Folder != folder {
			t.Errorf("reload folder = %q, want %q", c.Folder, folder)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload notification after external edit")
	}

	if s.GetBool(folder, KeyRobocopEnabled) {
		t.Error("store still serves stale value after reload")
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	folder := t.TempDir()
	s := NewStore("")

	w, err := NewWatcher(s, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	if err := w.AddFolder(folder); err != nil {
		t.Fatalf("AddFolder() error = %v", err)
	}

	fired := make(chan struct{}, 1)
	s.Notifier().Subscribe(func(Change) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	if err := os.WriteFile(filepath.Join(folder, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
		t.Error("notification fired for an untracked file")
	case <-time.After(300 * time.Millisecond):
	}
}
