package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectLanguageID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"suite.robot", LanguageID},
		{"keywords.resource", LanguageID},
		{"SUITE.ROBOT", LanguageID},
		{"main.py", ""},
		{"notes.txt", ""},
		{"robot", ""},
	}

	for _, tt := range tests {
		if got := DetectLanguageID(tt.path); got != tt.want {
			t.Errorf("DetectLanguageID(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestWorkspace_FolderOf(t *testing.T) {
	outer := FolderFromPath("/projects/suite")
	inner := FolderFromPath("/projects/suite/nested")
	other := FolderFromPath("/other")

	w := New(outer, inner, other)

	tests := []struct {
		path     string
		want     string
		resolved bool
	}{
		{"/projects/suite/tests/login.robot", outer.Path, true},
		{"/projects/suite/nested/a.robot", inner.Path, true},
		{"/projects/suitex/a.robot", "", false},
		{"/other", other.Path, true},
		{"/elsewhere/a.robot", "", false},
	}

	for _, tt := range tests {
		got, ok := w.FolderOf(tt.path)
		if ok != tt.resolved {
			t.Errorf("FolderOf(%q) resolved = %v, want %v", tt.path, ok, tt.resolved)
			continue
		}
		if ok && got.Path != tt.want {
			t.Errorf("FolderOf(%q) = %q, want %q", tt.path, got.Path, tt.want)
		}
	}
}

func TestWorkspace_AddDeduplicates(t *testing.T) {
	w := New()
	f := FolderFromPath("/projects/suite")
	w.Add(f)
	w.Add(f)
	if w.Len() != 1 {
		t.Errorf("Len() = %d after duplicate Add, want 1", w.Len())
	}

	w.Remove(f.Path)
	if w.Len() != 0 {
		t.Errorf("Len() = %d after Remove, want 0", w.Len())
	}
}

func TestDetectRoot(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "tests", "acceptance")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "robot.toml"), []byte("[profiles.default]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := DetectRoot(nested)
	want := FolderFromPath(dir)
	if got.Path != want.Path {
		t.Errorf("DetectRoot(%q) = %q, want %q", nested, got.Path, want.Path)
	}

	// No marker anywhere under an isolated temp dir resolves to the dir itself.
	plain := t.TempDir()
	if got := DetectRoot(plain); got.Path != FolderFromPath(plain).Path {
		t.Errorf("DetectRoot(%q) = %q, want the directory itself", plain, got.Path)
	}
}
