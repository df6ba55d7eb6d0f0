// Package workspace models workspace folders and the active editor context.
//
// A Folder is the scope against which settings and analysis-server sessions
// are resolved. Folder identity is the cleaned absolute path; two Folder
// values with the same path refer to the same folder.
package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// LanguageID is the identifier for Robot Framework documents.
const LanguageID = "robotframework"

// ErrNoFolder indicates that no workspace folder could be resolved.
var ErrNoFolder = errors.New("no workspace folder")

// Folder identifies one workspace folder.
type Folder struct {
	// Path is the cleaned absolute path of the folder.
	Path string

	// Name is the display name (base of Path).
	Name string
}

// URI returns the folder path as a file URI.
func (f Folder) URI() string {
	return "file://" + filepath.ToSlash(f.Path)
}

// Zero reports whether the folder is the zero value.
func (f Folder) Zero() bool {
	return f.Path == ""
}

// FolderFromPath creates a Folder from a directory path.
func FolderFromPath(path string) Folder {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return Folder{Path: abs, Name: filepath.Base(abs)}
}

// Editor describes the currently focused document.
type Editor struct {
	Path       string
	LanguageID string
}

// IsRobot reports whether the editor holds a Robot Framework document.
func (e Editor) IsRobot() bool {
	return e.LanguageID == LanguageID
}

// DetectLanguageID returns the language ID for a file path, or "" when the
// file type is not recognized.
func DetectLanguageID(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".robot", ".resource":
		return LanguageID
	default:
		return ""
	}
}

// Workspace holds the ordered set of open folders.
// It is safe for concurrent use.
type Workspace struct {
	mu      sync.RWMutex
	folders []Folder
}

// New creates a workspace with the given folders.
func New(folders ...Folder) *Workspace {
	w := &Workspace{}
	for _, f := range folders {
		w.Add(f)
	}
	return w
}

// Add appends a folder unless a folder with the same path already exists.
func (w *Workspace) Add(f Folder) {
	if f.Zero() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, existing := range w.folders {
		if existing.Path == f.Path {
			return
		}
	}
	w.folders = append(w.folders, f)
}

// Remove drops the folder with the given path.
func (w *Workspace) Remove(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, f := range w.folders {
		if f.Path == path {
			w.folders = append(w.folders[:i], w.folders[i+1:]...)
			return
		}
	}
}

// Folders returns a copy of the folder list.
func (w *Workspace) Folders() []Folder {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Folder, len(w.folders))
	copy(out, w.folders)
	return out
}

// Len returns the number of folders.
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.folders)
}

// FolderOf returns the folder containing path, choosing the longest matching
// folder prefix when folders nest. The second return is false when the path
// lies outside every folder.
func (w *Workspace) FolderOf(path string) (Folder, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Folder{}, false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	candidates := make([]Folder, 0, len(w.folders))
	for _, f := range w.folders {
		if abs == f.Path || strings.HasPrefix(abs, f.Path+string(filepath.Separator)) {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return Folder{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		return len(candidates[i].Path) > len(candidates[j].Path)
	})
	return candidates[0], true
}

// projectMarkers are files that mark a directory as a project root.
var projectMarkers = []string{
	"robot.toml",
	"pyproject.toml",
	".git",
}

// DetectRoot walks upward from dir looking for a project marker and returns
// the marked directory, or dir itself when no marker is found.
func DetectRoot(dir string) Folder {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return FolderFromPath(dir)
	}

	for current := abs; ; {
		for _, marker := range projectMarkers {
			if fileExists(filepath.Join(current, marker)) {
				return FolderFromPath(current)
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return FolderFromPath(abs)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
