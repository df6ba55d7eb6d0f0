// Package config persists companion settings as JSON documents, one user-level
// file plus one optional file per workspace folder. Folder values override
// user values; built-in defaults fill the rest.
//
// Reads go through gjson paths, writes through sjson, so the files keep
// whatever unrelated content they already carry.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FolderSettingsDir is the per-folder directory holding settings.
const FolderSettingsDir = ".robotcode"

// FolderSettingsFile is the per-folder settings file name.
const FolderSettingsFile = "settings.json"

// Store reads and writes settings documents.
// It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	// userFile is the user-level settings path, may be "".
	userFile string

	// docs caches raw JSON per file path.
	docs map[string][]byte

	notifier *Notifier
}

// NewStore creates a store with the given user-level settings file.
func NewStore(userFile string) *Store {
	return &Store{
		userFile: userFile,
		docs:     make(map[string][]byte),
		notifier: NewNotifier(),
	}
}

// Notifier returns the change notifier for this store.
func (s *Store) Notifier() *Notifier {
	return s.notifier
}

// FolderFile returns the settings file path for a folder.
func FolderFile(folder string) string {
	return filepath.Join(folder, FolderSettingsDir, FolderSettingsFile)
}

// UserFile returns the user-level settings path.
func (s *Store) UserFile() string {
	return s.userFile
}

// Invalidate drops the cached document for a file so the next read reloads
// it from disk.
func (s *Store) Invalidate(path string) {
	s.mu.Lock()
	delete(s.docs, path)
	s.mu.Unlock()
}

// load returns the raw JSON for a file, reading it at most once until
// invalidated. Missing files read as an empty document.
func (s *Store) load(path string) []byte {
	if path == "" {
		return nil
	}

	s.mu.RLock()
	doc, ok := s.docs[path]
	s.mu.RUnlock()
	if ok {
		return doc
	}

	data, err := os.ReadFile(path)
	if err != nil || !gjson.ValidBytes(data) {
		data = []byte("{}")
	}

	s.mu.Lock()
	s.docs[path] = data
	s.mu.Unlock()
	return data
}

// EnvPrefix is prepended to environment override variables.
const EnvPrefix = "ROBOTCODE_"

// envKey maps a settings key to its override variable:
// "robotcode.robocop.enabled" becomes "ROBOTCODE_ROBOCOP_ENABLED".
func envKey(key string) string {
	key = strings.TrimPrefix(key, "robotcode.")
	key = strings.ReplaceAll(key, ".", "_")
	return EnvPrefix + strings.ToUpper(key)
}

// envOverride returns the environment override for key, if set.
// Overrides take precedence over both settings files.
func envOverride(key string) (string, bool) {
	return os.LookupEnv(envKey(key))
}

// lookup returns the first scope that defines key: folder file, then user
// file, then defaults.
func (s *Store) lookup(folder, key string) (gjson.Result, bool) {
	if folder != "" {
		if res := gjson.GetBytes(s.load(FolderFile(folder)), key); res.Exists() {
			return res, true
		}
	}
	if res := gjson.GetBytes(s.load(s.userFile), key); res.Exists() {
		return res, true
	}
	return gjson.Result{}, false
}

// GetString returns the string value for key in the folder's scope.
func (s *Store) GetString(folder, key string) string {
	if v, ok := envOverride(key); ok {
		return v
	}
	if res, ok := s.lookup(folder, key); ok {
		return res.String()
	}
	if def, ok := defaults[key]; ok {
		if str, ok := def.(string); ok {
			return str
		}
	}
	return ""
}

// GetBool returns the boolean value for key in the folder's scope.
func (s *Store) GetBool(folder, key string) bool {
	if v, ok := envOverride(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	if res, ok := s.lookup(folder, key); ok {
		return res.Bool()
	}
	if def, ok := defaults[key]; ok {
		if b, ok := def.(bool); ok {
			return b
		}
	}
	return false
}

// GetStringSlice returns the string-list value for key in the folder's
// scope. Environment overrides are comma-separated.
func (s *Store) GetStringSlice(folder, key string) []string {
	if v, ok := envOverride(key); ok {
		var out []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	}
	res, ok := s.lookup(folder, key)
	if !ok || !res.IsArray() {
		return nil
	}
	items := res.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String())
	}
	return out
}

// Set writes value under key in the folder's settings file (or the user file
// when folder is "") and notifies observers.
func (s *Store) Set(folder, key string, value any) error {
	path := s.userFile
	if folder != "" {
		path = FolderFile(folder)
	}
	if path == "" {
		return fmt.Errorf("no settings file for scope")
	}

	doc := s.load(path)
	updated, err := sjson.SetBytes(doc, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(path, updated, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	s.mu.Lock()
	s.docs[path] = updated
	s.mu.Unlock()

	s.notifier.Notify(Change{Folder: folder, Key: key, Value: value})
	return nil
}

// Toggle flips a boolean key in the folder's scope and returns the new value.
func (s *Store) Toggle(folder, key string) (bool, error) {
	next := !s.GetBool(folder, key)
	if err := s.Set(folder, key, next); err != nil {
		return false, err
	}
	return next, nil
}

// WatchedFiles returns the settings files relevant to the given folders,
// existing or not, for use by the file watcher.
func (s *Store) WatchedFiles(folders []string) []string {
	files := make([]string, 0, len(folders)+1)
	if s.userFile != "" {
		files = append(files, s.userFile)
	}
	for _, folder := range folders {
		files = append(files, FolderFile(folder))
	}
	return files
}
