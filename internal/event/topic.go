package event

import "strings"

// Topic is a dot-separated hierarchical event name, e.g. "server.state"
// or "environment.changed".
//
// Subscription patterns may use wildcards:
//
//	"*"  matches exactly one segment
//	"**" matches zero or more segments
type Topic string

// Well-known topics published by the application.
const (
	// TopicServerState carries langserver.StateChange payloads.
	TopicServerState Topic = "server.state"

	// TopicEnvironmentChanged carries an EnvironmentChanged payload.
	// An empty folder means a global environment reset.
	TopicEnvironmentChanged Topic = "environment.changed"

	// TopicConfigChanged carries a ConfigChanged payload.
	TopicConfigChanged Topic = "config.changed"

	// TopicEditorFocus carries an EditorFocus payload.
	TopicEditorFocus Topic = "editor.focus"
)

// EnvironmentChanged signals that the resolved tool environment for a folder
// is stale. Folder is the absolute folder path, or "" for all folders.
type EnvironmentChanged struct {
	Folder string
}

// ConfigChanged signals that persisted settings changed for a folder.
type ConfigChanged struct {
	Folder string
	Key    string
}

// EditorFocus signals that a different document gained focus.
// Path is empty when no editor is focused.
type EditorFocus struct {
	Path       string
	LanguageID string
}

// Segments splits the topic into its dot-separated parts.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), ".")
}

// Match reports whether the pattern p matches the concrete topic t.
// The concrete topic must not contain wildcards.
func Match(p, t Topic) bool {
	return matchSegments(p.Segments(), t.Segments())
}

func matchSegments(pattern, topic []string) bool {
	if len(pattern) == 0 {
		return len(topic) == 0
	}
	switch pattern[0] {
	case "**":
		// "**" may consume zero or more leading segments.
		for i := 0; i <= len(topic); i++ {
			if matchSegments(pattern[1:], topic[i:]) {
				return true
			}
		}
		return false
	case "*":
		if len(topic) == 0 {
			return false
		}
		return matchSegments(pattern[1:], topic[1:])
	default:
		if len(topic) == 0 || pattern[0] != topic[0] {
			return false
		}
		return matchSegments(pattern[1:], topic[1:])
	}
}
