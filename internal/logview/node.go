// Package logview renders a Robot Framework run report as a collapsible
// tree of suite, test, keyword and message nodes with severity filtering.
// Children are populated lazily from the report document, and recursive
// expansion is cooperative: one node per scheduling tick.
package logview

import "strings"

// NodeType classifies a report tree node.
type NodeType int

const (
	TypeSuite NodeType = iota
	TypeTest
	TypeKeyword
	TypeMessage
)

// ParseNodeType maps the report's type tag.
func ParseNodeType(s string) NodeType {
	switch strings.ToLower(s) {
	case "test":
		return TypeTest
	case "keyword":
		return TypeKeyword
	case "message":
		return TypeMessage
	}
	return TypeSuite
}

// String returns the report tag for the type.
func (t NodeType) String() string {
	switch t {
	case TypeTest:
		return "test"
	case TypeKeyword:
		return "keyword"
	case TypeMessage:
		return "message"
	}
	return "suite"
}

// Status is a node's run outcome.
type Status int

const (
	StatusNotRun Status = iota
	StatusPass
	StatusFail
	StatusSkip
)

// ParseStatus maps the report's status tag.
func ParseStatus(s string) Status {
	switch strings.ToUpper(s) {
	case "PASS":
		return StatusPass
	case "FAIL":
		return StatusFail
	case "SKIP":
		return StatusSkip
	}
	return StatusNotRun
}

// String returns the report tag for the status.
func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusFail:
		return "FAIL"
	case StatusSkip:
		return "SKIP"
	}
	return "NOT RUN"
}

// Level is a message severity. Levels are ordered; a threshold of
// LevelNone hides every message row.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelFail
	LevelNone
)

// ParseLevel maps the report's level tag; unknown levels read as INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return LevelDebug
	case "INFO", "":
		return LevelInfo
	case "WARN":
		return LevelWarn
	case "FAIL", "ERROR":
		return LevelFail
	}
	return LevelInfo
}

// String returns the level tag.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelFail:
		return "FAIL"
	}
	return "NONE"
}

// Node is one element of the report tree. Children are nil until first
// expansion loads them from the source.
type Node struct {
	ID     string
	Type   NodeType
	Status Status
	Level  Level
	Text   string

	ref         string
	hasChildren bool
	loaded      bool
	expanded    bool
	parent      *Node
	children    []*Node
}

// Expanded reports the node's expansion state.
func (n *Node) Expanded() bool {
	return n.expanded
}

// Leaf reports whether the node declares no children.
func (n *Node) Leaf() bool {
	return !n.hasChildren
}

// Children returns the loaded children, nil before first expansion.
func (n *Node) Children() []*Node {
	return n.children
}

// visible reports whether every ancestor is expanded.
func (n *Node) visible() bool {
	for p := n.parent; p != nil; p = p.parent {
		if !p.expanded {
			return false
		}
	}
	return true
}

// depth returns the node's distance from the root.
func (n *Node) depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// failing reports whether the node qualifies for the failed-expansion
// pass: FAIL always, SKIP additionally for test nodes.
func (n *Node) failing() bool {
	if n.Status == StatusFail {
		return true
	}
	return n.Status == StatusSkip && n.Type == TypeTest
}
