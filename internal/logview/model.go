package logview

import (
	"errors"
	"fmt"
)

// maxLoadRetries bounds zero-delay rescheduling when a node's children
// are not yet available.
const maxLoadRetries = 3

// workItem is one pending expansion step. recurse decides which loaded
// children continue the pass; nil stops after the node itself.
type workItem struct {
	node    *Node
	recurse func(*Node) bool
	retries int
}

// Model is the log viewer's tree state. All methods run on the event
// loop; recursive expansion is cooperative via Step.
type Model struct {
	source    Source
	root      *Node
	index     map[string]*Node
	queue     []workItem
	threshold Level
}

// NewModel builds a model over the source. The root starts expanded with
// its immediate children loaded; everything below is collapsed.
func NewModel(source Source) (*Model, error) {
	spec, err := source.Root()
	if err != nil {
		return nil, err
	}
	m := &Model{
		source:    source,
		index:     make(map[string]*Node),
		threshold: LevelInfo,
	}
	m.root = m.addNode(nil, spec)
	m.root.expanded = true
	if !m.root.Leaf() {
		if err := m.load(m.root); err != nil {
			if !errors.Is(err, ErrNotReady) {
				return nil, err
			}
			m.push(workItem{node: m.root, retries: 1})
		}
	}
	return m, nil
}

// Root returns the tree root.
func (m *Model) Root() *Node {
	return m.root
}

// Lookup finds a node by ID. Only nodes already loaded are findable.
func (m *Model) Lookup(id string) (*Node, bool) {
	n, ok := m.index[id]
	return n, ok
}

// Threshold returns the active message severity threshold.
func (m *Model) Threshold() Level {
	return m.threshold
}

// SetThreshold changes which message rows are visible. The filter is
// applied at render time, so rows populated after the change obey it
// without revisiting.
func (m *Model) SetThreshold(l Level) {
	m.threshold = l
}

// Expand opens one node, loading its children on first expansion.
// A not-ready source defers the load to the work queue.
func (m *Model) Expand(id string) error {
	n, ok := m.index[id]
	if !ok {
		return fmt.Errorf("logview: unknown node %q", id)
	}
	n.expanded = true
	if n.loaded || n.Leaf() {
		return nil
	}
	if err := m.load(n); err != nil {
		if errors.Is(err, ErrNotReady) {
			// The failed load counts against the retry budget.
			m.push(workItem{node: n, retries: 1})
			return nil
		}
		return err
	}
	return nil
}

// Collapse closes one node. Queued expansion work underneath it is
// abandoned when its turn comes.
func (m *Model) Collapse(id string) {
	if n, ok := m.index[id]; ok {
		n.expanded = false
	}
}

// Toggle flips one node's expansion state.
func (m *Model) Toggle(id string) error {
	n, ok := m.index[id]
	if !ok {
		return fmt.Errorf("logview: unknown node %q", id)
	}
	if n.expanded {
		m.Collapse(id)
		return nil
	}
	return m.Expand(id)
}

// ExpandAll seeds a cooperative pass expanding the entire tree.
func (m *Model) ExpandAll() {
	m.push(workItem{node: m.root, recurse: func(*Node) bool { return true }})
}

// CollapseAll collapses every loaded node except the root.
func (m *Model) CollapseAll() {
	var walk func(*Node)
	walk = func(n *Node) {
		for _, c := range n.children {
			c.expanded = false
			walk(c)
		}
	}
	walk(m.root)
}

// ExpandFailed seeds a pass that expands the node and, depth-first,
// every contiguous failing descendant. Recursion stops at the first
// non-failing node on each branch. Non-failing seeds are a no-op.
func (m *Model) ExpandFailed(id string) {
	n, ok := m.index[id]
	if !ok || !n.failing() {
		return
	}
	m.push(workItem{node: n, recurse: (*Node).failing})
}

// Pending returns the number of queued expansion steps.
func (m *Model) Pending() int {
	return len(m.queue)
}

// Step processes one queued node and reports whether work remains.
// Hidden nodes are abandoned; a not-ready load reschedules the node up
// to maxLoadRetries times before giving up on it.
func (m *Model) Step() bool {
	for len(m.queue) > 0 {
		item := m.queue[0]
		m.queue = m.queue[1:]

		n := item.node
		if n != m.root && !n.visible() {
			continue
		}

		if !n.loaded && !n.Leaf() {
			if err := m.load(n); err != nil {
				if errors.Is(err, ErrNotReady) && item.retries < maxLoadRetries {
					item.retries++
					m.push(item)
					return len(m.queue) > 0
				}
				continue
			}
		}

		n.expanded = true
		if item.recurse != nil {
			// Prepend in reverse so children drain depth-first in order.
			for i := len(n.children) - 1; i >= 0; i-- {
				c := n.children[i]
				if c.Leaf() || !item.recurse(c) {
					continue
				}
				m.push(workItem{node: c, recurse: item.recurse})
			}
		}
		return len(m.queue) > 0
	}
	return false
}

// Drain runs queued work to completion.
func (m *Model) Drain() {
	for m.Step() {
	}
}

// Row is one visible line of the flattened tree.
type Row struct {
	Node  *Node
	Depth int
}

// Rows flattens the tree to its visible lines. Message rows below the
// severity threshold are filtered out here, so already-rendered and
// lazily-populated messages are gated identically.
func (m *Model) Rows() []Row {
	var rows []Row
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Type == TypeMessage && n.Level < m.threshold {
			return
		}
		rows = append(rows, Row{Node: n, Depth: n.depth()})
		if !n.expanded {
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(m.root)
	return rows
}

func (m *Model) push(item workItem) {
	m.queue = append([]workItem{item}, m.queue...)
}

func (m *Model) load(n *Node) error {
	specs, err := m.source.Children(n.ref)
	if err != nil {
		return err
	}
	for _, spec := range specs {
		m.addNode(n, spec)
	}
	n.loaded = true
	return nil
}

func (m *Model) addNode(parent *Node, spec Spec) *Node {
	n := &Node{
		ID:          spec.ID,
		Type:        spec.Type,
		Status:      spec.Status,
		Level:       spec.Level,
		Text:        spec.Text,
		ref:         spec.Ref,
		hasChildren: spec.HasChildren,
		parent:      parent,
	}
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	if n.ID != "" {
		m.index[n.ID] = n
	}
	return n
}
