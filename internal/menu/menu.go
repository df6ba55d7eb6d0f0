// Package menu implements the action menu: a quick pick over commands
// scoped to one workspace folder. Labels are computed at open time so
// toggles read their current state, and every failure surfaces as a
// user-visible message rather than an error.
package menu

import (
	"context"
	"fmt"
	"sort"

	"github.com/febb0e/robotcode/internal/picker"
	"github.com/febb0e/robotcode/internal/workspace"
)

// LabelFunc computes display text for a folder at open time.
type LabelFunc func(folder workspace.Folder) string

// StaticLabel adapts fixed text to a LabelFunc.
func StaticLabel(s string) LabelFunc {
	return func(workspace.Folder) string { return s }
}

// Action is one menu entry. Label is required; Detail is optional.
type Action struct {
	// ID is the stable command identifier, e.g. "robot.restartServer".
	ID string

	// Label produces the entry text for the target folder.
	Label LabelFunc

	// Detail produces secondary text, or is nil.
	Detail LabelFunc

	// Run executes the action against the resolved folder.
	Run func(ctx context.Context, folder workspace.Folder) error
}

// Registry is the immutable set of actions built at startup.
// Lua-contributed actions register before the first Open.
type Registry struct {
	actions map[string]Action
	order   []string
}

// NewRegistry creates a registry from the given actions.
func NewRegistry(actions ...Action) *Registry {
	r := &Registry{actions: make(map[string]Action)}
	for _, a := range actions {
		r.Register(a)
	}
	return r
}

// Register adds an action; a duplicate ID replaces the earlier entry
// without changing its menu position.
func (r *Registry) Register(a Action) {
	if _, exists := r.actions[a.ID]; !exists {
		r.order = append(r.order, a.ID)
	}
	r.actions[a.ID] = a
}

// Lookup returns the action with the given ID.
func (r *Registry) Lookup(id string) (Action, bool) {
	a, ok := r.actions[id]
	return a, ok
}

// Actions returns all actions in registration order.
func (r *Registry) Actions() []Action {
	out := make([]Action, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.actions[id])
	}
	return out
}

// Prompter is the user-interaction surface the menu runs on. The
// application backs it with the terminal picker; tests script it.
type Prompter interface {
	// Pick presents items and returns the selection, or
	// picker.ErrDismissed when the user cancels.
	Pick(title string, items []picker.Item) (picker.Item, error)

	// Input asks for one line of free text, with the same dismissal
	// contract as Pick.
	Input(title, initial string) (string, error)

	// Message shows a transient informational message.
	Message(text string)
}

// Menu opens the action list for a resolved folder.
type Menu struct {
	registry  *Registry
	workspace *workspace.Workspace
	servers   ServerControl
	prompter  Prompter
}

// New creates a menu over the registry.
func New(registry *Registry, ws *workspace.Workspace, servers ServerControl, prompter Prompter) *Menu {
	return &Menu{registry: registry, workspace: ws, servers: servers, prompter: prompter}
}

// Open resolves the target folder and runs the selected action.
//
// Folder resolution order: the explicit argument, the active editor's
// owning folder, the sole workspace folder, then a picker over folders.
// Dismissal at any point is a no-op. An unresolvable folder, a folder
// with no server session, or a failing action produces a message, never
// an error.
func (m *Menu) Open(ctx context.Context, explicit *workspace.Folder, editor *workspace.Editor) {
	folder, ok := m.resolveFolder(explicit, editor)
	if !ok {
		return
	}
	if m.servers != nil && !m.servers.HasSession(folder.Path) {
		m.prompter.Message("no language server running for " + folder.Name)
		return
	}

	items := make([]picker.Item, 0, len(m.registry.order))
	for _, a := range m.registry.Actions() {
		it := picker.Item{Label: a.Label(folder), Data: a.ID}
		if a.Detail != nil {
			it.Detail = a.Detail(folder)
		}
		items = append(items, it)
	}

	sel, err := m.prompter.Pick("RobotCode: "+folder.Name, items)
	if err != nil {
		return
	}

	id, _ := sel.Data.(string)
	m.runAction(ctx, id, folder, sel.Label)
}

// WidgetRef names one status-row segment and the action bound to it.
type WidgetRef struct {
	Label   string
	Detail  string
	Command string
}

// OpenWidgets presents the status-row segments and runs the bound action
// of the selected one. Dismissal and unbound segments are no-ops.
func (m *Menu) OpenWidgets(ctx context.Context, widgets []WidgetRef, explicit *workspace.Folder, editor *workspace.Editor) {
	if len(widgets) == 0 {
		m.prompter.Message("no status to act on")
		return
	}
	folder, ok := m.resolveFolder(explicit, editor)
	if !ok {
		return
	}

	items := make([]picker.Item, len(widgets))
	for i, w := range widgets {
		items[i] = picker.Item{Label: w.Label, Detail: w.Detail, Data: w.Command}
	}
	sel, err := m.prompter.Pick("Status: "+folder.Name, items)
	if err != nil {
		return
	}

	id, _ := sel.Data.(string)
	m.runAction(ctx, id, folder, sel.Label)
}

func (m *Menu) runAction(ctx context.Context, id string, folder workspace.Folder, label string) {
	action, ok := m.registry.Lookup(id)
	if !ok {
		return
	}
	if err := action.Run(ctx, folder); err != nil {
		m.prompter.Message(fmt.Sprintf("%s failed: %v", label, err))
	}
}

func (m *Menu) resolveFolder(explicit *workspace.Folder, editor *workspace.Editor) (workspace.Folder, bool) {
	if explicit != nil {
		return *explicit, true
	}

	if editor != nil {
		if folder, ok := m.workspace.FolderOf(editor.Path); ok {
			return folder, true
		}
	}

	folders := m.workspace.Folders()
	switch len(folders) {
	case 0:
		m.prompter.Message("no workspace folder open")
		return workspace.Folder{}, false
	case 1:
		return folders[0], true
	}

	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	items := make([]picker.Item, len(folders))
	for i, f := range folders {
		items[i] = picker.Item{Label: f.Name, Detail: f.Path, Data: f}
	}
	sel, err := m.prompter.Pick("Select folder", items)
	if err != nil {
		return workspace.Folder{}, false
	}
	folder, _ := sel.Data.(workspace.Folder)
	return folder, true
}
