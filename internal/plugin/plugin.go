// Package plugin loads user-defined menu actions from Lua scripts.
//
// Each script in the actions directory declares a name, an optional
// description, and an action function receiving the target folder path:
//
//	name = "Count Suites"
//	description = "count .robot files under the folder"
//	function action(folder)
//	    ...
//	end
//
// Scripts run in a restricted state: no file loading primitives, no os,
// io or debug libraries. Every invocation gets a fresh state, so a
// misbehaving script cannot poison later runs.
package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/febb0e/robotcode/internal/menu"
	"github.com/febb0e/robotcode/internal/workspace"
)

// Script is one loadable user action.
type Script struct {
	Path        string
	Name        string
	Description string
}

// dangerous globals removed from every state before user code runs.
var removedGlobals = []string{
	"dofile", "loadfile", "load", "loadstring",
	"os", "io", "debug", "collectgarbage",
}

func newState() *lua.LState {
	L := lua.NewState()
	for _, name := range removedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
	}
	return L
}

// Load scans dir for *.lua scripts and reads their declarations.
// Unreadable or invalid scripts are skipped and reported; a missing
// directory yields no scripts and no error.
func Load(dir string) ([]*Script, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []error{err}
	}

	var scripts []*Script
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".lua") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		s, err := inspect(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("plugin %s: %w", e.Name(), err))
			continue
		}
		scripts = append(scripts, s)
	}

	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Name < scripts[j].Name })
	return scripts, errs
}

// inspect runs the script once to read its declarations.
func inspect(path string) (*Script, error) {
	L := newState()
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return nil, err
	}

	name, ok := L.GetGlobal("name").(lua.LString)
	if !ok || name == "" {
		return nil, fmt.Errorf("script declares no name")
	}
	if _, ok := L.GetGlobal("action").(*lua.LFunction); !ok {
		return nil, fmt.Errorf("script declares no action function")
	}

	s := &Script{Path: path, Name: string(name)}
	if desc, ok := L.GetGlobal("description").(lua.LString); ok {
		s.Description = string(desc)
	}
	return s, nil
}

// Run executes the script's action against a folder on a fresh state.
func (s *Script) Run(folder string) error {
	L := newState()
	defer L.Close()

	if err := L.DoFile(s.Path); err != nil {
		return err
	}
	fn, ok := L.GetGlobal("action").(*lua.LFunction)
	if !ok {
		return fmt.Errorf("script declares no action function")
	}
	return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, lua.LString(folder))
}

// Action adapts the script to a menu entry. The action ID is derived
// from the file name so it stays stable across renames of the display
// name.
func (s *Script) Action() menu.Action {
	return menu.Action{
		ID:    "plugin." + strings.TrimSuffix(filepath.Base(s.Path), ".lua"),
		Label: menu.StaticLabel(s.Name),
		Detail: func(workspace.Folder) string {
			return s.Description
		},
		Run: func(_ context.Context, f workspace.Folder) error {
			return s.Run(f.Path)
		},
	}
}
