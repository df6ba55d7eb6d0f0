package app

import (
	"context"

	"github.com/febb0e/robotcode/internal/langserver"
	"github.com/febb0e/robotcode/internal/menu"
)

// serverControl adapts the session manager to the menu's view of it.
type serverControl struct {
	manager *langserver.Manager
}

var _ menu.ServerControl = (*serverControl)(nil)

func (s *serverControl) HasSession(folder string) bool {
	return s.manager.HasSession(folder)
}

func (s *serverControl) Restart(ctx context.Context, folder string) error {
	return s.manager.Restart(ctx, folder)
}

func (s *serverControl) ClearCacheRestart(ctx context.Context, folder string) error {
	return s.manager.ClearCacheRestart(ctx, folder)
}

func (s *serverControl) SetLogLevel(ctx context.Context, folder, level string, extraArgs []string) error {
	session, ok := s.manager.ActiveSession(folder)
	if !ok {
		return langserver.ErrNoSession
	}
	return session.SetLogLevel(ctx, level, extraArgs)
}
