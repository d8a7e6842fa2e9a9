package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/cachegen/internal/domain"
	"github.com/mmcdole/cachegen/internal/service"
)

// Command factories for async operations

// ProcessFilesCmd derives names for the given paths under category
func ProcessFilesCmd(svc *service.SessionService, paths []string, category domain.Category) tea.Cmd {
	return func() tea.Msg {
		added, err := svc.ProcessSelection(context.Background(), paths, category)
		return FilesProcessedMsg{Added: added, Err: err}
	}
}

// SaveCmd writes the session's entries
func SaveCmd(svc *service.SessionService, req domain.SaveRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		result, err := svc.Save(ctx, req)
		return SaveDoneMsg{Result: result, Err: err}
	}
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
