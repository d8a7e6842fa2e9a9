package tui

import (
	"github.com/mmcdole/cachegen/internal/domain"
)

// Message types for the TUI

// FilesProcessedMsg signals that picked files were hashed and appended
type FilesProcessedMsg struct {
	Added []domain.CacheEntry
	Err   error
}

// SaveDoneMsg signals that a save finished
type SaveDoneMsg struct {
	Result domain.SaveResult
	Err    error
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
