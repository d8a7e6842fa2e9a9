package service

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/mmcdole/cachegen/internal/domain"
	"github.com/mmcdole/cachegen/internal/naming"
)

// SessionService holds the entries processed since the last successful save
type SessionService struct {
	output *OutputService
	state  domain.StateStore
	logger *slog.Logger

	mu      sync.RWMutex
	entries []domain.CacheEntry
}

// NewSessionService creates a new SessionService
func NewSessionService(output *OutputService, state domain.StateStore, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		output: output,
		state:  state,
		logger: logger,
	}
}

// ProcessSelection derives a name for every path under category and appends
// the successes in selection order. Unreadable files are skipped; their
// errors are joined into the returned error.
func (s *SessionService) ProcessSelection(ctx context.Context, paths []string, category domain.Category) ([]domain.CacheEntry, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	if s.state != nil {
		dir := filepath.Dir(paths[0])
		if err := s.state.SetLastDir(domain.StateSourceDir, dir); err != nil {
			s.logger.Warn("failed to remember source directory", "dir", dir, "error", err)
		}
	}

	var (
		added []domain.CacheEntry
		errs  []error
	)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		entry, err := naming.DeriveFile(path, category)
		if err != nil {
			s.logger.Warn("skipping unreadable file", "path", path, "error", err)
			errs = append(errs, err)
			continue
		}
		added = append(added, entry)
	}

	s.mu.Lock()
	s.entries = append(s.entries, added...)
	s.mu.Unlock()

	s.logger.Debug("processed selection",
		"category", category.String(),
		"selected", len(paths),
		"added", len(added))

	return added, errors.Join(errs...)
}

// Entries returns a copy of the current entries
func (s *SessionService) Entries() []domain.CacheEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CacheEntry(nil), s.entries...)
}

func (s *SessionService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear drops every entry
func (s *SessionService) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
}

// Save writes the current entries and removes them on success. Entries
// appended while the save runs are kept for the next one. A failed or
// cancelled save keeps everything.
func (s *SessionService) Save(ctx context.Context, req domain.SaveRequest) (domain.SaveResult, error) {
	entries := s.Entries()
	result, err := s.output.Save(ctx, entries, req)
	if err != nil {
		return result, err
	}

	s.mu.Lock()
	s.entries = withoutSaved(s.entries, entries)
	s.mu.Unlock()

	return result, nil
}

// withoutSaved drops the saved prefix from current. If current no longer
// starts with saved, the list was cleared meanwhile and nothing is dropped.
func withoutSaved(current, saved []domain.CacheEntry) []domain.CacheEntry {
	if len(current) < len(saved) {
		return current
	}
	for i := range saved {
		if current[i] != saved[i] {
			return current
		}
	}
	if len(current) == len(saved) {
		return nil
	}
	return append([]domain.CacheEntry(nil), current[len(saved):]...)
}
