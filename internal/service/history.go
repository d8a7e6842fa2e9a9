package service

import (
	"errors"
	"log/slog"

	"github.com/mmcdole/cachegen/internal/domain"
	"github.com/mmcdole/cachegen/internal/naming"
)

// DefaultHistoryLimit is used when a non-positive limit is requested
const DefaultHistoryLimit = 10

// HistoryService answers questions about earlier saves
type HistoryService struct {
	store  domain.HistoryStore
	logger *slog.Logger
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(store domain.HistoryStore, logger *slog.Logger) *HistoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryService{store: store, logger: logger}
}

// Recent returns up to limit batches, newest first
func (s *HistoryService) Recent(limit int) ([]domain.Batch, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.RecentBatches(limit)
}

// Lookup maps a derived name, or a prefix of one, back to its source.
// A query that is a plain MD5 of a source file is also tried in its
// byte-reversed form, which is how derived names start.
func (s *HistoryService) Lookup(name string) ([]domain.NameRecord, error) {
	records, err := s.store.LookupName(name)
	if errors.Is(err, domain.ErrNotFound) && len(name) == md5HexLen {
		if reversed, rerr := naming.ReverseDigest(name); rerr == nil {
			records, err = s.store.LookupName(reversed)
		}
	}
	if err != nil {
		s.logger.Debug("history lookup missed", "query", name, "error", err)
		return nil, err
	}
	return records, nil
}

const md5HexLen = 32

// Clear forgets every recorded batch
func (s *HistoryService) Clear() error {
	if err := s.store.Clear(); err != nil {
		return err
	}
	s.logger.Info("history cleared")
	return nil
}
