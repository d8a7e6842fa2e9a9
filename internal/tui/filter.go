package tui

import (
	"path/filepath"
	"strings"

	"github.com/mmcdole/cachegen/internal/domain"
	"github.com/sahilm/fuzzy"
)

// entrySource implements sahilm/fuzzy.Source over entry labels
type entrySource []domain.CacheEntry

// String returns the lowercase searchable text for entry i
func (s entrySource) String(i int) string {
	return strings.ToLower(filepath.Base(s[i].SourcePath) + " " + s[i].DerivedName)
}

func (s entrySource) Len() int { return len(s) }

// filterEntries returns the indexes of entries matching query, best first.
// An empty query matches nothing and the caller shows the whole list.
func filterEntries(query string, entries []domain.CacheEntry) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), entrySource(entries))
	idx := make([]int, len(matches))
	for i, match := range matches {
		idx[i] = match.Index
	}
	return idx
}
