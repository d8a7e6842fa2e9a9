package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/cachegen/internal/domain"
)

// ResolveCategory turns user input into a category. An exact name wins;
// otherwise the closest fuzzy match is used ("snd" resolves to sounds).
func ResolveCategory(query string) (domain.Category, error) {
	if cat, err := domain.ParseCategory(query); err == nil {
		return cat, nil
	}

	q := strings.TrimSpace(query)
	if q == "" {
		return 0, fmt.Errorf("%w: empty", domain.ErrUnknownCategory)
	}

	ranks := fuzzy.RankFindFold(q, domain.CategoryNames())
	if len(ranks) == 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, query)
	}
	sort.Stable(ranks)

	return domain.Categories()[ranks[0].OriginalIndex], nil
}
