package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies an asset by the cache folder the game reads it from
type Category int

const (
	CategoryImages Category = iota
	CategorySounds
	CategoryMusic
	CategoryMods
	CategoryAdvert
)

// categoryInfo holds the name and pre-encoded cache subpath of a category.
// Backslashes are already percent-encoded as %5c.
var categoryInfo = [...]struct {
	name    string
	subpath string
}{
	CategoryImages: {"images", `Skins%5cMediaTracker%5cImages%5c`},
	CategorySounds: {"sounds", `Skins%5cMediaTracker%5cSounds%5c`},
	CategoryMusic:  {"music", `Skins%5cChallengeMusics%5c`},
	CategoryMods:   {"mods", `Skins%5cStadium%5cMod%5c`},
	CategoryAdvert: {"advert", `Skins%5cAny%5cAdvertisement%5c`},
}

// Categories returns every category in declaration order
func Categories() []Category {
	cats := make([]Category, len(categoryInfo))
	for i := range categoryInfo {
		cats[i] = Category(i)
	}
	return cats
}

// CategoryNames returns the lowercase names of all categories in declaration order
func CategoryNames() []string {
	names := make([]string, len(categoryInfo))
	for i, info := range categoryInfo {
		names[i] = info.name
	}
	return names
}

// ParseCategory returns the category with the given name (case-insensitive)
func ParseCategory(name string) (Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, info := range categoryInfo {
		if info.name == name {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// Valid reports whether c is one of the declared categories
func (c Category) Valid() bool {
	return c >= 0 && int(c) < len(categoryInfo)
}

// String returns the lowercase category name
func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryInfo[c].name
}

// Title returns the capitalised name used for display
func (c Category) Title() string {
	s := c.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Subpath returns the encoded cache subpath prepended to the file name
func (c Category) Subpath() string {
	if !c.Valid() {
		return ""
	}
	return categoryInfo[c].subpath
}

// Next returns the following category, wrapping around
func (c Category) Next() Category {
	return Category((int(c) + 1) % len(categoryInfo))
}

// OutputMode selects how a batch of entries is persisted
type OutputMode int

const (
	// ModeIndividual copies each source to <dir>/<derived name>
	ModeIndividual OutputMode = iota
	// ModePack stores all entries in a single ZIP archive
	ModePack
)

// ParseOutputMode accepts "single" (or "individual") and "pack" (or "zip")
func ParseOutputMode(s string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "individual":
		return ModeIndividual, nil
	case "pack", "zip":
		return ModePack, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

func (m OutputMode) String() string {
	switch m {
	case ModeIndividual:
		return "single"
	case ModePack:
		return "pack"
	default:
		return fmt.Sprintf("OutputMode(%d)", int(m))
	}
}

// Label returns the human readable description of the mode
func (m OutputMode) Label() string {
	if m == ModePack {
		return "Pack selection into ZIP"
	}
	return "Single files"
}

// Toggle returns the other mode
func (m OutputMode) Toggle() OutputMode {
	if m == ModePack {
		return ModeIndividual
	}
	return ModePack
}

// CacheEntry is a processed file awaiting save
type CacheEntry struct {
	SourcePath  string   `json:"source_path"`
	DerivedName string   `json:"derived_name"`
	Category    Category `json:"category"`
}

// SaveRequest describes where and how a batch is written.
// Directory is the copy target in individual mode and the directory that
// receives the archive in pack mode. ArchiveName is only used in pack mode.
type SaveRequest struct {
	Mode        OutputMode
	Directory   string
	ArchiveName string
}

// SaveResult summarizes a completed save
type SaveResult struct {
	BatchID     string
	Mode        OutputMode
	Destination string // directory (individual) or archive path (pack)
	Written     int    // entries written
	Bytes       int64  // source bytes written (uncompressed)
}

// Batch is a completed save as recorded in the history journal
type Batch struct {
	ID          string       `json:"id"`
	Mode        OutputMode   `json:"mode"`
	Destination string       `json:"destination"`
	CreatedAt   time.Time    `json:"created_at"`
	Entries     []CacheEntry `json:"entries"`
}

// NameRecord maps a derived cache name back to the file it was produced from
type NameRecord struct {
	Name        string    `json:"name"`
	SourcePath  string    `json:"source_path"`
	BatchID     string    `json:"batch_id"`
	Destination string    `json:"destination"`
	SavedAt     time.Time `json:"saved_at"`
}
