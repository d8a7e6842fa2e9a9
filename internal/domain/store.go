package domain

// StateKey names a remembered directory in the state file
type StateKey string

const (
	// StateOutputDir is the last directory files or archives were saved to
	StateOutputDir StateKey = "last_output_dir"
	// StateSourceDir is the last directory files were selected from
	StateSourceDir StateKey = "last_source_dir"
)

// StateKeys returns every recognized state key
func StateKeys() []StateKey {
	return []StateKey{StateOutputDir, StateSourceDir}
}

// StateStore remembers last-used directories across invocations.
// Each key is stored independently; updating one never clobbers the other.
type StateStore interface {
	// LastDir returns the remembered directory, or "" when unknown
	LastDir(key StateKey) string

	// SetLastDir remembers dir under key and persists the full state
	SetLastDir(key StateKey, dir string) error
}

// HistoryStore journals completed saves (BoltDB + memory).
// Names are indexed so a cache file can be traced back to its source.
type HistoryStore interface {
	RecordBatch(batch Batch) error

	// RecentBatches returns up to limit batches, newest first (limit <= 0 = all)
	RecentBatches(limit int) ([]Batch, error)

	// LookupName returns records whose name equals query, or starts with it
	// when there is no exact match
	LookupName(query string) ([]NameRecord, error)

	Clear() error
	Close() error
}
