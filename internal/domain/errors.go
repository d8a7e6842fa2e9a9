package domain

import "errors"

// Sentinel errors for cache operations
var (
	// ErrUnreadableSource indicates a selected file could not be read
	ErrUnreadableSource = errors.New("source file is unreadable")

	// ErrEmptySelection indicates a save was requested with no processed entries
	ErrEmptySelection = errors.New("no files processed")

	// ErrCancelled indicates the user dismissed a directory or name prompt
	ErrCancelled = errors.New("cancelled")

	// ErrWriteFailure indicates a destination file could not be written
	ErrWriteFailure = errors.New("destination write failed")

	// ErrUnknownCategory indicates a category name did not match any category
	ErrUnknownCategory = errors.New("unknown category")

	// ErrUnknownMode indicates an output mode name was not recognized
	ErrUnknownMode = errors.New("unknown output mode")

	// ErrNotFound indicates a history lookup had no match
	ErrNotFound = errors.New("not found in history")
)
