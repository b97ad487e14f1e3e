package domain

import "errors"

var (
	// ErrSourceNotFound is returned when the document path does not exist.
	ErrSourceNotFound = errors.New("source document not found")
	// ErrEmptyDocument is returned when splitting the document yields no chunks.
	ErrEmptyDocument = errors.New("document produced no chunks")
	// ErrNotIndexed is returned by searches issued before indexing completed.
	ErrNotIndexed = errors.New("documents not indexed yet")
)
