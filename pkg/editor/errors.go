package editor

import "errors"

var (
	// ErrNotFound is returned when a gesture names an element that is not in
	// the definition.
	ErrNotFound = errors.New("editor: element not found")
	// ErrRejected is returned when a move or drop is refused. Nothing was
	// mutated.
	ErrRejected = errors.New("editor: gesture rejected")
	// ErrCorruptDefinition is returned by Load when the stored blob cannot be
	// parsed. The session continues with an empty definition.
	ErrCorruptDefinition = errors.New("editor: stored definition is corrupt")
)
