package service

import "errors"

var (
	// ErrInvalidReorder rejects a malformed or inconsistent reorder batch.
	ErrInvalidReorder = errors.New("invalid reorder")
	// ErrNotDense means a batch would leave a scope with gaps or repeats.
	ErrNotDense = errors.New("display order not dense")
	// ErrInvalidParent rejects a parent that is missing, of the wrong kind or
	// in another project.
	ErrInvalidParent = errors.New("invalid parent")
	ErrEmptyName     = errors.New("name must not be empty")
	// ErrInvalidProject rejects a malformed or already used short ID.
	ErrInvalidProject = errors.New("invalid project")
	// ErrInvalidImport wraps every validation problem of an import document.
	ErrInvalidImport = errors.New("invalid import")
)
