package repository

import "errors"

// ErrNotFound is wrapped by every lookup or write that targets a missing row.
var ErrNotFound = errors.New("not found")
