package api

import (
	"errors"
	"net/http"

	"github.com/alexanderramin/casetree/internal/repository"
	"github.com/alexanderramin/casetree/internal/service"
)

// Error codes carried in contract.ErrorResponse.
const (
	CodeNotFound       = "not_found"
	CodeInvalidReorder = "invalid_reorder"
	CodeInvalidParent  = "invalid_parent"
	CodeEmptyName      = "empty_name"
	CodeNotDense       = "not_dense"
	CodeInvalidProject = "invalid_project"
	CodeBadRequest     = "bad_request"
	CodeInternal       = "internal"
)

// ErrUnavailable means the server could not be reached at all.
var ErrUnavailable = errors.New("casetree server unavailable")

// codeSentinels maps wire codes to the errors they stand for, in both
// directions. Service errors often wrap ErrNotFound as their cause, so it
// is matched last.
var codeSentinels = []struct {
	code   string
	err    error
	status int
}{
	{CodeNotDense, service.ErrNotDense, http.StatusConflict},
	{CodeInvalidReorder, service.ErrInvalidReorder, http.StatusBadRequest},
	{CodeInvalidParent, service.ErrInvalidParent, http.StatusBadRequest},
	{CodeEmptyName, service.ErrEmptyName, http.StatusBadRequest},
	{CodeInvalidProject, service.ErrInvalidProject, http.StatusBadRequest},
	{CodeNotFound, repository.ErrNotFound, http.StatusNotFound},
}

// classify picks the status and code for a service error.
func classify(err error) (int, string) {
	for _, cs := range codeSentinels {
		if errors.Is(err, cs.err) {
			return cs.status, cs.code
		}
	}
	return http.StatusInternalServerError, CodeInternal
}

// StatusError is a non-2xx reply seen by Client. It unwraps to the sentinel
// matching its code, so callers can use errors.Is across the wire.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	return http.StatusText(e.StatusCode) + ": " + e.Message
}

func (e *StatusError) Unwrap() error {
	for _, cs := range codeSentinels {
		if cs.code == e.Code {
			return cs.err
		}
	}
	return nil
}
