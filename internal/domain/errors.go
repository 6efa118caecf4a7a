package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrCatalogOffline indicates the catalog API could not be reached
	ErrCatalogOffline = errors.New("catalog service is unreachable")

	// ErrDepartmentNotFound indicates the requested department does not exist
	ErrDepartmentNotFound = errors.New("department not found")

	// ErrNoteNotFound indicates the note id is unknown for the department
	ErrNoteNotFound = errors.New("note not found")

	// ErrFavoriteNotFound indicates the municipality favorite id is unknown
	ErrFavoriteNotFound = errors.New("municipality favorite not found")

	// ErrInvalidInput indicates a user-provided field failed validation
	ErrInvalidInput = errors.New("invalid input")
)

// HTTPError is returned for non-2xx catalog responses
type HTTPError struct {
	Status int
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d at %s", e.Status, e.URL)
}
