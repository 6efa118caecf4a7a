package tui

import (
	"github.com/mmcdole/explorador/internal/browse"
	"github.com/mmcdole/explorador/internal/domain"
	"github.com/mmcdole/explorador/internal/reveal"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// DepartmentsLoadedMsg signals that the department list has been fetched
type DepartmentsLoadedMsg struct {
	Departments []domain.Department
}

// DepartmentsFailedMsg signals that the department list could not be fetched
type DepartmentsFailedMsg struct {
	Err error
}

// DetailLoadedMsg carries a loaded department detail
type DetailLoadedMsg struct {
	ID     int
	Detail *browse.Detail
}

// DetailFailedMsg signals that a detail load failed
type DetailFailedMsg struct {
	ID  int
	Err error
}

// ThumbnailLoadedMsg carries one resolved list thumbnail
type ThumbnailLoadedMsg struct {
	Result reveal.Result
}

// ImageOpenedMsg signals that an image was handed to the external viewer
type ImageOpenedMsg struct {
	URL string
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
