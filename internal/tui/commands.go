package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/explorador/internal/browse"
	"github.com/mmcdole/explorador/internal/domain"
	"github.com/mmcdole/explorador/internal/reveal"
)

// Command factories for async operations

// LoadDepartmentsCmd fetches the department list
func LoadDepartmentsCmd(svc *browse.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		deps, err := svc.LoadDepartments(ctx)
		if err != nil {
			return DepartmentsFailedMsg{Err: err}
		}
		return DepartmentsLoadedMsg{Departments: deps}
	}
}

// LoadDetailCmd fetches a department with its cities and image
func LoadDetailCmd(svc *browse.Service, id int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		detail, err := svc.LoadDetail(ctx, id)
		if err != nil {
			return DetailFailedMsg{ID: id, Err: err}
		}
		return DetailLoadedMsg{ID: id, Detail: detail}
	}
}

// WaitForThumbnailCmd waits for the next resolved thumbnail
func WaitForThumbnailCmd(ch <-chan reveal.Result) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return ThumbnailLoadedMsg{Result: r}
	}
}

// OpenImageCmd hands a URL to the external viewer
func OpenImageCmd(opener domain.URLOpener, url string) tea.Cmd {
	return func() tea.Msg {
		if err := opener.Open(url); err != nil {
			return ErrMsg{Err: err, Context: "abriendo imagen"}
		}
		return ImageOpenedMsg{URL: url}
	}
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
