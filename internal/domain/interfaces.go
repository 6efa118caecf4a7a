package domain

import "context"

// CatalogRepository provides read-only access to the remote department catalog.
// Implementations never retry; failures surface to the caller.
type CatalogRepository interface {
	ListDepartments(ctx context.Context) ([]Department, error)
	GetDepartment(ctx context.Context, id int) (*Department, error)
	ListCities(ctx context.Context, departmentID int) ([]City, error)
}

// ImageResolver turns a department display name into a displayable image URL.
// Resolve never fails: it returns a remote URL or a fixed placeholder.
type ImageResolver interface {
	Resolve(ctx context.Context, name string) string
}

// PreferenceStore persists the preferences root object.
// Load never fails: missing or corrupt data yields DefaultPreferences.
type PreferenceStore interface {
	Load() Preferences
	Save(prefs Preferences) error
}

// URLOpener opens a URL in an external application
type URLOpener interface {
	Open(url string) error
}
