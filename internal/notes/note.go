// Package notes abstracts the host notes store behind a read/write interface
// so the cleanup pipeline is independent of the host platform.
package notes

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared by Source implementations.
var (
	ErrNotFound       = errors.New("note not found")
	ErrFolderNotFound = errors.New("folder not found")
)

// Note is a single user-authored text record in the host notes store.
// The pipeline borrows a copy for one cleanup cycle and never holds it
// longer; the Source owns the record.
type Note struct {
	ID        string    // opaque, unique within the source
	Folder    string    // folder name in the host store
	Title     string    // note name
	Body      string    // plain text / markdown, host encoding stripped
	UpdatedAt time.Time // zero when the host does not report it
}

// Source is the host notes store. Implementations translate between the
// host's native body encoding and the plain text the pipeline works on.
type Source interface {
	// Folders lists the folder names in the store.
	Folders(ctx context.Context) ([]string, error)

	// List returns every note in folder, bodies included.
	List(ctx context.Context, folder string) ([]Note, error)

	// Update overwrites the body of the note with the given ID.
	Update(ctx context.Context, id string, text string) error

	// Create adds a new note to folder.
	Create(ctx context.Context, folder, title, text string) error

	// CreateFolder creates a folder if it does not already exist.
	CreateFolder(ctx context.Context, name string) error
}
