package repository

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"time"
)

// ErrNotFound is returned when a photo object does not exist
var ErrNotFound = errors.New("photo not found")

// PhotoObject is an open photo ready to be streamed to a client.
// Body must be closed by the caller.
type PhotoObject struct {
	Name    string
	Body    io.ReadCloser
	Size    int64
	ModTime time.Time
}

// PhotoRepository handles storage operations for photo objects.
// Names are single path elements; implementations never resolve them
// outside their storage root.
type PhotoRepository interface {
	// Save writes the content of r under name and returns the number of bytes written.
	// A failed write leaves no object behind.
	Save(ctx context.Context, name string, r io.Reader) (int64, error)

	// List returns the names of all stored objects, directories excluded.
	List(ctx context.Context) ([]string, error)

	// Open returns the object stored under name, or ErrNotFound.
	Open(ctx context.Context, name string) (*PhotoObject, error)

	// Delete removes the object stored under name.
	Delete(ctx context.Context, name string) error
}

// ContentType returns the MIME type for a photo name based on its extension
func ContentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
