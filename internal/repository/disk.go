package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// DiskPhotoRepository stores photos as files in a single directory.
// Every operation goes through an os.Root opened on that directory, so names
// cannot escape it.
type DiskPhotoRepository struct {
	dir string
}

// NewDiskPhotoRepository creates a disk repository rooted at dir, creating
// the directory if it does not exist
func NewDiskPhotoRepository(dir string) (*DiskPhotoRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &DiskPhotoRepository{dir: dir}, nil
}

// Dir returns the storage directory
func (r *DiskPhotoRepository) Dir() string {
	return r.dir
}

// openRoot opens the storage directory. The directory may have been removed
// since startup; create reports whether to recreate it.
func (r *DiskPhotoRepository) openRoot(create bool) (*os.Root, error) {
	if create {
		if err := os.MkdirAll(r.dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	root, err := os.OpenRoot(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage directory: %w", err)
	}
	return root, nil
}

// Save writes a photo file
func (r *DiskPhotoRepository) Save(_ context.Context, name string, src io.Reader) (int64, error) {
	root, err := r.openRoot(true)
	if err != nil {
		return 0, err
	}
	defer root.Close()

	out, err := root.Create(name)
	if err != nil {
		return 0, fmt.Errorf("failed to create photo file: %w", err)
	}

	n, err := io.Copy(out, src)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = root.Remove(name)
		return 0, fmt.Errorf("failed to write photo file: %w", err)
	}

	return n, nil
}

// List returns the names of all regular files in the storage directory
func (r *DiskPhotoRepository) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Open opens a photo file for reading. The returned body is an *os.File and
// therefore also an io.ReadSeeker.
func (r *DiskPhotoRepository) Open(_ context.Context, name string) (*PhotoObject, error) {
	root, err := r.openRoot(false)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer root.Close()

	f, err := root.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open photo file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat photo file: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}

	return &PhotoObject{
		Name:    name,
		Body:    f,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Delete removes a photo file
func (r *DiskPhotoRepository) Delete(_ context.Context, name string) error {
	root, err := r.openRoot(false)
	if err != nil {
		return err
	}
	defer root.Close()

	if err := root.Remove(name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete photo file: %w", err)
	}
	return nil
}
