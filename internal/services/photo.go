package services

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"sync/atomic"
	"time"

	"photo-capture-backend/internal/models"
	"photo-capture-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// EventPublisher receives collection changes for live clients
type EventPublisher interface {
	Publish(event models.Event)
}

// PhotoService handles photo-related business logic
type PhotoService struct {
	repo          repository.PhotoRepository
	names         *NameGenerator
	events        EventPublisher
	deleteWorkers int
}

// NewPhotoService creates a new photo service. events may be nil.
func NewPhotoService(
	repo repository.PhotoRepository,
	names *NameGenerator,
	events EventPublisher,
	deleteWorkers int,
) *PhotoService {
	if names == nil {
		names = NewNameGenerator(nil)
	}
	if deleteWorkers <= 0 {
		deleteWorkers = 1
	}
	return &PhotoService{
		repo:          repo,
		names:         names,
		events:        events,
		deleteWorkers: deleteWorkers,
	}
}

// Capture stores an uploaded photo under a freshly generated name, announces
// it to live clients and returns that name
func (s *PhotoService) Capture(ctx context.Context, src io.Reader) (string, error) {
	filename, err := s.Store(ctx, src)
	if err != nil {
		return "", err
	}
	s.Announce(filename)
	return filename, nil
}

// Store writes an uploaded photo under a freshly generated name without
// announcing it. Callers either Announce or Discard the result.
func (s *PhotoService) Store(ctx context.Context, src io.Reader) (string, error) {
	filename := s.names.Next()

	size, err := s.repo.Save(ctx, filename, src)
	if err != nil {
		return "", fmt.Errorf("failed to save photo: %w", err)
	}

	log.Info().
		Str("filename", filename).
		Int64("size", size).
		Msg("Photo saved")

	return filename, nil
}

// Announce publishes a photo_captured event for a stored photo
func (s *PhotoService) Announce(filename string) {
	s.publish(models.Event{
		Type:     models.EventPhotoCaptured,
		Filename: filename,
	})
}

// Discard removes a stored photo that was never announced
func (s *PhotoService) Discard(ctx context.Context, filename string) error {
	if err := s.repo.Delete(ctx, filename); err != nil {
		return fmt.Errorf("failed to discard photo %s: %w", filename, err)
	}
	log.Info().Str("filename", filename).Msg("Photo discarded")
	return nil
}

// ListPhotos returns all stored images, newest embedded timestamp first.
// Names without a parseable timestamp come last in storage order.
func (s *PhotoService) ListPhotos(ctx context.Context) ([]models.Photo, error) {
	names, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}

	type entry struct {
		photo models.Photo
		ts    int64
	}

	entries := make([]entry, 0, len(names))
	for _, name := range names {
		if !IsImageName(name) {
			continue
		}
		e := entry{photo: models.Photo{Filename: name}, ts: -1}
		if ts, ok := ParseTimestamp(name); ok {
			e.ts = ts
			e.photo.TakenAt = time.UnixMilli(ts).UTC()
		}
		entries = append(entries, e)
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp.Compare(b.ts, a.ts)
	})

	photos := make([]models.Photo, len(entries))
	for i, e := range entries {
		photos[i] = e.photo
	}
	return photos, nil
}

// OpenPhoto opens a stored photo for streaming. It returns ErrInvalidFilename
// for names that are not a single path element and repository.ErrNotFound
// when the photo does not exist.
func (s *PhotoService) OpenPhoto(ctx context.Context, filename string) (*repository.PhotoObject, error) {
	if err := ValidateFilename(filename); err != nil {
		return nil, err
	}
	return s.repo.Open(ctx, filename)
}

// DeleteAll removes every stored object, images or not, and returns how many
// were removed. Deletions run concurrently and all of them finish before
// DeleteAll returns. Individual failures are logged and not counted.
func (s *PhotoService) DeleteAll(ctx context.Context) (int, error) {
	names, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list photos: %w", err)
	}

	var deleted atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.deleteWorkers)

	for _, name := range names {
		g.Go(func() error {
			if err := s.repo.Delete(ctx, name); err != nil {
				log.Error().
					Err(err).
					Str("filename", name).
					Msg("Failed to delete photo")
				return nil
			}
			deleted.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	total := int(deleted.Load())

	log.Info().
		Int("total_deleted", total).
		Int("total_found", len(names)).
		Msg("Photos deleted")

	s.publish(models.Event{
		Type:         models.EventPhotosDeleted,
		TotalDeleted: &total,
	})

	return total, nil
}

func (s *PhotoService) publish(event models.Event) {
	if s.events == nil {
		return
	}
	event.Timestamp = time.Now().UnixMilli()
	s.events.Publish(event)
}
