package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"photo-capture-backend/internal/repository"
	"photo-capture-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const photoField = "photo"

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	photoService   *services.PhotoService
	maxUploadBytes int64
}

// NewPhotoHandler creates a new photo handler. maxUploadBytes <= 0 disables
// the request size limit.
func NewPhotoHandler(photoService *services.PhotoService, maxUploadBytes int64) *PhotoHandler {
	return &PhotoHandler{
		photoService:   photoService,
		maxUploadBytes: maxUploadBytes,
	}
}

// CaptureResponse represents the response to a successful upload
type CaptureResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// ListResponse represents the photo listing
type ListResponse struct {
	Photos []string `json:"photos"`
}

// DeleteResponse represents the result of a bulk delete
type DeleteResponse struct {
	Message      string `json:"message"`
	TotalDeleted int    `json:"totalDeleted"`
}

// CapturePhoto handles POST /capture. The form must carry exactly one file
// part, named photo; text fields are ignored.
func (h *PhotoHandler) CapturePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	reader, err := r.MultipartReader()
	if err != nil {
		respondError(w, "No photo uploaded", http.StatusBadRequest)
		return
	}

	var filename string

	// A stored photo is only kept once the whole form has been read
	reject := func(msg string) {
		if filename != "" {
			if err := h.photoService.Discard(ctx, filename); err != nil {
				log.Error().Err(err).Str("filename", filename).Msg("Failed to discard rejected photo")
			}
		}
		respondError(w, msg, http.StatusBadRequest)
	}

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if limit, ok := tooLarge(err); ok {
				reject(fmt.Sprintf("Photo must not be larger than %d bytes", limit))
				return
			}
			reject("Malformed multipart request")
			return
		}

		if part.FileName() == "" {
			part.Close()
			continue
		}
		if part.FormName() != photoField || filename != "" {
			part.Close()
			reject("Unexpected file field")
			return
		}

		filename, err = h.photoService.Store(ctx, part)
		part.Close()
		if err != nil {
			h.respondUploadError(w, err)
			return
		}
	}

	if filename == "" {
		respondError(w, "No photo uploaded", http.StatusBadRequest)
		return
	}

	h.photoService.Announce(filename)

	respondJSON(w, CaptureResponse{
		Message:  "Photo captured successfully",
		Filename: filename,
	}, http.StatusOK)
}

func (h *PhotoHandler) respondUploadError(w http.ResponseWriter, err error) {
	if limit, ok := tooLarge(err); ok {
		respondError(w, fmt.Sprintf("Photo must not be larger than %d bytes", limit), http.StatusBadRequest)
		return
	}

	switch {
	case errors.Is(err, io.ErrUnexpectedEOF):
		respondError(w, "Malformed multipart request", http.StatusBadRequest)
	default:
		log.Error().Err(err).Msg("Failed to capture photo")
		respondError(w, "Failed to save photo", http.StatusInternalServerError)
	}
}

func tooLarge(err error) (int64, bool) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return maxBytesErr.Limit, true
	}
	return 0, false
}

// ListPhotos handles GET /photos
func (h *PhotoHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := h.photoService.ListPhotos(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Error reading photos directory")
		respondError(w, "Could not read photos directory", http.StatusInternalServerError)
		return
	}

	names := make([]string, len(photos))
	for i, p := range photos {
		names[i] = p.Filename
	}

	respondJSON(w, ListResponse{Photos: names}, http.StatusOK)
}

// GetPhoto handles GET /photos/{filename}
func (h *PhotoHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	// chi matches on RawPath when the request path had escapes that
	// decoding would lose (such as %2F); only then is the param still encoded
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(filename)
		if err != nil {
			respondError(w, "Invalid filename", http.StatusBadRequest)
			return
		}
		filename = unescaped
	}

	obj, err := h.photoService.OpenPhoto(r.Context(), filename)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidFilename):
			respondError(w, "Invalid filename", http.StatusBadRequest)
		case errors.Is(err, repository.ErrNotFound):
			respondError(w, "Photo not found", http.StatusNotFound)
		default:
			log.Error().Err(err).Str("filename", filename).Msg("Failed to open photo")
			respondError(w, "Failed to read photo", http.StatusInternalServerError)
		}
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", repository.ContentType(filename))

	if rs, ok := obj.Body.(io.ReadSeeker); ok {
		http.ServeContent(w, r, filename, obj.ModTime, rs)
		return
	}

	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	// Headers are committed here; a failed copy can only cut the body short
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("Failed to stream photo")
	}
}

// DeletePhotos handles DELETE /photos
func (h *PhotoHandler) DeletePhotos(w http.ResponseWriter, r *http.Request) {
	total, err := h.photoService.DeleteAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Error reading photos directory")
		respondError(w, "Could not read photos directory", http.StatusInternalServerError)
		return
	}

	respondJSON(w, DeleteResponse{
		Message:      fmt.Sprintf("Deleted %d photos", total),
		TotalDeleted: total,
	}, http.StatusOK)
}
