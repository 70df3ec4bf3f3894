package models

import "time"

// Event types pushed over the live feed
const (
	EventPhotoCaptured = "photo_captured"
	EventPhotosDeleted = "photos_deleted"
)

// Photo represents a stored photo. The filename is its identity and embeds
// the capture time.
type Photo struct {
	Filename string    `json:"filename"`
	TakenAt  time.Time `json:"taken_at"`
}

// Event represents a change to the photo collection broadcast to live clients
type Event struct {
	Type         string `json:"type"`
	Filename     string `json:"filename,omitempty"`
	TotalDeleted *int   `json:"total_deleted,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}
