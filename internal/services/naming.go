package services

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	photoPrefix    = "photo_"
	photoExtension = ".jpg"
)

var (
	// ErrInvalidFilename is returned for names that are not a single path element
	ErrInvalidFilename = errors.New("invalid filename")

	imageExtPattern  = regexp.MustCompile(`(?i)\.(jpg|jpeg|png)$`)
	timestampPattern = regexp.MustCompile(`^photo_(\d+)\.`)
)

// NameGenerator hands out photo filenames derived from wall-clock milliseconds.
// Names from one generator strictly increase, so two captures landing in the
// same millisecond still get distinct names.
type NameGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewNameGenerator creates a new filename generator using the given clock.
// A nil clock means time.Now.
func NewNameGenerator(now func() time.Time) *NameGenerator {
	if now == nil {
		now = time.Now
	}
	return &NameGenerator{now: now}
}

// Next returns the next photo filename
func (g *NameGenerator) Next() string {
	g.mu.Lock()
	ts := g.now().UnixMilli()
	if ts <= g.last {
		ts = g.last + 1
	}
	g.last = ts
	g.mu.Unlock()

	return photoPrefix + strconv.FormatInt(ts, 10) + photoExtension
}

// IsImageName reports whether name has a listable image extension
func IsImageName(name string) bool {
	return imageExtPattern.MatchString(name)
}

// ParseTimestamp extracts the embedded millisecond timestamp from a photo filename
func ParseTimestamp(name string) (int64, bool) {
	m := timestampPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	ts, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

// ValidateFilename rejects anything that is not a plain file name
func ValidateFilename(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return ErrInvalidFilename
	}
	return nil
}
