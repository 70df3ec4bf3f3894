package services

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var photoNamePattern = regexp.MustCompile(`^photo_\d+\.(jpg|jpeg|png)$`)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestNameGenerator_Format(t *testing.T) {
	g := NewNameGenerator(fixedClock(1700000000123))
	name := g.Next()

	assert.Equal(t, "photo_1700000000123.jpg", name)
	assert.Regexp(t, photoNamePattern, name)
}

func TestNameGenerator_SameMillisecond(t *testing.T) {
	g := NewNameGenerator(fixedClock(500))

	assert.Equal(t, "photo_500.jpg", g.Next())
	assert.Equal(t, "photo_501.jpg", g.Next())
	assert.Equal(t, "photo_502.jpg", g.Next())
}

func TestNameGenerator_ClockGoesBackwards(t *testing.T) {
	now := int64(1000)
	g := NewNameGenerator(func() time.Time { return time.UnixMilli(now) })

	assert.Equal(t, "photo_1000.jpg", g.Next())
	now = 900
	assert.Equal(t, "photo_1001.jpg", g.Next())
	now = 2000
	assert.Equal(t, "photo_2000.jpg", g.Next())
}

func TestNameGenerator_ConcurrentUnique(t *testing.T) {
	g := NewNameGenerator(fixedClock(42))

	const n = 200
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]struct{}, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := g.Next()
			mu.Lock()
			seen[name] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
}

func TestIsImageName(t *testing.T) {
	tests := map[string]bool{
		"photo_1.jpg":  true,
		"photo_1.JPG":  true,
		"photo_1.jpeg": true,
		"photo_1.Png":  true,
		"notes.txt":    false,
		"photo_1.jpg~": false,
		"photo_1.gif":  false,
		"jpg":          false,
	}
	for name, want := range tests {
		assert.Equal(t, want, IsImageName(name), name)
	}
}

func TestParseTimestamp(t *testing.T) {
	ts, ok := ParseTimestamp("photo_1700000000123.jpg")
	require.True(t, ok)
	assert.Equal(t, int64(1700000000123), ts)

	ts, ok = ParseTimestamp("photo_300.PNG")
	require.True(t, ok)
	assert.Equal(t, int64(300), ts)

	for _, name := range []string{"holiday.jpg", "photo_.jpg", "photo_abc.jpg", "photo_99999999999999999999.jpg"} {
		_, ok := ParseTimestamp(name)
		assert.False(t, ok, name)
	}
}

func TestValidateFilename(t *testing.T) {
	for _, name := range []string{"photo_1.jpg", "a..b.jpg", ".hidden"} {
		assert.NoError(t, ValidateFilename(name), name)
	}
	for _, name := range []string{"", ".", "..", "../etc/passwd", "a/b.jpg", `a\b.jpg`, "a\x00.jpg"} {
		assert.ErrorIs(t, ValidateFilename(name), ErrInvalidFilename, name)
	}
}
