package services

import (
	"sync"
	"testing"
	"time"

	"photo-capture-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stuckConn blocks every data write until released, like a peer that
// stopped reading
type stuckConn struct {
	release  chan struct{}
	once     sync.Once
	mu       sync.Mutex
	written  int
	isClosed bool
}

func newStuckConn() *stuckConn {
	return &stuckConn{release: make(chan struct{})}
}

func (c *stuckConn) SetWriteDeadline(time.Time) error { return nil }

func (c *stuckConn) WriteMessage(int, []byte) error {
	<-c.release
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written++
	return nil
}

func (c *stuckConn) WriteControl(int, []byte, time.Time) error { return nil }

func (c *stuckConn) Close() error {
	c.unblock()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isClosed = true
	return nil
}

func (c *stuckConn) unblock() {
	c.once.Do(func() { close(c.release) })
}

func (c *stuckConn) closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isClosed
}

func TestWSHub_PublishDoesNotWaitOnStalledClient(t *testing.T) {
	hub := NewWSHub()
	conn := newStuckConn()
	t.Cleanup(func() {
		conn.unblock()
		hub.Close()
	})

	_, err := hub.register(conn)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < sendBuffer+2; i++ {
		hub.Publish(models.Event{Type: models.EventPhotoCaptured, Filename: "photo_1.jpg"})
	}
	assert.Less(t, time.Since(start), time.Second)

	assert.Zero(t, hub.Count())

	conn.unblock()
	require.Eventually(t, conn.closed, 2*time.Second, 10*time.Millisecond)
}

func TestWSHub_FlushesQueuedEventsOnClose(t *testing.T) {
	hub := NewWSHub()
	conn := newStuckConn()
	conn.unblock()

	_, err := hub.register(conn)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		hub.Publish(models.Event{Type: models.EventPhotoCaptured})
	}
	hub.Close()

	assert.True(t, conn.closed())
	conn.mu.Lock()
	defer conn.mu.Unlock()
	assert.Equal(t, 3, conn.written)
}

func TestWSHub_RegisterAfterClose(t *testing.T) {
	hub := NewWSHub()
	hub.Close()

	_, err := hub.register(newStuckConn())
	assert.Error(t, err)
}
