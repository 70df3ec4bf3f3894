package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"photo-capture-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialFeed(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial(endpoint, header)
}

func TestWebSocketFeed_ReceivesEvents(t *testing.T) {
	s := newTestServer(t, 0)
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	conn, _, err := dialFeed(t, srv, "http://localhost:5500")
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	rec := s.do(captureRequest(t, "photo", []byte("jpeg")))
	require.Equal(t, http.StatusOK, rec.Code)
	filename := decode[CaptureResponse](t, rec).Filename

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event models.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, models.EventPhotoCaptured, event.Type)
	assert.Equal(t, filename, event.Filename)

	rec = s.do(httptest.NewRequest(http.MethodDelete, "/photos", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	event = models.Event{}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, models.EventPhotosDeleted, event.Type)
	require.NotNil(t, event.TotalDeleted)
	assert.Equal(t, 1, *event.TotalDeleted)
}

func TestWebSocketFeed_RejectsUnknownOrigin(t *testing.T) {
	s := newTestServer(t, 0)
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	_, resp, err := dialFeed(t, srv, "https://evil.example")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, s.hub.Count())
}

func TestWebSocketFeed_UnregistersOnClose(t *testing.T) {
	s := newTestServer(t, 0)
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	conn, _, err := dialFeed(t, srv, "")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
	conn.Close()

	require.Eventually(t, func() bool { return s.hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
