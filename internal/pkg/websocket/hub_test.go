package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/swimdesk/internal/domain"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func newTestServer(t *testing.T, hub *Hub, lookup UsageLookup) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	respond := func(c *gin.Context, err error) {
		if apperrors.Is(err, apperrors.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
	h := NewHandler(hub, lookup, respond, zerolog.Nop())
	r.GET("/sessions/:id/ws", func(c *gin.Context) {
		c.Set("userID", int64(5))
		c.Next()
	}, h.HandleConnection)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHandlerSendsInitialSnapshotAndBroadcasts(t *testing.T) {
	hub := startHub(t)
	initial := domain.CapacityResult{Filled: 1, EffectiveCapacity: 6, OpenSeats: 5}
	srv := newTestServer(t, hub, func(ctx context.Context, id int64) (*domain.CapacityResult, error) {
		return &initial, nil
	})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/sessions/12/ws"), nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readMessage(t, conn)
	assert.Equal(t, MessageTypeUsage, first.Type)
	assert.Equal(t, int64(12), first.SessionID)
	assert.Equal(t, initial, first.Usage)

	require.Eventually(t, func() bool { return hub.GetClientsCount(12) == 1 }, 2*time.Second, 10*time.Millisecond)

	updated := domain.CapacityResult{Filled: 4, EffectiveCapacity: 6, OpenSeats: 2}
	hub.BroadcastUsage(99, domain.CapacityResult{Filled: 9})
	hub.BroadcastUsage(12, updated)

	next := readMessage(t, conn)
	assert.Equal(t, int64(12), next.SessionID)
	assert.Equal(t, updated, next.Usage)
}

func TestHandlerUnknownSession(t *testing.T) {
	hub := startHub(t)
	srv := newTestServer(t, hub, func(ctx context.Context, id int64) (*domain.CapacityResult, error) {
		return nil, apperrors.ErrSessionNotFound
	})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/sessions/3/ws"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandlerInvalidSessionID(t *testing.T) {
	hub := startHub(t)
	srv := newTestServer(t, hub, nil)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/sessions/abc/ws"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub := startHub(t)
	srv := newTestServer(t, hub, func(ctx context.Context, id int64) (*domain.CapacityResult, error) {
		return &domain.CapacityResult{}, nil
	})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/sessions/7/ws"), nil)
	require.NoError(t, err)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.GetClientsCount(7) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.GetClientsCount(7) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcastUsageAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.BroadcastUsage(1, domain.CapacityResult{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastUsage blocked on a stopped hub")
	}
	assert.False(t, hub.Register(&Client{sessionID: 1}))
}
