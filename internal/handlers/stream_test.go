package handlers

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/site-services-api/internal/constants"
	"github.com/yukikurage/site-services-api/internal/logger"
	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/notify"
)

func openStream(t *testing.T, hub *notify.Hub, keepalive time.Duration) *bufio.Reader {
	t.Helper()

	handler := NewStreamHandler(hub, logger.Discard(), keepalive)
	r := gin.New()
	r.GET("/api/stream", func(c *gin.Context) {
		c.Set(constants.ContextKeyUser, &models.User{ID: 9, Role: models.RoleResident, Active: true})
		c.Next()
	}, handler.Stream)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(srv.URL + "/api/stream")
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return bufio.NewReader(resp.Body)
}

func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimRight(line, "\n")
}

func TestStream_DeliversEvents(t *testing.T) {
	hub := notify.NewHub(8, logger.Discard(), nil)
	body := openStream(t, hub, time.Minute)

	require.Equal(t, ": connected", readLine(t, body))
	require.Equal(t, 1, hub.Count())

	hub.Publish("ticket:created", map[string]any{"id": 7})

	var event, data string
	for event == "" || data == "" {
		line := readLine(t, body)
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
	assert.Equal(t, "ticket:created", event)
	assert.JSONEq(t, `{"id":7}`, data)

	hub.Shutdown()
	_, err := body.ReadString('\n')
	for err == nil {
		_, err = body.ReadString('\n')
	}
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestStream_Keepalive(t *testing.T) {
	hub := notify.NewHub(8, logger.Discard(), nil)
	t.Cleanup(hub.Shutdown)
	body := openStream(t, hub, 20*time.Millisecond)

	require.Equal(t, ": connected", readLine(t, body))
	require.Equal(t, "", readLine(t, body))
	require.Equal(t, ": keepalive", readLine(t, body))
}
