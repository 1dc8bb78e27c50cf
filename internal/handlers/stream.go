package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/site-services-api/internal/notify"
)

const (
	// StreamKeepaliveInterval is the interval between keepalive comments.
	StreamKeepaliveInterval = 30 * time.Second

	streamContentType = "text/event-stream"
)

// StreamHandler pushes hub notifications to browsers over server-sent events.
type StreamHandler struct {
	hub       *notify.Hub
	logger    *slog.Logger
	keepalive time.Duration
}

func NewStreamHandler(hub *notify.Hub, logger *slog.Logger, keepalive time.Duration) *StreamHandler {
	if keepalive <= 0 {
		keepalive = StreamKeepaliveInterval
	}
	return &StreamHandler{hub: hub, logger: logger, keepalive: keepalive}
}

// Stream serves GET /api/stream. It returns when the client disconnects or the hub shuts down.
func (h *StreamHandler) Stream(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	listener := h.hub.Subscribe(user.ID)
	defer h.hub.Unsubscribe(listener.ID)

	c.Header("Content-Type", streamContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if _, err := c.Writer.WriteString(": connected\n\n"); err != nil {
		h.logger.Warn("stream initial write error", "listener_id", listener.ID, "error", err)
		return
	}
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("stream closed by client", "listener_id", listener.ID, "user_id", user.ID)
			return

		case msg, ok := <-listener.C():
			if !ok {
				return
			}
			c.SSEvent(msg.Name, string(msg.Data))
			c.Writer.Flush()

		case <-ticker.C:
			if _, err := c.Writer.WriteString(": keepalive\n\n"); err != nil {
				h.logger.Warn("stream keepalive error", "listener_id", listener.ID, "error", err)
				return
			}
			c.Writer.Flush()
		}
	}
}
