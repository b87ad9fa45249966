// Server-sent events endpoint.
//
// GET /events holds the connection open and pushes the caller's
// notifications plus the broadcast rooms_changed signal as SSE frames. A
// heartbeat frame keeps idle proxies from cutting the stream.
package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const heartbeatInterval = 25 * time.Second

// StreamEvents godoc
// @ID          streamEvents
// @Summary     Live event stream (SSE)
// @Description Pushes "notification" frames addressed to the caller and "rooms_changed" broadcasts. Frames named "heartbeat" are keep-alives and carry no data.
// @Tags        Events
// @Produce     text/event-stream
// @Security    BearerAuth
// @Success     200  {string}  string  "SSE stream"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Router      /events [get]
func (h *Handlers) StreamEvents(c *gin.Context) {
	if h.hub == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeInternal, "event stream disabled")
		return
	}

	ch, cancel := h.hub.Subscribe(identity(c).ID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// Commit the response immediately so clients see the stream headers
	// before the first event arrives.
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, open := <-ch:
			if !open {
				return false
			}
			payload := ev.Payload
			if payload == nil {
				payload = gin.H{}
			}
			c.SSEvent(ev.Name, payload)
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().UTC().Format(time.RFC3339))
			return true
		case <-ctx.Done():
			return false
		}
	})
}
