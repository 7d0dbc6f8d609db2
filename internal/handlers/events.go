package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/taskboard/taskboard-api/internal/realtime"
)

type EventHandler struct {
	hub *realtime.Hub
}

func NewEventHandler(hub *realtime.Hub) *EventHandler {
	return &EventHandler{
		hub: hub,
	}
}

// Stream sends broadcast events to the client over SSE until it disconnects.
// Missed events are not redelivered; clients reconcile with a list refresh
// on reconnect.
func (h *EventHandler) Stream(c *gin.Context) {
	id, events := h.hub.Subscribe()
	defer h.hub.Unsubscribe(id)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(event.Type), event.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
