package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NitinGurawaliya/watch-dog/internal/dto"
	"github.com/NitinGurawaliya/watch-dog/internal/middleware"
	"github.com/NitinGurawaliya/watch-dog/internal/realtime"
)

// realtimeStream handles GET /realtime?projectId=. It registers the stream
// with the connection registry, emits a connected message and an immediate
// snapshot, then keeps pushing on every tick until the client goes away.
// All messages are data-only SSE frames with a JSON "type" discriminator.
func (h *Handler) realtimeStream(c *gin.Context) {
	projectID := c.Query("projectId")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Project ID is required"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	userID := c.GetString(middleware.ContextUserID)
	if _, err := h.projectService.VerifyOwner(c.Request.Context(), projectID, userID); err != nil {
		// The stream is already committed, so failures are reported in-band.
		h.writeStreamEvent(c, dto.RealtimeMessage{
			Type:    dto.MessageTypeError,
			Message: "Project not found or access denied",
		})
		return
	}

	client := realtime.NewClient(0)
	h.registry.Register(projectID, client)
	defer func() {
		h.registry.Unregister(projectID, client)
		client.Close()
	}()

	h.writeStreamEvent(c, dto.RealtimeMessage{Type: dto.MessageTypeConnected})
	h.broadcaster.Push(c.Request.Context(), projectID)

	ticker := time.NewTicker(h.opts.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			h.log.Debug("Realtime stream client disconnected",
				zap.String("project_id", projectID))
			return

		case msg, ok := <-client.Messages():
			if !ok {
				// The broadcaster dropped this stream after a failed send.
				return
			}
			h.writeStreamEvent(c, msg)

		case <-ticker.C:
			h.broadcaster.Push(c.Request.Context(), projectID)
		}
	}
}

func (h *Handler) writeStreamEvent(c *gin.Context, msg dto.RealtimeMessage) {
	if err := sse.Encode(c.Writer, sse.Event{Data: msg}); err != nil {
		h.log.Debug("Failed to write stream event", zap.Error(err))
		return
	}
	c.Writer.Flush()
}
