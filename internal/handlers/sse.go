package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pathwise/pathwise-backend/internal/sse"
)

type SSEHandler struct {
	hub *sse.Hub
}

func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// Stream opens the event stream for the calling user. The client is always
// subscribed to its own user channel; job channels can be added with
// repeated ?job=<id> query params.
func (h *SSEHandler) Stream(c *gin.Context) {
	userID, err := userIDFrom(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	client := h.hub.NewClient(userID)
	h.hub.Subscribe(client, sse.UserChannel(userID))
	for _, raw := range c.QueryArray("job") {
		jobID, err := parseUUIDField(raw, "job")
		if err != nil {
			continue
		}
		h.hub.Subscribe(client, sse.JobChannel(jobID))
	}
	defer h.hub.RemoveClient(client)

	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
