package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// userIDHeader identifies the calling user. Full authentication sits in
// front of this service; by the time a request arrives the gateway has
// already verified the identity it forwards here.
const userIDHeader = "X-User-ID"

func userIDFrom(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader(userIDHeader)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing %s header", userIDHeader)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s header", userIDHeader)
	}
	return id, nil
}

func parseUUIDField(raw, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}
