package handler

import (
	"context"
	"fmt"
	"net/http"

	"pulse-chat/internal/redis"
	"pulse-chat/internal/services"
	"pulse-chat/internal/transport/httpdto"
	pulse_errors "pulse-chat/pkg/errors"

	"github.com/gin-gonic/gin"
)

// PresenceReader answers whether a user currently holds a live socket
// and when they were last seen. Satisfied by *redis.PresenceStore.
type PresenceReader interface {
	IsOnline(ctx context.Context, userID string) (bool, error)
	Get(ctx context.Context, userID string) (*redis.PresenceStatus, error)
}

type PresenceHandler struct {
	store PresenceReader
}

// NewPresenceHandler takes a nil store when Redis is disabled; the
// endpoint then answers 503.
func NewPresenceHandler(store PresenceReader) *PresenceHandler {
	return &PresenceHandler{store: store}
}

// Get reports a user's connectivity. LastSeen is omitted for users with
// no presence record at all.
func (h *PresenceHandler) Get(c *gin.Context) {
	if _, ok := services.UserIDFromContext(c.Request.Context()); !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	userID, err := parseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_REQUEST"))
		return
	}

	if h.store == nil {
		respondError(c, fmt.Errorf("%w: presence tracking is not configured", pulse_errors.ErrUnavailable))
		return
	}

	online, err := h.store.IsOnline(c.Request.Context(), userID.String())
	if err != nil {
		respondError(c, fmt.Errorf("%w: presence lookup: %v", pulse_errors.ErrUnavailable, err))
		return
	}

	resp := httpdto.PresenceResponse{UserID: userID.String(), IsOnline: online}
	status, err := h.store.Get(c.Request.Context(), userID.String())
	if err != nil {
		respondError(c, fmt.Errorf("%w: presence lookup: %v", pulse_errors.ErrUnavailable, err))
		return
	}
	if status != nil {
		resp.LastSeen = &status.LastSeen
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(resp))
}
