package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"pulse-chat/internal/events"
	"pulse-chat/internal/redis"
	"pulse-chat/internal/services"
	"pulse-chat/internal/transport/httpdto"
	"pulse-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	readWait     = 60 * time.Second
	maxFrameSize = 4096
)

// Handler upgrades authenticated HTTP requests to WebSocket connections
// and parks them on the hub until the peer goes away. The socket is
// receive-only from the client's perspective; all writes go through the
// REST API.
type Handler struct {
	auth     *services.AuthService
	hub      *Hub
	presence *redis.PresenceStore
	limiter  *redis.RateLimiter
	log      *logger.Logger
}

func NewHandler(auth *services.AuthService, hub *Hub, presence *redis.PresenceStore, limiter *redis.RateLimiter, log *logger.Logger) *Handler {
	return &Handler{auth: auth, hub: hub, presence: presence, limiter: limiter, log: log}
}

func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("missing token", "UNAUTHORIZED"))
		return
	}

	claims, err := h.auth.ParseAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("invalid token", "UNAUTHORIZED"))
		return
	}
	userID := claims.UserID

	if h.limiter != nil {
		res, err := h.limiter.AllowConnect(c.Request.Context(), c.ClientIP())
		if err == nil && !res.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("too many connection attempts", "RATE_LIMITED"))
			return
		}
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, userID)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)

	if h.presence != nil {
		if err := h.presence.SetOnline(ctx, userID); err != nil {
			h.log.Warnf("presence set online failed for user %s: %v", userID, err)
		}
	}

	h.sendReady(client, userID)
	h.log.Infof("websocket connected: user=%s client=%s", userID, client.ID)

	h.readLoop(ctx, client)

	last := h.hub.Unregister(client)
	if h.presence != nil && last {
		if err := h.presence.SetOffline(context.Background(), userID); err != nil {
			h.log.Warnf("presence set offline failed for user %s: %v", userID, err)
		}
	}
	h.log.Infof("websocket disconnected: user=%s client=%s", userID, client.ID)
}

// sendReady pushes the first frame so clients know the connection is
// registered and subsequent events will arrive.
func (h *Handler) sendReady(client *Client, userID string) {
	env, err := events.NewEnvelope(events.TypeConnectionReady, time.Now().UTC(), events.ConnectionReadyPayload{UserID: userID})
	if err != nil {
		return
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return
	}
	client.SendMessage(frame)
}

// readLoop consumes inbound frames to keep the connection healthy.
// Client frames carry no commands; pongs and the occasional heartbeat
// text are all that is expected.
func (h *Handler) readLoop(ctx context.Context, client *Client) {
	conn := client.Conn
	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		if h.presence != nil {
			_ = h.presence.Heartbeat(ctx, client.UserID)
		}
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
	}
}
