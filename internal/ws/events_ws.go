package ws

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"messenger-service/internal/auth"
	"messenger-service/internal/observability"
	"messenger-service/internal/registry"
)

const eventsRoutingKey = "ws_events.users"

// EventsHandler owns the per-user live event channel: one websocket per
// user, registered in the connection registry for the lifetime of the
// connection.
type EventsHandler struct {
	registry *registry.Registry
	verifier *auth.Verifier
}

// NewEventsHandler constructs an EventsHandler.
func NewEventsHandler(reg *registry.Registry, verifier *auth.Verifier) *EventsHandler {
	return &EventsHandler{registry: reg, verifier: verifier}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the user's handle. A newer
// connection from the same user displaces this one (last-writer-wins).
func (h *EventsHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("messenger-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	userID, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	wsConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	conn := NewConn(wsConn, info)

	if displaced := h.registry.Register(userID, conn); displaced != nil {
		if old, ok := displaced.(*Conn); ok {
			_ = old.Close()
		}
	}

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	publishConnEvent(ctx, "ws_connect", info, "")

	// Keep connection alive and clean on close. The read loop only ever
	// drains frames; clients receive events, they do not send them here.
	go func() {
		var closeReason string
		defer func() {
			h.registry.Unregister(userID, conn)
			observability.DecWSActive()
			observability.IncWSEvent("ws_disconnect")
			publishConnEvent(ctx, "ws_disconnect", info, closeReason)
			_ = conn.Close()
		}()
		for {
			if _, _, err := wsConn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("ws_error")
					publishConnEvent(ctx, "ws_error", info, closeReason)
				}
				return
			}
		}
	}()
}

func (h *EventsHandler) validateToken(header string) (int, error) {
	parts := strings.Split(header, " ")
	if len(parts) == 2 {
		return h.verifier.ValidateToken(parts[1])
	}
	return 0, fmt.Errorf("invalid token")
}

func publishConnEvent(ctx context.Context, event string, info ConnInfo, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(ctx, eventsRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, headers)
}
