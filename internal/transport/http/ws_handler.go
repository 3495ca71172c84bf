package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/campuschat-server/internal/auth"
	"github.com/vovakirdan/campuschat-server/internal/core"
	"github.com/vovakirdan/campuschat-server/internal/proto"
	"github.com/vovakirdan/campuschat-server/internal/service/messaging"
)

// WSHandler streams notification events to an authenticated user.
// The stream is push-only; inbound frames are discarded.
type WSHandler struct {
	hub         *core.Hub
	service     *messaging.Service
	authService *auth.Service
	log         *zerolog.Logger
}

// NewWSHandler builds a new WebSocket notification handler.
func NewWSHandler(hub *core.Hub, svc *messaging.Service, authService *auth.Service, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, service: svc, authService: authService, log: logger}
}

// Handle authenticates, upgrades, and streams events until either side goes away.
// GET /ws/notifications?token=...
func (h *WSHandler) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		h.log.Debug().Err(err).Msg("ws auth failed")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token", Code: "unauthorized"})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := core.NewClient(uuid.NewString(), claims.UserID)
	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	// CloseRead drains inbound frames and cancels ctx when the peer disconnects.
	ctx := conn.CloseRead(c.Request.Context())

	err = h.stream(ctx, conn, client)
	if err != nil && !errors.Is(err, context.Canceled) {
		status := websocket.CloseStatus(err)
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("ws stream closed with error")
		}
	}

	conn.Close(websocket.StatusNormalClosure, "closing")
}

func (h *WSHandler) stream(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	hello := proto.Outbound{
		Type: proto.OutboundTypeHello,
		Data: proto.HelloData{Protocol: proto.ProtocolVersion, UserID: client.UserID},
	}
	if err := wsjson.Write(ctx, conn, hello); err != nil {
		return err
	}

	unread, err := h.service.UnreadCount(ctx, client.UserID)
	if err != nil {
		_ = wsjson.Write(ctx, conn, proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: messaging.CodeOf(err), Msg: "unread count unavailable"},
		})
		return err
	}
	snapshot := &core.Event{Kind: core.EventUnreadSnapshot, Unread: unread}
	if err := wsjson.Write(ctx, conn, outboundFromEvent(snapshot)); err != nil {
		return err
	}

	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
