package http

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/campuschat-server/internal/service/messaging"
	"github.com/vovakirdan/campuschat-server/internal/store"
)

// MessageHandlers provides HTTP handlers for direct messages.
type MessageHandlers struct {
	service *messaging.Service
	limiter *rateLimiter
	log     *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(svc *messaging.Service, limiter *rateLimiter, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		service: svc,
		limiter: limiter,
		log:     logger,
	}
}

// SendMessageRequest represents the request body for sending a message.
type SendMessageRequest struct {
	ReceiverID int64  `json:"receiver_id" binding:"required"`
	Body       string `json:"body"`
	Type       string `json:"type"`
}

// Send handles sending a direct message.
// POST /api/messages
func (h *MessageHandlers) Send(c *gin.Context) {
	uid, ok := currentUserID(c, h.log)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid send message request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "bad_request"})
		return
	}

	if !h.limiter.allow(uid) {
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded", Code: "rate_limited"})
		return
	}

	msg, err := h.service.Send(c.Request.Context(), uid, req.ReceiverID, req.Body, store.MessageKind(req.Type))
	if err != nil {
		// Only delivered messages count toward the limit.
		h.limiter.release(uid)
		h.writeError(c, err, "failed to send message")
		return
	}

	h.log.Info().Int64("message_id", msg.ID).Int64("sender_id", uid).Int64("receiver_id", req.ReceiverID).Msg("message sent")
	c.JSON(http.StatusCreated, messageToResponse(msg))
}

// Get handles fetching a single message. Only participants may see it.
// GET /api/messages/:id
func (h *MessageHandlers) Get(c *gin.Context) {
	uid, ok := currentUserID(c, h.log)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	msg, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "failed to get message")
		return
	}
	if msg.SenderID != uid && msg.ReceiverID != uid {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "message not found", Code: messaging.CodeMessageNotFound})
		return
	}

	c.JSON(http.StatusOK, messageToResponse(msg))
}

// MarkRead handles the read transition. Only the receiver may mark a message read.
// POST /api/messages/:id/read
func (h *MessageHandlers) MarkRead(c *gin.Context) {
	uid, ok := currentUserID(c, h.log)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	msg, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "failed to get message")
		return
	}
	if msg.ReceiverID != uid {
		if msg.SenderID == uid {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "only the receiver can mark a message read", Code: "forbidden"})
			return
		}
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "message not found", Code: messaging.CodeMessageNotFound})
		return
	}

	msg, changed, err := h.service.MarkRead(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "failed to mark message read")
		return
	}

	h.log.Debug().Int64("message_id", id).Bool("changed", changed).Msg("message marked read")
	c.JSON(http.StatusOK, messageToResponse(msg))
}

// Conversation handles fetching the thread with another user.
// GET /api/conversations/:userId
func (h *MessageHandlers) Conversation(c *gin.Context) {
	uid, ok := currentUserID(c, h.log)
	if !ok {
		return
	}
	counterpart, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	msgs, err := h.service.Conversation(c.Request.Context(), uid, counterpart)
	if err != nil {
		h.writeError(c, err, "failed to load conversation")
		return
	}

	response := make([]EnrichedMessageResponse, 0, len(msgs))
	for i := range msgs {
		response = append(response, enrichedToResponse(&msgs[i]))
	}
	c.JSON(http.StatusOK, response)
}

// Inbox handles listing the latest message of each conversation, newest first.
// GET /api/inbox
func (h *MessageHandlers) Inbox(c *gin.Context) {
	uid, ok := currentUserID(c, h.log)
	if !ok {
		return
	}

	inbox, err := h.service.Inbox(c.Request.Context(), uid)
	if err != nil {
		h.writeError(c, err, "failed to load inbox")
		return
	}

	entries := make([]InboxEntryResponse, 0, len(inbox))
	for counterpart, em := range inbox {
		name := em.SenderName
		if em.SenderID == uid {
			name = em.ReceiverName
		}
		entries = append(entries, InboxEntryResponse{
			CounterpartID:   counterpart,
			CounterpartName: name,
			Latest:          enrichedToResponse(&em),
			latest:          em.Message,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[j].latest.Before(&entries[i].latest)
	})

	c.JSON(http.StatusOK, entries)
}

// Unread handles the unread counter used by UI polling.
// GET /api/notifications/unread
func (h *MessageHandlers) Unread(c *gin.Context) {
	uid, ok := currentUserID(c, h.log)
	if !ok {
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), uid)
	if err != nil {
		h.writeError(c, err, "failed to count unread")
		return
	}
	c.JSON(http.StatusOK, UnreadResponse{Count: count, HasUnread: count > 0})
}

// Badge handles the boolean badge state.
// GET /api/notifications/badge
func (h *MessageHandlers) Badge(c *gin.Context) {
	uid, ok := currentUserID(c, h.log)
	if !ok {
		return
	}

	has, err := h.service.HasUnread(c.Request.Context(), uid)
	if err != nil {
		h.writeError(c, err, "failed to check unread")
		return
	}
	c.JSON(http.StatusOK, BadgeResponse{HasUnread: has})
}

// writeError maps messaging errors onto HTTP statuses.
// Storage failures are 503 so clients know to retry.
func (h *MessageHandlers) writeError(c *gin.Context, err error, logMsg string) {
	code := messaging.CodeOf(err)
	var me *messaging.Error
	msg := "internal server error"
	if errors.As(err, &me) {
		msg = me.Message
	}

	switch {
	case errors.Is(err, messaging.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: code})
	case errors.Is(err, messaging.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msg, Code: code})
	case errors.Is(err, messaging.ErrStorage):
		h.log.Error().Err(err).Msg(logMsg)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "storage unavailable, retry later", Code: code})
	default:
		h.log.Error().Err(err).Msg(logMsg)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name, Code: "bad_request"})
		return 0, false
	}
	return id, true
}
